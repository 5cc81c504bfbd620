package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/indokarya/registration-portal/internal/logger"
	"github.com/indokarya/registration-portal/internal/validator"
)

type LoggingConfig struct {
	Level   int  `mapstructure:"level"`
	UseOTLP bool `mapstructure:"use_otlp"`
}

// See portal.yaml for an example config
type Config struct {
	Port                 int           `mapstructure:"port"                 validate:"required"`
	DataDir              string        `mapstructure:"data_dir"             validate:"required"`
	UploadDir            string        `mapstructure:"upload_dir"           validate:"required"`
	PublicDir            string        `mapstructure:"public_dir"`
	SessionTTL           time.Duration `mapstructure:"session_ttl"          validate:"required"`
	PublicListLimit      int           `mapstructure:"public_list_limit"    validate:"required"`
	BootstrapAdmin       bool          `mapstructure:"bootstrap_admin"`
	GracefulShutdownSecs int64         `mapstructure:"graceful_shutdown_secs"`
	Logging              LoggingConfig `mapstructure:"logging"`
}

func (c *Config) ListenAddress() string {
	return fmt.Sprintf("[::]:%d", c.Port)
}

func (c *Config) RecordsPath() string {
	return filepath.Join(c.DataDir, "db.json")
}

func (c *Config) CredentialsPath() string {
	return filepath.Join(c.DataDir, "auth.json")
}

const (
	AppLogLevel          string = "logging.level"
	BootstrapAdmin       string = "bootstrap_admin"
	DataDir              string = "data_dir"
	EnvPrefix            string = "portal"
	GracefulShutdownSecs string = "graceful_shutdown_secs"
	Port                 string = "port"
	PublicDir            string = "public_dir"
	PublicListLimit      string = "public_list_limit"
	SessionTTL           string = "session_ttl"
	UploadDir            string = "upload_dir"
	UseOTLP              string = "logging.use_otlp"
)

var configReady = false
var config Config

func GetConfig() (*Config, error) {
	if configReady {
		logger.Logger.Debug("returning already-loaded config")
		return &config, nil
	}
	logger.Logger.Info("loading config")

	v := viper.New()

	v.SetConfigName("portal")

	v.AddConfigPath("/etc/portal/")
	v.AddConfigPath(".")

	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.AutomaticEnv()

	// bare PORT is honored alongside PORTAL_PORT for parity with the
	// original deployment scripts
	err := v.BindEnv(Port, "PORTAL_PORT", "PORT")
	if err != nil {
		return nil, err
	}

	v.SetDefault(Port, 3000)
	v.SetDefault(DataDir, "data")
	v.SetDefault(UploadDir, filepath.Join("public", "uploads"))
	v.SetDefault(PublicDir, "public")
	v.SetDefault(SessionTTL, time.Hour)
	v.SetDefault(PublicListLimit, 50)
	v.SetDefault(BootstrapAdmin, false)
	v.SetDefault(GracefulShutdownSecs, 30)
	v.SetDefault(AppLogLevel, int(slog.LevelInfo))
	v.SetDefault(UseOTLP, false)

	err = v.ReadInConfig()
	if err != nil {
		// ignore config file not found to allow pure env config
		if _, ok := err.(*viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	err = v.Unmarshal(&config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.Create()
	if err := validate.Validate(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	configReady = true
	return &config, nil
}
