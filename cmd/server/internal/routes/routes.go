package routes

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	servermiddleware "github.com/indokarya/registration-portal/cmd/server/internal/middleware"
	"github.com/indokarya/registration-portal/cmd/server/internal/response"
	"github.com/indokarya/registration-portal/cmd/server/internal/routes/api"
	"github.com/indokarya/registration-portal/internal/config"
	"github.com/indokarya/registration-portal/internal/logger"
	"github.com/indokarya/registration-portal/internal/session"
	"github.com/indokarya/registration-portal/internal/types"
	"github.com/indokarya/registration-portal/internal/validator"
)

func BuildEcho(log *slog.Logger) (*echo.Echo, error) {
	e := echo.New()

	validate := validator.Create()
	e.Validator = &validate

	e.HTTPErrorHandler = errorHandler

	e.Use(
		otelecho.Middleware("registration-portal"),
		slogecho.NewWithConfig(log, slogecho.Config{}),
	)

	e.GET("/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	return e, nil
}

// Register wires the portal surface: the public form endpoints, the
// session-aware listing, the admin group, and the static uploads.
func Register(e *echo.Echo, h *api.Handler, sessions *session.Manager, cfg *config.Config) {
	apiGroup := e.Group("/api")

	apiGroup.POST("/login", h.Login)
	apiGroup.POST("/logout", h.Logout)
	apiGroup.GET("/check-auth", h.CheckAuth, servermiddleware.WithSession(sessions))

	// the file cap is 10 MiB; the body limit sits one MiB above it so the
	// multipart overhead of a file exactly at the cap still fits
	apiGroup.POST("/upload", h.Upload, middleware.BodyLimit("11M"))

	apiGroup.GET("/list", h.List, servermiddleware.WithSession(sessions))
	apiGroup.GET("/item/:id", h.Item, servermiddleware.WithSession(sessions))

	adminGroup := apiGroup.Group("", servermiddleware.RequireSession(sessions))
	adminGroup.DELETE("/delete/:id", h.Delete)
	adminGroup.GET("/download-zip", h.DownloadZip)
	adminGroup.GET("/export-csv", h.ExportCSV)
	adminGroup.GET("/stats", h.Stats)

	e.Static("/uploads", cfg.UploadDir)
	if cfg.PublicDir != "" {
		e.Static("/", cfg.PublicDir)
	}
}

// errorHandler renders every handler failure in the uniform
// {success:false, message} envelope.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	he, ok := err.(*echo.HTTPError)
	if !ok {
		logger.Logger.Error("unhandled error", "error", err, "path", c.Path())
		he = response.InternalServerError
	}

	var body types.Error
	switch msg := he.Message.(type) {
	case types.Error:
		body = msg
	case string:
		body = types.StringError(msg)
	default:
		body = types.StringError(http.StatusText(he.Code))
	}

	if err := c.JSON(he.Code, body); err != nil {
		logger.Logger.Error("failed to write error response", "error", err)
	}
}
