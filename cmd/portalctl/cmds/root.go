// Package cmds holds the portalctl subcommands, the supported way to manage
// portal admin accounts instead of editing the credential document by hand.
package cmds

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/indokarya/registration-portal/internal/config"
	"github.com/indokarya/registration-portal/internal/store"
)

var rootCmd = &cobra.Command{
	Use:           "portalctl",
	Short:         "Manage registration portal admin accounts",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func credentialStore() (*store.CredentialStore, error) {
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, err
	}

	return store.NewCredentialStore(cfg.CredentialsPath()), nil
}
