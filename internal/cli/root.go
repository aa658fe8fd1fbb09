package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree. Every leaf command wires the full
// stack on demand; there is no long-lived global state between runs except
// the vault.
func NewRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "spendsync",
		Short:         "Offline-friendly client for the shared expense service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "spendsync.toml", "path to the TOML config file")

	root.AddCommand(
		newLoginCmd(&configPath),
		newLogoutCmd(&configPath),
		newRegisterCmd(&configPath),
		newForgotPasswordCmd(&configPath),
		newWhoamiCmd(&configPath),
		newExpenseCmd(&configPath),
		newCategoryCmd(&configPath),
		newPaymentMethodCmd(&configPath),
		newGroupCmd(&configPath),
		newSettingsCmd(&configPath),
		newProfileCmd(&configPath),
		newWatchCmd(&configPath),
		newExportCmd(&configPath),
	)
	return root
}
