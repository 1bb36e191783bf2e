// Command concolic explores the registered example targets by concolic
// execution and reports the paths it found.
package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "concolic",
		Short:         "A concolic exploration engine",
		Long:          "concolic generates inputs that drive a target function down every feasible path",
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newListCmd(), newRunCmd())
	return rootCmd
}
