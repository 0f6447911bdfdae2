package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paystmt-dev/paystmt/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "paystmt",
		Short:   "Convert PayPal CSV exports to OFX statements",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newConvertCommand())
	rootCmd.AddCommand(newValidateCommand())

	return rootCmd
}
