package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/paystmt-dev/paystmt/internal/config"
)

func newInitCommand() *cobra.Command {
	var accountID string
	var currency string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a default settings file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, accountID, currency)
		},
	}

	cmd.Flags().StringVar(&accountID, "account-id", "", "account identifier (required)")
	_ = cmd.MarkFlagRequired("account-id")
	cmd.Flags().StringVar(&currency, "currency", "", "target currency (required)")
	_ = cmd.MarkFlagRequired("currency")

	return cmd
}

func runInit(cmd *cobra.Command, dir, accountID, currency string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	path := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	if err := config.Save(path, config.Default(accountID, currency)); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
