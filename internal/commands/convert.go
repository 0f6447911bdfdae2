package commands

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paystmt-dev/paystmt/internal/config"
	"github.com/paystmt-dev/paystmt/internal/importer"
	"github.com/paystmt-dev/paystmt/internal/logging"
	"github.com/paystmt-dev/paystmt/internal/ofx"
)

// convertFlags are the per-run overrides for settings-file values.
type convertFlags struct {
	configPath string
	output     string
	accountID  string
	currency   string
	locale     string
	encoding   string
	analyze    string
	verbose    bool
}

func newConvertCommand() *cobra.Command {
	var flags convertFlags

	cmd := &cobra.Command{
		Use:   "convert <export.csv>",
		Short: "Convert a PayPal CSV export to an OFX statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "settings file (default: "+config.FileName+" if present)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output OFX file (default: input name with .ofx)")
	cmd.Flags().StringVar(&flags.accountID, "account-id", "", "account identifier for the statement")
	cmd.Flags().StringVar(&flags.currency, "currency", "", "target currency; rows in other currencies are dropped")
	cmd.Flags().StringVar(&flags.locale, "locale", "", "locale tag for amount parsing")
	cmd.Flags().StringVar(&flags.encoding, "encoding", "", "input charset (default iso8859-1)")
	cmd.Flags().StringVar(&flags.analyze, "analyze", "", "summarize the export instead of writing OFX (True/False)")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")

	return cmd
}

func runConvert(cmd *cobra.Command, input string, flags convertFlags) error {
	log := logging.New(flags.verbose)

	settings, err := loadSettings(flags.configPath)
	if err != nil {
		return err
	}
	applyOverrides(settings, flags)

	// Settings problems abort before any parsing starts.
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	analyze, _ := settings.AnalyzeEnabled()

	// The statement needs an account identifier; an analyze run does not.
	if !analyze && settings.AccountID == "" {
		return errors.New("settings: account_id is required to emit a statement")
	}

	factory := importer.DefaultRegistry().Get("paypal")
	parser, err := factory(settings)
	if err != nil {
		return fmt.Errorf("creating parser: %w", err)
	}

	log.Debug().
		Str("input", input).
		Str("currency", settings.Currency).
		Str("encoding", settings.Encoding).
		Bool("validate_header", settings.HeaderValidationEnabled()).
		Msg("starting conversion")

	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("opening %s: %w", input, err)
	}
	defer f.Close()

	if analyze {
		an, ok := parser.(importer.Analyzer)
		if !ok {
			return fmt.Errorf("parser %s does not support analyze", parser.Format())
		}
		rep, err := an.Analyze(f)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "rows: %d, kept: %d, other currency: %d, bank deposits: %d\n",
			rep.TotalRows, rep.Kept, rep.OtherCurrency, rep.ExcludedDeposits)
		return nil
	}

	st, err := parser.Parse(f)
	if err != nil {
		return err
	}

	// Serialize fully before touching the output path, so a failed run
	// leaves no partial file behind.
	var buf bytes.Buffer
	if err := ofx.Write(&buf, st); err != nil {
		return err
	}

	output := flags.output
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".ofx"
	}
	if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}

	log.Info().Int("lines", len(st.Lines)).Str("output", output).Msg("statement written")
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d transactions to %s\n", len(st.Lines), output)
	return nil
}

// loadSettings reads the named settings file, or the default one when it
// exists, or returns empty settings.
func loadSettings(path string) (*config.Settings, error) {
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat(config.FileName); err == nil {
		return config.Load(config.FileName)
	}
	return &config.Settings{}, nil
}

func applyOverrides(s *config.Settings, flags convertFlags) {
	if flags.accountID != "" {
		s.AccountID = flags.accountID
	}
	if flags.currency != "" {
		s.Currency = flags.currency
	}
	if flags.locale != "" {
		s.Locale = flags.locale
	}
	if flags.encoding != "" {
		s.Encoding = flags.encoding
	}
	if flags.analyze != "" {
		s.Analyze = flags.analyze
	}
}
