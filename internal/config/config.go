package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the default settings file name.
const FileName = "paystmt.yaml"

// Settings holds the conversion settings for one account's exports.
type Settings struct {
	AccountID string `yaml:"account_id"`
	Currency  string `yaml:"currency"`
	Locale    string `yaml:"locale,omitempty"`
	Encoding  string `yaml:"encoding"`
	// Analyze is a boolean-like string ("True"/"true"/"1" and friends),
	// kept as text so unrecognized spellings fail loudly instead of
	// silently decoding to false.
	Analyze        string `yaml:"analyze,omitempty"`
	ValidateHeader *bool  `yaml:"validate_header,omitempty"`
}

// Load reads a settings file from disk.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	return &s, nil
}

// Save writes Settings to a YAML file.
func Save(path string, s *Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}

// Default returns Settings with the provider's defaults filled in.
func Default(accountID, currency string) *Settings {
	return &Settings{
		AccountID: accountID,
		Currency:  currency,
		Encoding:  "iso8859-1",
	}
}

// Validate checks that the settings are usable before any parsing starts.
func (s *Settings) Validate() error {
	if s.Currency == "" {
		return errors.New("currency is required")
	}
	if _, err := s.AnalyzeEnabled(); err != nil {
		return err
	}
	return nil
}

// AnalyzeEnabled parses the analyze switch. Empty means off.
func (s *Settings) AnalyzeEnabled() (bool, error) {
	if s.Analyze == "" {
		return false, nil
	}
	return ParseBool(s.Analyze)
}

// HeaderValidationEnabled reports whether the header check runs. On unless
// the settings file turns it off.
func (s *Settings) HeaderValidationEnabled() bool {
	if s.ValidateHeader == nil {
		return true
	}
	return *s.ValidateHeader
}

// BoolParseError reports a settings value that is not a recognized boolean
// spelling.
type BoolParseError struct {
	Value string
}

func (e *BoolParseError) Error() string {
	return fmt.Sprintf("can't parse boolean value: %q", e.Value)
}

// ParseBool accepts the boolean spellings the settings format historically
// allowed. Anything else is an error.
func ParseBool(v string) (bool, error) {
	switch v {
	case "True", "true", "1":
		return true, nil
	case "False", "false", "0":
		return false, nil
	}
	return false, &BoolParseError{Value: v}
}
