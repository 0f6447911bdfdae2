package importer

import (
	"io"
	"strings"

	"github.com/paystmt-dev/paystmt/internal/config"
	"github.com/paystmt-dev/paystmt/internal/model"
	"github.com/paystmt-dev/paystmt/internal/paypal"
)

// StatementParser converts one provider export into a statement.
type StatementParser interface {
	Parse(r io.Reader) (*model.Statement, error)
	Format() string
}

// Analyzer is implemented by parsers that can summarize an export without
// emitting a statement.
type Analyzer interface {
	Analyze(r io.Reader) (*model.AnalysisReport, error)
}

// Factory builds a parser for one run from its settings.
type Factory func(s *config.Settings) (StatementParser, error)

// Registry holds named parser factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory. Panics on duplicate format.
func (r *Registry) Register(format string, f Factory) {
	key := strings.ToLower(format)
	if _, ok := r.factories[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.factories[key] = f
}

// Get returns the factory for format, or nil.
func (r *Registry) Get(format string) Factory {
	return r.factories[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("paypal", func(s *config.Settings) (StatementParser, error) {
		return paypal.New(paypal.Options{
			AccountID:      s.AccountID,
			Currency:       s.Currency,
			Locale:         s.Locale,
			Encoding:       s.Encoding,
			ValidateHeader: s.HeaderValidationEnabled(),
		})
	})
	return r
}
