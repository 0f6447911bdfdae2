package amount

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

// Normalize reduces a provider-formatted numeric string to plain dot-decimal
// form: spaces stripped, thousands dots stripped, decimal comma replaced
// with a dot. "1.234,56" becomes "1234.56".
func Normalize(s string) string {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ".", "")
	return strings.ReplaceAll(s, ",", ".")
}

// Parse parses a provider-formatted amount. loc is a locale tag ("" means
// none); it is validated but does not change the numeric interpretation,
// since Normalize already reduces the input to a plain dot-decimal string.
// No process-wide locale state is touched.
func Parse(s, loc string) (decimal.Decimal, error) {
	if tag := languageTag(loc); tag != "" {
		if _, err := language.Parse(tag); err != nil {
			return decimal.Decimal{}, fmt.Errorf("invalid locale %q: %w", loc, err)
		}
	}
	d, err := decimal.NewFromString(Normalize(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return d, nil
}

// languageTag strips the POSIX codeset and modifier suffixes that setlocale
// accepts ("de_DE.UTF-8", "de_DE@euro"), leaving the bare tag.
func languageTag(loc string) string {
	if i := strings.IndexByte(loc, '.'); i >= 0 {
		loc = loc[:i]
	}
	if i := strings.IndexByte(loc, '@'); i >= 0 {
		loc = loc[:i]
	}
	return loc
}
