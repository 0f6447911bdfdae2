package paypal

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paystmt-dev/paystmt/internal/schema"
)

func newParser(t *testing.T, opts Options) *Parser {
	t.Helper()
	if opts.Currency == "" {
		opts.Currency = "EUR"
	}
	p, err := New(opts)
	require.NoError(t, err)
	return p
}

func fixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("../../testdata/paypal_export.csv")
	require.NoError(t, err)
	return string(data)
}

// headerLine renders the expected header; the trailing empty column becomes
// a dangling comma, as in real exports.
func headerLine() string {
	return strings.Join(schema.Columns, ",")
}

// dataRow builds a full-width row with sane defaults and the given overrides.
func dataRow(overrides map[int]string) string {
	fields := make([]string, schema.NumColumns)
	fields[schema.ColDate] = "01/01/2024"
	fields[schema.ColCurrency] = "EUR"
	fields[schema.ColGross] = "1,00"
	for i, v := range overrides {
		fields[i] = v
	}
	return strings.Join(fields, ",")
}

func TestParser_Parse(t *testing.T) {
	p := newParser(t, Options{AccountID: "acct-1", Currency: "EUR", ValidateHeader: true})

	st, err := p.Parse(strings.NewReader(fixture(t)))
	require.NoError(t, err)

	assert.Equal(t, "PayPal", st.BankID)
	assert.Equal(t, "acct-1", st.AccountID)
	assert.Equal(t, "EUR", st.Currency)
	require.Len(t, st.Lines, 3)

	first := st.Lines[0]
	assert.Equal(t, "7AB12345CD678901E", first.ID)
	assert.Equal(t, time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, "Mechanical Keyboard", first.Memo)
	assert.Equal(t, "Name: Acme Webshop Email: shop@acme.example", first.Payee)
	assert.Equal(t, "", first.RefNum)
	assert.Equal(t, "-1234.56", first.Amount.StringFixed(2))

	second := st.Lines[1]
	assert.Equal(t, "8CD98765EF432109A", second.ID)
	// Item Title is present (empty) and overwrites the Subject.
	assert.Equal(t, "", second.Memo)
	assert.Equal(t, "7AB12345CD678901E", second.RefNum)
	assert.Equal(t, "10.50", second.Amount.StringFixed(2))

	third := st.Lines[2]
	assert.Equal(t, "3SU77777JJ777777K", third.ID)
	assert.Equal(t, "Monthly Plan", third.Memo)
	assert.True(t, third.Amount.IsNegative())
}

func TestParser_FiltersOtherCurrencies(t *testing.T) {
	p := newParser(t, Options{Currency: "EUR"})

	st, err := p.Parse(strings.NewReader(fixture(t)))
	require.NoError(t, err)

	for _, line := range st.Lines {
		assert.NotEqual(t, "9EF11111GH222222B", line.ID, "USD row must be dropped")
	}
}

func TestParser_TargetCurrencySelectsRows(t *testing.T) {
	p := newParser(t, Options{Currency: "USD"})

	st, err := p.Parse(strings.NewReader(fixture(t)))
	require.NoError(t, err)

	require.Len(t, st.Lines, 1)
	assert.Equal(t, "9EF11111GH222222B", st.Lines[0].ID)
}

func TestParser_ExcludesBankDeposits(t *testing.T) {
	p := newParser(t, Options{Currency: "EUR"})

	st, err := p.Parse(strings.NewReader(fixture(t)))
	require.NoError(t, err)

	for _, line := range st.Lines {
		assert.NotEqual(t, "1BD55555GG555555H", line.ID, "bank deposit row must be dropped even in the target currency")
	}
}

func TestParser_OrderPreserved(t *testing.T) {
	p := newParser(t, Options{Currency: "EUR"})

	st, err := p.Parse(strings.NewReader(fixture(t)))
	require.NoError(t, err)

	ids := make([]string, 0, len(st.Lines))
	for _, line := range st.Lines {
		ids = append(ids, line.ID)
	}
	assert.Equal(t, []string{"7AB12345CD678901E", "8CD98765EF432109A", "3SU77777JJ777777K"}, ids)
}

func TestParser_Idempotent(t *testing.T) {
	data := fixture(t)
	p := newParser(t, Options{Currency: "EUR", ValidateHeader: true})

	st1, err := p.Parse(strings.NewReader(data))
	require.NoError(t, err)
	st2, err := p.Parse(strings.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, st1, st2)
}

func TestParser_HeaderValidationRejectsDrift(t *testing.T) {
	bad := strings.Replace(fixture(t), `"Gross"`, `"Brut"`, 1)

	p := newParser(t, Options{Currency: "EUR", ValidateHeader: true})
	_, err := p.Parse(strings.NewReader(bad))
	require.Error(t, err)

	var mismatch *schema.MismatchError
	assert.True(t, errors.As(err, &mismatch))
}

func TestParser_HeaderValidationCanBeDisabled(t *testing.T) {
	bad := strings.Replace(fixture(t), `"Gross"`, `"Brut"`, 1)

	p := newParser(t, Options{Currency: "EUR", ValidateHeader: false})
	st, err := p.Parse(strings.NewReader(bad))
	require.NoError(t, err)
	assert.Len(t, st.Lines, 3)
}

func TestParser_ShortRow(t *testing.T) {
	input := headerLine() + "\n" + "01/01/2024,gibberish,EUR\n"

	p := newParser(t, Options{Currency: "EUR"})
	_, err := p.Parse(strings.NewReader(input))
	require.Error(t, err)

	var shape *RowShapeError
	require.True(t, errors.As(err, &shape))
	assert.Equal(t, 2, shape.Row)
	assert.Equal(t, 3, shape.Got)
	assert.Equal(t, schema.NumColumns, shape.Want)
}

func TestParser_BadDate(t *testing.T) {
	input := headerLine() + "\n" + dataRow(map[int]string{schema.ColDate: "2023-12-25"}) + "\n"

	p := newParser(t, Options{Currency: "EUR"})
	_, err := p.Parse(strings.NewReader(input))
	require.Error(t, err)

	var dateErr *DateParseError
	require.True(t, errors.As(err, &dateErr))
	assert.Equal(t, "2023-12-25", dateErr.Value)
}

func TestParser_DayMonthYearDate(t *testing.T) {
	input := headerLine() + "\n" + dataRow(map[int]string{schema.ColDate: "25/12/2023"}) + "\n"

	p := newParser(t, Options{Currency: "EUR"})
	st, err := p.Parse(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, st.Lines, 1)
	assert.Equal(t, time.Date(2023, time.December, 25, 0, 0, 0, 0, time.UTC), st.Lines[0].Date)
}

func TestParser_BadAmount(t *testing.T) {
	input := headerLine() + "\n" + dataRow(map[int]string{schema.ColGross: "12x34"}) + "\n"

	p := newParser(t, Options{Currency: "EUR"})
	_, err := p.Parse(strings.NewReader(input))
	require.Error(t, err)

	var amtErr *AmountParseError
	require.True(t, errors.As(err, &amtErr))
	assert.Equal(t, "12x34", amtErr.Value)
}

func TestParser_Latin1Decoding(t *testing.T) {
	// 0xE9 is é in ISO 8859-1.
	input := headerLine() + "\n" + dataRow(map[int]string{schema.ColName: "Caf\xe9 Noir"}) + "\n"

	p := newParser(t, Options{Currency: "EUR"})
	st, err := p.Parse(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, st.Lines, 1)
	assert.Contains(t, st.Lines[0].Payee, "Café Noir")
}

func TestParser_UnknownEncoding(t *testing.T) {
	// Encoding names are resolved at read time, not in New.
	p := newParser(t, Options{Currency: "EUR", Encoding: "martian-7"})
	_, err := p.Parse(strings.NewReader(headerLine() + "\n"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown encoding")
}

func TestParser_EmptyInput(t *testing.T) {
	p := newParser(t, Options{Currency: "EUR"})
	_, err := p.Parse(strings.NewReader(""))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "missing header")
}

func TestParser_CurrencyRequired(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "currency")
}

func TestParser_Format(t *testing.T) {
	p := newParser(t, Options{Currency: "EUR"})
	assert.Equal(t, "paypal", p.Format())
}

func TestParser_ValidateHeader(t *testing.T) {
	p := newParser(t, Options{Currency: "EUR"})
	require.NoError(t, p.ValidateHeader(strings.NewReader(fixture(t))))

	bad := strings.Replace(fixture(t), `"Date"`, `"Datum"`, 1)
	assert.Error(t, p.ValidateHeader(strings.NewReader(bad)))
}

func TestParser_Analyze(t *testing.T) {
	p := newParser(t, Options{Currency: "EUR", ValidateHeader: true})

	rep, err := p.Analyze(strings.NewReader(fixture(t)))
	require.NoError(t, err)

	assert.Equal(t, 5, rep.TotalRows)
	assert.Equal(t, 3, rep.Kept)
	assert.Equal(t, 1, rep.OtherCurrency)
	assert.Equal(t, 1, rep.ExcludedDeposits)
}

func TestParser_AnalyzeSurfacesDataErrors(t *testing.T) {
	input := headerLine() + "\n" + dataRow(map[int]string{schema.ColGross: "nope"}) + "\n"

	p := newParser(t, Options{Currency: "EUR"})
	_, err := p.Analyze(strings.NewReader(input))

	var amtErr *AmountParseError
	assert.True(t, errors.As(err, &amtErr))
}

func TestPickMemo_PresentEmptySubjectOverwritesNote(t *testing.T) {
	memo := pickMemo(
		optional{value: "N", present: true},
		optional{value: "", present: true},
		optional{},
	)
	assert.Equal(t, "", memo)
}

func TestPickMemo_TitleWinsOverNote(t *testing.T) {
	memo := pickMemo(
		optional{value: "N", present: true},
		optional{},
		optional{value: "T", present: true},
	)
	assert.Equal(t, "T", memo)
}

func TestPickMemo_NoteWhenOthersAbsent(t *testing.T) {
	memo := pickMemo(optional{value: "N", present: true}, optional{}, optional{})
	assert.Equal(t, "N", memo)
}

func TestPickMemo_AllAbsent(t *testing.T) {
	assert.Equal(t, "", pickMemo(optional{}, optional{}, optional{}))
}

func TestPickMemo_FullWidthRowAlwaysUsesTitle(t *testing.T) {
	memo := pickMemo(
		optional{value: "note", present: true},
		optional{value: "subject", present: true},
		optional{value: "title", present: true},
	)
	assert.Equal(t, "title", memo)
}
