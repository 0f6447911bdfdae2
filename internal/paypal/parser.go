package paypal

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"

	"github.com/paystmt-dev/paystmt/internal/amount"
	"github.com/paystmt-dev/paystmt/internal/model"
	"github.com/paystmt-dev/paystmt/internal/schema"
)

const (
	// BankID identifies the institution in the emitted statement.
	BankID = "PayPal"

	// DefaultEncoding is the charset PayPal uses for activity exports.
	DefaultEncoding = "iso8859-1"

	dateFormat = "02/01/2006"

	// excludedType marks transfers from a linked bank account into the
	// PayPal balance; they are not statement activity.
	excludedType = "Bank Deposit to PP Account"
)

// Options configure a Parser run.
type Options struct {
	AccountID      string
	Currency       string // required; rows in other currencies are dropped
	Locale         string // locale tag for amount parsing, "" = none
	Encoding       string // charset name, "" = DefaultEncoding
	ValidateHeader bool   // check the header against the expected schema
}

// Parser converts PayPal activity CSV exports into statements.
type Parser struct {
	opts Options
}

// New creates a Parser. Currency is required: it drives row filtering and
// ends up as the statement's CURDEF.
func New(opts Options) (*Parser, error) {
	if opts.Currency == "" {
		return nil, errors.New("currency is required")
	}
	if opts.Encoding == "" {
		opts.Encoding = DefaultEncoding
	}
	return &Parser{opts: opts}, nil
}

// Format returns the parser name.
func (p *Parser) Format() string { return "paypal" }

// Parse runs the full pipeline over one export: decode, read CSV, validate
// the header when enabled, filter rows, map each survivor to a statement
// line. The first error aborts the whole run; there is no partial output.
func (p *Parser) Parse(r io.Reader) (*model.Statement, error) {
	header, rows, err := p.read(r)
	if err != nil {
		return nil, err
	}
	if p.opts.ValidateHeader {
		if err := schema.Validate(header); err != nil {
			return nil, err
		}
	}

	kept, err := filterRows(rows, p.opts.Currency)
	if err != nil {
		return nil, err
	}

	st := &model.Statement{
		BankID:    BankID,
		AccountID: p.opts.AccountID,
		Currency:  p.opts.Currency,
	}
	for _, row := range kept {
		rec, err := mapRow(row, p.opts.Locale)
		if err != nil {
			return nil, err
		}
		st.Lines = append(st.Lines, rec)
	}
	return st, nil
}

// ValidateHeader decodes the input and checks only that its header matches
// the expected export schema, regardless of the ValidateHeader option.
func (p *Parser) ValidateHeader(r io.Reader) error {
	header, _, err := p.read(r)
	if err != nil {
		return err
	}
	return schema.Validate(header)
}

// Analyze runs the pipeline without assembling a statement and reports how
// the rows would be classified. Mapping still runs on kept rows, so data
// errors surface the same way they would during a real conversion.
func (p *Parser) Analyze(r io.Reader) (*model.AnalysisReport, error) {
	header, rows, err := p.read(r)
	if err != nil {
		return nil, err
	}
	if p.opts.ValidateHeader {
		if err := schema.Validate(header); err != nil {
			return nil, err
		}
	}

	rep := &model.AnalysisReport{TotalRows: len(rows)}
	for _, row := range rows {
		if len(row.fields) < schema.NumColumns {
			return nil, &RowShapeError{Row: row.line, Got: len(row.fields), Want: schema.NumColumns}
		}
		switch {
		case row.fields[schema.ColCurrency] != p.opts.Currency:
			rep.OtherCurrency++
		case row.fields[schema.ColType] == excludedType:
			rep.ExcludedDeposits++
		default:
			if _, err := mapRow(row, p.opts.Locale); err != nil {
				return nil, err
			}
			rep.Kept++
		}
	}
	return rep, nil
}

// row is one data record with its 1-based source line number.
type row struct {
	line   int
	fields []string
}

// read decodes the whole input with the configured charset and parses it as
// quoted CSV. Quoted and unquoted fields are both accepted.
func (p *Parser) read(r io.Reader) ([]string, []row, error) {
	enc, err := lookupEncoding(p.opts.Encoding)
	if err != nil {
		return nil, nil, err
	}

	data, err := io.ReadAll(transform.NewReader(r, enc.NewDecoder()))
	if err != nil {
		return nil, nil, fmt.Errorf("decoding %s input: %w", p.opts.Encoding, err)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1 // width is checked against the schema per row

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, errors.New("empty export: missing header row")
	}

	header := records[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	rows := make([]row, 0, len(records)-1)
	for i, rec := range records[1:] {
		rows = append(rows, row{line: i + 2, fields: rec})
	}
	return header, rows, nil
}

// lookupEncoding resolves a charset name. PayPal's "iso8859-1" spelling is
// not an IANA alias, so it is matched directly before falling back to the
// IANA index.
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(name) {
	case "iso8859-1", "iso-8859-1", "latin1":
		return charmap.ISO8859_1, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unknown encoding %q", name)
	}
	return enc, nil
}

// filterRows keeps rows in the target currency, dropping linked-bank
// deposits. Order is preserved. A row too short for the schema is an error,
// not a skip.
func filterRows(rows []row, currency string) ([]row, error) {
	var kept []row
	for _, r := range rows {
		if len(r.fields) < schema.NumColumns {
			return nil, &RowShapeError{Row: r.line, Got: len(r.fields), Want: schema.NumColumns}
		}
		if r.fields[schema.ColCurrency] != currency {
			continue
		}
		if r.fields[schema.ColType] == excludedType {
			continue
		}
		kept = append(kept, r)
	}
	return kept, nil
}

// mapRow converts one filtered row into a statement line.
func mapRow(r row, loc string) (model.TransactionRecord, error) {
	date, err := time.Parse(dateFormat, r.fields[schema.ColDate])
	if err != nil {
		return model.TransactionRecord{}, &DateParseError{Row: r.line, Value: r.fields[schema.ColDate], Err: err}
	}

	amt, err := amount.Parse(r.fields[schema.ColGross], loc)
	if err != nil {
		return model.TransactionRecord{}, &AmountParseError{Row: r.line, Value: r.fields[schema.ColGross], Err: err}
	}

	return model.TransactionRecord{
		ID:     r.fields[schema.ColTransactionID],
		Date:   date,
		Memo:   pickMemo(field(r.fields, schema.ColNote), field(r.fields, schema.ColSubject), field(r.fields, schema.ColItemTitle)),
		Payee:  fmt.Sprintf("Name: %s Email: %s", r.fields[schema.ColName], r.fields[schema.ColToEmail]),
		RefNum: r.fields[schema.ColReferenceTxnID],
		Amount: amt,
	}, nil
}

// optional is a field value that may be absent from a row.
type optional struct {
	value   string
	present bool
}

func field(fields []string, idx int) optional {
	if idx >= len(fields) {
		return optional{}
	}
	return optional{value: fields[idx], present: true}
}

// pickMemo applies the export's memo precedence: each later source
// overwrites the prior whenever it is present, even when empty. Item Title
// wins over Subject, which wins over Note. A full-width row has every field
// present, so there the Item Title always decides the memo.
func pickMemo(note, subject, title optional) string {
	memo := ""
	if note.present {
		memo = note.value
	}
	if subject.present {
		memo = subject.value
	}
	if title.present {
		memo = title.value
	}
	return memo
}
