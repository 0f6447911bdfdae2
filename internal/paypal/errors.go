package paypal

import "fmt"

// RowShapeError reports a data row with fewer fields than the schema
// requires. Short rows abort the run; they are never silently skipped.
type RowShapeError struct {
	Row  int // 1-based line in the source file, header is line 1
	Got  int
	Want int
}

func (e *RowShapeError) Error() string {
	return fmt.Sprintf("row %d: expected %d fields, got %d", e.Row, e.Want, e.Got)
}

// DateParseError reports a Date field that does not match DD/MM/YYYY.
type DateParseError struct {
	Row   int
	Value string
	Err   error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("row %d: parsing date %q: %v", e.Row, e.Value, e.Err)
}

func (e *DateParseError) Unwrap() error { return e.Err }

// AmountParseError reports a Gross field that is not numeric after
// normalization.
type AmountParseError struct {
	Row   int
	Value string
	Err   error
}

func (e *AmountParseError) Error() string {
	return fmt.Sprintf("row %d: parsing amount %q: %v", e.Row, e.Value, e.Err)
}

func (e *AmountParseError) Unwrap() error { return e.Err }
