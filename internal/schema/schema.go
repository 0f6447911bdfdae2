package schema

import (
	"fmt"
	"slices"
	"strings"
)

// Columns is the exact header of a PayPal activity CSV export. The trailing
// empty name is real: every export line ends with a dangling comma.
var Columns = []string{
	"Date",
	"Time",
	"Time Zone",
	"Name",
	"Type",
	"Status",
	"Currency",
	"Gross",
	"Fee",
	"Net",
	"From Email Address",
	"To Email Address",
	"Transaction ID",
	"Shipping Address",
	"Item Title",
	"Item ID",
	"Shipping and Handling Amount",
	"Reference Txn ID",
	"Receipt ID",
	"Balance",
	"Contact Phone Number",
	"Subject",
	"Note",
	"Balance Impact",
	"",
}

// NumColumns is the field count every data row must have.
const NumColumns = 25

// Column positions, resolved once from Columns.
var (
	ColDate           = index("Date")
	ColName           = index("Name")
	ColType           = index("Type")
	ColCurrency       = index("Currency")
	ColGross          = index("Gross")
	ColToEmail        = index("To Email Address")
	ColTransactionID  = index("Transaction ID")
	ColItemTitle      = index("Item Title")
	ColReferenceTxnID = index("Reference Txn ID")
	ColSubject        = index("Subject")
	ColNote           = index("Note")
)

func index(name string) int {
	for i, c := range Columns {
		if c == name {
			return i
		}
	}
	panic("schema: unknown column " + name)
}

// MismatchError reports a header that does not match the expected schema.
type MismatchError struct {
	Expected []string
	Actual   []string
}

func (e *MismatchError) Error() string {
	return strings.Join([]string{
		"header doesn't match the expected schema:",
		fmt.Sprintf("expected: %q", e.Expected),
		fmt.Sprintf("actual  : %q", e.Actual),
	}, "\n")
}

// Validate checks an actual header (fields already trimmed) against the
// expected schema, including the trailing empty column name.
func Validate(header []string) error {
	if !slices.Equal(header, Columns) {
		return &MismatchError{Expected: Columns, Actual: header}
	}
	return nil
}
