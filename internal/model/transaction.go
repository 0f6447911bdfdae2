package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRecord is one normalized statement line parsed from a provider
// export. Records are independent of each other and immutable once produced.
type TransactionRecord struct {
	ID     string          // provider transaction ID, verbatim from the export
	Date   time.Time       // posting date, day precision
	Memo   string          // free-text description
	Payee  string          // counterparty display string
	RefNum string          // reference to a related prior transaction, may be empty
	Amount decimal.Decimal // gross amount; negative = money out
}

// Statement is the assembled output for one account: every record that
// survived filtering, in input order.
type Statement struct {
	BankID    string
	AccountID string
	Currency  string
	Lines     []TransactionRecord
}

// AnalysisReport summarizes one export without producing a statement.
type AnalysisReport struct {
	TotalRows        int // data rows in the file
	Kept             int // rows that would become statement lines
	OtherCurrency    int // rows dropped for a non-matching currency
	ExcludedDeposits int // rows dropped as linked-bank deposits
}
