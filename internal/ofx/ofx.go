package ofx

import (
	"fmt"
	"io"
	"time"

	"github.com/aclindsa/ofxgo"

	"github.com/paystmt-dev/paystmt/internal/id"
	"github.com/paystmt-dev/paystmt/internal/model"
)

const fitIDDateFormat = "2006-01-02"

// Write serializes a statement as an OFX 2.0.3 bank statement response.
func Write(w io.Writer, st *model.Statement) error {
	resp, err := build(st, time.Now())
	if err != nil {
		return err
	}
	buf, err := resp.Marshal()
	if err != nil {
		return fmt.Errorf("marshaling OFX: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing OFX: %w", err)
	}
	return nil
}

func build(st *model.Statement, now time.Time) (*ofxgo.Response, error) {
	curdef, err := ofxgo.NewCurrSymbol(st.Currency)
	if err != nil {
		return nil, fmt.Errorf("currency %q: %w", st.Currency, err)
	}

	trnUID, err := ofxgo.RandomUID()
	if err != nil {
		return nil, fmt.Errorf("generating transaction UID: %w", err)
	}

	// Statement period covers the line dates; an empty statement uses now.
	dtStart, dtEnd := now, now
	txns := make([]ofxgo.Transaction, 0, len(st.Lines))
	for i, line := range st.Lines {
		if i == 0 || line.Date.Before(dtStart) {
			dtStart = line.Date
		}
		if i == 0 || line.Date.After(dtEnd) {
			dtEnd = line.Date
		}

		var amt ofxgo.Amount
		if _, ok := amt.SetString(line.Amount.String()); !ok {
			return nil, fmt.Errorf("amount %q is not representable", line.Amount.String())
		}

		trnType := ofxgo.TrnTypeCredit
		if line.Amount.IsNegative() {
			trnType = ofxgo.TrnTypeDebit
		}

		txns = append(txns, ofxgo.Transaction{
			TrnType:  trnType,
			DtPosted: ofxgo.Date{Time: line.Date},
			TrnAmt:   amt,
			FiTID:    ofxgo.String(fitID(line)),
			RefNum:   ofxgo.String(line.RefNum),
			Name:     ofxgo.String(line.Payee),
			Memo:     ofxgo.String(line.Memo),
		})
	}

	stmt := &ofxgo.StatementResponse{
		TrnUID: *trnUID,
		Status: ofxgo.Status{Code: 0, Severity: "INFO"},
		CurDef: *curdef,
		BankAcctFrom: ofxgo.BankAcct{
			BankID:   ofxgo.String(st.BankID),
			AcctID:   ofxgo.String(st.AccountID),
			AcctType: ofxgo.AcctTypeChecking,
		},
		BankTranList: &ofxgo.TransactionList{
			DtStart:      ofxgo.Date{Time: dtStart},
			DtEnd:        ofxgo.Date{Time: dtEnd},
			Transactions: txns,
		},
		DtAsOf: ofxgo.Date{Time: now},
	}

	return &ofxgo.Response{
		Version: ofxgo.OfxVersion203,
		Signon: ofxgo.SignonResponse{
			Status:   ofxgo.Status{Code: 0, Severity: "INFO"},
			DtServer: ofxgo.Date{Time: now},
			Language: "ENG",
			Org:      ofxgo.String(st.BankID),
		},
		Bank: []ofxgo.Message{stmt},
	}, nil
}

// fitID picks the dedup identifier for one line: the provider transaction ID
// when present, otherwise a deterministic hash of the identifying fields.
func fitID(line model.TransactionRecord) string {
	if line.ID != "" {
		return line.ID
	}
	return id.Transaction(line.ID, line.Date.Format(fitIDDateFormat), line.Amount.String(), line.Memo)
}
