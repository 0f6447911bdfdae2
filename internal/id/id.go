package id

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Transaction derives a deterministic statement transaction ID from the
// fields that identify a line. Used when the export carries no Transaction
// ID, so repeated conversions of the same file still deduplicate downstream.
func Transaction(nativeID, date, amount, memo string) string {
	h := sha256.Sum256([]byte(strings.Join([]string{nativeID, date, amount, memo}, "\x00")))
	return hex.EncodeToString(h[:16])
}
