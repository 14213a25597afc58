// Package model defines the canonical transaction shape shared by the
// extraction, dedup, store and classification layers.
package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Bank identifies the statement layout a transaction came from.
type Bank string

const (
	BankInter Bank = "Inter"
	BankC6    Bank = "C6"
)

// ParseBank converts a stored bank tag back into a Bank.
func ParseBank(s string) (Bank, error) {
	switch strings.TrimSpace(s) {
	case string(BankInter):
		return BankInter, nil
	case string(BankC6), "C6 Bank":
		return BankC6, nil
	default:
		return "", fmt.Errorf("unknown bank tag %q", s)
	}
}

// Transaction is one normalized credit-card statement line.
// Date, Description, Amount and Bank are the identity fields; Hash is a pure
// function of them and is the dedup key across runs.
type Transaction struct {
	Date        civil.Date      // purchase date, day granularity
	Description string          // merchant label, trimmed
	Amount      decimal.Decimal // BRL; positive = debit, negative = credit/refund
	Bank        Bank

	// OriginalCategory is the bank's own label, kept for reference only. It
	// never feeds Category and never enters the hash.
	OriginalCategory string

	// Category is the assigned label from the closed vocabulary, or empty
	// while the record is still pending classification. Written at most once.
	Category string

	Period      string    // MM/YYYY of the statement file
	Notes       string    // installment / launch-type info from the source row
	Hash        string    // sha256 hex over the identity fields
	ProcessedAt time.Time // when the record entered the store
}

// Fingerprint computes the content hash over the identity fields. The canonical
// string uses the ISO date, the upper-cased trimmed description, the amount at
// two decimal places and the upper-cased bank tag, so records differing only in
// whitespace or bank-supplied category hash identically.
func Fingerprint(date civil.Date, description string, amount decimal.Decimal, bank Bank) string {
	canonical := fmt.Sprintf("%s|%s|%s|%s",
		date.String(),
		strings.ToUpper(strings.TrimSpace(description)),
		amount.StringFixed(2),
		strings.ToUpper(string(bank)),
	)
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// Stamp fills the derived fields: the content hash and the processing time.
func (t *Transaction) Stamp(now time.Time) {
	t.Hash = Fingerprint(t.Date, t.Description, t.Amount, t.Bank)
	t.ProcessedAt = now
}

// Classified reports whether a category has been assigned.
func (t *Transaction) Classified() bool {
	return t.Category != ""
}
