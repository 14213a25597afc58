// Package extract reads bank statement CSV files and normalizes their rows
// into canonical transactions. Each supported bank layout has its own parser
// behind a common interface; the expected header is the authoritative
// discriminator and a mismatch fails the file instead of misaligning columns.
package extract

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/rbarbosa/gastos-tracker/internal/model"
)

var (
	// ErrSchemaMismatch means the file header does not match the declared
	// bank layout. Fatal for the file.
	ErrSchemaMismatch = errors.New("statement header does not match expected layout")

	// ErrDateParse means a row's date field is not DD/MM/YYYY. Fatal for the
	// row only.
	ErrDateParse = errors.New("unparseable transaction date")

	// ErrAmountParse means a row's amount field is not a valid signed
	// decimal after bank-specific cleanup. Fatal for the row only.
	ErrAmountParse = errors.New("unparseable transaction amount")

	errEmptyDescription = errors.New("empty description")
)

// RowError records a row that was skipped, with enough context to report it.
type RowError struct {
	File string
	Line int // 1-based line in the file, header = 1
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("%s line %d: %v", e.File, e.Line, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// StatementParser converts one bank's statement file into normalized
// transactions. Parse validates the header, then normalizes each data row
// independently; rows with unparseable critical fields are reported in the
// returned RowError slice and the rest of the file is still processed.
type StatementParser interface {
	Bank() model.Bank
	Header() []string
	Parse(r io.Reader, file, period string) ([]model.Transaction, []RowError, error)
}

// ParserFor returns the parser for a bank layout.
func ParserFor(bank model.Bank) (StatementParser, error) {
	switch bank {
	case model.BankInter:
		return &InterParser{}, nil
	case model.BankC6:
		return &C6Parser{}, nil
	default:
		return nil, fmt.Errorf("no parser for bank %q", bank)
	}
}

const dateLayout = "02/01/2006"

// parseDate parses a DD/MM/YYYY statement date into a day-granularity date.
func parseDate(s string) (civil.Date, error) {
	ts, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return civil.Date{}, fmt.Errorf("%w: %q", ErrDateParse, s)
	}
	return civil.DateOf(ts), nil
}

// checkHeader compares a trimmed header row against the expected field list.
func checkHeader(got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("%w: got %d fields, want %d", ErrSchemaMismatch, len(got), len(want))
	}
	for i := range want {
		if strings.TrimSpace(got[i]) != want[i] {
			return fmt.Errorf("%w: field %d is %q, want %q", ErrSchemaMismatch, i+1, strings.TrimSpace(got[i]), want[i])
		}
	}
	return nil
}

func trimFields(rec []string) []string {
	out := make([]string, len(rec))
	for i, f := range rec {
		out[i] = strings.TrimSpace(f)
	}
	return out
}
