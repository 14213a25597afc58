package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/rbarbosa/gastos-tracker/internal/model"
)

// Header is the CSV header for gastos.csv.
const Header = "date,description,amount,source_bank,original_category,category,period,notes,content_hash,processed_at"

const (
	numFields      = 10
	colDate        = 0
	colDesc        = 1
	colAmount      = 2
	colBank        = 3
	colOrigCat     = 4
	colCategory    = 5
	colPeriod      = 6
	colNotes       = 7
	colHash        = 8
	colProcessedAt = 9
)

// readRows reads all transactions from a gastos.csv reader.
func readRows(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var txs []model.Transaction
	for i, rec := range records[1:] {
		tx, err := unmarshalRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// writeRows writes the full ledger (header included) to w.
func writeRows(w io.Writer, txs []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, tx := range txs {
		if err := cw.Write(marshalRow(tx)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func marshalRow(tx model.Transaction) []string {
	row := make([]string, numFields)
	row[colDate] = tx.Date.String()
	row[colDesc] = tx.Description
	row[colAmount] = tx.Amount.StringFixed(2)
	row[colBank] = string(tx.Bank)
	row[colOrigCat] = tx.OriginalCategory
	row[colCategory] = tx.Category
	row[colPeriod] = tx.Period
	row[colNotes] = tx.Notes
	row[colHash] = tx.Hash
	if !tx.ProcessedAt.IsZero() {
		row[colProcessedAt] = tx.ProcessedAt.UTC().Format(time.RFC3339)
	}
	return row
}

func unmarshalRow(rec []string) (model.Transaction, error) {
	if len(rec) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(rec))
	}

	date, err := civil.ParseDate(rec[colDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", rec[colDate], err)
	}

	amount, err := decimal.NewFromString(rec[colAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", rec[colAmount], err)
	}

	bank, err := model.ParseBank(rec[colBank])
	if err != nil {
		return model.Transaction{}, err
	}

	var processedAt time.Time
	if rec[colProcessedAt] != "" {
		processedAt, err = time.Parse(time.RFC3339, rec[colProcessedAt])
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing processed_at %q: %w", rec[colProcessedAt], err)
		}
	}

	return model.Transaction{
		Date:             date,
		Description:      rec[colDesc],
		Amount:           amount,
		Bank:             bank,
		OriginalCategory: rec[colOrigCat],
		Category:         rec[colCategory],
		Period:           rec[colPeriod],
		Notes:            rec[colNotes],
		Hash:             rec[colHash],
		ProcessedAt:      processedAt,
	}, nil
}
