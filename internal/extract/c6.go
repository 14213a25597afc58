package extract

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/rbarbosa/gastos-tracker/internal/model"
)

// C6Parser reads C6 Bank statement exports: plain UTF-8, semicolon-delimited,
// amounts already using a period decimal separator.
type C6Parser struct{}

var c6Header = []string{
	"Data de Compra",
	"Nome no Cartão",
	"Final do Cartão",
	"Categoria",
	"Descrição",
	"Parcela",
	"Valor (em US$)",
	"Cotação (em R$)",
	"Valor (em R$)",
}

const (
	c6ColDate        = 0
	c6ColCardholder  = 1
	c6ColCardTail    = 2
	c6ColCategory    = 3
	c6ColDesc        = 4
	c6ColInstallment = 5
	c6ColAmountBRL   = 8
)

func (p *C6Parser) Bank() model.Bank { return model.BankC6 }

func (p *C6Parser) Header() []string { return c6Header }

func (p *C6Parser) Parse(r io.Reader, file, period string) ([]model.Transaction, []RowError, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = len(c6Header)

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	if err := checkHeader(header, c6Header); err != nil {
		return nil, nil, err
	}

	var (
		txs     []model.Transaction
		rowErrs []RowError
	)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			rowErrs = append(rowErrs, RowError{File: file, Line: line, Err: err})
			continue
		}

		tx, err := p.normalize(trimFields(rec), period)
		if err != nil {
			rowErrs = append(rowErrs, RowError{File: file, Line: line, Err: err})
			continue
		}
		txs = append(txs, tx)
	}
	return txs, rowErrs, nil
}

// normalize maps one trimmed C6 row onto the canonical shape. Only the
// Descrição column feeds the description; cardholder name and card tail are
// never part of the record identity. The BRL amount keeps its sign: negative
// values are credits/refunds.
func (p *C6Parser) normalize(rec []string, period string) (model.Transaction, error) {
	date, err := parseDate(rec[c6ColDate])
	if err != nil {
		return model.Transaction{}, err
	}

	amount, err := decimal.NewFromString(rec[c6ColAmountBRL])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%w: %q", ErrAmountParse, rec[c6ColAmountBRL])
	}

	if rec[c6ColDesc] == "" {
		return model.Transaction{}, errEmptyDescription
	}

	return model.Transaction{
		Date:             date,
		Description:      rec[c6ColDesc],
		Amount:           amount,
		Bank:             model.BankC6,
		OriginalCategory: rec[c6ColCategory],
		Period:           period,
		Notes:            fmt.Sprintf("Parcela: %s", rec[c6ColInstallment]),
	}, nil
}
