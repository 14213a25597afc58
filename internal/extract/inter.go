package extract

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rbarbosa/gastos-tracker/internal/model"
)

// InterParser reads Banco Inter statement exports: UTF-8 with a byte-order
// marker, comma-delimited, amounts printed as "R$ 1.234,56".
type InterParser struct{}

var interHeader = []string{"Data", "Lançamento", "Categoria", "Tipo", "Valor"}

const (
	interColDate     = 0
	interColDesc     = 1
	interColCategory = 2
	interColType     = 3
	interColAmount   = 4
)

func (p *InterParser) Bank() model.Bank { return model.BankInter }

func (p *InterParser) Header() []string { return interHeader }

func (p *InterParser) Parse(r io.Reader, file, period string) ([]model.Transaction, []RowError, error) {
	cr := csv.NewReader(stripBOM(r))
	cr.Comma = ','
	cr.FieldsPerRecord = len(interHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	if err := checkHeader(header, interHeader); err != nil {
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

// normalize maps one trimmed Inter row onto the canonical shape. Each row is
// handled independently of its neighbors.
func (p *InterParser) normalize(rec []string, period string) (model.Transaction, error) {
	date, err := parseDate(rec[interColDate])
	if err != nil {
		return model.Transaction{}, err
	}

	amount, err := parseInterAmount(rec[interColAmount])
	if err != nil {
		return model.Transaction{}, err
	}

	if rec[interColDesc] == "" {
		return model.Transaction{}, errEmptyDescription
	}

	return model.Transaction{
		Date:             date,
		Description:      rec[interColDesc],
		Amount:           amount,
		Bank:             model.BankInter,
		OriginalCategory: rec[interColCategory],
		Period:           period,
		Notes:            fmt.Sprintf("Tipo: %s", rec[interColType]),
	}, nil
}

// parseInterAmount converts "R$ 29,90" (optionally signed, with thousands
// dots) into an exact decimal.
func parseInterAmount(raw string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(raw, "R$", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrAmountParse, raw)
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrAmountParse, raw)
	}
	return amount, nil
}

// stripBOM drops a leading UTF-8 byte-order marker if present.
func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	lead, err := br.Peek(3)
	if err == nil && lead[0] == 0xEF && lead[1] == 0xBB && lead[2] == 0xBF {
		br.Discard(3)
	}
	return br
}
