package extract

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cloud.google.com/go/civil"

	"github.com/rbarbosa/gastos-tracker/internal/model"
)

const interSample = "\ufeff" + `Data,Lançamento,Categoria,Tipo,Valor
"01/10/2025","APPLE COM BILL SAO PAULO BRA","COMPRAS","Compra à vista","R$ 29,90"
"05/10/2025","ESTORNO IFOOD","ALIMENTACAO","Estorno","-R$ 15,50"
`

const c6Sample = `Data de Compra;Nome no Cartão;Final do Cartão;Categoria;Descrição;Parcela;Valor (em US$);Cotação (em R$);Valor (em R$)
25/06/2025;HERBERTH JUNIOR;7509;Seguro;UNIMED GOIANIA;4/4;0;0;199.09
26/06/2025;HERBERTH JUNIOR;7509;Lazer;ESTORNO CINEMA;Única;0;0;-45.00
`

func TestInterParser_Parse(t *testing.T) {
	p := &InterParser{}
	txs, rowErrs, err := p.Parse(strings.NewReader(interSample), "fatura-inter-2025-10.csv", "10/2025")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(rowErrs) != 0 {
		t.Fatalf("unexpected row errors: %v", rowErrs)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}

	tx := txs[0]
	if got, want := tx.Date, (civil.Date{Year: 2025, Month: 10, Day: 1}); got != want {
		t.Errorf("date = %v, want %v", got, want)
	}
	if tx.Description != "APPLE COM BILL SAO PAULO BRA" {
		t.Errorf("description = %q", tx.Description)
	}
	if tx.Amount.StringFixed(2) != "29.90" {
		t.Errorf("amount = %s, want 29.90", tx.Amount.StringFixed(2))
	}
	if tx.Bank != model.BankInter {
		t.Errorf("bank = %q, want %q", tx.Bank, model.BankInter)
	}
	if tx.OriginalCategory != "COMPRAS" {
		t.Errorf("original category = %q, want COMPRAS", tx.OriginalCategory)
	}
	if tx.Category != "" {
		t.Errorf("assigned category must start unset, got %q", tx.Category)
	}
	if tx.Period != "10/2025" {
		t.Errorf("period = %q, want 10/2025", tx.Period)
	}

	// Refund line keeps its negative sign.
	if txs[1].Amount.StringFixed(2) != "-15.50" {
		t.Errorf("refund amount = %s, want -15.50", txs[1].Amount.StringFixed(2))
	}
}

func TestInterParser_AmountRoundTrip(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"R$ 29,90", "29.90"},
		{"R$ 1.234,56", "1234.56"},
		{"-R$ 10,00", "-10.00"},
		{"R$ 0,99", "0.99"},
	}
	for _, tt := range tests {
		got, err := parseInterAmount(tt.raw)
		if err != nil {
			t.Errorf("parseInterAmount(%q) error: %v", tt.raw, err)
			continue
		}
		if got.StringFixed(2) != tt.want {
			t.Errorf("parseInterAmount(%q) = %s, want %s", tt.raw, got.StringFixed(2), tt.want)
		}
	}
}

func TestInterParser_BadAmount(t *testing.T) {
	input := "\ufeff" + `Data,Lançamento,Categoria,Tipo,Valor
"01/10/2025","LOJA","COMPRAS","Compra à vista","R$ abc"
"02/10/2025","MERCADO","COMPRAS","Compra à vista","R$ 5,00"
`
	p := &InterParser{}
	txs, rowErrs, err := p.Parse(strings.NewReader(input), "f.csv", "10/2025")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(rowErrs) != 1 {
		t.Fatalf("expected 1 row error, got %d", len(rowErrs))
	}
	if !errors.Is(rowErrs[0], ErrAmountParse) {
		t.Errorf("row error = %v, want ErrAmountParse", rowErrs[0])
	}
	if rowErrs[0].Line != 2 {
		t.Errorf("row error line = %d, want 2", rowErrs[0].Line)
	}
	// The bad row must not stop the rest of the file.
	if len(txs) != 1 || txs[0].Description != "MERCADO" {
		t.Errorf("expected the remaining valid row to survive, got %+v", txs)
	}
}

func TestInterParser_BadDate(t *testing.T) {
	input := "\ufeff" + `Data,Lançamento,Categoria,Tipo,Valor
"2025-10-01","LOJA","COMPRAS","Compra à vista","R$ 5,00"
`
	p := &InterParser{}
	_, rowErrs, err := p.Parse(strings.NewReader(input), "f.csv", "10/2025")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(rowErrs) != 1 || !errors.Is(rowErrs[0], ErrDateParse) {
		t.Fatalf("expected a single ErrDateParse, got %v", rowErrs)
	}
}

func TestC6Parser_Parse(t *testing.T) {
	p := &C6Parser{}
	txs, rowErrs, err := p.Parse(strings.NewReader(c6Sample), "Fatura_2025-06-27.csv", "06/2025")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(rowErrs) != 0 {
		t.Fatalf("unexpected row errors: %v", rowErrs)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}

	tx := txs[0]
	if got, want := tx.Date, (civil.Date{Year: 2025, Month: 6, Day: 25}); got != want {
		t.Errorf("date = %v, want %v", got, want)
	}
	// Only the Descrição column feeds the description; the cardholder name
	// and card tail must be excluded.
	if tx.Description != "UNIMED GOIANIA" {
		t.Errorf("description = %q, want UNIMED GOIANIA", tx.Description)
	}
	if strings.Contains(tx.Description, "HERBERTH") || strings.Contains(tx.Description, "7509") {
		t.Errorf("description leaked cardholder fields: %q", tx.Description)
	}
	if tx.Amount.StringFixed(2) != "199.09" {
		t.Errorf("amount = %s, want 199.09", tx.Amount.StringFixed(2))
	}
	if tx.Bank != model.BankC6 {
		t.Errorf("bank = %q, want %q", tx.Bank, model.BankC6)
	}
	if tx.OriginalCategory != "Seguro" {
		t.Errorf("original category = %q, want Seguro", tx.OriginalCategory)
	}

	// Pre-signed credit preserved as-is.
	if txs[1].Amount.StringFixed(2) != "-45.00" {
		t.Errorf("credit amount = %s, want -45.00", txs[1].Amount.StringFixed(2))
	}
}

func TestParsers_SchemaMismatch(t *testing.T) {
	tests := []struct {
		name   string
		parser StatementParser
		input  string
	}{
		{
			name:   "inter header fed to c6 parser",
			parser: &C6Parser{},
			input:  "Data,Lançamento,Categoria,Tipo,Valor\n",
		},
		{
			name:   "c6 header fed to inter parser",
			parser: &InterParser{},
			input:  c6Sample,
		},
		{
			name:   "reordered inter columns",
			parser: &InterParser{},
			input:  "\ufeff" + "Lançamento,Data,Categoria,Tipo,Valor\n",
		},
		{
			name:   "empty file",
			parser: &InterParser{},
			input:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs, _, err := tt.parser.Parse(strings.NewReader(tt.input), "f.csv", "01/2025")
			if !errors.Is(err, ErrSchemaMismatch) {
				t.Errorf("err = %v, want ErrSchemaMismatch", err)
			}
			if len(txs) != 0 {
				t.Errorf("no rows must be ingested on schema mismatch, got %d", len(txs))
			}
		})
	}
}

func TestInterParser_WithoutBOM(t *testing.T) {
	// The BOM is stripped when present but its absence is fine too.
	p := &InterParser{}
	txs, _, err := p.Parse(strings.NewReader(strings.TrimPrefix(interSample, "\ufeff")), "f.csv", "10/2025")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
}

func TestInterParser_TrimsWhitespace(t *testing.T) {
	input := "\ufeff" + `Data,Lançamento,Categoria,Tipo,Valor
" 01/10/2025 ","  LOJA X  "," COMPRAS ","Compra à vista"," R$ 5,00 "
`
	p := &InterParser{}
	txs, rowErrs, err := p.Parse(strings.NewReader(input), "f.csv", "10/2025")
	if err != nil || len(rowErrs) != 0 {
		t.Fatalf("Parse failed: err=%v rowErrs=%v", err, rowErrs)
	}
	if txs[0].Description != "LOJA X" {
		t.Errorf("description not trimmed: %q", txs[0].Description)
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"fatura-inter-2025-10.csv",
		"Fatura_2025-06-27.csv",
		"notas.csv",
		"leiame.txt",
	}
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files, skipped, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 recognized files, got %d", len(files))
	}
	// Sorted by name: Fatura_... before fatura-inter-... (uppercase first).
	if files[0].Bank != model.BankC6 || files[0].Period != "06/2025" {
		t.Errorf("c6 file = %+v", files[0])
	}
	if files[1].Bank != model.BankInter || files[1].Period != "10/2025" {
		t.Errorf("inter file = %+v", files[1])
	}
	if len(skipped) != 1 || skipped[0] != "notas.csv" {
		t.Errorf("skipped = %v, want [notas.csv]", skipped)
	}
}

func TestDiscover_MissingDir(t *testing.T) {
	files, skipped, err := Discover(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("missing dir should not error, got %v", err)
	}
	if files != nil || skipped != nil {
		t.Error("missing dir should yield no files")
	}
}
