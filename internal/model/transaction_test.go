package model

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

func d(year int, month time.Month, day int) civil.Date {
	return civil.Date{Year: year, Month: month, Day: day}
}

func TestFingerprint_Deterministic(t *testing.T) {
	amount := decimal.RequireFromString("29.90")
	a := Fingerprint(d(2025, 10, 1), "APPLE COM BILL SAO PAULO BRA", amount, BankInter)
	b := Fingerprint(d(2025, 10, 1), "APPLE COM BILL SAO PAULO BRA", amount, BankInter)
	if a != b {
		t.Errorf("same identity fields produced different hashes: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("expected sha256 hex digest, got %d chars", len(a))
	}
}

func TestFingerprint_IgnoresWhitespaceAndCase(t *testing.T) {
	amount := decimal.RequireFromString("199.09")
	base := Fingerprint(d(2025, 6, 25), "UNIMED GOIANIA", amount, BankC6)

	padded := Fingerprint(d(2025, 6, 25), "  UNIMED GOIANIA  ", amount, BankC6)
	if padded != base {
		t.Error("whitespace padding changed the hash")
	}

	lower := Fingerprint(d(2025, 6, 25), "unimed goiania", amount, BankC6)
	if lower != base {
		t.Error("description case changed the hash")
	}
}

func TestFingerprint_AmountPrecisionStable(t *testing.T) {
	// 29.9 and 29.90 print identically at two decimal places and must
	// therefore hash identically.
	a := Fingerprint(d(2025, 10, 1), "X", decimal.RequireFromString("29.9"), BankInter)
	b := Fingerprint(d(2025, 10, 1), "X", decimal.RequireFromString("29.90"), BankInter)
	if a != b {
		t.Error("equivalent decimal amounts hashed differently")
	}
}

func TestFingerprint_IdentityFieldsMatter(t *testing.T) {
	amount := decimal.RequireFromString("10.00")
	base := Fingerprint(d(2025, 1, 2), "MERCADO", amount, BankInter)

	tests := []struct {
		name string
		hash string
	}{
		{"date", Fingerprint(d(2025, 1, 3), "MERCADO", amount, BankInter)},
		{"description", Fingerprint(d(2025, 1, 2), "FARMACIA", amount, BankInter)},
		{"amount", Fingerprint(d(2025, 1, 2), "MERCADO", decimal.RequireFromString("10.01"), BankInter)},
		{"bank", Fingerprint(d(2025, 1, 2), "MERCADO", amount, BankC6)},
	}
	for _, tt := range tests {
		if tt.hash == base {
			t.Errorf("changing %s did not change the hash", tt.name)
		}
	}
}

func TestStamp(t *testing.T) {
	now := time.Date(2025, 10, 2, 12, 0, 0, 0, time.UTC)
	tx := Transaction{
		Date:        d(2025, 10, 1),
		Description: "APPLE COM BILL SAO PAULO BRA",
		Amount:      decimal.RequireFromString("29.90"),
		Bank:        BankInter,
	}
	tx.Stamp(now)

	want := Fingerprint(tx.Date, tx.Description, tx.Amount, tx.Bank)
	if tx.Hash != want {
		t.Errorf("Stamp hash = %s, want %s", tx.Hash, want)
	}
	if !tx.ProcessedAt.Equal(now) {
		t.Errorf("ProcessedAt = %v, want %v", tx.ProcessedAt, now)
	}
}

func TestParseBank(t *testing.T) {
	tests := []struct {
		in      string
		want    Bank
		wantErr bool
	}{
		{"Inter", BankInter, false},
		{"C6", BankC6, false},
		{" C6 ", BankC6, false},
		{"Nubank", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseBank(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseBank(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseBank(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanCategory(t *testing.T) {
	tests := []struct {
		raw   string
		want  string
		valid bool
	}{
		{"Alimentação", "Alimentação", true},
		{"Alimentacao", "Alimentação", true},
		{"  Saude  ", "Saúde", true},
		{"transporte", "Transporte", true},
		{"Other", "Outros", true},
		{"Investimento", "Investimentos", true},
		{"Cartão de Crédito", "Cartão de Crédito", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, valid := CleanCategory(tt.raw)
		if got != tt.want || valid != tt.valid {
			t.Errorf("CleanCategory(%q) = (%q, %v), want (%q, %v)", tt.raw, got, valid, tt.want, tt.valid)
		}
	}
}
