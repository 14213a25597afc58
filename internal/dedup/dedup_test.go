package dedup

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/rbarbosa/gastos-tracker/internal/model"
)

func tx(t *testing.T, day int, desc, amount string) model.Transaction {
	t.Helper()
	out := model.Transaction{
		Date:        civil.Date{Year: 2025, Month: 10, Day: day},
		Description: desc,
		Amount:      decimal.RequireFromString(amount),
		Bank:        model.BankInter,
	}
	out.Stamp(time.Now())
	return out
}

func TestFilter_AgainstStore(t *testing.T) {
	existing := tx(t, 1, "APPLE COM BILL", "29.90")
	batch := []model.Transaction{
		tx(t, 1, "APPLE COM BILL", "29.90"), // already in the store
		tx(t, 2, "IFOOD", "54.30"),
	}

	fresh, dupes := Filter(batch, KnownHashes([]model.Transaction{existing}))
	if len(fresh) != 1 || fresh[0].Description != "IFOOD" {
		t.Errorf("fresh = %+v, want only IFOOD", fresh)
	}
	if len(dupes) != 1 || dupes[0].Description != "APPLE COM BILL" {
		t.Errorf("dupes = %+v, want only APPLE COM BILL", dupes)
	}
}

func TestFilter_WithinBatchFirstWins(t *testing.T) {
	first := tx(t, 1, "UBER", "18.00")
	second := tx(t, 1, "UBER", "18.00")
	second.OriginalCategory = "Transporte" // non-identity field, same hash

	fresh, dupes := Filter([]model.Transaction{first, second}, nil)
	if len(fresh) != 1 {
		t.Fatalf("expected 1 fresh record, got %d", len(fresh))
	}
	if fresh[0].OriginalCategory != "" {
		t.Error("first occurrence must win")
	}
	if len(dupes) != 1 {
		t.Errorf("expected 1 suppressed duplicate, got %d", len(dupes))
	}
}

func TestFilter_SameFileTwiceIsIdempotent(t *testing.T) {
	batch := []model.Transaction{
		tx(t, 1, "MERCADO", "120.00"),
		tx(t, 2, "FARMACIA", "36.40"),
	}

	fresh, _ := Filter(batch, nil)
	again, dupes := Filter(batch, KnownHashes(fresh))
	if len(again) != 0 {
		t.Errorf("second ingestion of the same batch must add nothing, got %d", len(again))
	}
	if len(dupes) != len(batch) {
		t.Errorf("expected %d duplicates, got %d", len(batch), len(dupes))
	}
}

func TestFilter_PreservesOrderAndInput(t *testing.T) {
	known := map[string]struct{}{"somehash": {}}
	batch := []model.Transaction{
		tx(t, 3, "C", "3.00"),
		tx(t, 1, "A", "1.00"),
		tx(t, 2, "B", "2.00"),
	}

	fresh, _ := Filter(batch, known)
	if len(fresh) != 3 {
		t.Fatalf("expected 3 fresh, got %d", len(fresh))
	}
	for i, want := range []string{"C", "A", "B"} {
		if fresh[i].Description != want {
			t.Errorf("order not preserved at %d: got %s want %s", i, fresh[i].Description, want)
		}
	}
	if len(known) != 1 {
		t.Error("known set must not be mutated")
	}
}
