package dashboard

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rbarbosa/gastos-tracker/internal/insights"
	"github.com/rbarbosa/gastos-tracker/internal/model"
)

type summaryResponse struct {
	Records       int               `json:"registros"`
	Total         string            `json:"total"`
	AverageTicket string            `json:"ticket_medio"`
	TopCategory   string            `json:"maior_categoria"`
	Unclassified  int               `json:"sem_categoria"`
	ByBank        map[string]string `json:"por_banco"`
}

type bucketEntry struct {
	Label string `json:"label"`
	Total string `json:"total"`
	Count int    `json:"quantidade"`
}

type transactionResponse struct {
	Date             string `json:"data"`
	Description      string `json:"descricao"`
	Amount           string `json:"valor"`
	Bank             string `json:"banco"`
	OriginalCategory string `json:"categoria_original,omitempty"`
	Category         string `json:"categoria,omitempty"`
	Period           string `json:"periodo"`
	Notes            string `json:"observacoes,omitempty"`
	Hash             string `json:"content_hash"`
}

// handleSummary serves GET /api/summary.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	txs, ok := s.loadTransactions(w)
	if !ok {
		return
	}

	sum := insights.BuildSummary(txs)
	resp := summaryResponse{
		Records:       sum.Records,
		Total:         sum.Total.StringFixed(2),
		AverageTicket: sum.AverageTicket.StringFixed(2),
		TopCategory:   sum.TopCategory,
		Unclassified:  sum.Unclassified,
		ByBank:        make(map[string]string),
	}
	for bank, total := range sum.ByBank {
		resp.ByBank[bank] = total.StringFixed(2)
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleCategories serves GET /api/categories.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	txs, ok := s.loadTransactions(w)
	if !ok {
		return
	}

	entries := bucketBy(txs, func(tx model.Transaction) (string, bool) {
		return tx.Category, tx.Classified()
	})
	// Largest spend first.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Total != entries[j].Total {
			return mustDecimal(entries[i].Total).GreaterThan(mustDecimal(entries[j].Total))
		}
		return entries[i].Label < entries[j].Label
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"categorias": entries,
		"count":      len(entries),
	})
}

// handleBanks serves GET /api/banks.
func (s *Server) handleBanks(w http.ResponseWriter, r *http.Request) {
	txs, ok := s.loadTransactions(w)
	if !ok {
		return
	}

	entries := bucketBy(txs, func(tx model.Transaction) (string, bool) {
		return string(tx.Bank), true
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].Label < entries[j].Label })

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"bancos": entries,
		"count":  len(entries),
	})
}

// handleTimeline serves GET /api/timeline. Periods come back in
// chronological order.
func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	txs, ok := s.loadTransactions(w)
	if !ok {
		return
	}

	entries := bucketBy(txs, func(tx model.Transaction) (string, bool) {
		return tx.Period, true
	})
	sort.Slice(entries, func(i, j int) bool {
		return periodSortKey(entries[i].Label) < periodSortKey(entries[j].Label)
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"periodos": entries,
		"count":    len(entries),
	})
}

// handleTransactions serves GET /api/transactions with optional filters:
// categoria, banco, periodo, pendentes=true and limit.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	txs, ok := s.loadTransactions(w)
	if !ok {
		return
	}

	q := r.URL.Query()
	category := q.Get("categoria")
	bank := q.Get("banco")
	period := q.Get("periodo")
	pendingOnly := q.Get("pendentes") == "true"

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	var out []transactionResponse
	for _, tx := range txs {
		if category != "" && !strings.EqualFold(tx.Category, category) {
			continue
		}
		if bank != "" && !strings.EqualFold(string(tx.Bank), bank) {
			continue
		}
		if period != "" && tx.Period != period {
			continue
		}
		if pendingOnly && tx.Classified() {
			continue
		}
		out = append(out, toTransactionResponse(tx))
	}

	// Newest purchases first.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transacoes": out,
		"count":      len(out),
	})
}

func (s *Server) loadTransactions(w http.ResponseWriter) ([]model.Transaction, bool) {
	ledger, err := s.store.Load()
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load ledger")
		writeError(w, http.StatusInternalServerError, "Failed to load ledger")
		return nil, false
	}
	return ledger.Transactions, true
}

func bucketBy(txs []model.Transaction, key func(model.Transaction) (string, bool)) []bucketEntry {
	totals := make(map[string]decimal.Decimal)
	counts := make(map[string]int)
	for _, tx := range txs {
		k, ok := key(tx)
		if !ok {
			continue
		}
		totals[k] = totals[k].Add(tx.Amount)
		counts[k]++
	}

	entries := make([]bucketEntry, 0, len(totals))
	for k, total := range totals {
		entries = append(entries, bucketEntry{
			Label: k,
			Total: total.StringFixed(2),
			Count: counts[k],
		})
	}
	return entries
}

// periodSortKey turns "MM/YYYY" into "YYYY-MM" so lexical order is
// chronological. Unrecognized labels sort last.
func periodSortKey(period string) string {
	parts := strings.SplitN(period, "/", 2)
	if len(parts) != 2 {
		return "~" + period
	}
	return parts[1] + "-" + parts[0]
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}
	}
	return d
}

func toTransactionResponse(tx model.Transaction) transactionResponse {
	return transactionResponse{
		Date:             tx.Date.String(),
		Description:      tx.Description,
		Amount:           tx.Amount.StringFixed(2),
		Bank:             string(tx.Bank),
		OriginalCategory: tx.OriginalCategory,
		Category:         tx.Category,
		Period:           tx.Period,
		Notes:            tx.Notes,
		Hash:             tx.Hash,
	}
}
