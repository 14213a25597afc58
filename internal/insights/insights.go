// Package insights aggregates spending data and produces a short
// model-written analysis of the ledger.
package insights

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rbarbosa/gastos-tracker/internal/model"
)

// Summary holds the aggregates computed from the ledger.
type Summary struct {
	Records       int
	Total         decimal.Decimal
	AverageTicket decimal.Decimal
	ByCategory    map[string]decimal.Decimal
	ByBank        map[string]decimal.Decimal
	ByPeriod      map[string]decimal.Decimal
	TopCategory   string
	Unclassified  int
}

// BuildSummary computes spending aggregates over the given transactions.
func BuildSummary(txs []model.Transaction) Summary {
	s := Summary{
		ByCategory: make(map[string]decimal.Decimal),
		ByBank:     make(map[string]decimal.Decimal),
		ByPeriod:   make(map[string]decimal.Decimal),
	}

	for _, tx := range txs {
		s.Records++
		s.Total = s.Total.Add(tx.Amount)
		s.ByBank[string(tx.Bank)] = s.ByBank[string(tx.Bank)].Add(tx.Amount)
		s.ByPeriod[tx.Period] = s.ByPeriod[tx.Period].Add(tx.Amount)

		if tx.Classified() {
			s.ByCategory[tx.Category] = s.ByCategory[tx.Category].Add(tx.Amount)
		} else {
			s.Unclassified++
		}
	}

	if s.Records > 0 {
		s.AverageTicket = s.Total.Div(decimal.NewFromInt(int64(s.Records))).Round(2)
	}

	s.TopCategory = topCategory(s.ByCategory)
	return s
}

func topCategory(byCategory map[string]decimal.Decimal) string {
	var top string
	var max decimal.Decimal
	for cat, total := range byCategory {
		if top == "" || total.GreaterThan(max) || (total.Equal(max) && cat < top) {
			top = cat
			max = total
		}
	}
	return top
}

// Render formats the summary as a prompt-friendly plain text report.
func Render(s Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Registros: %d\n", s.Records)
	fmt.Fprintf(&b, "Total gasto: R$ %s\n", s.Total.StringFixed(2))
	fmt.Fprintf(&b, "Ticket médio: R$ %s\n", s.AverageTicket.StringFixed(2))
	if s.TopCategory != "" {
		fmt.Fprintf(&b, "Maior categoria: %s (R$ %s)\n", s.TopCategory, s.ByCategory[s.TopCategory].StringFixed(2))
	}
	if s.Unclassified > 0 {
		fmt.Fprintf(&b, "Sem categoria: %d\n", s.Unclassified)
	}

	b.WriteString("\nGastos por categoria:\n")
	for _, cat := range sortedKeys(s.ByCategory) {
		fmt.Fprintf(&b, "- %s: R$ %s\n", cat, s.ByCategory[cat].StringFixed(2))
	}

	b.WriteString("\nGastos por banco:\n")
	for _, bank := range sortedKeys(s.ByBank) {
		fmt.Fprintf(&b, "- %s: R$ %s\n", bank, s.ByBank[bank].StringFixed(2))
	}

	b.WriteString("\nGastos por período:\n")
	for _, period := range sortedKeys(s.ByPeriod) {
		fmt.Fprintf(&b, "- %s: R$ %s\n", period, s.ByPeriod[period].StringFixed(2))
	}

	return b.String()
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
