package model

import "strings"

// Categories is the closed vocabulary for assigned categories. The classifier
// receives it in the prompt and everything it returns is validated against it.
var Categories = []string{
	"Alimentação",
	"Transporte",
	"Moradia",
	"Saúde",
	"Educação",
	"Lazer",
	"Compras",
	"Serviços",
	"Investimentos",
	"Outros",
}

// variants maps common unaccented or foreign spellings the model produces back
// onto the vocabulary.
var variants = map[string]string{
	"alimentacao":  "Alimentação",
	"educacao":     "Educação",
	"saude":        "Saúde",
	"servicos":     "Serviços",
	"investimento": "Investimentos",
	"outro":        "Outros",
	"other":        "Outros",
}

// CleanCategory normalizes a raw classifier label onto the vocabulary.
// It returns the canonical label and whether the label belongs to the
// vocabulary; off-vocabulary labels must be treated as classification
// failures, not stored.
func CleanCategory(raw string) (string, bool) {
	label := strings.TrimSpace(raw)
	if label == "" {
		return "", false
	}
	if mapped, ok := variants[strings.ToLower(label)]; ok {
		label = mapped
	}
	for _, c := range Categories {
		if strings.EqualFold(label, c) {
			return c, true
		}
	}
	return label, false
}
