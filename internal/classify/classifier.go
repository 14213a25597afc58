// Package classify assigns spending categories to transactions using a
// language model, constrained to the fixed category vocabulary.
package classify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rbarbosa/gastos-tracker/internal/model"
)

// Classifier maps a transaction description to one of the known categories.
type Classifier interface {
	Classify(ctx context.Context, description string) (string, error)
}

// Result summarizes one classification pass over pending transactions.
type Result struct {
	Classified map[string]string // content hash -> category
	Failed     int
}

// ClassifyPending runs the classifier over every transaction without a
// category. A failure on one transaction does not stop the rest; failed
// transactions keep an empty category and are retried on the next run.
func ClassifyPending(ctx context.Context, c Classifier, pending []model.Transaction, log zerolog.Logger) Result {
	res := Result{Classified: make(map[string]string)}

	for _, tx := range pending {
		if err := ctx.Err(); err != nil {
			// Everything not yet classified counts as failed; it stays
			// pending and is retried next run.
			res.Failed = len(pending) - len(res.Classified)
			log.Warn().Err(err).Msg("classification interrupted")
			return res
		}

		category, err := c.Classify(ctx, tx.Description)
		if err != nil {
			res.Failed++
			log.Warn().
				Err(err).
				Str("hash", tx.Hash).
				Str("descricao", tx.Description).
				Msg("classification failed, will retry on next run")
			continue
		}

		clean, ok := model.CleanCategory(category)
		if !ok {
			res.Failed++
			log.Warn().
				Str("hash", tx.Hash).
				Str("categoria", category).
				Msg("model returned unknown category, will retry on next run")
			continue
		}

		res.Classified[tx.Hash] = clean
		log.Debug().
			Str("descricao", tx.Description).
			Str("categoria", clean).
			Msg("transaction classified")
	}

	return res
}
