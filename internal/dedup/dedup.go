// Package dedup filters a batch of normalized transactions against the
// content hashes already in the store and against earlier records in the same
// batch, so re-submitting a statement file is idempotent.
package dedup

import "github.com/rbarbosa/gastos-tracker/internal/model"

// Filter returns the subset of batch whose hash is neither in known nor seen
// earlier in the batch, plus the suppressed duplicates. First occurrence wins;
// later same-hash rows are dropped silently, not errored. Input order is
// preserved and known is not modified.
func Filter(batch []model.Transaction, known map[string]struct{}) (fresh, dupes []model.Transaction) {
	seen := make(map[string]struct{}, len(known)+len(batch))
	for h := range known {
		seen[h] = struct{}{}
	}

	for _, tx := range batch {
		if _, dup := seen[tx.Hash]; dup {
			dupes = append(dupes, tx)
			continue
		}
		seen[tx.Hash] = struct{}{}
		fresh = append(fresh, tx)
	}
	return fresh, dupes
}

// KnownHashes builds the hash set of an existing ledger.
func KnownHashes(txs []model.Transaction) map[string]struct{} {
	known := make(map[string]struct{}, len(txs))
	for _, tx := range txs {
		known[tx.Hash] = struct{}{}
	}
	return known
}
