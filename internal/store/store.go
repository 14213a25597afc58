// Package store persists the normalized transaction ledger as a tabular CSV
// file, plus the auxiliary state an ingestion run needs: the list of already
// ingested statement files and a run lock.
//
// Writes are atomic with respect to a run: the ledger is rewritten to a
// temporary file in the same directory and renamed over the old one, so a
// crash never leaves a half-written store. The design assumes a single run at
// a time; the lock file only exists to fail loudly if that assumption breaks.
package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rbarbosa/gastos-tracker/internal/model"
)

const (
	ledgerFile    = "gastos.csv"
	processedFile = "processed_files.txt"
	lockFile      = ".gastos.lock"
)

// Store is a handle on the data directory holding the ledger.
type Store struct {
	dir string
}

// Ledger is the persisted aggregate of all normalized transactions. It is
// loaded explicitly, passed into merge operations and written back; nothing
// holds implicit global references to it.
type Ledger struct {
	Transactions []model.Transaction
}

// Open returns a store rooted at dir, creating the directory if needed.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Path returns the ledger file path.
func (s *Store) Path() string { return filepath.Join(s.dir, ledgerFile) }

// Load reads the full ledger. A missing file is an empty ledger, created on
// the first merge.
func (s *Store) Load() (*Ledger, error) {
	f, err := os.Open(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return &Ledger{}, nil
		}
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	txs, err := readRows(f)
	if err != nil {
		return nil, err
	}
	return &Ledger{Transactions: txs}, nil
}

// Merge appends fresh records to the ledger and commits it. Prior rows and
// their assigned categories are preserved unchanged; either the whole batch
// is committed or none of it.
func (s *Store) Merge(ledger *Ledger, fresh []model.Transaction) error {
	ledger.Transactions = append(ledger.Transactions, fresh...)
	return s.save(ledger.Transactions)
}

// ApplyCategories writes assigned categories back to the ledger, keyed by
// content hash. Records that already have a category are never overwritten.
// Returns how many records were updated.
func (s *Store) ApplyCategories(assignments map[string]string) (int, error) {
	ledger, err := s.Load()
	if err != nil {
		return 0, err
	}

	applied := 0
	for i := range ledger.Transactions {
		tx := &ledger.Transactions[i]
		if tx.Classified() {
			continue
		}
		if category, ok := assignments[tx.Hash]; ok && category != "" {
			tx.Category = category
			applied++
		}
	}
	if applied == 0 {
		return 0, nil
	}
	if err := s.save(ledger.Transactions); err != nil {
		return 0, err
	}
	return applied, nil
}

// Pending returns the records still lacking an assigned category.
func (l *Ledger) Pending() []model.Transaction {
	var out []model.Transaction
	for _, tx := range l.Transactions {
		if !tx.Classified() {
			out = append(out, tx)
		}
	}
	return out
}

// save writes the whole ledger atomically: temp file in the same directory,
// fsync, rename.
func (s *Store) save(txs []model.Transaction) error {
	tmp, err := os.CreateTemp(s.dir, ".gastos-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp ledger: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := writeRows(tmp, txs); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp ledger: %w", err)
	}
	if err := os.Rename(tmpName, s.Path()); err != nil {
		return fmt.Errorf("committing ledger: %w", err)
	}
	return nil
}

// ProcessedFiles returns the set of statement file names already ingested.
func (s *Store) ProcessedFiles() (map[string]struct{}, error) {
	f, err := os.Open(filepath.Join(s.dir, processedFile))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]struct{}{}, nil
		}
		return nil, fmt.Errorf("opening processed-files marker: %w", err)
	}
	defer f.Close()

	out := map[string]struct{}{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		name := strings.TrimSpace(sc.Text())
		if name != "" {
			out[name] = struct{}{}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading processed-files marker: %w", err)
	}
	return out, nil
}

// MarkProcessed records statement file names as fully ingested.
func (s *Store) MarkProcessed(names []string) error {
	if len(names) == 0 {
		return nil
	}
	f, err := os.OpenFile(filepath.Join(s.dir, processedFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening processed-files marker: %w", err)
	}
	defer f.Close()

	for _, name := range names {
		if _, err := fmt.Fprintln(f, name); err != nil {
			return fmt.Errorf("appending to processed-files marker: %w", err)
		}
	}
	return f.Sync()
}

// Lock acquires the single-run lock. It fails with a clear error when another
// run holds it, instead of risking a corrupted store. The returned release
// function removes the lock and is safe on all exit paths.
func (s *Store) Lock() (release func(), err error) {
	path := filepath.Join(s.dir, lockFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			holder, _ := os.ReadFile(path)
			return nil, fmt.Errorf("another ingestion run appears to be in progress (lock %s held by pid %s); remove the lock file if that run crashed", path, strings.TrimSpace(string(holder)))
		}
		return nil, fmt.Errorf("acquiring run lock: %w", err)
	}
	fmt.Fprintf(f, "%d\n", os.Getpid())
	f.Close()

	return func() { os.Remove(path) }, nil
}

// Stats summarizes the ledger for the end-of-run report and the status
// command.
type Stats struct {
	Records      int
	Total        decimal.Decimal
	ByBank       map[model.Bank]int
	Periods      []string
	Unclassified int
}

// Summarize computes ledger statistics.
func (l *Ledger) Summarize() Stats {
	st := Stats{ByBank: map[model.Bank]int{}}
	periods := map[string]struct{}{}
	for _, tx := range l.Transactions {
		st.Records++
		st.Total = st.Total.Add(tx.Amount)
		st.ByBank[tx.Bank]++
		if tx.Period != "" {
			periods[tx.Period] = struct{}{}
		}
		if !tx.Classified() {
			st.Unclassified++
		}
	}
	for p := range periods {
		st.Periods = append(st.Periods, p)
	}
	sort.Strings(st.Periods)
	return st
}
