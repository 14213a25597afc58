// Package pipeline orchestrates one ingestion run: discover statement files,
// parse them, drop duplicates, merge into the ledger and classify what is new.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rbarbosa/gastos-tracker/internal/classify"
	"github.com/rbarbosa/gastos-tracker/internal/dedup"
	"github.com/rbarbosa/gastos-tracker/internal/extract"
	"github.com/rbarbosa/gastos-tracker/internal/model"
	"github.com/rbarbosa/gastos-tracker/internal/store"
)

// Source fetches statement files from a remote location into the local
// statements directory before discovery runs.
type Source interface {
	Sync(ctx context.Context, destDir string) (downloaded []string, err error)
}

// Snapshotter uploads a copy of the ledger after a successful merge.
type Snapshotter interface {
	Snapshot(ctx context.Context, path string) (object string, err error)
}

// Runner wires the stages of an ingestion run. Classifier, Source and
// Snapshotter are optional; a nil value disables that stage.
type Runner struct {
	Store       *store.Store
	FaturasDir  string
	Classifier  classify.Classifier
	Source      Source
	Snapshotter Snapshotter
	Log         zerolog.Logger
}

// FileReport records the outcome for one statement file.
type FileReport struct {
	Name    string
	Rows    int
	BadRows int
	Err     error
}

// Report summarizes one ingestion run.
type Report struct {
	RunID            string
	Downloaded       []string
	Files            []FileReport
	SkippedNames     []string
	AlreadyProcessed int
	NewRecords       int
	Duplicates       int
	Classified       int
	ClassifyFailed   int
	SnapshotObject   string
}

// FilesFailed counts the files that could not be parsed at all.
func (r *Report) FilesFailed() int {
	n := 0
	for _, f := range r.Files {
		if f.Err != nil {
			n++
		}
	}
	return n
}

// Run executes one full ingestion pass. Concurrent runs against the same
// data directory are rejected by the store lock.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	log := r.Log.With().Str("run_id", report.RunID).Logger()

	release, err := r.Store.Lock()
	if err != nil {
		return nil, err
	}
	defer release()

	if r.Source != nil {
		downloaded, err := r.Source.Sync(ctx, r.FaturasDir)
		if err != nil {
			return nil, fmt.Errorf("syncing remote statements: %w", err)
		}
		report.Downloaded = downloaded
		log.Info().Int("baixados", len(downloaded)).Msg("remote statements synced")
	}

	fresh, processedNames, err := r.ingest(ctx, log, report)
	if err != nil {
		return nil, err
	}

	ledger, err := r.Store.Load()
	if err != nil {
		return nil, err
	}

	if len(fresh) > 0 {
		if err := r.Store.Merge(ledger, fresh); err != nil {
			return nil, err
		}
	}
	if len(processedNames) > 0 {
		if err := r.Store.MarkProcessed(processedNames); err != nil {
			return nil, err
		}
	}
	log.Info().
		Int("novos", report.NewRecords).
		Int("duplicados", report.Duplicates).
		Msg("ledger merged")

	if r.Classifier != nil {
		if err := r.classifyPending(ctx, log, report); err != nil {
			return nil, err
		}
	}

	if r.Snapshotter != nil && report.NewRecords > 0 {
		object, err := r.Snapshotter.Snapshot(ctx, r.Store.Path())
		if err != nil {
			// Backup failure does not invalidate the merge.
			log.Warn().Err(err).Msg("ledger snapshot failed")
		} else {
			report.SnapshotObject = object
			log.Info().Str("objeto", object).Msg("ledger snapshot uploaded")
		}
	}

	return report, nil
}

// ingest discovers and parses the unprocessed statement files, and filters
// the parsed rows against the ledger. It returns the stamped net-new
// transactions and the names of the files that parsed successfully.
func (r *Runner) ingest(ctx context.Context, log zerolog.Logger, report *Report) ([]model.Transaction, []string, error) {
	files, skipped, err := extract.Discover(r.FaturasDir)
	if err != nil {
		return nil, nil, err
	}
	report.SkippedNames = skipped
	for _, name := range skipped {
		log.Warn().Str("arquivo", name).Msg("csv matches no known statement layout, skipping")
	}

	done, err := r.Store.ProcessedFiles()
	if err != nil {
		return nil, nil, err
	}

	var (
		batch          []model.Transaction
		processedNames []string
	)
	for _, sf := range files {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if _, ok := done[sf.Name]; ok {
			report.AlreadyProcessed++
			log.Debug().Str("arquivo", sf.Name).Msg("statement already processed, skipping")
			continue
		}

		txs, rowErrs, err := extract.ParseFile(sf)
		if err != nil {
			// The file stays unmarked and is retried on the next run.
			report.Files = append(report.Files, FileReport{Name: sf.Name, Err: err})
			log.Error().Err(err).Str("arquivo", sf.Name).Msg("statement failed to parse")
			continue
		}
		for _, re := range rowErrs {
			log.Warn().Err(re.Err).Str("arquivo", re.File).Int("linha", re.Line).Msg("row skipped")
		}

		report.Files = append(report.Files, FileReport{Name: sf.Name, Rows: len(txs), BadRows: len(rowErrs)})
		processedNames = append(processedNames, sf.Name)
		batch = append(batch, txs...)
		log.Info().Str("arquivo", sf.Name).Int("linhas", len(txs)).Msg("statement parsed")
	}

	now := time.Now().UTC()
	for i := range batch {
		batch[i].Stamp(now)
	}

	ledger, err := r.Store.Load()
	if err != nil {
		return nil, nil, err
	}

	fresh, dupes := dedup.Filter(batch, dedup.KnownHashes(ledger.Transactions))
	report.NewRecords = len(fresh)
	report.Duplicates = len(dupes)
	return fresh, processedNames, nil
}

func (r *Runner) classifyPending(ctx context.Context, log zerolog.Logger, report *Report) error {
	ledger, err := r.Store.Load()
	if err != nil {
		return err
	}

	pending := ledger.Pending()
	if len(pending) == 0 {
		return nil
	}
	log.Info().Int("pendentes", len(pending)).Msg("classifying pending transactions")

	res := classify.ClassifyPending(ctx, r.Classifier, pending, log)
	report.ClassifyFailed = res.Failed

	applied, err := r.Store.ApplyCategories(res.Classified)
	if err != nil {
		return err
	}
	report.Classified = applied
	return nil
}
