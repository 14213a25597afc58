// Package bqexport mirrors the local ledger into a BigQuery table for
// analysis. Exports are idempotent: rows already present (by content hash)
// are never inserted twice.
package bqexport

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"

	"github.com/rbarbosa/gastos-tracker/internal/model"
)

// TransactionRow is the BigQuery shape of one ledger record.
type TransactionRow struct {
	ContentHash      string                `bigquery:"content_hash"`
	Date             civil.Date            `bigquery:"data"`
	Description      string                `bigquery:"descricao"`
	Amount           float64               `bigquery:"valor"`
	Bank             string                `bigquery:"banco"`
	OriginalCategory string                `bigquery:"categoria_original"`
	Category         string                `bigquery:"categoria"`
	Period           string                `bigquery:"periodo"`
	Notes            string                `bigquery:"observacoes"`
	ProcessedAt      bigquery.NullDateTime `bigquery:"processado_em"`
}

// Exporter pushes net-new ledger records into one BigQuery table.
type Exporter struct {
	project string
	dataset string
	table   string
	log     zerolog.Logger
}

// NewExporter creates an exporter for project.dataset.table.
func NewExporter(project, dataset, table string, log zerolog.Logger) *Exporter {
	return &Exporter{project: project, dataset: dataset, table: table, log: log}
}

// Export inserts the transactions whose content hash is not yet in the table
// and returns how many rows were inserted.
func (e *Exporter) Export(ctx context.Context, txs []model.Transaction) (int, error) {
	if len(txs) == 0 {
		return 0, nil
	}

	client, err := bigquery.NewClient(ctx, e.project)
	if err != nil {
		return 0, fmt.Errorf("bqexport: bigquery client: %w", err)
	}
	defer client.Close()

	return e.exportWithClient(ctx, client, txs)
}

func (e *Exporter) exportWithClient(ctx context.Context, client *bigquery.Client, txs []model.Transaction) (int, error) {
	existing, err := e.existingHashes(ctx, client)
	if err != nil {
		return 0, err
	}

	var rows []*TransactionRow
	for _, tx := range txs {
		if _, ok := existing[tx.Hash]; ok {
			continue
		}
		rows = append(rows, toRow(tx))
	}
	if len(rows) == 0 {
		e.log.Info().Msg("bigquery table already up to date")
		return 0, nil
	}

	table := client.DatasetInProject(e.project, e.dataset).Table(e.table)
	if err := table.Inserter().Put(ctx, rows); err != nil {
		return 0, fmt.Errorf("bqexport: inserting rows: %w", err)
	}

	e.log.Info().Int("linhas", len(rows)).Msg("ledger exported to bigquery")
	return len(rows), nil
}

// existingHashes loads the content hashes already present in the table.
func (e *Exporter) existingHashes(ctx context.Context, client *bigquery.Client) (map[string]struct{}, error) {
	q := client.Query(fmt.Sprintf(
		"SELECT content_hash FROM `%s.%s.%s`", e.project, e.dataset, e.table,
	))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("bqexport: reading existing hashes: %w", err)
	}

	hashes := make(map[string]struct{})
	for {
		var row struct {
			ContentHash string `bigquery:"content_hash"`
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("bqexport: iter next: %w", err)
		}
		hashes[row.ContentHash] = struct{}{}
	}
	return hashes, nil
}

func toRow(tx model.Transaction) *TransactionRow {
	amount, _ := tx.Amount.Float64()
	row := &TransactionRow{
		ContentHash:      tx.Hash,
		Date:             tx.Date,
		Description:      tx.Description,
		Amount:           amount,
		Bank:             string(tx.Bank),
		OriginalCategory: tx.OriginalCategory,
		Category:         tx.Category,
		Period:           tx.Period,
		Notes:            tx.Notes,
	}
	if !tx.ProcessedAt.IsZero() {
		row.ProcessedAt = bigquery.NullDateTime{
			DateTime: civil.DateTimeOf(tx.ProcessedAt.UTC()),
			Valid:    true,
		}
	}
	return row
}
