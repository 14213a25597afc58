// Package backup uploads timestamped snapshots of the ledger to a GCS bucket.
package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog"
)

const uploadTimeout = 2 * time.Minute

// Uploader writes ledger snapshots into one bucket under backups/.
// It assumes application default credentials are configured.
type Uploader struct {
	bucket string
	log    zerolog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewUploader creates an uploader targeting the given bucket.
func NewUploader(bucket string, log zerolog.Logger) *Uploader {
	return &Uploader{bucket: bucket, log: log, now: time.Now}
}

// ObjectName builds the timestamped object path for one snapshot.
func (u *Uploader) ObjectName(at time.Time) string {
	return fmt.Sprintf("backups/gastos-%s.csv", at.UTC().Format("20060102-150405"))
}

// Snapshot uploads the file at path and returns the object name it was
// stored under.
func (u *Uploader) Snapshot(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("backup: open ledger %q: %w", path, err)
	}
	defer f.Close()

	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("backup: create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	object := u.ObjectName(u.now())
	w := client.Bucket(u.bucket).Object(object).NewWriter(ctx)
	w.ContentType = "text/csv"

	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return "", fmt.Errorf("backup: copy ledger to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("backup: finalize upload: %w", err)
	}

	u.log.Info().
		Str("bucket", u.bucket).
		Str("objeto", object).
		Msg("ledger snapshot stored")
	return object, nil
}
