// Package drive pulls statement CSVs from a Google Drive folder into the
// local statements directory.
package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/avast/retry-go"
	"github.com/rs/zerolog"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

// Source lists and downloads CSV files from one Drive folder. Only files
// absent locally are downloaded; local copies are never overwritten.
type Source struct {
	svc      *drive.Service
	folderID string
	log      zerolog.Logger
}

// NewSource creates a Drive source using application default credentials.
func NewSource(ctx context.Context, folderID string, log zerolog.Logger) (*Source, error) {
	svc, err := drive.NewService(ctx)
	if err != nil {
		return nil, fmt.Errorf("drive: create service: %w", err)
	}
	return &Source{svc: svc, folderID: folderID, log: log}, nil
}

// Sync downloads the folder's CSV files that do not yet exist in destDir and
// returns the names of the downloaded files.
func (s *Source) Sync(ctx context.Context, destDir string) ([]string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("drive: creating dest dir: %w", err)
	}

	files, err := s.listCSVs(ctx)
	if err != nil {
		return nil, err
	}

	var downloaded []string
	for _, f := range files {
		local := filepath.Join(destDir, f.Name)
		if _, err := os.Stat(local); err == nil {
			s.log.Debug().Str("arquivo", f.Name).Msg("already present locally, skipping download")
			continue
		}

		if err := s.download(ctx, f.Id, local); err != nil {
			return downloaded, fmt.Errorf("drive: downloading %s: %w", f.Name, err)
		}
		downloaded = append(downloaded, f.Name)
		s.log.Info().Str("arquivo", f.Name).Msg("statement downloaded from drive")
	}

	return downloaded, nil
}

func (s *Source) listCSVs(ctx context.Context) ([]*drive.File, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType='text/csv' and trashed=false", s.folderID)

	var files []*drive.File
	pageToken := ""
	for {
		call := s.svc.Files.List().
			Q(query).
			Fields("nextPageToken, files(id, name)").
			PageSize(100).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		var page *drive.FileList
		err := retry.Do(
			func() error {
				var err error
				page, err = call.Do()
				return err
			},
			retry.RetryIf(isRateLimited),
			retry.Attempts(3),
			retry.Delay(2*time.Second),
			retry.LastErrorOnly(true),
			retry.Context(ctx),
		)
		if err != nil {
			return nil, fmt.Errorf("drive: listing folder %s: %w", s.folderID, err)
		}

		files = append(files, page.Files...)
		pageToken = page.NextPageToken
		if pageToken == "" {
			return files, nil
		}
	}
}

func (s *Source) download(ctx context.Context, fileID, dest string) error {
	var resp *http.Response
	err := retry.Do(
		func() error {
			var err error
			resp, err = s.svc.Files.Get(fileID).Context(ctx).Download()
			return err
		},
		retry.RetryIf(isRateLimited),
		retry.Attempts(3),
		retry.Delay(2*time.Second),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Write to a temp name first so a failed download never leaves a partial
	// CSV for discovery to pick up.
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}

func isRateLimited(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests
}
