package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

var ErrUploadDisabled = errors.New("snapshot upload is not configured")

type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader) (location string, err error)
}

type Snapshotter struct {
	db       *sql.DB
	uploader Uploader
	logger   zerolog.Logger
}

// New returns a Snapshotter. uploader may be nil, in which case Upload reports ErrUploadDisabled.
func New(db *sql.DB, uploader Uploader, logger zerolog.Logger) *Snapshotter {
	return &Snapshotter{db: db, uploader: uploader, logger: logger}
}

// Write copies the live database into path with VACUUM INTO. path must not exist yet.
func (s *Snapshotter) Write(ctx context.Context, path string) error {
	if _, err := s.db.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		return fmt.Errorf("failed to snapshot database into %s: %w", path, err)
	}
	return nil
}

// WriteTemp writes a snapshot into a fresh temporary directory. cleanup removes it.
func (s *Snapshotter) WriteTemp(ctx context.Context) (path string, cleanup func(), err error) {
	dir, err := os.MkdirTemp("", "tengoku-snapshot-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create snapshot dir: %w", err)
	}
	cleanup = func() { os.RemoveAll(dir) }

	path = filepath.Join(dir, "tengoku.db")
	if err := s.Write(ctx, path); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}

// Upload snapshots the database and pushes it to the bucket under a timestamped key.
func (s *Snapshotter) Upload(ctx context.Context) (key, location string, err error) {
	if s.uploader == nil {
		return "", "", ErrUploadDisabled
	}

	path, cleanup, err := s.WriteTemp(ctx)
	if err != nil {
		return "", "", err
	}
	defer cleanup()

	f, err := os.Open(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	key = Key(time.Now())
	location, err = s.uploader.Upload(ctx, key, f)
	if err != nil {
		return "", "", err
	}

	s.logger.Info().Str("key", key).Str("location", location).Msg("database snapshot uploaded")
	return key, location, nil
}

func Key(t time.Time) string {
	return fmt.Sprintf("snapshots/tengoku-%s.db", t.UTC().Format("20060102T150405Z"))
}
