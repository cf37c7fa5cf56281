// Package store persists parsed prompts and per-file sync fingerprints in an
// embedded SQLite database.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrNotFound is returned when no prompt matches the requested id.
var ErrNotFound = errors.New("prompt not found")

// timeLayout is fixed-width UTC so lexicographic ordering of the timestamp
// column matches chronological ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store provides SQLite-backed prompt storage.
type Store struct {
	db *sql.DB

	// CompressThreshold is the inline byte limit for response and turn_json;
	// larger values move to zlib-compressed blob columns.
	CompressThreshold int
	// PreviewRunes is how much of an oversized field stays inline for listings.
	PreviewRunes int
}

const (
	defaultCompressThreshold = 4096
	defaultPreviewRunes      = 500
)

// Open opens or creates the prompt database at the given path, applying any
// pending schema migrations. An unreadable database is moved aside and
// recreated rather than aborting: the logs on disk remain the source of
// truth, so a fresh sync restores everything except stars and tags.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	db, err := openWritable(dbPath)
	if err != nil {
		if _, statErr := os.Stat(dbPath); statErr != nil {
			return nil, err
		}
		aside := fmt.Sprintf("%s.corrupt.%d", dbPath, time.Now().Unix())
		if renameErr := os.Rename(dbPath, aside); renameErr != nil {
			return nil, err
		}
		for _, suffix := range []string{"-wal", "-shm"} {
			_ = os.Rename(dbPath+suffix, aside+suffix)
		}
		log.Warn().Err(err).Str("moved_to", aside).Msg("prompt database unreadable, starting fresh")
		if db, err = openWritable(dbPath); err != nil {
			return nil, err
		}
	}

	return &Store{
		db:                db,
		CompressThreshold: defaultCompressThreshold,
		PreviewRunes:      defaultPreviewRunes,
	}, nil
}

func openWritable(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening prompt db: %w", err)
	}
	if err := migrateSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the prompt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Compact reclaims space after bulk deletions.
func (s *Store) Compact() error {
	_, err := s.db.Exec("VACUUM")
	return err
}
