package store

import (
	"database/sql"
	"time"

	"github.com/n-WN/prompt-manager/internal/model"
)

// TrackedFiles returns the sync fingerprint for every known log file.
func (s *Store) TrackedFiles() (map[string]model.FileState, error) {
	rows, err := s.db.Query("SELECT file_path, source, file_size, mtime_ns, sync_version, last_sync FROM file_sync_state")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]model.FileState)
	for rows.Next() {
		var (
			fs       model.FileState
			lastSync string
		)
		if err := rows.Scan(&fs.FilePath, &fs.Source, &fs.FileSize, &fs.MtimeNs, &fs.SyncVersion, &lastSync); err != nil {
			return nil, err
		}
		fs.LastSync, _ = time.Parse(time.RFC3339, lastSync)
		result[fs.FilePath] = fs
	}
	return result, rows.Err()
}

func upsertFileState(tx *sql.Tx, fs model.FileState, now string) error {
	_, err := tx.Exec(`INSERT INTO file_sync_state
		(file_path, source, file_size, mtime_ns, sync_version, last_sync)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(file_path) DO UPDATE SET
			source = excluded.source,
			file_size = excluded.file_size,
			mtime_ns = excluded.mtime_ns,
			sync_version = excluded.sync_version,
			last_sync = excluded.last_sync`,
		fs.FilePath, fs.Source, fs.FileSize, fs.MtimeNs, fs.SyncVersion, now)
	return err
}

// ClearFileState drops every sync fingerprint, forcing the next sync to
// reprocess all files.
func (s *Store) ClearFileState() error {
	_, err := s.db.Exec("DELETE FROM file_sync_state")
	return err
}
