package store

import (
	"database/sql"
	"fmt"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS prompts (
    id                   TEXT PRIMARY KEY,
    source               TEXT NOT NULL,
    project_path         TEXT,
    session_id           TEXT,
    content              TEXT NOT NULL,
    response             TEXT,
    response_blob        BLOB,
    turn_json            TEXT,
    turn_json_blob       BLOB,
    origin_path          TEXT,
    origin_offset_start  INTEGER,
    origin_offset_end    INTEGER,
    timestamp            TEXT,
    tags                 TEXT NOT NULL DEFAULT '[]',
    starred              INTEGER NOT NULL DEFAULT 0,
    use_count            INTEGER NOT NULL DEFAULT 0,
    created_at           TEXT NOT NULL,
    updated_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS file_sync_state (
    file_path            TEXT PRIMARY KEY,
    source               TEXT NOT NULL,
    file_size            INTEGER NOT NULL,
    mtime_ns             INTEGER NOT NULL,
    sync_version         INTEGER NOT NULL DEFAULT 1,
    last_sync            TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_prompts_source ON prompts(source);
CREATE INDEX IF NOT EXISTS idx_prompts_timestamp ON prompts(timestamp DESC);
`

// Migration steps upgrade databases created by older builds. Each step probes
// the live schema and applies only what is missing, so re-running is a no-op
// and there is no version counter to drift.
type migration struct {
	name  string
	apply func(db *sql.DB) error
}

var migrations = []migration{
	{"file sync_version column", migrateSyncVersion},
	{"prompt blob and origin columns", migrateBlobColumns},
	{"drop content index", migrateDropContentIndex},
}

func migrateSchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	for _, m := range migrations {
		if err := m.apply(db); err != nil {
			return fmt.Errorf("migration %q: %w", m.name, err)
		}
	}
	return nil
}

// migrateSyncVersion adds the per-file parser version used to re-sync files
// after a parser change.
func migrateSyncVersion(db *sql.DB) error {
	ok, err := hasColumn(db, "file_sync_state", "sync_version")
	if err != nil || ok {
		return err
	}
	_, err = db.Exec("ALTER TABLE file_sync_state ADD COLUMN sync_version INTEGER NOT NULL DEFAULT 1")
	return err
}

// migrateBlobColumns adds compressed storage for oversized responses and turn
// timelines, plus the origin span used to rebuild a timeline from its log.
func migrateBlobColumns(db *sql.DB) error {
	steps := []struct{ column, ddl string }{
		{"response_blob", "ALTER TABLE prompts ADD COLUMN response_blob BLOB"},
		{"turn_json_blob", "ALTER TABLE prompts ADD COLUMN turn_json_blob BLOB"},
		{"origin_path", "ALTER TABLE prompts ADD COLUMN origin_path TEXT"},
		{"origin_offset_start", "ALTER TABLE prompts ADD COLUMN origin_offset_start INTEGER"},
		{"origin_offset_end", "ALTER TABLE prompts ADD COLUMN origin_offset_end INTEGER"},
	}
	for _, step := range steps {
		ok, err := hasColumn(db, "prompts", step.column)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if _, err := db.Exec(step.ddl); err != nil {
			return err
		}
	}
	return nil
}

// migrateDropContentIndex removes the index once kept on prompts(content).
// Contents run to hundreds of kilobytes, which made the index larger than
// the table and failed oversized inserts.
func migrateDropContentIndex(db *sql.DB) error {
	_, err := db.Exec("DROP INDEX IF EXISTS idx_prompts_content")
	return err
}

func hasColumn(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			cid     int
			name    string
			colType string
			notNull int
			dfltVal sql.NullString
			primary int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltVal, &primary); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
