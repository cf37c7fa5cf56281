package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/n-WN/prompt-manager/internal/model"
)

// InsertPrompts stores a batch of parsed prompts in one transaction. Existing
// rows are never overwritten; response and turn data missing from an earlier
// parse are backfilled once. When state is non-nil its fingerprint commits
// atomically with the batch. Returns the number of newly inserted rows.
func (s *Store) InsertPrompts(prompts []model.ParsedPrompt, state *model.FileState) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	inserted := 0
	for _, p := range prompts {
		ok, err := s.insertOne(tx, p, now)
		if err != nil {
			return 0, fmt.Errorf("inserting prompt %s: %w", p.ID, err)
		}
		if ok {
			inserted++
		}
	}

	if state != nil {
		if err := upsertFileState(tx, *state, now); err != nil {
			return 0, fmt.Errorf("updating sync state for %s: %w", state.FilePath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// InsertPrompt stores a single prompt, reporting whether it was new.
func (s *Store) InsertPrompt(p model.ParsedPrompt) (bool, error) {
	n, err := s.InsertPrompts([]model.ParsedPrompt{p}, nil)
	return n > 0, err
}

func (s *Store) insertOne(tx *sql.Tx, p model.ParsedPrompt, now string) (bool, error) {
	respInline, respBlob := s.storedField(p.Response)
	turnInline, turnBlob := s.storedField(p.TurnJSON)

	var ts any
	if p.HasTime {
		ts = p.Timestamp.UTC().Format(timeLayout)
	}
	var originPath, originStart, originEnd any
	if p.HasOrigin {
		originPath = p.OriginPath
		originStart = p.OriginStart
		originEnd = p.OriginEnd
	}

	res, err := tx.Exec(`INSERT INTO prompts
		(id, source, project_path, session_id, content,
		 response, response_blob, turn_json, turn_json_blob,
		 origin_path, origin_offset_start, origin_offset_end,
		 timestamp, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		p.ID, p.Source, nullable(p.ProjectPath), nullable(p.SessionID), p.Content,
		respInline, respBlob, turnInline, turnBlob,
		originPath, originStart, originEnd,
		ts, now, now,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}

	// Duplicate id: the same turn seen again, possibly with data a previous
	// run lacked. Fill only fields that are still empty so the first parse
	// wins, and never touch user-managed columns.
	if p.Response == "" && p.TurnJSON == "" && !p.HasOrigin {
		return false, nil
	}
	_, err = tx.Exec(`UPDATE prompts SET
		response = CASE WHEN response IS NULL AND response_blob IS NULL THEN ? ELSE response END,
		response_blob = CASE WHEN response IS NULL AND response_blob IS NULL THEN ? ELSE response_blob END,
		turn_json = CASE WHEN turn_json IS NULL AND turn_json_blob IS NULL THEN ? ELSE turn_json END,
		turn_json_blob = CASE WHEN turn_json IS NULL AND turn_json_blob IS NULL THEN ? ELSE turn_json_blob END,
		origin_path = COALESCE(origin_path, ?),
		origin_offset_start = COALESCE(origin_offset_start, ?),
		origin_offset_end = COALESCE(origin_offset_end, ?),
		updated_at = ?
		WHERE id = ?`,
		respInline, respBlob, turnInline, turnBlob,
		originPath, originStart, originEnd,
		now, p.ID,
	)
	return false, err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// GetPrompt returns the full stored prompt, decompressing blob columns and,
// when the turn timeline was stored as an origin span, rehydrating it from
// the log file.
func (s *Store) GetPrompt(id string) (model.Prompt, error) {
	var (
		p                      model.Prompt
		projectPath, sessionID sql.NullString
		respInline, turnInline sql.NullString
		respBlob, turnBlob     []byte
		originPath             sql.NullString
		originStart, originEnd sql.NullInt64
		ts, tags               sql.NullString
		starred                int
		createdAt, updatedAt   string
	)
	err := s.db.QueryRow(`SELECT id, source, project_path, session_id, content,
		response, response_blob, turn_json, turn_json_blob,
		origin_path, origin_offset_start, origin_offset_end,
		timestamp, tags, starred, use_count, created_at, updated_at
		FROM prompts WHERE id = ?`, id).Scan(
		&p.ID, &p.Source, &projectPath, &sessionID, &p.Content,
		&respInline, &respBlob, &turnInline, &turnBlob,
		&originPath, &originStart, &originEnd,
		&ts, &tags, &starred, &p.UseCount, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Prompt{}, ErrNotFound
	}
	if err != nil {
		return model.Prompt{}, err
	}

	p.ProjectPath = projectPath.String
	p.SessionID = sessionID.String
	if p.Response, err = loadedField(respInline, respBlob); err != nil {
		return model.Prompt{}, fmt.Errorf("prompt %s response: %w", id, err)
	}
	if p.TurnJSON, err = loadedField(turnInline, turnBlob); err != nil {
		return model.Prompt{}, fmt.Errorf("prompt %s turn data: %w", id, err)
	}
	if originPath.Valid {
		p.OriginPath = originPath.String
		p.OriginStart = originStart.Int64
		p.OriginEnd = originEnd.Int64
		p.HasOrigin = true
	}
	if p.TurnJSON == "" && p.HasOrigin {
		if turn, ok := rehydrateTurn(p.Source, p.OriginPath, p.OriginStart, p.OriginEnd); ok {
			p.TurnJSON = turn
		}
	}
	if ts.Valid && ts.String != "" {
		if t, err := time.Parse(time.RFC3339Nano, ts.String); err == nil {
			p.Timestamp = t
			p.HasTime = true
		}
	}
	if tags.Valid && tags.String != "" && tags.String != "[]" {
		if err := json.Unmarshal([]byte(tags.String), &p.Tags); err != nil {
			return model.Prompt{}, fmt.Errorf("prompt %s tags: %w", id, err)
		}
	}
	p.Starred = starred != 0
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return p, nil
}

// ToggleStar flips the starred flag and returns the new value.
func (s *Store) ToggleStar(id string) (bool, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec("UPDATE prompts SET starred = NOT starred, updated_at = ? WHERE id = ?", now, id)
	if err != nil {
		return false, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return false, err
	} else if n == 0 {
		return false, ErrNotFound
	}

	var starred int
	if err := s.db.QueryRow("SELECT starred FROM prompts WHERE id = ?", id).Scan(&starred); err != nil {
		return false, err
	}
	return starred != 0, nil
}

// IncrementUseCount bumps the use counter, typically after a copy.
func (s *Store) IncrementUseCount(id string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec("UPDATE prompts SET use_count = use_count + 1, updated_at = ? WHERE id = ?", now, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetTags replaces the tag list for a prompt.
func (s *Store) SetTags(id string, tags []string) error {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("encoding tags: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec("UPDATE prompts SET tags = ?, updated_at = ? WHERE id = ?", string(data), now, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePrompt removes a prompt row.
func (s *Store) DeletePrompt(id string) error {
	res, err := s.db.Exec("DELETE FROM prompts WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Metadata is the user-managed slice of a prompt row, preserved across
// rebuilds because log files cannot regenerate it.
type Metadata struct {
	ID       string
	Starred  bool
	Tags     []string
	UseCount int
}

// SnapshotMetadata returns metadata for every row with non-default values.
func (s *Store) SnapshotMetadata() ([]Metadata, error) {
	rows, err := s.db.Query(`SELECT id, starred, tags, use_count FROM prompts
		WHERE starred != 0 OR use_count != 0 OR tags != '[]'`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var metas []Metadata
	for rows.Next() {
		var (
			m       Metadata
			starred int
			tags    sql.NullString
		)
		if err := rows.Scan(&m.ID, &starred, &tags, &m.UseCount); err != nil {
			return nil, err
		}
		m.Starred = starred != 0
		if tags.Valid && tags.String != "" && tags.String != "[]" {
			if err := json.Unmarshal([]byte(tags.String), &m.Tags); err != nil {
				return nil, fmt.Errorf("prompt %s tags: %w", m.ID, err)
			}
		}
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// RestoreMetadata re-applies snapshotted stars, tags, and use counts by id.
// Rows that no longer exist are skipped. Returns the number restored.
func (s *Store) RestoreMetadata(metas []Metadata) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	restored := 0
	for _, m := range metas {
		tags := m.Tags
		if tags == nil {
			tags = []string{}
		}
		data, err := json.Marshal(tags)
		if err != nil {
			return 0, fmt.Errorf("encoding tags for %s: %w", m.ID, err)
		}
		starred := 0
		if m.Starred {
			starred = 1
		}
		res, err := tx.Exec(`UPDATE prompts SET starred = ?, tags = ?, use_count = ?, updated_at = ?
			WHERE id = ?`, starred, string(data), m.UseCount, now, m.ID)
		if err != nil {
			return 0, fmt.Errorf("restoring metadata for %s: %w", m.ID, err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return 0, err
		} else if n > 0 {
			restored++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return restored, nil
}

// ClearPrompts deletes every prompt row, leaving metadata snapshots and file
// state to their own operations.
func (s *Store) ClearPrompts() error {
	_, err := s.db.Exec("DELETE FROM prompts")
	return err
}
