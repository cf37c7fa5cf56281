package store

import (
	"database/sql"
	"strings"
	"time"

	"github.com/n-WN/prompt-manager/internal/model"
)

// SearchQuery selects and shapes a summary listing.
type SearchQuery struct {
	Query       string // substring match on content, case-insensitive
	Source      string // restrict to one source, empty for all
	StarredOnly bool
	Limit       int // rows returned, default 50
	Offset      int
	SnippetLen  int // content snippet length in characters, default 200
}

const (
	defaultSearchLimit = 50
	defaultSnippetLen  = 200
)

// SearchSummaries returns lightweight prompt summaries, newest first with
// undated rows last. Content is truncated in SQL so oversized prompts never
// leave the database, and responses are not selected at all.
func (s *Store) SearchSummaries(q SearchQuery) ([]model.Summary, error) {
	if q.Limit <= 0 {
		q.Limit = defaultSearchLimit
	}
	if q.SnippetLen <= 0 {
		q.SnippetLen = defaultSnippetLen
	}

	var sb strings.Builder
	sb.WriteString(`SELECT id, source, project_path, session_id,
		substr(content, 1, ?), timestamp, starred, use_count
		FROM prompts`)
	args := []any{q.SnippetLen}

	var conds []string
	if q.Query != "" {
		conds = append(conds, "content LIKE ?")
		args = append(args, "%"+q.Query+"%")
	}
	if q.Source != "" {
		conds = append(conds, "source = ?")
		args = append(args, q.Source)
	}
	if q.StarredOnly {
		conds = append(conds, "starred != 0")
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}
	sb.WriteString(" ORDER BY timestamp IS NULL, timestamp DESC LIMIT ? OFFSET ?")
	args = append(args, q.Limit, q.Offset)

	rows, err := s.db.Query(sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanSummaries(rows)
}

// BalancedSummaries returns the newest perSource summaries for each listed
// source, so a chatty source cannot crowd the others out of a listing.
// Results are grouped by source in the given order, newest first within.
func (s *Store) BalancedSummaries(sources []string, perSource int) ([]model.Summary, error) {
	if len(sources) == 0 {
		sources = model.AllSources
	}
	if perSource <= 0 {
		perSource = 10
	}

	var sb strings.Builder
	var args []any
	for i, src := range sources {
		if i > 0 {
			sb.WriteString(" UNION ALL ")
		}
		sb.WriteString(`SELECT * FROM (SELECT id, source, project_path, session_id,
			substr(content, 1, ?), timestamp, starred, use_count
			FROM prompts WHERE source = ?
			ORDER BY timestamp IS NULL, timestamp DESC LIMIT ?)`)
		args = append(args, defaultSnippetLen, src, perSource)
	}

	rows, err := s.db.Query(sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanSummaries(rows)
}

func scanSummaries(rows *sql.Rows) ([]model.Summary, error) {
	var out []model.Summary
	for rows.Next() {
		var (
			sum                        model.Summary
			projectPath, sessionID, ts sql.NullString
			starred                    int
		)
		if err := rows.Scan(&sum.ID, &sum.Source, &projectPath, &sessionID,
			&sum.Content, &ts, &starred, &sum.UseCount); err != nil {
			return nil, err
		}
		sum.ProjectPath = projectPath.String
		sum.SessionID = sessionID.String
		sum.Starred = starred != 0
		if ts.Valid && ts.String != "" {
			if t, err := time.Parse(time.RFC3339Nano, ts.String); err == nil {
				sum.Timestamp = t
				sum.HasTime = true
			}
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}
