package store

import (
	"time"

	"github.com/n-WN/prompt-manager/internal/model"
)

// Stats returns aggregate counts for the stats command and the dashboard.
func (s *Store) Stats() (model.Stats, error) {
	st := model.Stats{BySource: make(map[string]int)}
	err := s.db.QueryRow(`SELECT COUNT(*),
		COALESCE(SUM(starred != 0), 0),
		COALESCE(SUM(use_count), 0)
		FROM prompts`).Scan(&st.Total, &st.Starred, &st.TotalUses)
	if err != nil {
		return model.Stats{}, err
	}

	rows, err := s.db.Query("SELECT source, COUNT(*) FROM prompts GROUP BY source")
	if err != nil {
		return model.Stats{}, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			src string
			n   int
		)
		if err := rows.Scan(&src, &n); err != nil {
			return model.Stats{}, err
		}
		st.BySource[src] = n
	}
	return st, rows.Err()
}

// DailyCounts returns dated-prompt counts per UTC day for the trailing days
// window, oldest day first. Days without prompts are zero; undated prompts
// are not counted.
func (s *Store) DailyCounts(days int) ([]int, error) {
	if days <= 0 {
		days = 30
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	start := today.AddDate(0, 0, -(days - 1))

	rows, err := s.db.Query(`SELECT substr(timestamp, 1, 10), COUNT(*)
		FROM prompts WHERE substr(timestamp, 1, 10) >= ?
		GROUP BY substr(timestamp, 1, 10)`,
		start.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	byDay := make(map[string]int)
	for rows.Next() {
		var (
			day string
			n   int
		)
		if err := rows.Scan(&day, &n); err != nil {
			return nil, err
		}
		byDay[day] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	counts := make([]int, days)
	for i := range counts {
		counts[i] = byDay[start.AddDate(0, 0, i).Format("2006-01-02")]
	}
	return counts, nil
}
