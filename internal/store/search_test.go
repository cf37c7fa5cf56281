package store

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n-WN/prompt-manager/internal/model"
)

func insertAt(t *testing.T, s *Store, id, source, content string, ts time.Time) {
	t.Helper()
	p := testPrompt(id, source, content)
	if !ts.IsZero() {
		p.Timestamp = ts
		p.HasTime = true
	}
	_, err := s.InsertPrompt(p)
	require.NoError(t, err)
}

func TestSearchSummariesOrderingAndFilters(t *testing.T) {
	s := newTestStore(t)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	insertAt(t, s, "s1", model.SourceClaudeCode, "alpha beta request", base)
	insertAt(t, s, "s2", model.SourceCodex, "gamma beta request", base.Add(time.Hour))
	insertAt(t, s, "s3", model.SourceAider, "delta beta request", time.Time{})

	got, err := s.SearchSummaries(SearchQuery{Query: "beta"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "s2", got[0].ID) // newest first
	assert.Equal(t, "s1", got[1].ID)
	assert.Equal(t, "s3", got[2].ID) // undated last
	assert.False(t, got[2].HasTime)

	got, err = s.SearchSummaries(SearchQuery{Query: "beta", Source: model.SourceCodex})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "s2", got[0].ID)

	_, err = s.ToggleStar("s1")
	require.NoError(t, err)
	got, err = s.SearchSummaries(SearchQuery{StarredOnly: true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].ID)

	got, err = s.SearchSummaries(SearchQuery{Query: "beta", Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].ID)

	got, err = s.SearchSummaries(SearchQuery{Query: "no such prompt"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchSummariesTruncatesContent(t *testing.T) {
	s := newTestStore(t)

	insertAt(t, s, "long1", model.SourceClaudeCode, strings.Repeat("b", 5000), time.Now().UTC())

	got, err := s.SearchSummaries(SearchQuery{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Len(t, got[0].Content, defaultSnippetLen)

	got, err = s.SearchSummaries(SearchQuery{SnippetLen: 12})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Len(t, got[0].Content, 12)
}

func TestBalancedSummariesIncludesQuietSources(t *testing.T) {
	s := newTestStore(t)

	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		insertAt(t, s, fmt.Sprintf("cc%02d", i), model.SourceClaudeCode,
			fmt.Sprintf("claude prompt %d", i), base.Add(time.Duration(i)*time.Minute))
	}
	insertAt(t, s, "amp1", model.SourceAmp, "lone amp prompt", base)

	got, err := s.BalancedSummaries([]string{model.SourceClaudeCode, model.SourceAmp}, 5)
	require.NoError(t, err)
	require.Len(t, got, 6)

	bySource := map[string][]string{}
	for _, sum := range got {
		bySource[sum.Source] = append(bySource[sum.Source], sum.ID)
	}
	assert.ElementsMatch(t, []string{"cc11", "cc10", "cc09", "cc08", "cc07"}, bySource[model.SourceClaudeCode])
	assert.Equal(t, []string{"amp1"}, bySource[model.SourceAmp])
}

func TestStats(t *testing.T) {
	s := newTestStore(t)

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0, stats.TotalUses)

	insertAt(t, s, "t1", model.SourceClaudeCode, "first", time.Now().UTC())
	insertAt(t, s, "t2", model.SourceClaudeCode, "second", time.Now().UTC())
	insertAt(t, s, "t3", model.SourceAmp, "third", time.Now().UTC())
	_, err = s.ToggleStar("t1")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.IncrementUseCount("t2"))
	}

	stats, err = s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, map[string]int{model.SourceClaudeCode: 2, model.SourceAmp: 1}, stats.BySource)
	assert.Equal(t, 1, stats.Starred)
	assert.Equal(t, 3, stats.TotalUses)
}
