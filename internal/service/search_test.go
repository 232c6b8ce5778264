package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profilehub/internal/domain"
)

func seedEntries(t *testing.T, env *testEnv, entries ...*domain.SearchEntry) {
	t.Helper()
	for _, e := range entries {
		require.NoError(t, env.entries.Upsert(context.Background(), e))
	}
}

func entry(handle string, updated time.Time, skills ...string) *domain.SearchEntry {
	return &domain.SearchEntry{
		Handle:    handle,
		Name:      handle,
		Skills:    domain.JoinTags(skills),
		UpdatedAt: updated,
	}
}

func TestQueryFilters(t *testing.T) {
	env := setupEnv(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	seedEntries(t, env,
		entry("alice", base.Add(3*time.Hour), "go", "postgres"),
		entry("bob", base.Add(2*time.Hour), "go"),
		entry("carol", base.Add(1*time.Hour), "rust"),
	)

	out, err := env.search.Query(context.Background(), QueryInput{Skill: "go"})
	require.NoError(t, err)
	require.Len(t, out.Results, 2)
	// updated_at DESC
	assert.Equal(t, "alice", out.Results[0].Handle)
	assert.Equal(t, "bob", out.Results[1].Handle)
	assert.Nil(t, out.NextCursor)

	out, err = env.search.Query(context.Background(), QueryInput{Skill: "postgres"})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "alice", out.Results[0].Handle)
	assert.Equal(t, []string{"go", "postgres"}, out.Results[0].Skills)

	out, err = env.search.Query(context.Background(), QueryInput{
		UpdatedAfter: base.Add(90 * time.Minute).Format(time.RFC3339),
	})
	require.NoError(t, err)
	assert.Len(t, out.Results, 2, "carol updated too early")
}

func TestQueryCursorWalkCoversEverything(t *testing.T) {
	env := setupEnv(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	const total = 5
	for i := 0; i < total; i++ {
		seedEntries(t, env, entry(fmt.Sprintf("dev-%d", i), base.Add(time.Duration(i)*time.Minute), "go"))
	}

	seen := map[string]bool{}
	cursor := ""
	pages := 0
	for {
		out, err := env.search.Query(context.Background(), QueryInput{Skill: "go", Limit: 2, Cursor: cursor})
		require.NoError(t, err)
		pages++
		require.LessOrEqual(t, pages, total, "cursor walk must terminate")
		for _, r := range out.Results {
			assert.False(t, seen[r.Handle], "page overlap at %s", r.Handle)
			seen[r.Handle] = true
		}
		if out.NextCursor == nil {
			break
		}
		cursor = *out.NextCursor
	}
	assert.Len(t, seen, total, "pages must partition the full result set")
}

func TestQuerySameTimestampTieBreak(t *testing.T) {
	env := setupEnv(t)
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	seedEntries(t, env,
		entry("bbb", ts, "go"),
		entry("aaa", ts, "go"),
		entry("ccc", ts, "go"),
	)

	out, err := env.search.Query(context.Background(), QueryInput{Skill: "go", Limit: 2})
	require.NoError(t, err)
	require.Len(t, out.Results, 2)
	assert.Equal(t, "aaa", out.Results[0].Handle)
	assert.Equal(t, "bbb", out.Results[1].Handle)
	require.NotNil(t, out.NextCursor)

	out, err = env.search.Query(context.Background(), QueryInput{Skill: "go", Limit: 2, Cursor: *out.NextCursor})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "ccc", out.Results[0].Handle)
	assert.Nil(t, out.NextCursor)
}

func TestQueryRejectsMalformedInput(t *testing.T) {
	env := setupEnv(t)

	_, err := env.search.Query(context.Background(), QueryInput{Cursor: "not-a-cursor!!!"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.search.Query(context.Background(), QueryInput{Cursor: "bm90IGpzb24"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.search.Query(context.Background(), QueryInput{Limit: -1})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.search.Query(context.Background(), QueryInput{UpdatedAfter: "yesterday"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestQueryLimitClamped(t *testing.T) {
	env := setupEnv(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		seedEntries(t, env, entry(fmt.Sprintf("dev-%02d", i), base.Add(time.Duration(i)*time.Second), "go"))
	}

	// limit=0 → 默认 20
	out, err := env.search.Query(context.Background(), QueryInput{Skill: "go"})
	require.NoError(t, err)
	assert.Len(t, out.Results, 20)
	assert.NotNil(t, out.NextCursor)

	// 超上限 → 截到 100（数据只有 30 条，全回）
	out, err = env.search.Query(context.Background(), QueryInput{Skill: "go", Limit: 5000})
	require.NoError(t, err)
	assert.Len(t, out.Results, 30)
	assert.Nil(t, out.NextCursor)
}
