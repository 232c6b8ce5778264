package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profilehub/internal/domain"
	"profilehub/internal/profile"
)

func doc(name string, skills ...string) profile.Document {
	return profile.Document{Name: name, Skills: skills}
}

func TestPublishAssignsMonotonicVersions(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	vis := profile.DefaultVisibility()

	for i, d := range []profile.Document{
		doc("Alice", "go"),
		doc("Alice", "go", "postgres"),
		doc("Alice", "go", "postgres", "redis"),
	} {
		s, err := env.engine.Publish(ctx, "alice", d, vis)
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), s.VersionID)
		assert.True(t, s.Published)
	}

	versions, err := env.engine.Versions(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, versions, 3)
}

func TestRepublishSameContentReturnsExistingVersion(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	vis := profile.DefaultVisibility()

	s1, err := env.engine.Publish(ctx, "alice", doc("Alice", "go"), vis)
	require.NoError(t, err)

	s2, err := env.engine.Publish(ctx, "alice", doc("Alice", "go"), vis)
	require.NoError(t, err)
	assert.Equal(t, s1.VersionID, s2.VersionID)

	versions, err := env.engine.Versions(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, versions, 1)
}

func TestUnpublishHidesLatestKeepsHistory(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	vis := profile.DefaultVisibility()

	_, err := env.engine.Publish(ctx, "alice", doc("Alice", "go"), vis)
	require.NoError(t, err)
	_, err = env.engine.Publish(ctx, "alice", doc("Alice", "rust"), vis)
	require.NoError(t, err)

	n, err := env.engine.Unpublish(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	latest, err := env.engine.Latest(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, latest, "unpublished handle must read as absent")

	any, err := env.engine.LatestAny(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, any)
	assert.Equal(t, int64(2), any.VersionID)
	assert.False(t, any.Published)

	versions, err := env.engine.Versions(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, versions, 2, "history survives unpublish")
}

func TestRepublishAfterUnpublishContinuesCounter(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	vis := profile.DefaultVisibility()

	s1, err := env.engine.Publish(ctx, "alice", doc("Alice", "go"), vis)
	require.NoError(t, err)
	assert.Equal(t, int64(1), s1.VersionID)

	_, err = env.engine.Unpublish(ctx, "alice")
	require.NoError(t, err)

	// 同样内容也必须是新版本：最新版本未发布，幂等短路不生效
	s2, err := env.engine.Publish(ctx, "alice", doc("Alice", "go"), vis)
	require.NoError(t, err)
	assert.Equal(t, int64(2), s2.VersionID)
	assert.True(t, s2.Published)
}

func TestPublicProjectionFrozenAtPublish(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	d := doc("Alice", "go")
	d.Email = "alice@example.com"
	vis := profile.DefaultVisibility() // email 默认隐藏

	s, err := env.engine.Publish(ctx, "alice", d, vis)
	require.NoError(t, err)

	var pub map[string]any
	require.NoError(t, json.Unmarshal(s.Public, &pub))
	assert.NotContains(t, pub, "email")
	assert.Equal(t, "Alice", pub["name"])

	var canonical map[string]any
	require.NoError(t, json.Unmarshal(s.Canonical, &canonical))
	assert.Equal(t, "alice@example.com", canonical["email"])

	got, err := env.engine.PublicProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, s.VersionID, got.Version)
	assert.JSONEq(t, string(s.Public), string(got.Profile))
}

func TestPublicProfileNotFound(t *testing.T) {
	env := setupEnv(t)

	_, err := env.engine.PublicProfile(context.Background(), "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPublishRebuildsSearchEntry(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	d := doc("Alice", "Go", "Postgres")
	d.Location = "Berlin"
	d.Experience = []profile.Experience{{Org: "Acme", Title: "Engineer"}}

	_, err := env.engine.Publish(ctx, "alice", d, profile.DefaultVisibility())
	require.NoError(t, err)

	for _, f := range []domain.SearchFilter{
		{Skill: "go", Limit: 10},
		{Org: "acme", Limit: 10},
		{Title: "engineer", Limit: 10},
		{Location: "berlin", Limit: 10},
	} {
		entries, err := env.entries.Query(ctx, f)
		require.NoError(t, err)
		require.Len(t, entries, 1, "filter %+v", f)
		assert.Equal(t, "alice", entries[0].Handle)
	}
}

func TestConcurrentPublishesAreGapFree(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	vis := profile.DefaultVisibility()

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.engine.Publish(ctx, "alice", doc("Alice", fmt.Sprintf("skill-%d", i)), vis)
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		require.NoError(t, err, "publish %d", i)
	}

	versions, err := env.engine.Versions(ctx, "alice")
	require.NoError(t, err)

	// 去重校验：版本号恰好是 1..len(versions)，无空洞无重复
	seen := map[int64]bool{}
	for _, v := range versions {
		assert.False(t, seen[v.VersionID], "duplicate version %d", v.VersionID)
		seen[v.VersionID] = true
	}
	for i := int64(1); i <= int64(len(versions)); i++ {
		assert.True(t, seen[i], "missing version %d", i)
	}
}
