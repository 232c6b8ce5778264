package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profilehub/internal/domain"
	"profilehub/internal/profile"
)

func publishAlice(t *testing.T, env *testEnv) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, env.profiles.ClaimHandle(ctx, "acc-1", "alice"))
	d := profile.Document{Name: "Alice", Skills: []string{"Go"}}
	require.NoError(t, env.profiles.SaveDraft(ctx, "acc-1", d, profile.DefaultVisibility()))
	_, err := env.profiles.Publish(ctx, "acc-1")
	require.NoError(t, err)
}

func TestUnpublishRemovesFromDiscovery(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	publishAlice(t, env)

	out, err := env.search.Query(ctx, QueryInput{Skill: "go"})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "alice", out.Results[0].Handle)

	require.NoError(t, env.life.Unpublish(ctx, "alice"))

	// 公共读和发现面同时消失
	_, err = env.engine.PublicProfile(ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	out, err = env.search.Query(ctx, QueryInput{Skill: "go"})
	require.NoError(t, err)
	assert.Empty(t, out.Results)

	// 历史留存，版本可审计
	any, err := env.engine.LatestAny(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, any)
	assert.False(t, any.Published)
}

func TestHardDeleteRemovesEverything(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	publishAlice(t, env)

	require.NoError(t, env.db.Create(&domain.Account{ID: "acc-1", Email: "alice@example.com"}).Error)

	require.NoError(t, env.life.HardDelete(ctx, "acc-1"))

	for name, count := range map[string]int64{
		"search_entries": countRows(t, env, &domain.SearchEntry{}),
		"handles":        countRows(t, env, &domain.Handle{}),
		"snapshots":      countRows(t, env, &domain.Snapshot{}),
		"drafts":         countRows(t, env, &domain.Draft{}),
	} {
		assert.Zero(t, count, "%s must be empty", name)
	}

	var accounts int64
	require.NoError(t, env.db.Unscoped().Model(&domain.Account{}).Count(&accounts).Error)
	assert.Zero(t, accounts, "account row removed outright, not soft-deleted")

	// handle 释放后可以被新账号认领
	require.NoError(t, env.profiles.ClaimHandle(ctx, "acc-2", "alice"))
}

func TestHardDeleteWithoutHandle(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	require.NoError(t, env.db.Create(&domain.Account{ID: "acc-1", Email: "alice@example.com"}).Error)
	d := profile.Document{Name: "Alice"}
	require.NoError(t, env.profiles.SaveDraft(ctx, "acc-1", d, profile.DefaultVisibility()))

	require.NoError(t, env.life.HardDelete(ctx, "acc-1"))
	assert.Zero(t, countRows(t, env, &domain.Draft{}))
}

func countRows(t *testing.T, env *testEnv, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.db.Model(model).Count(&n).Error)
	return n
}

// 端到端：存草稿 → 认领 → 发布 → 可检索 → 下线 → 不可检索
func TestPublishDiscoveryLifecycle(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	d := profile.Document{Name: "Alice", Headline: "Backend Engineer", Skills: []string{"Go", "Postgres"}}
	require.NoError(t, env.profiles.SaveDraft(ctx, "acc-1", d, profile.DefaultVisibility()))
	require.NoError(t, env.profiles.ClaimHandle(ctx, "acc-1", "alice"))

	snap, err := env.profiles.Publish(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.VersionID)

	pub, err := env.engine.PublicProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", pub.Handle)

	out, err := env.search.Query(ctx, QueryInput{Skill: "postgres"})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "Backend Engineer", out.Results[0].Headline)

	require.NoError(t, env.life.Unpublish(ctx, "alice"))

	out, err = env.search.Query(ctx, QueryInput{Skill: "postgres"})
	require.NoError(t, err)
	assert.Empty(t, out.Results)
}
