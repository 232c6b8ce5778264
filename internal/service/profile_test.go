package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profilehub/internal/domain"
	"profilehub/internal/profile"
)

func TestClaimHandleValidation(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	for _, bad := range []string{"", "-alice", "alice-", "Alice", "a b", "ALICE", "alice_underscore",
		"this-handle-is-way-way-way-too-long-for-us"} {
		err := env.profiles.ClaimHandle(ctx, "acc-1", bad)
		assert.ErrorIs(t, err, domain.ErrValidation, "handle %q", bad)
	}

	require.NoError(t, env.profiles.ClaimHandle(ctx, "acc-1", "alice-dev42"))
}

func TestClaimHandleConflicts(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	require.NoError(t, env.profiles.ClaimHandle(ctx, "acc-1", "alice"))

	// 别人抢同名
	err := env.profiles.ClaimHandle(ctx, "acc-2", "alice")
	assert.ErrorIs(t, err, domain.ErrHandleTaken)

	// 自己换名：handle 不可变
	err = env.profiles.ClaimHandle(ctx, "acc-1", "alice-two")
	assert.ErrorIs(t, err, domain.ErrHandleClaimed)
}

func TestPublishRequiresHandleAndDraft(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	_, err := env.profiles.Publish(ctx, "acc-1")
	assert.ErrorIs(t, err, domain.ErrNoHandle)

	require.NoError(t, env.profiles.ClaimHandle(ctx, "acc-1", "alice"))
	_, err = env.profiles.Publish(ctx, "acc-1")
	assert.ErrorIs(t, err, domain.ErrValidation, "no draft saved yet")
}

func TestSaveDraftThenPublish(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	require.NoError(t, env.profiles.ClaimHandle(ctx, "acc-1", "alice"))

	d := profile.Document{Name: "Alice", Email: "alice@example.com", Skills: []string{"Go"}}
	vis := profile.DefaultVisibility()
	require.NoError(t, env.profiles.SaveDraft(ctx, "acc-1", d, vis))

	snap, err := env.profiles.Publish(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.VersionID)
	assert.Equal(t, "alice", snap.Handle)

	// 发布后改草稿不影响已发布的投影
	d.Name = "Alice Updated"
	require.NoError(t, env.profiles.SaveDraft(ctx, "acc-1", d, vis))

	pub, err := env.engine.PublicProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Contains(t, string(pub.Profile), `"Alice"`)
	assert.NotContains(t, string(pub.Profile), "Alice Updated")
	assert.NotContains(t, string(pub.Profile), "alice@example.com")
}

func TestGetOwnReflectsState(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	// 全新账号：全空、未发布
	own, err := env.profiles.GetOwn(ctx, "acc-1")
	require.NoError(t, err)
	assert.Empty(t, own.Handle)
	assert.Nil(t, own.Canonical)
	assert.False(t, own.Published)

	require.NoError(t, env.profiles.ClaimHandle(ctx, "acc-1", "alice"))
	d := profile.Document{Name: "Alice", Email: "alice@example.com"}
	vis := profile.DefaultVisibility()
	require.NoError(t, env.profiles.SaveDraft(ctx, "acc-1", d, vis))

	own, err = env.profiles.GetOwn(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", own.Handle)
	require.NotNil(t, own.Canonical)
	assert.Equal(t, "alice@example.com", own.Canonical.Email, "owner view is never redacted")
	assert.False(t, own.Published)

	_, err = env.profiles.Publish(ctx, "acc-1")
	require.NoError(t, err)

	own, err = env.profiles.GetOwn(ctx, "acc-1")
	require.NoError(t, err)
	assert.True(t, own.Published)
	assert.Equal(t, int64(1), own.LatestVersion)
}
