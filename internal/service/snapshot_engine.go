package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"profilehub/internal/core/cache"
	"profilehub/internal/domain"
	"profilehub/internal/profile"
)

const publicCacheTTL = 60 * time.Second

// SnapshotEngine is the single mutating entry point for public profile data.
// Drafts become immutable snapshots here, the public projection is frozen at
// publish time, and the search index is rebuilt as a pure derivation of the
// new snapshot. Nothing else writes snapshots or index entries.
type SnapshotEngine struct {
	snaps  domain.SnapshotRepository
	search domain.SearchRepository
	cache  *cache.Cache // optional, nil disables the public read cache
	log    *zap.Logger
}

func NewSnapshotEngine(snaps domain.SnapshotRepository, search domain.SearchRepository, c *cache.Cache, log *zap.Logger) *SnapshotEngine {
	return &SnapshotEngine{snaps: snaps, search: search, cache: c, log: log}
}

// PublicProfile is the payload of the public read surface: the frozen public
// projection of the latest published snapshot.
type PublicProfile struct {
	Handle    string          `json:"handle"`
	Version   int64           `json:"version"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Profile   json.RawMessage `json:"profile"`
}

// Publish promotes a draft into a new published snapshot. Republishing
// content identical to the currently-published latest version returns that
// version instead of allocating a new one; the content hash exists for
// exactly this check. A new version is always allocated after an unpublish.
func (e *SnapshotEngine) Publish(ctx context.Context, handle string, doc profile.Document, vis profile.Visibility) (*domain.Snapshot, error) {
	hash, err := profile.Digest(doc)
	if err != nil {
		return nil, fmt.Errorf("digest canonical: %w", err)
	}

	latest, err := e.snaps.Latest(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("load latest snapshot: %w", err)
	}
	if latest != nil && latest.Published && latest.ContentHash == hash {
		return latest, nil
	}

	pub := profile.Redact(doc, vis)
	canonicalJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode canonical: %w", err)
	}
	publicJSON, err := json.Marshal(pub)
	if err != nil {
		return nil, fmt.Errorf("encode public projection: %w", err)
	}

	snap, err := e.snaps.Append(ctx, &domain.Snapshot{
		Handle:      handle,
		ContentHash: hash,
		Canonical:   canonicalJSON,
		Public:      publicJSON,
		Published:   true,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("append snapshot: %w", err)
	}

	// The snapshot row is the source of truth and is already committed; a
	// failed index rebuild only leaves the derived entry stale until the
	// next publish, so it does not fail the publish.
	if err := e.search.Upsert(ctx, searchEntryFrom(handle, pub, snap.CreatedAt)); err != nil {
		e.log.Warn("search index rebuild failed",
			zap.String("handle", handle),
			zap.Int64("version", snap.VersionID),
			zap.Error(err),
		)
	}

	e.invalidate(ctx, handle)
	return snap, nil
}

// Latest returns the newest snapshot only while the handle is published.
// An unpublished latest version reads exactly like a handle that never
// published: absent.
func (e *SnapshotEngine) Latest(ctx context.Context, handle string) (*domain.Snapshot, error) {
	return e.snaps.LatestPublished(ctx, handle)
}

// LatestAny ignores the published gate; for the owner and moderation views.
func (e *SnapshotEngine) LatestAny(ctx context.Context, handle string) (*domain.Snapshot, error) {
	return e.snaps.Latest(ctx, handle)
}

func (e *SnapshotEngine) Versions(ctx context.Context, handle string) ([]domain.Snapshot, error) {
	return e.snaps.Versions(ctx, handle)
}

// PublicProfile serves the public fetch endpoint, read-through cached when
// redis is configured.
func (e *SnapshotEngine) PublicProfile(ctx context.Context, handle string) (*PublicProfile, error) {
	load := func(ctx context.Context) (*PublicProfile, error) {
		s, err := e.snaps.LatestPublished(ctx, handle)
		if err != nil {
			return nil, fmt.Errorf("load published snapshot: %w", err)
		}
		if s == nil {
			return nil, fmt.Errorf("%w: profile %q", domain.ErrNotFound, handle)
		}
		return &PublicProfile{
			Handle:    s.Handle,
			Version:   s.VersionID,
			UpdatedAt: s.CreatedAt,
			Profile:   json.RawMessage(s.Public),
		}, nil
	}
	if e.cache == nil {
		return load(ctx)
	}
	return cache.GetOrLoadJSON(e.cache, ctx, publicCacheKey(handle), publicCacheTTL, load)
}

// Unpublish soft-deletes the public surface: every snapshot row is retained
// but flagged unpublished, and the version counter keeps running.
func (e *SnapshotEngine) Unpublish(ctx context.Context, handle string) (int64, error) {
	n, err := e.snaps.UnpublishAll(ctx, handle)
	if err != nil {
		return 0, fmt.Errorf("unpublish snapshots: %w", err)
	}
	e.invalidate(ctx, handle)
	return n, nil
}

func (e *SnapshotEngine) invalidate(ctx context.Context, handle string) {
	if e.cache != nil {
		e.cache.Invalidate(ctx, publicCacheKey(handle))
	}
}

func publicCacheKey(handle string) string { return "profilehub:pub:" + handle }

func searchEntryFrom(handle string, pub profile.Document, updated time.Time) *domain.SearchEntry {
	orgs := make([]string, 0, len(pub.Experience))
	titles := make([]string, 0, len(pub.Experience))
	for _, ex := range pub.Experience {
		orgs = append(orgs, ex.Org)
		titles = append(titles, ex.Title)
	}
	return &domain.SearchEntry{
		Handle:    handle,
		Name:      pub.Name,
		Headline:  pub.Headline,
		Skills:    domain.JoinTags(pub.Skills),
		Orgs:      domain.JoinTags(orgs),
		Titles:    domain.JoinTags(titles),
		Location:  pub.Location,
		UpdatedAt: updated,
	}
}
