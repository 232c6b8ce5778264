package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"profilehub/internal/core/cache"
	"profilehub/internal/domain"
)

// Lifecycle coordinates the destructive transitions across the draft store,
// the snapshot engine and the search index so they never diverge.
type Lifecycle struct {
	db      *gorm.DB
	engine  *SnapshotEngine
	search  domain.SearchRepository
	handles domain.HandleRepository
	cache   *cache.Cache
	log     *zap.Logger
}

func NewLifecycle(db *gorm.DB, engine *SnapshotEngine, search domain.SearchRepository, handles domain.HandleRepository, c *cache.Cache, log *zap.Logger) *Lifecycle {
	return &Lifecycle{db: db, engine: engine, search: search, handles: handles, cache: c, log: log}
}

// Unpublish hides the handle from the public surface: snapshots first (the
// read gate closes immediately), then the index entry. If the index delete
// fails the entry is orphaned but harmless — the snapshot gate already hides
// the profile fetch, and the next publish rewrites the entry wholesale.
func (l *Lifecycle) Unpublish(ctx context.Context, handle string) error {
	if _, err := l.engine.Unpublish(ctx, handle); err != nil {
		return err
	}
	if err := l.search.Delete(ctx, handle); err != nil {
		l.log.Warn("search entry removal failed, will self-heal on next publish",
			zap.String("handle", handle),
			zap.Error(err),
		)
	}
	return nil
}

// HardDelete removes every trace of the account: search entry, handle,
// snapshots, draft, account row. One transaction, ordered most-publicly-
// visible first, so any failure degrades toward the profile being gone
// rather than half-exposed.
func (l *Lifecycle) HardDelete(ctx context.Context, accountID string) error {
	h, err := l.handles.ByAccount(ctx, accountID)
	if err != nil {
		return fmt.Errorf("resolve handle: %w", err)
	}

	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if h != nil {
			if err := tx.Where("handle = ?", h.Handle).Delete(&domain.SearchEntry{}).Error; err != nil {
				return err
			}
			if err := tx.Where("handle = ?", h.Handle).Delete(&domain.Handle{}).Error; err != nil {
				return err
			}
			if err := tx.Where("handle = ?", h.Handle).Delete(&domain.Snapshot{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("account_id = ?", accountID).Delete(&domain.Draft{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("id = ?", accountID).Delete(&domain.Account{}).Error
	})
	if err != nil {
		return fmt.Errorf("hard delete account: %w", err)
	}

	if h != nil && l.cache != nil {
		l.cache.Invalidate(ctx, publicCacheKey(h.Handle))
	}
	l.log.Info("account hard-deleted", zap.String("account_id", accountID))
	return nil
}
