package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"profilehub/internal/domain"
)

type HandleRepo struct{ db *gorm.DB }

func NewHandleRepo(db *gorm.DB) *HandleRepo { return &HandleRepo{db: db} }

// Claim inserts the handle row. The two unique indexes (handle pk,
// account_id) turn both race outcomes into typed domain errors, so claims
// stay correct under concurrent requests without a read-then-write check.
func (r *HandleRepo) Claim(ctx context.Context, h *domain.Handle) error {
	err := r.db.WithContext(ctx).Create(h).Error
	if err == nil {
		return nil
	}
	if isDupKey(err) {
		if existing, e2 := r.ByAccount(ctx, h.AccountID); e2 == nil && existing != nil {
			return domain.ErrHandleClaimed
		}
		return domain.ErrHandleTaken
	}
	return err
}

func (r *HandleRepo) ByAccount(ctx context.Context, accountID string) (*domain.Handle, error) {
	var h domain.Handle
	err := r.db.WithContext(ctx).First(&h, "account_id = ?", accountID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &h, err
}

func (r *HandleRepo) ByHandle(ctx context.Context, handle string) (*domain.Handle, error) {
	var h domain.Handle
	err := r.db.WithContext(ctx).First(&h, "handle = ?", handle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &h, err
}
