package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"profilehub/internal/domain"
)

type DraftRepo struct{ db *gorm.DB }

func NewDraftRepo(db *gorm.DB) *DraftRepo { return &DraftRepo{db: db} }

func (r *DraftRepo) Get(ctx context.Context, accountID string) (*domain.Draft, error) {
	var d domain.Draft
	err := r.db.WithContext(ctx).First(&d, "account_id = ?", accountID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &d, err
}

// Save overwrites the whole draft; there is no partial merge at this layer.
func (r *DraftRepo) Save(ctx context.Context, d *domain.Draft) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"canonical_json", "visibility_json", "updated_at"}),
	}).Create(d).Error
}
