package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"profilehub/internal/domain"
)

type SearchRepo struct{ db *gorm.DB }

func NewSearchRepo(db *gorm.DB) *SearchRepo { return &SearchRepo{db: db} }

// Upsert replaces the single entry for the handle atomically.
func (r *SearchRepo) Upsert(ctx context.Context, e *domain.SearchEntry) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "handle"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "headline", "skills", "orgs", "titles", "location", "updated_at",
		}),
	}).Create(e).Error
}

func (r *SearchRepo) Delete(ctx context.Context, handle string) error {
	return r.db.WithContext(ctx).Where("handle = ?", handle).Delete(&domain.SearchEntry{}).Error
}

// Query orders by updated_at DESC with handle ASC as tie-break so keyset
// pagination stays stable while entries are inserted or removed elsewhere.
func (r *SearchRepo) Query(ctx context.Context, f domain.SearchFilter) ([]domain.SearchEntry, error) {
	q := r.db.WithContext(ctx).Model(&domain.SearchEntry{})

	if f.Skill != "" {
		q = q.Where("skills LIKE ?", domain.TagPattern(f.Skill))
	}
	if f.Org != "" {
		q = q.Where("orgs LIKE ?", domain.TagPattern(f.Org))
	}
	if f.Title != "" {
		q = q.Where("titles LIKE ?", domain.TagPattern(f.Title))
	}
	if f.Location != "" {
		needle := "%" + strings.ToLower(strings.TrimSpace(f.Location)) + "%"
		q = q.Where("LOWER(location) LIKE ?", needle)
	}
	if f.UpdatedAfter != nil {
		q = q.Where("updated_at >= ?", *f.UpdatedAfter)
	}
	if f.After != nil {
		q = q.Where("updated_at < ? OR (updated_at = ? AND handle > ?)",
			f.After.UpdatedAt, f.After.UpdatedAt, f.After.Handle)
	}

	var out []domain.SearchEntry
	err := q.Order("updated_at DESC, handle ASC").Limit(f.Limit).Find(&out).Error
	return out, err
}
