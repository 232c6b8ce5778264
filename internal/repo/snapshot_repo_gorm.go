package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"profilehub/internal/domain"
)

type SnapshotRepo struct{ db *gorm.DB }

func NewSnapshotRepo(db *gorm.DB) *SnapshotRepo { return &SnapshotRepo{db: db} }

// appendRetries: two concurrent publishes for one handle can both compute
// MAX+1 under read committed; the unique (handle, version_id) index aborts
// one of them and a retry recomputes. Gap-free because the failed insert
// rolls back entirely.
const appendRetries = 3

// Append assigns the next version_id and inserts in one atomic
// INSERT ... SELECT statement, never a read-then-write pair.
func (r *SnapshotRepo) Append(ctx context.Context, s *domain.Snapshot) (*domain.Snapshot, error) {
	var lastErr error
	for attempt := 0; attempt < appendRetries; attempt++ {
		var out domain.Snapshot
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Exec(`INSERT INTO snapshots (handle, version_id, content_hash, canonical_json, public_json, published, created_at)
SELECT ?, COALESCE(MAX(version_id), 0) + 1, ?, ?, ?, ?, ? FROM snapshots WHERE handle = ?`,
				s.Handle, s.ContentHash, s.Canonical, s.Public, s.Published, s.CreatedAt, s.Handle)
			if res.Error != nil {
				return res.Error
			}
			return tx.Where("handle = ?", s.Handle).Order("version_id DESC").First(&out).Error
		})
		if err == nil {
			return &out, nil
		}
		if !isDupKey(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (r *SnapshotRepo) Latest(ctx context.Context, handle string) (*domain.Snapshot, error) {
	var s domain.Snapshot
	err := r.db.WithContext(ctx).
		Where("handle = ?", handle).
		Order("version_id DESC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &s, err
}

func (r *SnapshotRepo) LatestPublished(ctx context.Context, handle string) (*domain.Snapshot, error) {
	var s domain.Snapshot
	err := r.db.WithContext(ctx).
		Where("handle = ? AND published = ?", handle, true).
		Order("version_id DESC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &s, err
}

func (r *SnapshotRepo) Versions(ctx context.Context, handle string) ([]domain.Snapshot, error) {
	var out []domain.Snapshot
	err := r.db.WithContext(ctx).
		Select("id", "handle", "version_id", "content_hash", "published", "created_at").
		Where("handle = ?", handle).
		Order("version_id DESC").
		Find(&out).Error
	return out, err
}

// UnpublishAll hides the whole history from public reads; rows and version
// sequencing stay intact.
func (r *SnapshotRepo) UnpublishAll(ctx context.Context, handle string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Snapshot{}).
		Where("handle = ? AND published = ?", handle, true).
		Update("published", false)
	return res.RowsAffected, res.Error
}
