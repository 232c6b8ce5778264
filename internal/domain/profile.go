package domain

import (
	"context"
	"time"

	"gorm.io/datatypes"
)

// Draft is the single mutable working profile of an account: the canonical
// document plus the visibility settings that will drive redaction at publish
// time. Saves overwrite it wholesale; there is no draft history.
type Draft struct {
	AccountID  string         `gorm:"primaryKey;size:36" json:"accountId"`
	Canonical  datatypes.JSON `gorm:"column:canonical_json" json:"canonical"`
	Visibility datatypes.JSON `gorm:"column:visibility_json" json:"visibility"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

func (Draft) TableName() string { return "drafts" }

// Snapshot is an immutable published record. version_id is monotonic per
// handle, assigned atomically at insert; public_json is frozen at publish
// time and never recomputed. Unpublish flips published to false, nothing
// else is ever mutated.
type Snapshot struct {
	ID          uint           `gorm:"primaryKey" json:"-"`
	Handle      string         `gorm:"size:64;index;uniqueIndex:idx_snapshots_handle_version,priority:1" json:"handle"`
	VersionID   int64          `gorm:"column:version_id;uniqueIndex:idx_snapshots_handle_version,priority:2" json:"versionId"`
	ContentHash string         `gorm:"size:64" json:"contentHash"`
	Canonical   datatypes.JSON `gorm:"column:canonical_json" json:"canonical"`
	Public      datatypes.JSON `gorm:"column:public_json" json:"public"`
	Published   bool           `gorm:"index" json:"published"`
	CreatedAt   time.Time      `json:"createdAt"`
}

func (Snapshot) TableName() string { return "snapshots" }

// SearchEntry is the derived, queryable row for a currently-published handle.
// It mirrors the latest published snapshot's public projection and is only
// ever written by the snapshot engine (rebuild) or the lifecycle coordinator
// (delete). Tag columns hold normalized tag sets, see JoinTags.
type SearchEntry struct {
	Handle    string    `gorm:"primaryKey;size:64" json:"handle"`
	Name      string    `gorm:"size:128" json:"name"`
	Headline  string    `gorm:"size:255" json:"headline"`
	Skills    string    `gorm:"type:text" json:"-"`
	Orgs      string    `gorm:"type:text" json:"-"`
	Titles    string    `gorm:"type:text" json:"-"`
	Location  string    `gorm:"size:128" json:"location"`
	UpdatedAt time.Time `gorm:"index" json:"updatedAt"`
}

func (SearchEntry) TableName() string { return "search_entries" }

type DraftRepository interface {
	// Get returns nil, nil when the account never saved a draft.
	Get(ctx context.Context, accountID string) (*Draft, error)
	Save(ctx context.Context, d *Draft) error
}

type SnapshotRepository interface {
	// Append inserts a new snapshot with the next version_id for the handle.
	// Version assignment is a single atomic statement at the storage layer.
	Append(ctx context.Context, s *Snapshot) (*Snapshot, error)
	// Latest returns the highest version regardless of published state,
	// nil when the handle has no snapshots at all.
	Latest(ctx context.Context, handle string) (*Snapshot, error)
	// LatestPublished returns the highest version with published = true,
	// nil when none exists.
	LatestPublished(ctx context.Context, handle string) (*Snapshot, error)
	Versions(ctx context.Context, handle string) ([]Snapshot, error)
	UnpublishAll(ctx context.Context, handle string) (int64, error)
}

// SearchCursor is the decoded keyset position of a query page: the sort key
// of the last delivered entry, not an offset.
type SearchCursor struct {
	UpdatedAt time.Time `json:"u"`
	Handle    string    `json:"h"`
}

type SearchFilter struct {
	Skill        string
	Org          string
	Title        string
	Location     string
	UpdatedAfter *time.Time
	After        *SearchCursor
	Limit        int
}

type SearchRepository interface {
	Upsert(ctx context.Context, e *SearchEntry) error
	Delete(ctx context.Context, handle string) error
	// Query returns entries ordered by updated_at DESC, handle ASC.
	Query(ctx context.Context, f SearchFilter) ([]SearchEntry, error)
}
