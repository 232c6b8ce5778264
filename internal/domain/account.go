package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Account struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	Email        string         `gorm:"uniqueIndex;size:191" json:"email"`
	Name         string         `gorm:"size:64" json:"name"`
	PasswordHash string         `gorm:"size:191" json:"-"`
	Role         string         `gorm:"size:16" json:"role"` // "user"/"admin"
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Account) TableName() string { return "accounts" }

// Handle is the unique public identifier of a profile. Immutable once
// claimed; there is no rename.
type Handle struct {
	Handle    string    `gorm:"primaryKey;size:64" json:"handle"`
	AccountID string    `gorm:"uniqueIndex;size:36" json:"accountId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Handle) TableName() string { return "handles" }

type AccountRepository interface {
	Create(ctx context.Context, a *Account) error
	FindByID(ctx context.Context, id string) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	List(ctx context.Context, offset, limit int) ([]Account, int64, error)
	SoftDelete(ctx context.Context, id string) error
}

type HandleRepository interface {
	// Claim inserts the handle. Returns ErrHandleTaken when the handle is
	// already owned, ErrHandleClaimed when the account already has one.
	Claim(ctx context.Context, h *Handle) error
	ByAccount(ctx context.Context, accountID string) (*Handle, error)
	ByHandle(ctx context.Context, handle string) (*Handle, error)
}
