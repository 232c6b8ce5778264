package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"profilehub/internal/domain"
	"profilehub/internal/profile"
)

var handleRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,30}[a-z0-9])?$`)

// ProfileService owns the private side: the draft, the visibility settings
// and the handle claim. Publishing delegates to the snapshot engine.
type ProfileService struct {
	drafts  domain.DraftRepository
	handles domain.HandleRepository
	engine  *SnapshotEngine
}

func NewProfileService(drafts domain.DraftRepository, handles domain.HandleRepository, engine *SnapshotEngine) *ProfileService {
	return &ProfileService{drafts: drafts, handles: handles, engine: engine}
}

// OwnProfile is what the authenticated owner sees: full draft, visibility,
// and publish status. Never served without auth.
type OwnProfile struct {
	Handle        string              `json:"handle,omitempty"`
	Canonical     *profile.Document   `json:"canonical,omitempty"`
	Visibility    *profile.Visibility `json:"visibility,omitempty"`
	Published     bool                `json:"published"`
	LatestVersion int64               `json:"latestVersion,omitempty"`
	UpdatedAt     *time.Time          `json:"updatedAt,omitempty"`
}

func (s *ProfileService) GetOwn(ctx context.Context, accountID string) (*OwnProfile, error) {
	out := &OwnProfile{}

	h, err := s.handles.ByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load handle: %w", err)
	}
	if h != nil {
		out.Handle = h.Handle
		if latest, err := s.engine.Latest(ctx, h.Handle); err != nil {
			return nil, err
		} else if latest != nil {
			out.Published = true
			out.LatestVersion = latest.VersionID
		}
	}

	d, err := s.drafts.Get(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	if d != nil {
		var doc profile.Document
		if err := json.Unmarshal(d.Canonical, &doc); err != nil {
			return nil, fmt.Errorf("decode draft: %w", err)
		}
		var vis profile.Visibility
		if err := json.Unmarshal(d.Visibility, &vis); err != nil {
			return nil, fmt.Errorf("decode visibility: %w", err)
		}
		out.Canonical = &doc
		out.Visibility = &vis
		out.UpdatedAt = &d.UpdatedAt
	}
	return out, nil
}

// SaveDraft overwrites the full draft; callers always send the whole
// document plus visibility, there is no field-level merge.
func (s *ProfileService) SaveDraft(ctx context.Context, accountID string, doc profile.Document, vis profile.Visibility) error {
	canonicalJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	visJSON, err := json.Marshal(vis)
	if err != nil {
		return fmt.Errorf("encode visibility: %w", err)
	}
	return s.drafts.Save(ctx, &domain.Draft{
		AccountID:  accountID,
		Canonical:  canonicalJSON,
		Visibility: visJSON,
		UpdatedAt:  time.Now().UTC(),
	})
}

func (s *ProfileService) ClaimHandle(ctx context.Context, accountID, handle string) error {
	if !handleRe.MatchString(handle) {
		return fmt.Errorf("%w: handle must be 1-32 chars of a-z, 0-9 and '-'", domain.ErrValidation)
	}
	return s.handles.Claim(ctx, &domain.Handle{
		Handle:    handle,
		AccountID: accountID,
		CreatedAt: time.Now().UTC(),
	})
}

func (s *ProfileService) Handle(ctx context.Context, accountID string) (*domain.Handle, error) {
	return s.handles.ByAccount(ctx, accountID)
}

// Publish promotes the current draft. Requires a claimed handle and a saved
// draft; redaction uses the visibility stored with the draft at this moment
// and the result is frozen into the snapshot.
func (s *ProfileService) Publish(ctx context.Context, accountID string) (*domain.Snapshot, error) {
	h, err := s.handles.ByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load handle: %w", err)
	}
	if h == nil {
		return nil, domain.ErrNoHandle
	}

	d, err := s.drafts.Get(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	if d == nil {
		return nil, fmt.Errorf("%w: nothing to publish, save a draft first", domain.ErrValidation)
	}

	var doc profile.Document
	if err := json.Unmarshal(d.Canonical, &doc); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	var vis profile.Visibility
	if err := json.Unmarshal(d.Visibility, &vis); err != nil {
		return nil, fmt.Errorf("decode visibility: %w", err)
	}

	return s.engine.Publish(ctx, h.Handle, doc, vis)
}
