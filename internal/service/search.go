package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"profilehub/internal/domain"
)

const (
	defaultQueryLimit = 20
	maxQueryLimit     = 100
)

// SearchService answers the public discovery queries over the derived index.
type SearchService struct {
	entries domain.SearchRepository
}

func NewSearchService(entries domain.SearchRepository) *SearchService {
	return &SearchService{entries: entries}
}

// QueryInput carries the raw filter values from the query string. Limit is
// bound as an int so an unparseable value fails binding instead of silently
// falling back; UpdatedAfter and Cursor are validated here.
type QueryInput struct {
	Skill        string `form:"skill"`
	Org          string `form:"org"`
	Title        string `form:"title"`
	Location     string `form:"location"`
	UpdatedAfter string `form:"updatedAfter"`
	Limit        int    `form:"limit"`
	Cursor       string `form:"cursor"`
}

type QueryResult struct {
	Handle    string    `json:"handle"`
	Name      string    `json:"name,omitempty"`
	Headline  string    `json:"headline,omitempty"`
	Location  string    `json:"location,omitempty"`
	Skills    []string  `json:"skills,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type QueryOutput struct {
	Results    []QueryResult `json:"results"`
	NextCursor *string       `json:"nextCursor"`
}

func (s *SearchService) Query(ctx context.Context, in QueryInput) (QueryOutput, error) {
	limit := in.Limit
	switch {
	case limit < 0:
		return QueryOutput{}, fmt.Errorf("%w: limit must be positive", domain.ErrValidation)
	case limit == 0:
		limit = defaultQueryLimit
	case limit > maxQueryLimit:
		limit = maxQueryLimit
	}

	f := domain.SearchFilter{
		Skill:    in.Skill,
		Org:      in.Org,
		Title:    in.Title,
		Location: in.Location,
		Limit:    limit + 1, // one extra row decides whether a next page exists
	}
	if in.UpdatedAfter != "" {
		t, err := time.Parse(time.RFC3339, in.UpdatedAfter)
		if err != nil {
			return QueryOutput{}, fmt.Errorf("%w: updatedAfter must be RFC 3339", domain.ErrValidation)
		}
		f.UpdatedAfter = &t
	}
	if in.Cursor != "" {
		cur, err := decodeCursor(in.Cursor)
		if err != nil {
			return QueryOutput{}, err
		}
		f.After = cur
	}

	entries, err := s.entries.Query(ctx, f)
	if err != nil {
		return QueryOutput{}, fmt.Errorf("query search index: %w", err)
	}

	out := QueryOutput{Results: make([]QueryResult, 0, len(entries))}
	hasMore := len(entries) > limit
	if hasMore {
		entries = entries[:limit]
	}
	for _, e := range entries {
		out.Results = append(out.Results, QueryResult{
			Handle:    e.Handle,
			Name:      e.Name,
			Headline:  e.Headline,
			Location:  e.Location,
			Skills:    domain.SplitTags(e.Skills),
			UpdatedAt: e.UpdatedAt,
		})
	}
	if hasMore {
		last := entries[len(entries)-1]
		c := encodeCursor(domain.SearchCursor{UpdatedAt: last.UpdatedAt, Handle: last.Handle})
		out.NextCursor = &c
	}
	return out, nil
}

func encodeCursor(c domain.SearchCursor) string {
	b, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(b)
}

func decodeCursor(s string) (*domain.SearchCursor, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed cursor", domain.ErrValidation)
	}
	var c domain.SearchCursor
	if err := json.Unmarshal(b, &c); err != nil || c.UpdatedAt.IsZero() {
		return nil, fmt.Errorf("%w: malformed cursor", domain.ErrValidation)
	}
	return &c, nil
}
