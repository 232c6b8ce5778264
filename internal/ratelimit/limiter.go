package ratelimit

import (
	"sync"
	"time"
)

// Tier is a named (window, max-requests) policy applied per endpoint class.
type Tier struct {
	Name   string
	Window time.Duration
	Max    int
}

func DefaultTier() Tier { return Tier{Name: "default", Window: time.Minute, Max: 100} }

func PublicReadTier() Tier { return Tier{Name: "public-read", Window: time.Minute, Max: 300} }

// Decision is the outcome for one request. Rejections are terminal for the
// attempt; RetryAfter is the hint handed back in the Retry-After header.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

type window struct {
	start time.Time
	span  time.Duration
	count int
}

// Store holds fixed-window counters keyed by (tier, clientKey). It is
// process-local and best-effort: counters vanish on restart. Construct one
// per engine (or per test) and pass it in; there is no package singleton.
type Store struct {
	mu        sync.Mutex
	windows   map[string]*window
	now       func() time.Time
	lastPrune time.Time
}

func NewStore() *Store {
	return &Store{windows: make(map[string]*window), now: time.Now}
}

// Allow records one request for key under t and decides it. The
// increment-and-compare happens under the lock, so two concurrent requests
// can never both take the last slot of a window.
func (s *Store) Allow(key string, t Tier) Decision {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.prune(now)

	k := t.Name + ":" + key
	w := s.windows[k]
	if w == nil || now.Sub(w.start) >= t.Window {
		w = &window{start: now, span: t.Window}
		s.windows[k] = w
	}
	if w.count >= t.Max {
		return Decision{RetryAfter: t.Window - now.Sub(w.start)}
	}
	w.count++
	return Decision{Allowed: true, Remaining: t.Max - w.count}
}

// prune drops windows stale for more than twice their own span so the map
// does not grow with one entry per client forever. Each entry is judged
// against the span it was created with; tiers have different windows and a
// short-window caller must never evict a longer window that is still live.
// Runs at most once a minute.
func (s *Store) prune(now time.Time) {
	if now.Sub(s.lastPrune) < time.Minute {
		return
	}
	s.lastPrune = now
	for k, w := range s.windows {
		if now.Sub(w.start) >= 2*w.span {
			delete(s.windows, k)
		}
	}
}
