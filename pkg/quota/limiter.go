package quota

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// CounterStore accumulates request cost per key inside a fixed window and
// returns the running total. Implementations must be safe for concurrent use.
type CounterStore interface {
	Add(ctx context.Context, key string, cost int64, window time.Duration) (int64, error)
}

// ExceededError reports which admission tier rejected the request. Its label
// is user-visible ("80 per minute").
type ExceededError struct {
	RuleLabel string
}

func (e *ExceededError) Error() string {
	return "slowdown: " + e.RuleLabel
}

// Limiter evaluates every configured rule against the counter store. All
// tiers must pass for a request to be admitted. Limiter holds no per-request
// state and is safe for concurrent use.
type Limiter struct {
	rules []Rule
	dir   Directory
	store CounterStore
}

func NewLimiter(rules []Rule, dir Directory, store CounterStore) *Limiter {
	return &Limiter{rules: rules, dir: dir, store: store}
}

// Allow charges cost against every tier for the given principal and returns
// an *ExceededError naming the first tier whose ceiling is hit. principal is
// the accounting identity (client address), apiKey scales the ceilings.
func (l *Limiter) Allow(ctx context.Context, principal, apiKey string, cost int64) error {
	for i, rule := range l.rules {
		ceiling, err := rule.Resolve(ctx, l.dir, apiKey)
		if err != nil {
			return err
		}
		key := fmt.Sprintf("lingogate:quota:%d:%s", i, principal)
		total, err := l.store.Add(ctx, key, cost, rule.Window)
		if err != nil {
			return fmt.Errorf("counter store: %w", err)
		}
		if total > ceiling {
			return &ExceededError{RuleLabel: rule.Label(ceiling)}
		}
	}
	return nil
}

type window struct {
	total   int64
	resetAt time.Time
}

// MemoryStore is the in-process CounterStore used when no Redis address is
// configured. Expired windows are dropped lazily on access and by Cleanup.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

func (s *MemoryStore) Add(_ context.Context, key string, cost int64, windowSize time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, ok := s.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(windowSize)}
		s.windows[key] = w
	}
	w.total += cost
	return w.total, nil
}

// Cleanup drops expired windows. Meant to be called periodically from a
// background janitor so idle keys do not accumulate.
func (s *MemoryStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, w := range s.windows {
		if now.After(w.resetAt) {
			delete(s.windows, key)
		}
	}
}
