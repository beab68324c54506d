// Package costupdate keeps derived costs consistent with source prices.
//
// Leaf updaters refresh usage rows (quantity × unit cost), aggregate
// calculators roll usage costs up into recipes and products, and the chain
// orchestrators drive both in dependency order for a set of changed prices.
// Leaf costs are always written before any aggregate reads them.
package costupdate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"larder/internal/store"
)

var (
	// ErrNoIDs is returned by callers that require at least one identifier.
	ErrNoIDs = errors.New("at least one id is required")
	// ErrNegativePrice rejects unit prices below zero.
	ErrNegativePrice = errors.New("unit cost must not be negative")
)

// Service runs recalculations against a store. Invocations on one Service are
// serialised, and every public operation runs in a single store transaction
// so a failure part way through leaves no partial writes behind.
type Service struct {
	store   store.Store
	journal bool
	now     func() time.Time
	mu      sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithJournal toggles recording of each orchestrator run in the cost run journal.
func WithJournal(enabled bool) Option {
	return func(s *Service) {
		s.journal = enabled
	}
}

// WithClock overrides the time source used for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:   st,
		journal: true,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// atomically runs fn under the service lock inside one transaction.
func (s *Service) atomically(ctx context.Context, fn func(tx store.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Transaction(ctx, fn)
}

// normalizeIDs trims, drops blanks and removes duplicates while keeping order.
func normalizeIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
