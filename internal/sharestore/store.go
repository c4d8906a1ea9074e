package sharestore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"greeting-cards/pkg/models"
)

// DefaultTTL is how long a shared card stays retrievable.
const DefaultTTL = 48 * time.Hour

// idRetries bounds regeneration attempts on an id clash. With 128-bit ids a
// single retry should never happen in practice.
const idRetries = 5

// Store is the interface for the ephemeral shared-card store.
type Store interface {
	// Put persists a new record with a fresh id and returns it.
	Put(ctx context.Context, payload models.CardPayload) (*models.SharedCard, error)

	// Get returns the live record for id, or ErrNotFound if the id is
	// absent or the record has expired.
	Get(ctx context.Context, id string) (*models.SharedCard, error)

	// Sweep removes every expired record from durable storage and the
	// cache, returning the number removed. Idempotent.
	Sweep(ctx context.Context) (int, error)

	// Len returns the number of durable records, expired ones included.
	Len(ctx context.Context) (int, error)

	Close() error
}

// ShareStore layers a write-through in-memory cache over a durable Backend.
// The backend is authoritative; the cache is rebuilt from it at startup and
// only ever holds a subset of it. A single store-wide mutex covers both
// tiers, which also rules out torn reads between a Sweep and a concurrent
// Get on the same id.
type ShareStore struct {
	mu      sync.Mutex
	cache   map[string]*models.SharedCard
	backend Backend
	ttl     time.Duration
	clock   clock.Clock
	logger  *zap.Logger
}

// Option configures a ShareStore.
type Option func(*ShareStore)

// WithTTL overrides the default 48 hour record lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *ShareStore) { s.ttl = ttl }
}

// WithClock injects the clock used for expiry decisions. Tests use a mock
// clock so expiry can be exercised without real time passing.
func WithClock(c clock.Clock) Option {
	return func(s *ShareStore) { s.clock = c }
}

// NewShareStore creates a store over backend and warms the cache with the
// live durable records.
func NewShareStore(ctx context.Context, backend Backend, logger *zap.Logger, opts ...Option) (*ShareStore, error) {
	s := &ShareStore{
		cache:   make(map[string]*models.SharedCard),
		backend: backend,
		ttl:     DefaultTTL,
		clock:   clock.New(),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	records, err := backend.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load durable records: %w", err)
	}
	now := s.clock.Now()
	for id, rec := range records {
		if !rec.ExpiredAt(now) {
			s.cache[id] = rec
		}
	}
	logger.Info("share store initialized",
		zap.Int("durable_records", len(records)),
		zap.Int("live_records", len(s.cache)),
		zap.Duration("ttl", s.ttl))
	return s, nil
}

// Put generates a fresh id, persists the record durably, then inserts it
// into the cache. On a persistence failure the cache is left untouched so
// no phantom live entry can exist.
func (s *ShareStore) Put(ctx context.Context, payload models.CardPayload) (*models.SharedCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.freshID(ctx)
	if err != nil {
		return nil, err
	}

	card := models.NewSharedCard(id, payload, s.clock.Now(), s.ttl)
	if err := s.backend.Write(ctx, card); err != nil {
		s.logger.Error("failed to persist shared card", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("%w: %s", ErrStorageWrite, err)
	}

	s.cache[id] = card
	s.logger.Debug("shared card stored",
		zap.String("id", id),
		zap.Time("expires_at", card.ExpiresAt))
	return card, nil
}

// Get applies lazy expiry: an expired record found in either tier is
// removed before NotFound is reported, so once an id has expired it stays
// expired.
func (s *ShareStore) Get(ctx context.Context, id string) (*models.SharedCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()

	if card, ok := s.cache[id]; ok {
		if !card.ExpiredAt(now) {
			return card, nil
		}
		// Expired in cache: evict and fall through to durable storage,
		// which is authoritative.
		delete(s.cache, id)
	}

	card, err := s.backend.Read(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read shared card: %w", err)
	}

	if card.ExpiredAt(now) {
		if err := s.backend.Delete(ctx, id); err != nil {
			// Removal is best-effort here; the next Sweep will get it.
			s.logger.Warn("failed to delete expired card", zap.Error(err), zap.String("id", id))
		}
		return nil, ErrNotFound
	}

	s.cache[id] = card
	return card, nil
}

// Sweep scans all durable records and removes every expired one, evicting
// matching cache entries.
func (s *ShareStore) Sweep(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.backend.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to scan durable records: %w", err)
	}

	now := s.clock.Now()
	removed := 0
	for id, rec := range records {
		if !rec.ExpiredAt(now) {
			continue
		}
		if err := s.backend.Delete(ctx, id); err != nil {
			s.logger.Warn("failed to delete expired card", zap.Error(err), zap.String("id", id))
			continue
		}
		delete(s.cache, id)
		removed++
	}

	if removed > 0 {
		s.logger.Info("swept expired shared cards", zap.Int("removed", removed))
	}
	return removed, nil
}

func (s *ShareStore) Len(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.backend.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to scan durable records: %w", err)
	}
	return len(records), nil
}

func (s *ShareStore) Close() error {
	return s.backend.Close()
}

// freshID returns an id not currently present in either tier, regenerating
// on the rare clash. Caller holds s.mu.
func (s *ShareStore) freshID(ctx context.Context) (string, error) {
	for i := 0; i < idRetries; i++ {
		id, err := NewID()
		if err != nil {
			return "", err
		}
		if _, ok := s.cache[id]; ok {
			continue
		}
		_, err = s.backend.Read(ctx, id)
		if errors.Is(err, ErrNotFound) {
			return id, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check id uniqueness: %w", err)
		}
	}
	return "", fmt.Errorf("failed to generate a unique share id after %d attempts", idRetries)
}
