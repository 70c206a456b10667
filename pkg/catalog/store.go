// pkg/catalog/store.go
package catalog

import (
	"sync"
	"sync/atomic"

	"github.com/pingcap/errors"
	"go.uber.org/zap"
)

// Store publishes the current catalog. Readers load the current snapshot
// without locking and keep using it for as long as they like; writers
// derive a new snapshot from the current one and publish it.
type Store struct {
	current atomic.Pointer[Catalog]
	// writeMu serializes Update calls
	writeMu sync.Mutex
	logger  *zap.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger commits are reported to.
func WithLogger(lg *zap.Logger) StoreOption {
	return func(s *Store) {
		s.logger = lg
	}
}

// NewStore creates a store publishing initial, or an empty catalog if
// initial is nil.
func NewStore(initial *Catalog, opts ...StoreOption) *Store {
	s := &Store{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if initial == nil {
		initial = NewCatalog()
	}
	s.current.Store(initial)
	observe(initial)
	return s
}

// Current returns the latest published snapshot.
func (s *Store) Current() *Catalog {
	return s.current.Load()
}

// Update applies fn to the current snapshot and publishes the result.
// Concurrent Update calls run one at a time; if a CompareAndSwap publishes
// in between, fn is run again on the newer snapshot. If fn fails nothing
// is published.
func (s *Store) Update(fn func(*Catalog) (*Catalog, error)) (*Catalog, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	for {
		old := s.current.Load()
		next, err := fn(old)
		if err != nil {
			s.logger.Debug("catalog update rejected", zap.Uint64("version", old.version), zap.Error(err))
			return nil, errors.Trace(err)
		}
		if next == nil {
			return nil, errors.New("catalog update returned no catalog")
		}
		next = s.stamp(old, next)
		if s.current.CompareAndSwap(old, next) {
			s.committed(next)
			return next, nil
		}
		conflictCounter.Inc()
	}
}

// CompareAndSwap publishes next if old is still the current snapshot. A
// caller that loses the race should rebuild next from Current and retry.
// A nil old or next is never published.
func (s *Store) CompareAndSwap(old, next *Catalog) bool {
	if old == nil || next == nil {
		return false
	}
	stamped := s.stamp(old, next)
	if !s.current.CompareAndSwap(old, stamped) {
		conflictCounter.Inc()
		s.logger.Debug("catalog publish conflict", zap.Uint64("base-version", old.version))
		return false
	}
	s.committed(stamped)
	return true
}

// stamp returns next carrying the version after old.
func (s *Store) stamp(old, next *Catalog) *Catalog {
	out := next.clone()
	out.version = old.version + 1
	return out
}

func (s *Store) committed(c *Catalog) {
	commitCounter.Inc()
	observe(c)
	s.logger.Debug("catalog committed",
		zap.Uint64("version", c.version),
		zap.Int("tables", c.TableCount()),
		zap.Int("indexes", c.IndexCount()))
}
