// Package memory is a process-local implementation of the domain
// repositories. It backs the "memory" store driver and the service tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/retailpos/internal/domain/entity"
	domainRepo "github.com/sangkips/retailpos/internal/domain/repository"
)

// Store holds all data behind one lock. Transactions work on a copy of the
// state and swap it in on success.
type Store struct {
	mu       sync.RWMutex
	st       *state
	now      func() time.Time
	lastSeen time.Time
	writeErr error
}

type state struct {
	products    map[uuid.UUID]entity.Product
	batches     map[entity.BatchKey]entity.InventoryBatch
	bills       map[uuid.UUID]entity.Bill
	billNumbers map[string]uuid.UUID
	settings    *entity.StoreSettings
	idempotency map[string]entity.IdempotencyKey
}

// Option configures a Store.
type Option func(*Store)

// WithClock makes the store stamp records with now() instead of time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		st: &state{
			products:    map[uuid.UUID]entity.Product{},
			batches:     map[entity.BatchKey]entity.InventoryBatch{},
			bills:       map[uuid.UUID]entity.Bill{},
			billNumbers: map[string]uuid.UUID{},
			idempotency: map[string]entity.IdempotencyKey{},
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FailWrites makes every subsequent write return err until called with nil.
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

func (s *Store) Products() domainRepo.ProductRepository {
	return &productRepository{view{s: s}}
}

func (s *Store) Inventory() domainRepo.InventoryRepository {
	return &inventoryRepository{view{s: s}}
}

func (s *Store) Bills() domainRepo.BillRepository {
	return &billRepository{view{s: s}}
}

func (s *Store) Settings() domainRepo.SettingsRepository {
	return &settingsRepository{view{s: s}}
}

func (s *Store) Idempotency() domainRepo.IdempotencyRepository {
	return &idempotencyRepository{view{s: s}}
}

// Transactor returns the Store as a domain Transactor.
func (s *Store) Transactor() domainRepo.Transactor {
	return s
}

// Ping reports the failure injected by FailWrites, if any.
func (s *Store) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeErr
}

// WithinTx holds the write lock for the duration of fn. Repositories obtained
// outside tx must not be used inside fn.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domainRepo.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(ctx, &txRepos{v: view{s: s, tx: work}}); err != nil {
		return err
	}
	s.st = work
	return nil
}

type txRepos struct {
	v view
}

func (t *txRepos) Products() domainRepo.ProductRepository   { return &productRepository{t.v} }
func (t *txRepos) Inventory() domainRepo.InventoryRepository { return &inventoryRepository{t.v} }
func (t *txRepos) Bills() domainRepo.BillRepository          { return &billRepository{t.v} }

// stamp returns a strictly increasing timestamp so creation order is total.
// Callers hold the write lock.
func (s *Store) stamp() time.Time {
	t := s.now().UTC()
	if !t.After(s.lastSeen) {
		t = s.lastSeen.Add(time.Microsecond)
	}
	s.lastSeen = t
	return t
}

// view routes reads and writes either to the live state under the lock or to
// a transaction's private copy, which is already covered by the tx lock.
type view struct {
	s  *Store
	tx *state
}

func (v view) read(fn func(st *state)) {
	if v.tx != nil {
		fn(v.tx)
		return
	}
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	fn(v.s.st)
}

func (v view) write(fn func(st *state) error) error {
	if v.tx != nil {
		if v.s.writeErr != nil {
			return v.s.writeErr
		}
		return fn(v.tx)
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.writeErr != nil {
		return v.s.writeErr
	}
	return fn(v.s.st)
}

func (st *state) clone() *state {
	c := &state{
		products:    make(map[uuid.UUID]entity.Product, len(st.products)),
		batches:     make(map[entity.BatchKey]entity.InventoryBatch, len(st.batches)),
		bills:       make(map[uuid.UUID]entity.Bill, len(st.bills)),
		billNumbers: make(map[string]uuid.UUID, len(st.billNumbers)),
		idempotency: make(map[string]entity.IdempotencyKey, len(st.idempotency)),
	}
	for k, v := range st.products {
		c.products[k] = v
	}
	for k, v := range st.batches {
		c.batches[k] = v
	}
	for k, v := range st.bills {
		c.bills[k] = v
	}
	for k, v := range st.billNumbers {
		c.billNumbers[k] = v
	}
	for k, v := range st.idempotency {
		c.idempotency[k] = v
	}
	if st.settings != nil {
		settings := *st.settings
		c.settings = &settings
	}
	return c
}
