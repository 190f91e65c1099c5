// Package store keeps the client-side snapshot of one resource collection
// in sync with the backend.
//
// The snapshot is only ever replaced by a complete list fetched from the
// backend, with one exception: Delete removes the record immediately and
// restores it if the backend rejects the removal. Mutations are serialized
// and always followed by a reload; a load requested while a mutation is in
// progress observes the state after that mutation's reload.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/sellingcar/internal/catalog"
	"github.com/dmitrijs2005/sellingcar/internal/client/client"
	"github.com/dmitrijs2005/sellingcar/internal/client/models"
	"github.com/dmitrijs2005/sellingcar/internal/logging"
)

var ErrClosed = errors.New("store closed")

// State is a copy of the store's observable state.
type State struct {
	Records  []models.Record
	Loading  bool
	Err      error
	LoadedAt time.Time
}

type Store struct {
	desc   *catalog.Descriptor
	client client.ResourceClient
	log    logging.Logger

	// canceled on Close; every backend call runs under it
	ctx    context.Context
	cancel context.CancelFunc

	// mutations hold it exclusively, loads shared
	ordering sync.RWMutex
	group    singleflight.Group

	// notifyMu serializes observer callbacks with Close
	notifyMu sync.Mutex

	mu        sync.Mutex
	state     State
	inflight  int
	epoch     uint64
	closed    bool
	observers map[int]func(State)
	nextObs   int
}

func New(d *catalog.Descriptor, c client.ResourceClient, log logging.Logger) *Store {
	ctx, cancel := context.WithCancel(context.Background())
	return &Store{
		desc:      d,
		client:    c,
		log:       log.With("resource", d.Name),
		ctx:       ctx,
		cancel:    cancel,
		observers: map[int]func(State){},
	}
}

func (s *Store) Descriptor() *catalog.Descriptor { return s.desc }

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	st := s.state
	st.Records = slices.Clone(s.state.Records)
	st.Loading = s.inflight > 0
	return st
}

// Find returns the snapshot record with the given key.
func (s *Store) Find(key models.Key) (models.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.state.Records {
		if models.KeyOf(s.desc, r).Equal(key) {
			return r, true
		}
	}
	return nil, false
}

// Subscribe registers fn to be called after every state change. fn runs on
// the goroutine that changed the state and may only call State and Find.
// The returned func unregisters it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextObs
	s.nextObs++
	if !s.closed {
		s.observers[id] = fn
	}
	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// Close detaches the store: in-flight requests are canceled, their results
// discarded, observers are never called again and later calls return
// ErrClosed.
func (s *Store) Close() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.observers = nil
	s.mu.Unlock()

	s.cancel()
}

func (s *Store) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Store) notify() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	st := s.snapshotLocked()
	obs := make([]func(State), 0, len(s.observers))
	for _, fn := range s.observers {
		obs = append(obs, fn)
	}
	s.mu.Unlock()

	for _, fn := range obs {
		fn(st)
	}
}

// scope derives a context canceled by either ctx or Close.
func (s *Store) scope(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// Load fetches the full list and replaces the snapshot. Concurrent loads
// share one request. On failure the previous snapshot is kept and the
// error recorded in State.Err.
func (s *Store) Load(ctx context.Context) error {
	if s.isClosed() {
		return ErrClosed
	}
	s.ordering.RLock()
	defer s.ordering.RUnlock()
	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) error {
	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()

	ch := s.group.DoChan(strconv.FormatUint(epoch, 10), func() (any, error) {
		return nil, s.fetch(epoch)
	})
	select {
	case r := <-ch:
		return r.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) fetch(epoch uint64) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.inflight++
	s.mu.Unlock()
	s.notify()

	records, err := s.client.List(s.ctx)

	s.mu.Lock()
	s.inflight--
	switch {
	case s.closed:
		s.mu.Unlock()
		return ErrClosed
	case s.epoch != epoch:
		// a mutation started meanwhile; its own reload wins
		s.mu.Unlock()
		s.log.Debug(s.ctx, "discarding stale list", "epoch", epoch)
		s.notify()
		return err
	case err != nil:
		s.state.Err = err
	default:
		s.state.Records = records
		s.state.Err = nil
		s.state.LoadedAt = time.Now()
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Warn(s.ctx, "list failed", "error", err)
	} else {
		s.log.Debug(s.ctx, "list loaded", "records", len(records))
	}
	s.notify()
	return err
}

// begin starts a mutation. The caller holds ordering exclusively.
func (s *Store) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.epoch++
	return nil
}

// reconcile reloads after a successful mutation. A failed reload does not
// fail the mutation; it is recorded in State.Err.
func (s *Store) reconcile(ctx context.Context) {
	if err := s.load(ctx); err != nil && !errors.Is(err, ErrClosed) {
		s.log.Warn(ctx, "reload after mutation failed", "error", err)
	}
}

// Submit creates a record when key is nil and updates it otherwise, then
// reloads. On failure the snapshot is left untouched.
func (s *Store) Submit(ctx context.Context, body map[string]any, key models.Key) error {
	s.ordering.Lock()
	defer s.ordering.Unlock()
	if err := s.begin(); err != nil {
		return err
	}

	cctx, cancel := s.scope(ctx)
	defer cancel()

	var err error
	if key == nil {
		_, err = s.client.Create(cctx, body)
	} else {
		err = s.client.Update(cctx, key, body)
	}
	if err != nil {
		if s.isClosed() {
			return ErrClosed
		}
		return fmt.Errorf("save %s: %w", s.desc.Name, err)
	}

	s.reconcile(cctx)
	return nil
}

// Delete removes the record from the snapshot at once, asks the backend to
// remove it and reloads. If the backend rejects the removal the previous
// snapshot is restored. An already missing record counts as removed.
func (s *Store) Delete(ctx context.Context, key models.Key) error {
	s.ordering.Lock()
	defer s.ordering.Unlock()
	if err := s.begin(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	prev := s.state.Records
	s.state.Records = slices.DeleteFunc(slices.Clone(prev), func(r models.Record) bool {
		return models.KeyOf(s.desc, r).Equal(key)
	})
	s.mu.Unlock()
	s.notify()

	cctx, cancel := s.scope(ctx)
	defer cancel()

	if err := s.client.Remove(cctx, key); err != nil {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return ErrClosed
		}
		s.state.Records = prev
		s.mu.Unlock()
		s.notify()
		return fmt.Errorf("delete %s %s: %w", s.desc.Name, key, err)
	}

	s.reconcile(cctx)
	return nil
}
