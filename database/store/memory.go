package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-process DocumentStore with the same propagation
// contract as the Mongo implementation: every mutation pushes a complete
// snapshot to all subscribers of the touched collection. Used in tests and
// for running the service without a database.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]map[string]Fields
	subs        map[string]map[int]func(Snapshot)
	nextSubID   int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]Fields),
		subs:        make(map[string]map[int]func(Snapshot)),
	}
}

func (s *MemoryStore) Get(ctx context.Context, collection, key string) (Fields, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][key]
	if !ok {
		return nil, ErrNotFound
	}
	return copyFields(doc), nil
}

func (s *MemoryStore) Set(ctx context.Context, collection, key string, fields Fields) error {
	s.mu.Lock()
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]Fields)
	}
	s.collections[collection][key] = copyFields(fields)
	subs, snap := s.snapshotLocked(collection)
	s.mu.Unlock()

	deliver(subs, snap)
	return nil
}

// Update overwrites fields unconditionally: whichever concurrent caller runs
// last wins, exactly as the external store resolves contention.
func (s *MemoryStore) Update(ctx context.Context, collection, key string, fields Fields) error {
	s.mu.Lock()
	doc, ok := s.collections[collection][key]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	for k, v := range fields {
		doc[k] = v
	}
	subs, snap := s.snapshotLocked(collection)
	s.mu.Unlock()

	deliver(subs, snap)
	return nil
}

func (s *MemoryStore) UpdateIf(ctx context.Context, collection, key string, guard, fields Fields) error {
	s.mu.Lock()
	doc, ok := s.collections[collection][key]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	for k, want := range guard {
		if doc[k] != want {
			s.mu.Unlock()
			return ErrPreconditionFailed
		}
	}
	for k, v := range fields {
		doc[k] = v
	}
	subs, snap := s.snapshotLocked(collection)
	s.mu.Unlock()

	deliver(subs, snap)
	return nil
}

func (s *MemoryStore) Subscribe(ctx context.Context, collection string, onSnapshot func(Snapshot), onError func(error)) (func(), error) {
	s.mu.Lock()
	if s.subs[collection] == nil {
		s.subs[collection] = make(map[int]func(Snapshot))
	}
	id := s.nextSubID
	s.nextSubID++
	s.subs[collection][id] = onSnapshot
	_, snap := s.snapshotLocked(collection)
	s.mu.Unlock()

	// Initial snapshot, mirroring the change-stream implementation.
	onSnapshot(snap)

	unsubscribe := func() {
		s.mu.Lock()
		delete(s.subs[collection], id)
		s.mu.Unlock()
	}
	return unsubscribe, nil
}

// snapshotLocked copies the collection and the current subscriber set.
// Delivery happens outside the lock so a callback may call back into the
// store.
func (s *MemoryStore) snapshotLocked(collection string) ([]func(Snapshot), Snapshot) {
	snap := make(Snapshot, len(s.collections[collection]))
	for key, doc := range s.collections[collection] {
		snap[key] = copyFields(doc)
	}
	subs := make([]func(Snapshot), 0, len(s.subs[collection]))
	for _, fn := range s.subs[collection] {
		subs = append(subs, fn)
	}
	return subs, snap
}

func deliver(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}

func copyFields(fields Fields) Fields {
	out := make(Fields, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
