// Copyright (c) 2020 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package hashtable

import (
	"fmt"

	"github.com/gorh/robinhash/hashtable/internal/seedhash"
)

// Map is a hash table from keys of type K to values of type V.
type Map[K, V any] struct {
	t *table[K, V]
}

// New creates an empty Map. K must satisfy comparable so that a default,
// per-instance-seeded structural hash and equality can be derived; for key
// types that should not use that default (e.g. because they need a
// domain-specific hash), pass WithHash/WithEqual.
func New[K comparable, V any](opts ...Option[K, V]) *Map[K, V] {
	cfg := defaultConfig[K, V]()
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.hash == nil {
		cfg.hash = seedhash.New[K]()
	}
	if cfg.eq == nil {
		cfg.eq = seedhash.Equal[K]()
	}
	return &Map[K, V]{t: newTable(cfg)}
}

// NewCustom creates an empty Map for key types that are not (or should not
// be compared as) Go-comparable, taking the hash and equivalence hooks
// explicitly — the same shape as a hand-rolled Hashable key: a Hash()
// method and an Equal() method supplied as two plain functions instead of
// an interface, so the table avoids a virtual dispatch per probe.
func NewCustom[K, V any](hash func(K) int32, eq func(K, K) bool, opts ...Option[K, V]) *Map[K, V] {
	cfg := defaultConfig[K, V]()
	for _, o := range opts {
		o(&cfg)
	}
	cfg.hash = hash
	cfg.eq = eq
	return &Map[K, V]{t: newTable(cfg)}
}

// WithCapacity creates an empty Map with at least min buckets, rounded up to
// a power of two with a floor of 4. Inserting more entries than the
// load-factor ceiling (buckets × max load factor) still triggers a resize.
func WithCapacity[K comparable, V any](min int, opts ...Option[K, V]) *Map[K, V] {
	return New[K, V](append([]Option[K, V]{Capacity[K, V](min)}, opts...)...)
}

// From creates a Map holding every key/value pair of pairs.
func From[K comparable, V any](pairs map[K]V, opts ...Option[K, V]) *Map[K, V] {
	m := WithCapacity[K, V](len(pairs), opts...)
	for k, v := range pairs {
		m.Insert(k, v)
	}
	return m
}

// Len returns the number of entries in m.
func (m *Map[K, V]) Len() int { return m.t.Len() }

// IsEmpty reports whether m has no entries.
func (m *Map[K, V]) IsEmpty() bool { return m.t.Len() == 0 }

// Capacity returns the number of buckets currently allocated.
func (m *Map[K, V]) Capacity() int { return m.t.Capacity() }

// SetMaxLoadFactor sets the load-factor ceiling, triggering an immediate
// resize if the current entry count already exceeds the new ceiling. f must
// be in (0, 1].
func (m *Map[K, V]) SetMaxLoadFactor(f float64) error { return m.t.setMaxLoadFactor(f) }

// Contains reports whether key is present in m.
func (m *Map[K, V]) Contains(key K) bool { return m.t.Contains(key) }

// Get returns the value associated with key, or the zero value if absent.
func (m *Map[K, V]) Get(key K) V {
	v, _ := m.t.tryGet(key)
	return v
}

// TryGet returns the value associated with key and whether it was present.
func (m *Map[K, V]) TryGet(key K) (V, bool) { return m.t.tryGet(key) }

// GetStrict returns the value associated with key, or ErrKeyNotFound
// wrapped with the key if it is absent.
func (m *Map[K, V]) GetStrict(key K) (V, error) {
	v, ok := m.t.tryGet(key)
	if !ok {
		var zero V
		return zero, fmt.Errorf("%w: %v", ErrKeyNotFound, key)
	}
	return v, nil
}

// GetOrAdd returns the value associated with key, inserting init()'s result
// first if key is absent. It re-reads from the table after inserting, since
// the insert may have triggered a resize.
func (m *Map[K, V]) GetOrAdd(key K, init func() V) V {
	if v, ok := m.t.tryGet(key); ok {
		return v
	}
	v := init()
	m.t.insertMode(key, v, ModeReturnExisting)
	got, _ := m.t.tryGet(key)
	return got
}

// Insert associates key with value, overwriting any existing value, and
// reports the previous value and whether one existed.
func (m *Map[K, V]) Insert(key K, value V) (previous V, replaced bool) {
	prev, existed, _ := m.t.insertMode(key, value, ModeReplace)
	return prev, existed
}

// TryInsert associates key with value only if key is absent. It reports the
// existing value and true if key was already present (the table is left
// unchanged), or the zero value and false if value was inserted.
func (m *Map[K, V]) TryInsert(key K, value V) (existing V, existed bool) {
	existing, existed, _ = m.t.insertMode(key, value, ModeReturnExisting)
	return existing, existed
}

// InsertStrict associates key with value, or reports ErrDuplicateKey if key
// already exists, leaving the table unchanged.
func (m *Map[K, V]) InsertStrict(key K, value V) error {
	_, _, err := m.t.insertMode(key, value, ModeThrow)
	return err
}

// Remove removes key, reporting its value and whether it was present.
func (m *Map[K, V]) Remove(key K) (value V, removed bool) { return m.t.removeKey(key) }

// RemoveWhere removes every entry for which pred reports true and returns
// the number of entries removed.
func (m *Map[K, V]) RemoveWhere(pred func(K, V) bool) int { return m.t.removeWhere(pred) }

// Clear removes every entry. Observers are not notified.
func (m *Map[K, V]) Clear() { m.t.clear() }

// EnsureCapacity grows m, if needed, so it holds at least min buckets.
func (m *Map[K, V]) EnsureCapacity(min int) { m.t.ensureCapacity(min) }

// Iter returns an Iterator over m's entries in slot order (an
// implementation detail, not a stable guarantee).
func (m *Map[K, V]) Iter() *Iterator[K, V] { return newIterator(m.t) }

// OnAdded registers a callback invoked once per entry added via Insert,
// TryInsert, InsertStrict, or GetOrAdd. It returns a function that
// unregisters the callback.
func (m *Map[K, V]) OnAdded(cb func(K, V)) (unregister func()) { return m.t.onAdded.add(cb) }

// OnRemoved registers a callback invoked once per entry removed via Remove
// or RemoveWhere. It returns a function that unregisters the callback.
func (m *Map[K, V]) OnRemoved(cb func(K, V)) (unregister func()) { return m.t.onRemoved.add(cb) }
