// Copyright (c) 2020 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package hashtable

import "github.com/gorh/robinhash/hashtable/internal/seedhash"

// unit is the zero-size value stored for every element of a Set.
type unit = struct{}

// Set is a set of elements of type T, built on the same engine as Map with
// no value stored alongside each element.
type Set[T any] struct {
	t *table[T, unit]
}

// NewSet creates an empty Set.
func NewSet[T comparable](opts ...Option[T, unit]) *Set[T] {
	cfg := defaultConfig[T, unit]()
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.hash == nil {
		cfg.hash = seedhash.New[T]()
	}
	if cfg.eq == nil {
		cfg.eq = seedhash.Equal[T]()
	}
	return &Set[T]{t: newTable(cfg)}
}

// NewSetCustom creates an empty Set for element types that are not (or
// should not be compared as) Go-comparable, taking the hash and
// equivalence hooks explicitly.
func NewSetCustom[T any](hash func(T) int32, eq func(T, T) bool, opts ...Option[T, unit]) *Set[T] {
	cfg := defaultConfig[T, unit]()
	for _, o := range opts {
		o(&cfg)
	}
	cfg.hash = hash
	cfg.eq = eq
	return &Set[T]{t: newTable(cfg)}
}

// NewSetWithCapacity creates an empty Set with at least min buckets, rounded
// up to a power of two with a floor of 4. Adding more elements than the
// load-factor ceiling (buckets × max load factor) still triggers a resize.
func NewSetWithCapacity[T comparable](min int, opts ...Option[T, unit]) *Set[T] {
	return NewSet[T](append([]Option[T, unit]{Capacity[T, unit](min)}, opts...)...)
}

// SetFrom creates a Set from an initial slice of elements.
func SetFrom[T comparable](elems []T, opts ...Option[T, unit]) *Set[T] {
	s := NewSetWithCapacity[T](len(elems), opts...)
	for _, e := range elems {
		s.Add(e)
	}
	return s
}

// Len returns the number of elements in s.
func (s *Set[T]) Len() int { return s.t.Len() }

// IsEmpty reports whether s has no elements.
func (s *Set[T]) IsEmpty() bool { return s.t.Len() == 0 }

// Capacity returns the number of buckets currently allocated.
func (s *Set[T]) Capacity() int { return s.t.Capacity() }

// SetMaxLoadFactor sets the load-factor ceiling. f must be in (0, 1].
func (s *Set[T]) SetMaxLoadFactor(f float64) error { return s.t.setMaxLoadFactor(f) }

// Contains reports whether elem is a member of s.
func (s *Set[T]) Contains(elem T) bool { return s.t.Contains(elem) }

// Add inserts elem, reporting true if it was not already a member.
func (s *Set[T]) Add(elem T) (added bool) {
	_, existed, _ := s.t.insertMode(elem, unit{}, ModeFail)
	return !existed
}

// TryAdd is Add with vocabulary matching the map's TryInsert: it reports
// whether elem was already present.
func (s *Set[T]) TryAdd(elem T) (existed bool) {
	_, existed, _ = s.t.insertMode(elem, unit{}, ModeFail)
	return existed
}

// Remove removes elem, reporting whether it was present.
func (s *Set[T]) Remove(elem T) (removed bool) {
	_, removed = s.t.removeKey(elem)
	return removed
}

// RemoveWhere removes every element for which pred reports true and returns
// the number of elements removed.
func (s *Set[T]) RemoveWhere(pred func(T) bool) int {
	return s.t.removeWhere(func(k T, _ unit) bool { return pred(k) })
}

// Clear removes every element. Observers are not notified.
func (s *Set[T]) Clear() { s.t.clear() }

// EnsureCapacity grows s, if needed, so it holds at least min buckets.
func (s *Set[T]) EnsureCapacity(min int) { s.t.ensureCapacity(min) }

// Iter returns an Iterator over s's elements in slot order (an
// implementation detail, not a stable guarantee). Use Key to read the
// current element; Value always returns the zero struct{}.
func (s *Set[T]) Iter() *Iterator[T, unit] { return newIterator(s.t) }

// Set assigns membership of elem: true inserts it if absent (a no-op if
// already present), false removes it if present (a no-op if already
// absent). This canonicalizes an asymmetry in the table this package was
// modeled on, where the true and false assignments used two different
// insertion modes; here both are defined purely in terms of membership.
func (s *Set[T]) Set(elem T, member bool) {
	if member {
		s.Add(elem)
	} else {
		s.Remove(elem)
	}
}

// OnAdded registers a callback invoked once per element added. It returns a
// function that unregisters the callback.
func (s *Set[T]) OnAdded(cb func(T)) (unregister func()) {
	return s.t.onAdded.add(func(k T, _ unit) { cb(k) })
}

// OnRemoved registers a callback invoked once per element removed. It
// returns a function that unregisters the callback.
func (s *Set[T]) OnRemoved(cb func(T)) (unregister func()) {
	return s.t.onRemoved.add(func(k T, _ unit) { cb(k) })
}
