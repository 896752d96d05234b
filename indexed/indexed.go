// Copyright (c) 2020 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package indexed provides ordered collaborators built on top of
// hashtable.Map: a sequence of unique elements with constant-time
// membership and index lookup, and a bidirectional two-key index. Both use
// swap-remove, so the order they expose is insertion order only until the
// first removal.
package indexed

import "github.com/gorh/robinhash/hashtable"

// Set pairs a dense list of elements with a hashtable.Map from element to
// its position in the list, giving O(1) Contains, IndexOf, Add, and Remove
// at the cost of not preserving order across a Remove: the removed slot is
// filled by the list's last element (swap-remove).
type Set[T comparable] struct {
	items []T
	index *hashtable.Map[T, int]
}

// New creates an empty Set.
func New[T comparable]() *Set[T] {
	return &Set[T]{index: hashtable.New[T, int]()}
}

// Len returns the number of elements.
func (s *Set[T]) Len() int { return len(s.items) }

// Contains reports whether elem is a member.
func (s *Set[T]) Contains(elem T) bool { return s.index.Contains(elem) }

// IndexOf returns elem's position in the backing list and whether it is a
// member. The position is only stable until the next Remove.
func (s *Set[T]) IndexOf(elem T) (idx int, ok bool) { return s.index.TryGet(elem) }

// At returns the element at position i. It panics if i is out of range, the
// same contract as indexing the underlying slice directly.
func (s *Set[T]) At(i int) T { return s.items[i] }

// Add appends elem if it is not already a member, reporting whether it was
// added.
func (s *Set[T]) Add(elem T) (added bool) {
	if s.index.Contains(elem) {
		return false
	}
	s.index.Insert(elem, len(s.items))
	s.items = append(s.items, elem)
	return true
}

// Remove removes elem via swap-remove, reporting whether it was present.
func (s *Set[T]) Remove(elem T) (removed bool) {
	i, ok := s.index.TryGet(elem)
	if !ok {
		return false
	}
	s.removeAt(i)
	return true
}

// RemoveAt removes the element at position i via swap-remove.
func (s *Set[T]) RemoveAt(i int) { s.removeAt(i) }

func (s *Set[T]) removeAt(i int) {
	last := len(s.items) - 1
	removed := s.items[i]
	s.index.Remove(removed)
	if i != last {
		moved := s.items[last]
		s.items[i] = moved
		s.index.Insert(moved, i)
	}
	var zero T
	s.items[last] = zero
	s.items = s.items[:last]
}

// Clear removes every element.
func (s *Set[T]) Clear() {
	s.items = s.items[:0]
	s.index.Clear()
}

// Items returns the backing slice in its current internal order. The
// caller must not retain it across a subsequent mutation of s.
func (s *Set[T]) Items() []T { return s.items }

// pair is one entry of a BiMap's dense list.
type pair[X, Y comparable] struct {
	x X
	y Y
}

// BiMap pairs a dense list of (X, Y) tuples with two hashtable.Map indexes,
// one per side, so either side can be looked up or removed by value in
// O(1). Both X and Y are unique across the collection: inserting a pair
// whose X is already on the X side, or whose Y is already on the Y side, is
// rejected by Add (see its doc comment for the exact rule).
type BiMap[X, Y comparable] struct {
	items []pair[X, Y]
	byX   *hashtable.Map[X, int]
	byY   *hashtable.Map[Y, int]
}

// NewBiMap creates an empty BiMap.
func NewBiMap[X, Y comparable]() *BiMap[X, Y] {
	return &BiMap[X, Y]{
		byX: hashtable.New[X, int](),
		byY: hashtable.New[Y, int](),
	}
}

// Len returns the number of pairs.
func (b *BiMap[X, Y]) Len() int { return len(b.items) }

// GetByX returns the Y paired with x, and whether x is present.
func (b *BiMap[X, Y]) GetByX(x X) (y Y, ok bool) {
	i, ok := b.byX.TryGet(x)
	if !ok {
		var zero Y
		return zero, false
	}
	return b.items[i].y, true
}

// GetByY returns the X paired with y, and whether y is present.
func (b *BiMap[X, Y]) GetByY(y Y) (x X, ok bool) {
	i, ok := b.byY.TryGet(y)
	if !ok {
		var zero X
		return zero, false
	}
	return b.items[i].x, true
}

// ContainsX reports whether x is present on the X side.
func (b *BiMap[X, Y]) ContainsX(x X) bool { return b.byX.Contains(x) }

// ContainsY reports whether y is present on the Y side.
func (b *BiMap[X, Y]) ContainsY(y Y) bool { return b.byY.Contains(y) }

// Add inserts the pair (x, y), reporting false and leaving the map
// unchanged if x or y is already present on its respective side (each side
// is unique independently of the other; this does not attempt to reconcile
// a partial collision by overwriting either side).
func (b *BiMap[X, Y]) Add(x X, y Y) (added bool) {
	if b.byX.Contains(x) || b.byY.Contains(y) {
		return false
	}
	i := len(b.items)
	b.items = append(b.items, pair[X, Y]{x: x, y: y})
	b.byX.Insert(x, i)
	b.byY.Insert(y, i)
	return true
}

// RemoveByX removes the pair keyed by x via swap-remove, reporting whether
// x was present.
func (b *BiMap[X, Y]) RemoveByX(x X) (removed bool) {
	i, ok := b.byX.TryGet(x)
	if !ok {
		return false
	}
	b.removeAt(i)
	return true
}

// RemoveByY removes the pair keyed by y via swap-remove, reporting whether
// y was present.
func (b *BiMap[X, Y]) RemoveByY(y Y) (removed bool) {
	i, ok := b.byY.TryGet(y)
	if !ok {
		return false
	}
	b.removeAt(i)
	return true
}

func (b *BiMap[X, Y]) removeAt(i int) {
	last := len(b.items) - 1
	victim := b.items[i]
	b.byX.Remove(victim.x)
	b.byY.Remove(victim.y)
	if i != last {
		moved := b.items[last]
		b.items[i] = moved
		b.byX.Insert(moved.x, i)
		b.byY.Insert(moved.y, i)
	}
	b.items[last] = pair[X, Y]{}
	b.items = b.items[:last]
}

// Clear removes every pair.
func (b *BiMap[X, Y]) Clear() {
	b.items = b.items[:0]
	b.byX.Clear()
	b.byY.Clear()
}
