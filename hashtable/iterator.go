// Copyright (c) 2020 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package hashtable

// Iterator walks the occupied slots of a table, starting from a slot picked
// at random each time one is created, wrapping around once it reaches the
// end. The walk order is an implementation detail of hashing and the random
// start, never a guaranteed or stable order. It is bound to the version the
// table had when it was created: any structural mutation of the table
// invalidates it, detected on the next call to Next.
type Iterator[K, V any] struct {
	t       *table[K, V]
	version uint64
	start   int
	seen    int
	cur     entry[K, V]
	done    bool
	err     error
}

func newIterator[K, V any](t *table[K, V]) *Iterator[K, V] {
	start := 0
	if n := len(t.buckets); n > 0 {
		start = int(t.rng.Uint32()) % n
	}
	return &Iterator[K, V]{t: t, version: t.version, start: start}
}

// Next advances the iterator to the next occupied slot and reports whether
// one was found. It returns false both at the end of iteration and when the
// table was mutated since the iterator was created or since the previous
// Next call; Err distinguishes the two.
func (it *Iterator[K, V]) Next() bool {
	if it.done || it.err != nil {
		return false
	}
	if it.version != it.t.version {
		it.err = ErrConcurrentModification
		return false
	}
	n := len(it.t.buckets)
	for it.seen < n {
		i := (it.start + it.seen) % n
		it.seen++
		if it.t.tails.Get(i) != emptyCell {
			it.cur = it.t.buckets[i]
			return true
		}
	}
	it.done = true
	return false
}

// Key returns the key at the iterator's current position.
func (it *Iterator[K, V]) Key() K { return it.cur.key }

// Value returns the value at the iterator's current position.
func (it *Iterator[K, V]) Value() V { return it.cur.value }

// Err reports ErrConcurrentModification if the table was mutated during
// iteration, and nil otherwise (including at normal end of iteration).
func (it *Iterator[K, V]) Err() error { return it.err }
