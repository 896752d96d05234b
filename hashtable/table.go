// Copyright (c) 2020 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package hashtable

import (
	"fmt"
	"hash/maphash"
	"math/bits"

	"golang.org/x/exp/rand"

	"github.com/gorh/robinhash/internal/jump"
	"github.com/gorh/robinhash/logger"
	"github.com/gorh/robinhash/nibble"
)

const (
	emptyCell uint8 = 0
	soloCell  uint8 = 1

	// fibonacciHash is the 32-bit Fibonacci hashing constant used to mix a
	// key's hash before selecting the high bits as a bucket index.
	fibonacciHash uint32 = 0x9E3779B9

	minCapacity = 4

	// maxParentHops bounds the walk used to find the slot whose chain link
	// points at a given slot. A correctly maintained table never needs more
	// than a handful of hops; exceeding this is an internal bug.
	maxParentHops = 32
)

// InsertMode selects the behavior of a table mutation when the key already
// exists.
type InsertMode int

const (
	// ModeThrow reports ErrDuplicateKey and leaves the table unchanged.
	ModeThrow InsertMode = iota
	// ModeReplace overwrites the existing value.
	ModeReplace
	// ModeReturnExisting leaves the table unchanged and reports the
	// existing value.
	ModeReturnExisting
)

// ModeFail is an alias of ModeReturnExisting, used by Set's Add to match the
// vocabulary of "fail silently if present" rather than "return existing
// value", even though the underlying behavior is identical.
const ModeFail = ModeReturnExisting

type entry[K, V any] struct {
	hash  int32
	key   K
	value V
}

// table is the generic engine shared by Map and Set (which instantiates V as
// struct{}).
type table[K, V any] struct {
	buckets []entry[K, V]
	tails   nibble.Array
	mask    int
	shift   uint

	n       int
	version uint64
	maxLoad float64

	hash func(K) int32
	eq   func(K, K) bool
	log  logger.Logger

	onAdded     *hookRegistry[K, V]
	onRemoved   *hookRegistry[K, V]
	dispatching bool

	// rng picks each Iterator's starting slot so that repeated iteration
	// does not habitually begin at bucket 0; iteration order is
	// hash-dependent, not a guarantee callers should rely on.
	rng *rand.Rand
}

func newTable[K, V any](cfg config[K, V]) *table[K, V] {
	capacity := nextPow2(cfg.capacity)
	if cfg.hash == nil {
		panic("hashtable: no hash function configured (supply WithHash, or use Map/Set constructors for comparable K)")
	}
	if cfg.eq == nil {
		panic("hashtable: no equality function configured (supply WithEqual, or use Map/Set constructors for comparable K)")
	}
	if cfg.maxLoad <= 0 || cfg.maxLoad > 1 {
		panic(fmt.Sprintf("hashtable: load factor %v must be in (0, 1] (supply WithMaxLoadFactor)", cfg.maxLoad))
	}
	maxLoad := cfg.maxLoad
	log := cfg.log
	if log == nil {
		log = logger.Nop
	}
	return &table[K, V]{
		buckets:   make([]entry[K, V], capacity),
		tails:     nibble.New(capacity),
		mask:      capacity - 1,
		shift:     shiftFor(capacity),
		maxLoad:   maxLoad,
		hash:      cfg.hash,
		eq:        cfg.eq,
		log:       log,
		onAdded:   newHookRegistry[K, V](),
		onRemoved: newHookRegistry[K, V](),
		rng:       rand.New(rand.NewSource(newSeed())),
	}
}

// newSeed draws a fresh per-table seed from hash/maphash, avoiding a
// dependency on wall-clock time for something that only needs to vary
// across table instances, not be unpredictable.
func newSeed() uint64 {
	var h maphash.Hash
	return h.Sum64()
}

func shiftFor(capacity int) uint {
	return uint(32 - bits.TrailingZeros32(uint32(capacity)))
}

func nextPow2(min int) int {
	if min <= minCapacity {
		return minCapacity
	}
	return 1 << bits.Len(uint(min-1))
}

func (t *table[K, V]) checkNotDispatching() {
	if t.dispatching {
		panic(ErrReentrantMutation)
	}
}

func (t *table[K, V]) home(h int32) int {
	return int(uint32(h) * fibonacciHash >> t.shift)
}

func (t *table[K, V]) isHead(i int) bool {
	return t.home(t.buckets[i].hash) == i
}

func (t *table[K, V]) capacityCeiling() int {
	return int(float64(len(t.buckets)) * t.maxLoad)
}

// Len returns the number of entries currently stored.
func (t *table[K, V]) Len() int { return t.n }

// Capacity returns the number of buckets currently allocated.
func (t *table[K, V]) Capacity() int { return len(t.buckets) }

// find returns the slot index holding key, or -1 if key is absent.
func (t *table[K, V]) find(key K) int {
	h := t.hash(key)
	i := t.home(h)
	for {
		tv := t.tails.Get(i)
		if tv == emptyCell {
			return -1
		}
		if t.eq(t.buckets[i].key, key) {
			return i
		}
		if tv == soloCell {
			return -1
		}
		i = jump.Next(i, int(tv), t.mask)
	}
}

// Contains reports whether key is present.
func (t *table[K, V]) Contains(key K) bool {
	return t.find(key) >= 0
}

func (t *table[K, V]) tryGet(key K) (V, bool) {
	i := t.find(key)
	if i < 0 {
		var zero V
		return zero, false
	}
	return t.buckets[i].value, true
}

// insertMode implements Insert/TryInsert/InsertStrict uniformly.
func (t *table[K, V]) insertMode(key K, value V, mode InsertMode) (previousOrExisting V, existed bool, err error) {
	t.checkNotDispatching()
	if i := t.find(key); i >= 0 {
		switch mode {
		case ModeThrow:
			var zero V
			return zero, true, fmt.Errorf("%w: %v", ErrDuplicateKey, t.buckets[i].key)
		case ModeReplace:
			prev := t.buckets[i].value
			t.buckets[i].value = value
			return prev, true, nil
		default: // ModeReturnExisting
			return t.buckets[i].value, true, nil
		}
	}

	if t.n+1 > t.capacityCeiling() {
		t.resize(len(t.buckets) * 2)
	}
	t.place(key, value, false)
	t.version++
	t.onAdded.dispatch(&t.dispatching, key, value)

	var zero V
	return zero, false, nil
}

// place inserts key/value, which the caller guarantees is not already
// present. shifting indicates an internal reinsertion of an entry the table
// already logically contains (displacement, removal repair, or resize): it
// skips the count increment.
func (t *table[K, V]) place(key K, value V, shifting bool) {
	t.placeHashed(t.hash(key), key, value, shifting)
}

func (t *table[K, V]) placeHashed(h int32, key K, value V, shifting bool) {
	i := t.home(h)
	switch tv := t.tails.Get(i); {
	case tv == emptyCell:
		t.buckets[i] = entry[K, V]{hash: h, key: key, value: value}
		t.tails.Set(i, soloCell)
		if !shifting {
			t.n++
		}
	case !t.isHead(i):
		t.displace(i, h, key, value, shifting)
	default:
		end := i
		for tv := t.tails.Get(end); tv >= jump.MinOffset; tv = t.tails.Get(end) {
			end = jump.Next(end, int(tv), t.mask)
		}
		t.appendTail(end, h, key, value, shifting)
	}
}

// displace evicts the tail entry squatting home bucket i (and its trailing
// chain) so the new entry can take its rightful home.
func (t *table[K, V]) displace(i int, h int32, key K, value V, shifting bool) {
	resident := t.buckets[i]
	var tail []entry[K, V]
	if t.tails.Get(i) >= jump.MinOffset {
		tail = t.captureChain(i)
	}

	parent := t.findParent(i, resident.hash)
	t.tails.Set(parent, soloCell)

	t.buckets[i] = entry[K, V]{hash: h, key: key, value: value}
	t.tails.Set(i, soloCell)
	if !shifting {
		t.n++
	}

	t.placeHashed(resident.hash, resident.key, resident.value, true)
	for _, e := range tail {
		t.placeHashed(e.hash, e.key, e.value, true)
	}
}

// appendTail links the new entry after slot i, the last slot of its chain,
// probing jump offsets from i and placing the entry at the first empty slot
// it finds, evicting a more-settled tail if the newcomer has traveled
// further (Robin-Hood), or resizing if the jump table is exhausted.
func (t *table[K, V]) appendTail(i int, h int32, key K, value V, shifting bool) {
	p := i
	o := jump.MinOffset
	for {
		q := jump.Next(p, o, t.mask)
		tv := t.tails.Get(q)
		if tv == emptyCell {
			t.buckets[q] = entry[K, V]{hash: h, key: key, value: value}
			t.tails.Set(q, soloCell)
			t.tails.Set(p, uint8(o))
			if !shifting {
				t.n++
			}
			return
		}
		if !t.isHead(q) {
			parentOfQ := t.findParent(q, t.buckets[q].hash)
			parentOffset := int(t.tails.Get(parentOfQ))
			if o < parentOffset {
				t.evict(q, parentOfQ, p, o, h, key, value, shifting)
				return
			}
		}
		o++
		if o > jump.MaxOffset {
			if len(t.buckets) > 5*t.n {
				t.log.Infof("hashtable: resizing a sparse table (capacity %d, %d entries) because a chain exceeded the jump table",
					len(t.buckets), t.n)
			}
			t.resize(len(t.buckets) * 2)
			t.placeHashed(h, key, value, shifting)
			return
		}
	}
}

// evict displaces the entry at q (a tail that has traveled less far than
// the newcomer) so the newcomer can take q, linked from parent p at offset
// o. The evicted entry and its trailing chain are reinserted in shifting
// mode.
func (t *table[K, V]) evict(q, parentOfQ, p, o int, h int32, key K, value V, shifting bool) {
	resident := t.buckets[q]
	var tail []entry[K, V]
	if t.tails.Get(q) >= jump.MinOffset {
		tail = t.captureChain(q)
	}

	t.tails.Set(parentOfQ, soloCell)

	t.buckets[q] = entry[K, V]{hash: h, key: key, value: value}
	t.tails.Set(q, soloCell)
	t.tails.Set(p, uint8(o))
	if !shifting {
		t.n++
	}

	t.placeHashed(resident.hash, resident.key, resident.value, true)
	for _, e := range tail {
		t.placeHashed(e.hash, e.key, e.value, true)
	}
}

// captureChain walks the chain starting at slot i, known to have a
// successor, collecting and blanking every slot strictly after i. The head
// slot i itself is left untouched; the caller repurposes it.
func (t *table[K, V]) captureChain(i int) []entry[K, V] {
	var out []entry[K, V]
	cur := i
	curTV := t.tails.Get(cur)
	for curTV >= jump.MinOffset {
		next := jump.Next(cur, int(curTV), t.mask)
		nextTV := t.tails.Get(next)
		out = append(out, t.buckets[next])
		t.buckets[next] = entry[K, V]{}
		t.tails.Set(next, emptyCell)
		cur = next
		curTV = nextTV
	}
	return out
}

// findParent returns the slot whose chain link points at slot of, searching
// from of's home bucket (derived from hash).
func (t *table[K, V]) findParent(of int, hash int32) int {
	p := t.home(hash)
	for hop := 0; hop < maxParentHops; hop++ {
		tv := t.tails.Get(p)
		if tv < jump.MinOffset {
			break
		}
		next := jump.Next(p, int(tv), t.mask)
		if next == of {
			return p
		}
		p = next
	}
	panic(fmt.Errorf("%w: could not find parent of slot %d after %d hops", ErrInternalInvariant, of, maxParentHops))
}

// removeKey implements Remove for a single key, including backward
// re-emplacement of the chain that followed it.
func (t *table[K, V]) removeKey(key K) (V, bool) {
	t.checkNotDispatching()
	i := t.find(key)
	if i < 0 {
		var zero V
		return zero, false
	}

	var detachedStart int
	hasDetached := false
	if tv := t.tails.Get(i); tv >= jump.MinOffset {
		detachedStart = jump.Next(i, int(tv), t.mask)
		hasDetached = true
	}

	if !t.isHead(i) {
		parent := t.findParent(i, t.buckets[i].hash)
		t.tails.Set(parent, soloCell)
	}

	removedKey := t.buckets[i].key
	removedValue := t.buckets[i].value
	t.buckets[i] = entry[K, V]{}
	t.tails.Set(i, emptyCell)

	if hasDetached {
		detached := t.captureDetachedChain(detachedStart)
		for _, e := range detached {
			t.placeHashed(e.hash, e.key, e.value, true)
		}
	}

	t.n--
	t.version++
	t.onRemoved.dispatch(&t.dispatching, removedKey, removedValue)
	return removedValue, true
}

// captureDetachedChain captures and blanks an entire chain starting at
// start (inclusive), in order, before any of its entries are reinserted.
// Capturing the whole chain up front (rather than interleaving capture and
// reinsertion) avoids a reinsertion disturbing a slot this walk has not
// reached yet.
func (t *table[K, V]) captureDetachedChain(start int) []entry[K, V] {
	var out []entry[K, V]
	cur := start
	for {
		tv := t.tails.Get(cur)
		hasNext := tv >= jump.MinOffset
		var next int
		if hasNext {
			next = jump.Next(cur, int(tv), t.mask)
		}
		out = append(out, t.buckets[cur])
		t.buckets[cur] = entry[K, V]{}
		t.tails.Set(cur, emptyCell)
		if !hasNext {
			return out
		}
		cur = next
	}
}

// removeWhere removes every entry matching pred and returns how many were
// removed. Matches are collected before any removal begins so chain repair
// during one removal cannot skip or revisit a pending victim.
func (t *table[K, V]) removeWhere(pred func(K, V) bool) int {
	t.checkNotDispatching()
	var victims []K
	for i := range t.buckets {
		if t.tails.Get(i) == emptyCell {
			continue
		}
		e := t.buckets[i]
		if pred(e.key, e.value) {
			victims = append(victims, e.key)
		}
	}
	for _, k := range victims {
		t.removeKey(k)
	}
	return len(victims)
}

// clear empties the table without notifying observers.
func (t *table[K, V]) clear() {
	t.checkNotDispatching()
	for i := range t.buckets {
		t.buckets[i] = entry[K, V]{}
	}
	t.tails.Clear()
	t.n = 0
	t.version++
}

// resize grows (or, for EnsureCapacity, enlarges) the table to the next
// power of two at least newCapacity, reinserting every occupied entry in
// index order via shifting mode so the entry count is preserved.
func (t *table[K, V]) resize(newCapacity int) {
	capacity := nextPow2(newCapacity)
	if capacity <= len(t.buckets) {
		capacity = len(t.buckets) * 2
	}
	oldBuckets := t.buckets
	oldTails := t.tails

	t.buckets = make([]entry[K, V], capacity)
	t.tails = nibble.New(capacity)
	t.mask = capacity - 1
	t.shift = shiftFor(capacity)

	for i := range oldBuckets {
		if oldTails.Get(i) == emptyCell {
			continue
		}
		e := oldBuckets[i]
		t.placeHashed(e.hash, e.key, e.value, true)
	}
}

// ensureCapacity grows the table so it holds at least min buckets, if it
// does not already.
func (t *table[K, V]) ensureCapacity(min int) {
	t.checkNotDispatching()
	target := nextPow2(min)
	if target <= len(t.buckets) {
		return
	}
	t.resize(target)
	t.version++
}

func (t *table[K, V]) setMaxLoadFactor(f float64) error {
	if f <= 0 || f > 1 {
		return fmt.Errorf("%w: load factor %v must be in (0, 1]", ErrInvalidArgument, f)
	}
	t.checkNotDispatching()
	t.maxLoad = f
	if t.n > t.capacityCeiling() {
		t.resize(len(t.buckets) * 2)
		t.version++
	}
	return nil
}
