// Copyright (c) 2020 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package hashtable

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/gorh/robinhash/hashtable/internal/testutil"
	"github.com/gorh/robinhash/internal/jump"
)

// validateChains checks that every non-empty tail cell points at an
// occupied slot, and that every slot reachable from a head shares that
// head's home bucket.
func validateChains[K, V any](t *testing.T, tbl *table[K, V]) {
	t.Helper()
	for i := 0; i < len(tbl.buckets); i++ {
		tv := tbl.tails.Get(i)
		if tv < jump.MinOffset {
			continue
		}
		next := jump.Next(i, int(tv), tbl.mask)
		if tbl.tails.Get(next) == emptyCell {
			t.Fatalf("slot %d points at empty slot %d", i, next)
		}
	}
	// Every occupied slot must be reachable from its own home bucket by
	// following the chain, and every entry in a chain must share its
	// head's home.
	for i := 0; i < len(tbl.buckets); i++ {
		if tbl.tails.Get(i) == emptyCell {
			continue
		}
		home := tbl.home(tbl.buckets[i].hash)
		cur := home
		found := false
		for hops := 0; hops < len(tbl.buckets)+1; hops++ {
			if cur == i {
				found = true
				break
			}
			tv := tbl.tails.Get(cur)
			if tv < jump.MinOffset {
				break
			}
			cur = jump.Next(cur, int(tv), tbl.mask)
		}
		if !found {
			t.Fatalf("slot %d (home %d) is not reachable by following its own chain from its home bucket", i, home)
		}
	}
}

func countEntries[K, V any](tbl *table[K, V]) int {
	n := 0
	for i := range tbl.buckets {
		if tbl.tails.Get(i) != emptyCell {
			n++
		}
	}
	return n
}

// TestScenarioEmptyTable covers spec scenario 1.
func TestScenarioEmptyTable(t *testing.T) {
	m := New[int, string]()
	if m.Capacity() != 4 {
		t.Errorf("Capacity() = %d, want 4", m.Capacity())
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
}

// TestScenarioGrowOnThirdInsert covers spec scenario 2.
func TestScenarioGrowOnThirdInsert(t *testing.T) {
	m := New[int, string]()
	m.Insert(1, "a")
	m.Insert(2, "b")
	if m.Capacity() != 4 {
		t.Fatalf("Capacity() after 2 inserts = %d, want 4", m.Capacity())
	}
	m.Insert(3, "c")
	if m.Capacity() != 8 {
		t.Errorf("Capacity() after 3rd insert = %d, want 8", m.Capacity())
	}
	if m.Len() != 3 {
		t.Errorf("Len() = %d, want 3", m.Len())
	}
	got := map[int]string{}
	it := m.Iter()
	for it.Next() {
		got[it.Key()] = it.Value()
	}
	want := map[int]string{1: "a", 2: "b", 3: "c"}
	if len(got) != len(want) {
		t.Fatalf("iter produced %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("got[%d] = %q, want %q", k, got[k], v)
		}
	}
}

// collidingKey always hashes to the same value, forcing every insert down
// the same chain, to exercise spec scenario 3's forced displacement/resize.
type collidingKey int

func collidingHash(collidingKey) int32 { return 42 }
func collidingEq(a, b collidingKey) bool { return a == b }

// TestScenarioForcedChainResize covers spec scenario 3.
func TestScenarioForcedChainResize(t *testing.T) {
	m := NewCustom[collidingKey, int](collidingHash, collidingEq, Capacity[collidingKey, int](64))
	startCap := m.Capacity()
	for i := 0; i < 16; i++ {
		m.Insert(collidingKey(i), i)
	}
	if m.Capacity() <= startCap {
		t.Errorf("Capacity() = %d, want > %d after forcing chain exhaustion", m.Capacity(), startCap)
	}
	for i := 0; i < 16; i++ {
		v, ok := m.TryGet(collidingKey(i))
		if !ok || v != i {
			t.Errorf("TryGet(%d) = (%d, %v), want (%d, true)", i, v, ok, i)
		}
	}
	validateChains(t, m.t)
}

// TestScenarioRemove covers spec scenario 4.
func TestScenarioRemove(t *testing.T) {
	m := New[int, string]()
	m.Insert(1, "a")
	m.Insert(2, "b")
	v, removed := m.Remove(1)
	if !removed || v != "a" {
		t.Fatalf("Remove(1) = (%q, %v), want (\"a\", true)", v, removed)
	}
	if m.Contains(1) {
		t.Error("Contains(1) = true after removal")
	}
	if !m.Contains(2) {
		t.Error("Contains(2) = false, want true")
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
	it := m.Iter()
	count := 0
	for it.Next() {
		count++
		if it.Key() != 2 || it.Value() != "b" {
			t.Errorf("iter yielded (%d, %q), want (2, \"b\")", it.Key(), it.Value())
		}
	}
	if count != 1 {
		t.Errorf("iter yielded %d entries, want 1", count)
	}
}

// TestScenarioLargeTable covers spec scenario 5 (P1, P4, P6).
func TestScenarioLargeTable(t *testing.T) {
	m := New[int, int]()
	const n = 1000
	for i := 0; i < n; i++ {
		m.Insert(i, i*i)
	}
	for i := 0; i < n; i++ {
		v, ok := m.TryGet(i)
		if !ok || v != i*i {
			t.Fatalf("TryGet(%d) = (%d, %v), want (%d, true)", i, v, ok, i*i)
		}
	}
	if m.Len() != n {
		t.Fatalf("Len() = %d, want %d", m.Len(), n)
	}
	var seen []int
	it := m.Iter()
	for it.Next() {
		seen = append(seen, it.Key())
	}
	if len(seen) != n {
		t.Fatalf("iter count = %d, want %d", len(seen), n)
	}
	want := make([]int, n)
	for i := range want {
		want[i] = i
	}
	if diff := testutil.DiffSlices(want, seen); diff != "" {
		t.Fatalf("iterated keys differ from expected: %s\ngot: %s", diff, testutil.Sprint(seen))
	}
	validateChains(t, m.t)
}

// TestScenarioIteratorInvalidation covers spec scenario 6 / P8.
func TestScenarioIteratorInvalidation(t *testing.T) {
	m := New[int, string]()
	m.Insert(1, "a")
	m.Insert(2, "b")
	m.Insert(3, "c")
	it := m.Iter()
	it.Next()
	m.Insert(4, "d")
	if it.Next() {
		t.Fatal("Next() returned true after a concurrent mutation")
	}
	if !errors.Is(it.Err(), ErrConcurrentModification) {
		t.Errorf("Err() = %v, want ErrConcurrentModification", it.Err())
	}
}

// TestP1RoundTrip checks that inserted keys are found and others are not.
func TestP1RoundTrip(t *testing.T) {
	m := New[int, int]()
	inserted := map[int]bool{}
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		k := r.Intn(10000)
		if inserted[k] {
			continue
		}
		inserted[k] = true
		m.Insert(k, k)
	}
	for k := 0; k < 10000; k++ {
		want := inserted[k]
		if got := m.Contains(k); got != want {
			t.Errorf("Contains(%d) = %v, want %v", k, got, want)
		}
	}
}

// TestP2IdempotentReplace checks insert-then-reinsert behavior.
func TestP2IdempotentReplace(t *testing.T) {
	m := New[string, int]()
	m.Insert("k", 1)
	before := m.Len()
	prev, replaced := m.Insert("k", 2)
	if !replaced || prev != 1 {
		t.Fatalf("Insert(\"k\", 2) = (%d, %v), want (1, true)", prev, replaced)
	}
	if m.Len() != before {
		t.Errorf("Len() changed from %d to %d on replace", before, m.Len())
	}
	if got := m.Get("k"); got != 2 {
		t.Errorf("Get(\"k\") = %d, want 2", got)
	}
}

// TestP3RemoveUndoesInsert inserts then removes in reverse order.
func TestP3RemoveUndoesInsert(t *testing.T) {
	m := New[int, int]()
	keys := []int{5, 1, 9, 3, 7, 2, 8, 4, 6, 0}
	for _, k := range keys {
		m.Insert(k, k)
	}
	for i := len(keys) - 1; i >= 0; i-- {
		k := keys[i]
		if _, removed := m.Remove(k); !removed {
			t.Fatalf("Remove(%d) reported not found", k)
		}
		validateChains(t, m.t)
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
	for _, k := range keys {
		if m.Contains(k) {
			t.Errorf("Contains(%d) = true after full removal", k)
		}
	}
}

// TestP5LoadFactorInvariant checks the load ceiling holds after every
// insert across a long randomized run.
func TestP5LoadFactorInvariant(t *testing.T) {
	m := New[int, int]()
	for i := 0; i < 2000; i++ {
		m.Insert(i, i)
		ceiling := int(float64(m.Capacity()) * 0.5)
		if m.Len() > ceiling {
			t.Fatalf("after inserting %d entries: Len()=%d > ceiling=%d (capacity %d)", i+1, m.Len(), ceiling, m.Capacity())
		}
	}
}

// TestP7VersionMonotonicity checks that Insert/Remove/Clear each bump the
// version exactly once, and that shifting reinsertions triggered by those
// operations do not bump it further.
func TestP7VersionMonotonicity(t *testing.T) {
	m := New[int, int]()
	v0 := m.t.version
	m.Insert(1, 1)
	if m.t.version != v0+1 {
		t.Errorf("version after Insert = %d, want %d", m.t.version, v0+1)
	}
	v1 := m.t.version
	m.Insert(2, 2)
	if m.t.version != v1+1 {
		t.Errorf("version after 2nd Insert = %d, want %d", m.t.version, v1+1)
	}
	v2 := m.t.version
	m.Remove(1)
	if m.t.version != v2+1 {
		t.Errorf("version after Remove = %d, want %d", m.t.version, v2+1)
	}
	v3 := m.t.version
	m.Clear()
	if m.t.version != v3+1 {
		t.Errorf("version after Clear = %d, want %d", m.t.version, v3+1)
	}
	// A replace changes no membership, so it is not a structural mutation:
	// the duplicate-key branch overwrites the value without touching
	// place()/count and leaves the version as it was.
	m.Insert(10, 10)
	v4 := m.t.version
	m.Insert(10, 11)
	if m.t.version != v4 {
		t.Errorf("version after idempotent replace = %d, want unchanged %d", m.t.version, v4)
	}
}

// TestP9ResizePreservesContent forces a resize via EnsureCapacity and
// checks the multiset of entries is unchanged.
func TestP9ResizePreservesContent(t *testing.T) {
	m := New[int, int]()
	want := map[int]int{}
	for i := 0; i < 50; i++ {
		m.Insert(i, i*2)
		want[i] = i * 2
	}
	capBefore := m.Capacity()
	m.EnsureCapacity(capBefore * 2)
	if m.Capacity() < capBefore*2 {
		t.Fatalf("Capacity() = %d, want >= %d", m.Capacity(), capBefore*2)
	}
	if m.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", m.Len(), len(want))
	}
	for k, v := range want {
		got, ok := m.TryGet(k)
		if !ok || got != v {
			t.Errorf("TryGet(%d) = (%d, %v), want (%d, true)", k, got, ok, v)
		}
	}
	validateChains(t, m.t)
}

func TestInsertStrictDuplicateKey(t *testing.T) {
	m := New[string, int]()
	if err := m.InsertStrict("k", 1); err != nil {
		t.Fatalf("InsertStrict on fresh key: %v", err)
	}
	err := m.InsertStrict("k", 2)
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("InsertStrict on duplicate key = %v, want ErrDuplicateKey", err)
	}
	if got := m.Get("k"); got != 1 {
		t.Errorf("Get(\"k\") = %d after failed InsertStrict, want unchanged 1", got)
	}
}

func TestGetStrict(t *testing.T) {
	m := New[string, int]()
	m.Insert("k", 1)
	v, err := m.GetStrict("k")
	if err != nil || v != 1 {
		t.Fatalf("GetStrict(\"k\") = (%d, %v), want (1, nil)", v, err)
	}
	_, err = m.GetStrict("missing")
	if !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("GetStrict(\"missing\") err = %v, want ErrKeyNotFound", err)
	}
}

func TestTryInsert(t *testing.T) {
	m := New[string, int]()
	existing, existed := m.TryInsert("k", 1)
	if existed || existing != 0 {
		t.Fatalf("TryInsert on fresh key = (%d, %v), want (0, false)", existing, existed)
	}
	existing, existed = m.TryInsert("k", 2)
	if !existed || existing != 1 {
		t.Fatalf("TryInsert on existing key = (%d, %v), want (1, true)", existing, existed)
	}
	if got := m.Get("k"); got != 1 {
		t.Errorf("Get(\"k\") = %d, want unchanged 1", got)
	}
}

func TestGetOrAdd(t *testing.T) {
	m := New[string, int]()
	calls := 0
	init := func() int {
		calls++
		return 42
	}
	v := m.GetOrAdd("k", init)
	if v != 42 || calls != 1 {
		t.Fatalf("GetOrAdd on absent key = %d (calls=%d), want 42 (calls=1)", v, calls)
	}
	v = m.GetOrAdd("k", init)
	if v != 42 || calls != 1 {
		t.Fatalf("GetOrAdd on present key = %d (calls=%d), want 42 (calls=1, not re-invoked)", v, calls)
	}
}

func TestRemoveWhere(t *testing.T) {
	m := New[int, int]()
	for i := 0; i < 20; i++ {
		m.Insert(i, i)
	}
	removed := m.RemoveWhere(func(k, v int) bool { return k%2 == 0 })
	if removed != 10 {
		t.Fatalf("RemoveWhere(even) removed %d, want 10", removed)
	}
	if m.Len() != 10 {
		t.Fatalf("Len() = %d, want 10", m.Len())
	}
	for i := 0; i < 20; i++ {
		want := i%2 != 0
		if got := m.Contains(i); got != want {
			t.Errorf("Contains(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestSetMaxLoadFactorInvalid(t *testing.T) {
	m := New[int, int]()
	for _, f := range []float64{0, -0.5, 1.5} {
		if err := m.SetMaxLoadFactor(f); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("SetMaxLoadFactor(%v) = %v, want ErrInvalidArgument", f, err)
		}
	}
	if err := m.SetMaxLoadFactor(0.9); err != nil {
		t.Errorf("SetMaxLoadFactor(0.9) = %v, want nil", err)
	}
}

func TestWithMaxLoadFactorOutOfRangePanics(t *testing.T) {
	for _, f := range []float64{0, -0.5, 1.5} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("New(WithMaxLoadFactor(%v)) did not panic", f)
				}
			}()
			New[int, int](WithMaxLoadFactor[int, int](f))
		}()
	}
}

func TestEventHooks(t *testing.T) {
	m := New[int, string]()
	var added, removed []int
	unAdd := m.OnAdded(func(k int, v string) { added = append(added, k) })
	unRemove := m.OnRemoved(func(k int, v string) { removed = append(removed, k) })

	m.Insert(1, "a")
	m.Insert(2, "b")
	m.Remove(1)
	if fmt.Sprint(added) != "[1 2]" {
		t.Errorf("added = %v, want [1 2]", added)
	}
	if fmt.Sprint(removed) != "[1]" {
		t.Errorf("removed = %v, want [1]", removed)
	}

	unAdd()
	unRemove()
	m.Insert(3, "c")
	m.Remove(2)
	if fmt.Sprint(added) != "[1 2]" || fmt.Sprint(removed) != "[1]" {
		t.Errorf("hooks fired after unregistering: added=%v removed=%v", added, removed)
	}
}

func TestEventHookReplaceDoesNotFireAdded(t *testing.T) {
	m := New[int, int]()
	var added int
	m.OnAdded(func(k, v int) { added++ })
	m.Insert(1, 1)
	m.Insert(1, 2) // replace, not a fresh add
	if added != 1 {
		t.Errorf("added fired %d times, want 1", added)
	}
}

func TestReentrantMutationPanics(t *testing.T) {
	m := New[int, int]()
	m.OnAdded(func(k, v int) {
		m.Insert(999, 999)
	})
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic from a reentrant mutation inside an observer")
		}
		if err, ok := r.(error); !ok || !errors.Is(err, ErrReentrantMutation) {
			t.Errorf("recovered %v, want ErrReentrantMutation", r)
		}
	}()
	m.Insert(1, 1)
}

func TestClearDoesNotNotify(t *testing.T) {
	m := New[int, int]()
	m.Insert(1, 1)
	m.Insert(2, 2)
	fired := false
	m.OnRemoved(func(k, v int) { fired = true })
	m.Clear()
	if fired {
		t.Error("Clear() fired OnRemoved")
	}
	if m.Len() != 0 {
		t.Errorf("Len() after Clear() = %d, want 0", m.Len())
	}
}
