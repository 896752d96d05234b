// Copyright (c) 2020 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package seedhash provides the default, per-instance-seeded structural hash
// used when a table is constructed without an explicit hash function. It is
// a fallback for convenience and ergonomics, not a performance-critical
// path: callers with hot loops or collision-sensitive keys should supply
// their own hash via hashtable.WithHash.
package seedhash

import (
	"fmt"
	"hash/maphash"
)

// New returns a hash function over comparable values of type K, seeded
// independently for this call so that hash values are not stable across
// instances. It aims for a reasonable, well-distributed hash, not a
// cryptographic one.
func New[K comparable]() func(K) int32 {
	seed := maphash.MakeSeed()
	return func(k K) int32 {
		var h maphash.Hash
		h.SetSeed(seed)
		fmt.Fprintf(&h, "%#v", k)
		return int32(h.Sum64())
	}
}

// Equal returns the default equivalence for comparable values: Go's built-in
// equality operator.
func Equal[K comparable]() func(K, K) bool {
	return func(a, b K) bool { return a == b }
}
