// Copyright (c) 2020 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package hashtable

import "golang.org/x/exp/constraints"

// IntHash returns a hash function for integer key types that skips the
// maphash/reflection-ish formatting the default seedhash fallback does for
// arbitrary comparable types. Pass it to WithHash when K is a plain integer
// and the per-instance seeding of the default hash is not needed.
//
//	m := New[int, string](WithHash[int, string](IntHash[int]()))
func IntHash[T constraints.Integer]() func(T) int32 {
	return func(v T) int32 {
		u := uint64(v)
		// 64-bit mix (splitmix64 finalizer), then fold to 32 bits.
		u ^= u >> 30
		u *= 0xbf58476d1ce4e5b9
		u ^= u >> 27
		u *= 0x94d049bb133111eb
		u ^= u >> 31
		return int32(u) ^ int32(u>>32)
	}
}
