// Copyright (c) 2020 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package hashtable

import "errors"

var (
	// ErrDuplicateKey is returned by InsertStrict when the key already exists.
	ErrDuplicateKey = errors.New("hashtable: duplicate key")

	// ErrKeyNotFound is returned by strict lookups when the key is absent.
	ErrKeyNotFound = errors.New("hashtable: key not found")

	// ErrConcurrentModification is reported by an Iterator whose table was
	// structurally mutated since the iterator was created.
	ErrConcurrentModification = errors.New("hashtable: concurrent modification during iteration")

	// ErrInvalidArgument is returned for out-of-range configuration, such as
	// a load factor outside (0, 1].
	ErrInvalidArgument = errors.New("hashtable: invalid argument")

	// ErrInternalInvariant indicates the table's own bookkeeping is
	// inconsistent (a bug in the table itself, not in caller usage).
	ErrInternalInvariant = errors.New("hashtable: internal invariant violated")

	// ErrReentrantMutation is panicked when an OnAdded/OnRemoved observer
	// attempts to mutate the table from within its callback.
	ErrReentrantMutation = errors.New("hashtable: observer callback attempted to mutate the table")
)
