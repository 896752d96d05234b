// Copyright (c) 2020 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package hashtable

import "github.com/gorh/robinhash/logger"

const defaultMaxLoadFactor = 0.5

type config[K, V any] struct {
	capacity int
	maxLoad  float64
	hash     func(K) int32
	eq       func(K, K) bool
	log      logger.Logger
}

func defaultConfig[K, V any]() config[K, V] {
	return config[K, V]{
		capacity: 0,
		maxLoad:  defaultMaxLoadFactor,
		log:      logger.Nop,
	}
}

// Option configures a Map or Set at construction time.
type Option[K, V any] func(*config[K, V])

// Capacity sets the minimum initial capacity, rounded up to a power of two
// with a floor of 4. It is an Option rather than a constructor so it
// composes with WithHash/WithEqual/WithLogger.
func Capacity[K, V any](min int) Option[K, V] {
	return func(c *config[K, V]) { c.capacity = min }
}

// WithMaxLoadFactor sets the load-factor ceiling. f must be in (0, 1];
// the Map/Set constructors panic if it is not, since this is caller
// misconfiguration rather than a runtime condition.
func WithMaxLoadFactor[K, V any](f float64) Option[K, V] {
	return func(c *config[K, V]) { c.maxLoad = f }
}

// WithHash overrides the key-hash hook. Without this option, comparable key
// types get a per-instance seeded structural hash (see internal/seedhash);
// non-comparable key types must supply one.
func WithHash[K, V any](h func(K) int32) Option[K, V] {
	return func(c *config[K, V]) { c.hash = h }
}

// WithEqual overrides the key-equivalence hook.
func WithEqual[K, V any](eq func(K, K) bool) Option[K, V] {
	return func(c *config[K, V]) { c.eq = eq }
}

// WithLogger injects a logger used for diagnostics such as the
// possibly-excessive-resizing notice. A nil logger is treated as logger.Nop.
func WithLogger[K, V any](l logger.Logger) Option[K, V] {
	return func(c *config[K, V]) {
		if l == nil {
			l = logger.Nop
		}
		c.log = l
	}
}
