// Copyright (c) 2020 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/gorh/robinhash/hashtable"
	"github.com/gorh/robinhash/logger"
)

// errFlakySource simulates an unreliable upstream key/value source (a
// cache miss, a transient RPC failure) so the load driver has something
// genuine to retry.
var errFlakySource = errors.New("simulated flaky key source")

func flakyValue(r *rand.Rand, rate float64, key int) (string, error) {
	if rate > 0 && r.Float64() < rate {
		return "", errFlakySource
	}
	return fmt.Sprintf("value-%d", key), nil
}

// runScenario drives sc.Workers goroutines, each building its own
// independent table (the table itself is never shared across goroutines;
// only this driver loop is concurrent) and reports the aggregate entry
// count once every worker finishes.
func runScenario(ctx context.Context, sc scenario, m *metrics, log logger.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	totals := make([]int, sc.Workers)
	perWorker := sc.Keys / sc.Workers

	for w := 0; w < sc.Workers; w++ {
		w := w
		lo := w * perWorker
		hi := lo + perWorker
		if w == sc.Workers-1 {
			hi = sc.Keys // last worker absorbs the remainder
		}
		g.Go(func() error {
			tbl := hashtable.New[int, string](
				hashtable.Capacity[int, string](sc.InitialCapacity),
				hashtable.WithMaxLoadFactor[int, string](sc.MaxLoadFactor),
				hashtable.WithLogger[int, string](log),
			)
			unregister := m.attach(sc.Name, tbl.OnAdded, tbl.OnRemoved)
			defer unregister()

			r := rand.New(rand.NewSource(int64(w) + 1))
			for k := lo; k < hi; k++ {
				var value string
				fetch := func() error {
					v, err := flakyValue(r, sc.FlakyRate, k)
					if err != nil {
						return err
					}
					value = v
					return nil
				}
				bo := backoff.NewExponentialBackOff()
				bo.MaxElapsedTime = 2 * time.Second
				if err := backoff.Retry(fetch, backoff.WithContext(bo, gctx)); err != nil {
					return fmt.Errorf("scenario %q worker %d: key %d: %w", sc.Name, w, k, err)
				}
				tbl.Insert(k, value)
			}
			totals[w] = tbl.Len()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	sum := 0
	for _, n := range totals {
		sum += n
	}
	log.Infof("scenario %q: %d workers inserted %d entries total", sc.Name, sc.Workers, sum)
	return nil
}
