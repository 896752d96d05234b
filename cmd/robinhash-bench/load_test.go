// Copyright (c) 2020 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package main

import (
	"context"
	"math/rand"
	"testing"

	"github.com/gorh/robinhash/logger"
)

func TestFlakyValueDeterministicWithZeroRate(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		if _, err := flakyValue(r, 0, i); err != nil {
			t.Fatalf("flakyValue with rate 0 returned %v", err)
		}
	}
}

func TestFlakyValueAlwaysFailsAtRateOne(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	if _, err := flakyValue(r, 1, 1); err != errFlakySource {
		t.Fatalf("flakyValue with rate 1 = %v, want errFlakySource", err)
	}
}

func TestRunScenario(t *testing.T) {
	sc := scenario{
		Name:            "test",
		Keys:            200,
		InitialCapacity: 8,
		MaxLoadFactor:   0.5,
		Workers:         4,
		FlakyRate:       0.3,
	}
	m := newMetrics()
	if err := runScenario(context.Background(), sc, m, logger.Nop); err != nil {
		t.Fatalf("runScenario: %v", err)
	}
}

func TestRunScenarioSingleWorker(t *testing.T) {
	sc := scenario{
		Name:            "single",
		Keys:            37,
		InitialCapacity: 4,
		MaxLoadFactor:   0.5,
		Workers:         1,
		FlakyRate:       0,
	}
	m := newMetrics()
	if err := runScenario(context.Background(), sc, m, logger.Nop); err != nil {
		t.Fatalf("runScenario: %v", err)
	}
}
