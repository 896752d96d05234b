// Copyright (c) 2020 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package main

import (
	"fmt"
	"io/ioutil"

	"gopkg.in/yaml.v2"
)

// scenario describes one independent load run: how many keys to insert,
// how the table should be pre-sized and tuned, how many goroutines drive
// the load concurrently (into independent tables; a table itself is never
// shared across goroutines), and how often the simulated key source should
// misbehave and need a retry.
type scenario struct {
	Name            string  `yaml:"name"`
	Keys            int     `yaml:"keys"`
	InitialCapacity int     `yaml:"initial_capacity"`
	MaxLoadFactor   float64 `yaml:"max_load_factor"`
	Workers         int     `yaml:"workers"`
	FlakyRate       float64 `yaml:"flaky_rate"`
}

type config struct {
	Scenarios []scenario `yaml:"scenarios"`
}

func loadConfig(path string) (*config, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %q: %w", path, err)
	}
	var cfg config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %q: %w", path, err)
	}
	for i := range cfg.Scenarios {
		s := &cfg.Scenarios[i]
		if s.Workers <= 0 {
			s.Workers = 1
		}
		if s.MaxLoadFactor <= 0 {
			s.MaxLoadFactor = 0.5
		}
	}
	return &cfg, nil
}
