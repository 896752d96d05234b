// Copyright (c) 2020 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package main

import "github.com/prometheus/client_golang/prometheus"

// metrics are the tables' only connection to Prometheus: the hashtable
// package itself has no notion of metrics, this command wires its own
// counters to OnAdded/OnRemoved.
type metrics struct {
	entriesAdded   *prometheus.CounterVec
	entriesRemoved *prometheus.CounterVec
	tableEntries   *prometheus.GaugeVec
}

func newMetrics() *metrics {
	return &metrics{
		entriesAdded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "robinhash_entries_added_total",
			Help: "Entries added across all scenario tables, by scenario.",
		}, []string{"scenario"}),
		entriesRemoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "robinhash_entries_removed_total",
			Help: "Entries removed across all scenario tables, by scenario.",
		}, []string{"scenario"}),
		tableEntries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "robinhash_table_entries",
			Help: "Current entry count of each scenario's table.",
		}, []string{"scenario"}),
	}
}

func (m *metrics) register() {
	prometheus.MustRegister(m.entriesAdded, m.entriesRemoved, m.tableEntries)
}

// attach wires a scenario's table lifecycle events to this set of metrics.
// It returns one function that unregisters both callbacks so the caller can
// detach them once the scenario completes, the same pattern
// hashtable.Map.OnAdded documents.
func (m *metrics) attach(name string, onAdded, onRemoved func(func(int, string)) func()) (unregister func()) {
	unAdd := onAdded(func(key int, _ string) {
		m.entriesAdded.WithLabelValues(name).Inc()
		m.tableEntries.WithLabelValues(name).Inc()
	})
	unRemove := onRemoved(func(key int, _ string) {
		m.entriesRemoved.WithLabelValues(name).Inc()
		m.tableEntries.WithLabelValues(name).Dec()
	})
	return func() { unAdd(); unRemove() }
}
