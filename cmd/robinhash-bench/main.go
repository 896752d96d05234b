// Copyright (c) 2020 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// The robinhash-bench command drives configurable load scenarios against
// hashtable.Map and exposes the results as Prometheus metrics. It exists to
// exercise the table under realistic concurrent *driver* load (the tables
// themselves are never shared across goroutines) and to give the rest of
// this module's domain dependencies — YAML scenario config, an exponential
// backoff retry loop, an errgroup-driven worker pool — somewhere real to run.
package main

import (
	"context"
	"flag"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	ourglog "github.com/gorh/robinhash/glog"
	"github.com/gorh/robinhash/logger"

	"github.com/aristanetworks/glog"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML scenario file (see config.go for the schema)")
	metricsAddr := flag.String("metricsaddr", ":8080", "Address on which to expose Prometheus metrics")
	metricsURL := flag.String("metricsurl", "/metrics", "URL path where metrics are exposed")
	flag.Parse()

	if *configPath == "" {
		glog.Fatal("You need to specify a scenario file using -config")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		glog.Fatal(err)
	}

	log := logger.Logger(&ourglog.Glog{})
	m := newMetrics()
	m.register()

	http.Handle(*metricsURL, promhttp.Handler())
	go http.ListenAndServe(*metricsAddr, nil)

	ctx := context.Background()
	for _, sc := range cfg.Scenarios {
		if err := runScenario(ctx, sc, m, log); err != nil {
			glog.Fatal(err)
		}
	}
}
