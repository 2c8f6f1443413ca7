// Copyright (c) 2026 CityPulse. All rights reserved.
// Author: dev@citypulse.app

// Package metrics registers the Prometheus instruments for the API and the
// discovery pipeline, and exposes the /metrics scrape handler.
//
// # Architecture
//
// All instruments are registered once on the default registry at package
// initialization. Layers record observations through the exported variables;
// only internal/api mounts the scrape endpoint.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "citypulse"

var (
	// HTTPRequestsTotal counts finished HTTP requests by method and status class.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Finished HTTP requests",
	}, []string{"method", "status"})

	// HTTPRequestDuration observes request latency in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	// DiscoveryTriggersTotal counts scrape trigger outcomes.
	// outcome is one of: launched, spawn_failed.
	DiscoveryTriggersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "discovery",
		Name:      "triggers_total",
		Help:      "Scraper trigger attempts by outcome",
	}, []string{"outcome"})

	// ExtractionsTotal counts AI extraction outcomes.
	// outcome is one of: ok, extraction_failed, transport_failed.
	ExtractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "discovery",
		Name:      "ai_extractions_total",
		Help:      "AI extraction attempts by outcome",
	}, []string{"outcome"})
)

// Handler returns the Prometheus scrape handler for GET /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
