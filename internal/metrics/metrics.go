// Copyright (c) 2026 Sepehrz All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package metrics holds the Prometheus instruments used across the
// service. All collectors are registered with the global registry, so
// importing this package is enough to expose them on /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	CheckCyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "filterwatch_check_cycles_total",
			Help: "Cumulative number of completed check cycles.",
		})

	DomainChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filterwatch_domain_checks_total",
			Help: "Cumulative number of completed domain checks, by verdict.",
		},
		[]string{"verdict"},
	)

	FilteredDetectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "filterwatch_filtered_detected_total",
			Help: "Cumulative number of filtered verdicts.",
		})

	NotifyFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "filterwatch_notify_failures_total",
			Help: "Cumulative number of failed alert deliveries.",
		})

	LastCycleDurationSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "filterwatch_last_cycle_duration_seconds",
			Help: "Wall-clock duration of the most recent check cycle.",
		})
)

func init() {
	prometheus.MustRegister(
		CheckCyclesTotal,
		DomainChecksTotal,
		FilteredDetectedTotal,
		NotifyFailuresTotal,
		LastCycleDurationSeconds,
	)
}
