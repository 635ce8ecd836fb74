// Package metrics exposes the Dialogue Engine's Prometheus
// instrumentation: counters and histograms registered once at package
// init and updated from engine.go as turns are processed.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TurnsProcessed counts turns processed per bot, labeled by outcome
	// (transition, goto, fallback, silent, error).
	TurnsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "botlang",
		Subsystem: "dialogue",
		Name:      "turns_total",
		Help:      "Total dialogue turns processed, labeled by outcome.",
	}, []string{"bot", "outcome"})

	// StateEntries counts how many times each state is entered.
	StateEntries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "botlang",
		Subsystem: "dialogue",
		Name:      "state_entries_total",
		Help:      "Total state entries, labeled by bot and state.",
	}, []string{"bot", "state"})

	// TurnDuration measures wall-clock time spent in Engine.Turn,
	// including the IntentRecognizer round-trip.
	TurnDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "botlang",
		Subsystem: "dialogue",
		Name:      "turn_duration_seconds",
		Help:      "Latency of a single dialogue turn.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"bot"})

	// RuntimeErrors counts RuntimeErrors raised during turn processing.
	RuntimeErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "botlang",
		Subsystem: "dialogue",
		Name:      "runtime_errors_total",
		Help:      "RuntimeErrors raised while processing a turn, labeled by bot.",
	}, []string{"bot"})

	// ActiveSessions gauges the number of live dialogue sessions the host
	// process is currently managing.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "botlang",
		Subsystem: "session",
		Name:      "active",
		Help:      "Number of dialogue sessions currently held open by the manager.",
	})
)
