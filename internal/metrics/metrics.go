// Package metrics exposes the assistant's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AssistantTurns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shopfront",
		Subsystem: "assistant",
		Name:      "turns_total",
		Help:      "Assistant turns by outcome (reply, fallback, retry, stale).",
	}, []string{"outcome"})

	BackendRequests = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "shopfront",
		Subsystem: "backend",
		Name:      "request_duration_seconds",
		Help:      "Assistant backend round-trip latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"provider", "operation", "status"})

	SearchResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shopfront",
		Subsystem: "search",
		Name:      "results_total",
		Help:      "Search results by the path that produced them.",
	}, []string{"source"})

	SpeechPlayback = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shopfront",
		Subsystem: "assistant",
		Name:      "speech_total",
		Help:      "Voice replies by whether audio was played.",
	}, []string{"outcome"})

	ActiveSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "shopfront",
		Subsystem: "assistant",
		Name:      "active_sockets",
		Help:      "Open assistant websocket connections.",
	})
)
