package swruntime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReceivedTotal counts push events by outcome ("displayed", "dropped", "failed").
	ReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "puckline_worker_push_received_total",
			Help: "Total number of push events handled by the worker, by outcome.",
		},
		[]string{"outcome"},
	)

	// ClicksTotal counts notification clicks by action ("focus", "open").
	ClicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "puckline_worker_notification_clicks_total",
			Help: "Total number of notification clicks, by resulting navigation.",
		},
		[]string{"action"},
	)
)
