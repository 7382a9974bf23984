package push

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SendsTotal counts per-recipient send attempts by result ("success" or "failure").
	SendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "puckline_push_sends_total",
			Help: "Total number of per-recipient push send attempts, by result.",
		},
		[]string{"result"},
	)

	// GoneTotal counts tokens the push service reported as permanently invalid.
	GoneTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "puckline_push_gone_total",
			Help: "Total number of tokens reported gone by the push service.",
		},
	)

	// FanoutsTotal counts fan-out runs.
	FanoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "puckline_push_fanouts_total",
			Help: "Total number of fan-out runs started.",
		},
	)
)
