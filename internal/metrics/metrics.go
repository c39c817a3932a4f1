package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RelayAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wfrelay_relay_attempts_total",
			Help: "Outbound workflow attempts by environment and outcome",
		},
		[]string{"environment", "outcome"}, // success|retryable|rejected|network_error
	)

	RelayResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wfrelay_relay_results_total",
			Help: "Final relay results by environment and kind",
		},
		[]string{"environment", "result"}, // queued|delivered|<error kind>
	)

	registerOnce sync.Once
)

// MustRegister registers the collectors once; serve and CLI commands may both call it.
func MustRegister(r prometheus.Registerer) {
	registerOnce.Do(func() {
		r.MustRegister(
			RelayAttemptsTotal,
			RelayResultsTotal,
		)
	})
}
