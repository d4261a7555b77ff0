package simulation

import (
	"time"

	"greencart-ops-api/internal/apperr"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greencart_simulation_runs_total",
			Help: "Simulation runs by outcome",
		},
		[]string{"outcome"},
	)

	ordersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greencart_simulation_orders_total",
			Help: "Orders processed by simulation runs",
		},
		[]string{"result"}, // on_time, late, skipped
	)

	runDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "greencart_simulation_duration_seconds",
			Help:    "Wall time of a simulation run including persistence",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func observeRun(start time.Time, err error) {
	runDuration.Observe(time.Since(start).Seconds())
	outcome := "ok"
	if err != nil {
		outcome = apperr.KindOf(err).String()
	}
	runsTotal.WithLabelValues(outcome).Inc()
}

func observeOrders(res Result) {
	ordersTotal.WithLabelValues("on_time").Add(float64(res.OnTimeDeliveries))
	ordersTotal.WithLabelValues("late").Add(float64(res.LateDeliveries))
	ordersTotal.WithLabelValues("skipped").Add(float64(len(res.Skipped)))
}
