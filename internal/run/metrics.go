package run

import "github.com/prometheus/client_golang/prometheus"

var (
	runsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "llmsuite",
		Subsystem: "run",
		Name:      "comparisons_total",
		Help:      "Total number of started comparison runs",
	})

	modelQueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "llmsuite",
		Subsystem: "run",
		Name:      "model_queries_total",
		Help:      "Per-model query outcomes within comparison runs",
	}, []string{"outcome"})

	cancellationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "llmsuite",
		Subsystem: "run",
		Name:      "cancellations_total",
		Help:      "Total number of user-cancelled runs",
	})

	evaluationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "llmsuite",
		Subsystem: "run",
		Name:      "evaluations_total",
		Help:      "Total number of evaluation passes",
	})
)

func init() {
	prometheus.MustRegister(runsTotal, modelQueriesTotal, cancellationsTotal, evaluationsTotal)
}
