package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ReconcileTriggers = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tuition", Name: "reconcile_triggers_total", Help: "Reconciliation triggers by reason",
	}, []string{"reason"})
	ReconcilePasses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tuition", Name: "reconcile_passes_total", Help: "Completed reconciliation passes",
	})
	ReconcileErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tuition", Name: "reconcile_errors_total", Help: "Failed reconciliation passes",
	})
	ReconcileSuperseded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tuition", Name: "reconcile_superseded_total", Help: "Passes discarded because a newer trigger arrived",
	})
	ReconcileDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tuition", Name: "reconcile_duration_seconds", Help: "Reconciliation pass duration",
		Buckets: prometheus.DefBuckets,
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tuition", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(ReconcileTriggers, ReconcilePasses, ReconcileErrors, ReconcileSuperseded, ReconcileDuration, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }
