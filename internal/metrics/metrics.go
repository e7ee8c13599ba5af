package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "otelshin",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	crmActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "otelshin",
			Name:      "crm_actions_total",
			Help:      "CRM actions by name and outcome.",
		},
		[]string{"action", "status"},
	)

	webhookFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "otelshin",
			Name:      "webhook_failures_total",
			Help:      "Telegram updates that failed processing.",
		},
	)

	updateDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "otelshin",
			Name:      "update_processing_seconds",
			Help:      "Time spent processing a Telegram update.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	syncQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "otelshin",
			Name:      "sheets_sync_queue_depth",
			Help:      "Pending tasks in the sheets sync queue.",
		},
	)

	syncTasks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "otelshin",
			Name:      "sheets_sync_tasks_total",
			Help:      "Sheets sync tasks by outcome.",
		},
		[]string{"status"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			crmActions,
			webhookFailures,
			updateDuration,
			syncQueueDepth,
			syncTasks,
		)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncCRMAction counts one CRM dispatch with its outcome ("ok" or "error").
func IncCRMAction(action, status string) {
	crmActions.WithLabelValues(action, status).Inc()
}

// IncWebhookFailure counts an update that was logged and dropped.
func IncWebhookFailure() {
	webhookFailures.Inc()
}

// ObserveUpdateDuration records how long one update took.
func ObserveUpdateDuration(seconds float64) {
	updateDuration.Observe(seconds)
}

// SetSyncQueueDepth reports the current sync backlog.
func SetSyncQueueDepth(depth int) {
	syncQueueDepth.Set(float64(depth))
}

// IncSyncTask counts a processed sync task ("completed", "retry", "failed").
func IncSyncTask(status string) {
	syncTasks.WithLabelValues(status).Inc()
}
