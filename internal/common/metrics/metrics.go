package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	NotificationsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_delivered_total",
			Help: "Delivery attempts by channel, notification type and outcome",
		},
		[]string{"channel", "notification_type", "status"},
	)

	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notification_provider_latency_seconds",
			Help:    "Latency of email and SMS provider calls",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"channel"},
	)

	DeliveryLogWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_log_write_failures_total",
			Help: "Delivery log rows that could not be written",
		},
	)

	TriggerEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "behavioral_trigger_customers_total",
			Help: "Customers evaluated by behavioral triggers by outcome",
		},
		[]string{"trigger_type", "outcome"},
	)

	FunctionRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "function_requests_total",
			Help: "HTTP function requests by function and status code",
		},
		[]string{"function", "status"},
	)

	OrderEventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_events_consumed_total",
			Help: "Order status events consumed from the queue by result",
		},
		[]string{"result"},
	)
)
