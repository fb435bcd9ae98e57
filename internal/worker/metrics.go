package worker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tasksReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roast_worker_tasks_received_total",
			Help: "Total number of generation tasks received by the worker.",
		},
	)
	tasksSucceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roast_worker_tasks_succeeded_total",
			Help: "Total number of generation tasks successfully processed.",
		},
	)
	tasksFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roast_worker_tasks_failed_total",
			Help: "Total number of generation tasks failed, partitioned by failure reason.",
		},
		[]string{"reason"},
	)
	taskDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "roast_worker_task_duration_seconds",
			Help:    "Histogram of end-to-end generation task durations.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1s .. ~8.5min
		},
	)
	unlocksProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roast_worker_unlocks_processed_total",
			Help: "Total number of unlock events processed, partitioned by outcome.",
		},
		[]string{"outcome"},
	)
	stepsResumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roast_worker_steps_resumed_total",
			Help: "Total number of workflow steps skipped thanks to a persisted cursor.",
		},
		[]string{"step"},
	)
)

// MetricsIncrementTasksReceived увеличивает счетчик полученных задач.
func MetricsIncrementTasksReceived() {
	tasksReceived.Inc()
}

// MetricsIncrementTaskSucceeded увеличивает счетчик успешных задач.
func MetricsIncrementTaskSucceeded() {
	tasksSucceeded.Inc()
}

// MetricsIncrementTaskFailed увеличивает счетчик ошибок с указанием причины.
func MetricsIncrementTaskFailed(reason string) {
	tasksFailed.With(prometheus.Labels{"reason": reason}).Inc()
}

// MetricsRecordTaskDuration записывает общую длительность задачи.
func MetricsRecordTaskDuration(d time.Duration) {
	taskDuration.Observe(d.Seconds())
}

// MetricsIncrementUnlock увеличивает счетчик событий разблокировки.
func MetricsIncrementUnlock(outcome string) {
	unlocksProcessed.With(prometheus.Labels{"outcome": outcome}).Inc()
}

// MetricsIncrementStepResumed отмечает шаг, пропущенный при возобновлении.
func MetricsIncrementStepResumed(step string) {
	stepsResumed.With(prometheus.Labels{"step": step}).Inc()
}
