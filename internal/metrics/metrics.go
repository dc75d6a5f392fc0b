package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Backend API metrics
var (
	// APIRequestsTotal tracks calls to the advisory backend
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cropsense_api_requests_total",
			Help: "Total number of requests sent to the advisory backend",
		},
		[]string{"endpoint", "status"},
	)

	// APIRequestDuration tracks backend round-trip latency
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cropsense_api_request_duration_seconds",
			Help:    "Duration of backend requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
)

// Client state storage metrics
var (
	StoreOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cropsense_store_ops_total",
			Help: "Total number of client state storage operations",
		},
		[]string{"driver", "op", "status"},
	)

	StoreOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cropsense_store_op_duration_seconds",
			Help:    "Duration of client state storage operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"driver", "op"},
	)

	// DBConnectionsOpen tracks the number of open MySQL connections
	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cropsense_db_connections_open",
			Help: "Number of established connections both in use and idle",
		},
	)

	DBConnectionsInUse = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cropsense_db_connections_in_use",
			Help: "Number of connections currently in use",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cropsense_db_connections_idle",
			Help: "Number of idle connections",
		},
	)
)

// Session and view-model metrics
var (
	// SessionState is 1 for the current auth state label and 0 for the others
	SessionState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cropsense_session_state",
			Help: "Current auth session state (1 = active)",
		},
		[]string{"state"},
	)

	ViewModelRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cropsense_viewmodel_runs_total",
			Help: "Total number of user-triggered page actions",
		},
		[]string{"page", "result"},
	)

	// AppInfo provides static information about the application
	AppInfo = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cropsense_app_info",
			Help: "Application information (always 1)",
		},
	)

	// AppStartTime records when the application started
	AppStartTime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cropsense_app_start_time_seconds",
			Help: "Unix timestamp of when the application started",
		},
	)
)

var sessionStates = []string{"unauthenticated", "restoring", "authenticated"}

func init() {
	AppInfo.Set(1)
	AppStartTime.SetToCurrentTime()
}

// RecordAPIRequest records one backend call. status is the HTTP code or "error" when no response arrived.
func RecordAPIRequest(endpoint, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(endpoint, status).Inc()
	APIRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordStoreOp records a client state storage operation
func RecordStoreOp(driver, op string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	StoreOpsTotal.WithLabelValues(driver, op, status).Inc()
	StoreOpDuration.WithLabelValues(driver, op).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics
func UpdateDBConnectionStats(open, inUse, idle int) {
	DBConnectionsOpen.Set(float64(open))
	DBConnectionsInUse.Set(float64(inUse))
	DBConnectionsIdle.Set(float64(idle))
}

// SetSessionState marks state as the active session state
func SetSessionState(state string) {
	for _, s := range sessionStates {
		v := 0.0
		if s == state {
			v = 1
		}
		SessionState.WithLabelValues(s).Set(v)
	}
}

// RecordViewModelRun counts one page action. result is "success", "error",
// "invalid" or "superseded".
func RecordViewModelRun(page, result string) {
	ViewModelRunsTotal.WithLabelValues(page, result).Inc()
}
