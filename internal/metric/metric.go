package metric

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Basic metrics
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "migrator_requests_total",
			Help: "Total number of requests processed",
		},
		[]string{"method", "endpoint"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "migrator_request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "migrator_errors_total",
			Help: "Total number of errors",
		},
		[]string{"type"},
	)

	// Migration metrics
	transfersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "migrator_transfers_total",
			Help: "Per-asset transfer outcomes",
		},
		[]string{"asset_type", "status"},
	)

	statusChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "migrator_status_checks_total",
			Help: "Migration status evaluations by result",
		},
		[]string{"result"},
	)

	runDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "migrator_run_duration_seconds",
			Help:    "Duration of full migration runs",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)
)

type Server struct {
	conf   *Config
	server *http.Server
}

type Config struct {
	Port int `default:"4014"`
}

func New(conf *Config) *Server {
	if conf == nil {
		conf = &Config{}
		envconfig.MustProcess("metric", conf)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &Server{
		conf: conf,
		server: &http.Server{
			Addr:              fmt.Sprintf("0.0.0.0:%d", conf.Port),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start blocks serving /metrics until Shutdown is called
func (s *Server) Start() error {
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// RecordRequest records a request metric
func RecordRequest(method, endpoint string) {
	requestsTotal.WithLabelValues(method, endpoint).Inc()
}

// RecordRequestDuration records the duration of a request
func RecordRequestDuration(method, endpoint string, duration time.Duration) {
	requestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordError records an error metric
func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
}

// RecordTransfer records the outcome of one asset transfer
func RecordTransfer(assetType, status string) {
	transfersTotal.WithLabelValues(assetType, status).Inc()
}

// RecordStatusCheck records a status evaluation result
func RecordStatusCheck(result string) {
	statusChecksTotal.WithLabelValues(result).Inc()
}

// RecordRunDuration records how long a migration run took
func RecordRunDuration(duration time.Duration) {
	runDuration.Observe(duration.Seconds())
}
