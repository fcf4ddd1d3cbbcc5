package metrics

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор Prometheus-метрик сервиса
type Metrics struct {
	service string

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dbQueryDuration *prometheus.HistogramVec
	dbQueryErrors   *prometheus.CounterVec

	dbPoolOpen  *prometheus.GaugeVec
	dbPoolInUse *prometheus.GaugeVec
	dbPoolIdle  *prometheus.GaugeVec
}

// New создает и регистрирует метрики в default-регистре
func New(serviceName string) *Metrics {
	return &Metrics{
		service: serviceName,

		httpRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"service", "method", "path", "status"}),

		httpRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "path"}),

		dbQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "operation"}),

		dbQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "db_query_errors_total",
			Help: "Total number of failed database queries",
		}, []string{"service", "operation"}),

		dbPoolOpen: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_pool_open_connections",
			Help: "Number of open connections in the pool",
		}, []string{"service"}),

		dbPoolInUse: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_pool_in_use_connections",
			Help: "Number of connections currently in use",
		}, []string{"service"}),

		dbPoolIdle: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_pool_idle_connections",
			Help: "Number of idle connections in the pool",
		}, []string{"service"}),
	}
}

// ObserveHTTPRequest фиксирует выполненный HTTP-запрос
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(m.service, method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(m.service, method, path).Observe(duration.Seconds())
}

// ObserveDBQuery фиксирует выполненный SQL-запрос
func (m *Metrics) ObserveDBQuery(operation string, duration time.Duration, err error) {
	m.dbQueryDuration.WithLabelValues(m.service, operation).Observe(duration.Seconds())
	if err != nil {
		m.dbQueryErrors.WithLabelValues(m.service, operation).Inc()
	}
}

// SetPoolStats обновляет gauge-метрики connection pool
func (m *Metrics) SetPoolStats(stats sql.DBStats) {
	m.dbPoolOpen.WithLabelValues(m.service).Set(float64(stats.OpenConnections))
	m.dbPoolInUse.WithLabelValues(m.service).Set(float64(stats.InUse))
	m.dbPoolIdle.WithLabelValues(m.service).Set(float64(stats.Idle))
}
