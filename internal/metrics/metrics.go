package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors exported on /metrics.
type Metrics struct {
	HTTPRequests         *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	PayslipsRendered     *prometheus.CounterVec
	AttendanceMarked     *prometheus.CounterVec
	PayslipBatchRequests prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		HTTPRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "payroll_http_requests_total",
			Help: "Total HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "payroll_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		PayslipsRendered: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "payroll_payslips_rendered_total",
			Help: "Salary slips rendered.",
		}, []string{"format"}), // format: json, pdf, archive
		AttendanceMarked: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "payroll_attendance_marked_total",
			Help: "Attendance upserts by status.",
		}, []string{"status"}),
		PayslipBatchRequests: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "payroll_payslip_batches_total",
			Help: "Payslip batch requests accepted.",
		}),
	}
}

// Nop returns collectors bound to a throwaway registry, for tests and for
// binaries that do not expose /metrics.
func Nop() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
