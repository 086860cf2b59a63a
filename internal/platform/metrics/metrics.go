package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

type Collector struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	payrollCreated  *prometheus.CounterVec
	payrollSkipped  *prometheus.CounterVec
	submissions     prometheus.Counter
	submittedAmount prometheus.Counter
}

func New() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests broken down by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		payrollCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "garmenthr",
			Subsystem: "payroll",
			Name:      "generated_total",
			Help:      "Payroll rows created by generation runs, by employee type.",
		}, []string{"employee_type"}),
		payrollSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "garmenthr",
			Subsystem: "payroll",
			Name:      "skipped_total",
			Help:      "Employees skipped by generation runs, by reason.",
		}, []string{"reason"}),
		submissions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "garmenthr",
			Name:      "submissions_total",
			Help:      "Task submissions committed.",
		}),
		submittedAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "garmenthr",
			Name:      "submission_amount_total",
			Help:      "Sum of committed submission totals.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.requests,
		c.duration,
		c.payrollCreated,
		c.payrollSkipped,
		c.submissions,
		c.submittedAmount,
	)
	return c
}

func (c *Collector) Record(method, route string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.duration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (c *Collector) PayrollGenerated(employeeType string) {
	if c == nil {
		return
	}
	c.payrollCreated.WithLabelValues(employeeType).Inc()
}

func (c *Collector) PayrollSkipped(reason string) {
	if c == nil {
		return
	}
	if reason == "" {
		reason = "other"
	}
	c.payrollSkipped.WithLabelValues(reason).Inc()
}

func (c *Collector) SubmissionRecorded(total decimal.Decimal) {
	if c == nil {
		return
	}
	c.submissions.Inc()
	c.submittedAmount.Add(total.InexactFloat64())
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
