// Package metrics exposes fleet and alert gauges in the Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pilot-logbook-backend/internal/maintenance"
	"pilot-logbook-backend/internal/model"
)

const namespace = "logbook"

// Metrics owns a private registry. All methods are no-ops on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	alerts        *prometheus.GaugeVec
	aircraft      *prometheus.GaugeVec
	overdueChecks prometheus.Gauge
	dueSoonChecks prometheus.Gauge
	fleetHours    prometheus.Gauge
	scans         *prometheus.CounterVec
	notifications *prometheus.CounterVec
	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		alerts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "maintenance_alerts",
			Help:      "Open maintenance alerts by urgency.",
		}, []string{"urgency"}),
		aircraft: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fleet_aircraft",
			Help:      "Aircraft in the fleet by status.",
		}, []string{"status"}),
		overdueChecks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fleet_overdue_checks",
			Help:      "Maintenance records in OVERDUE status.",
		}),
		dueSoonChecks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fleet_due_soon_checks",
			Help:      "DUE maintenance records with a next-due date within 30 days.",
		}),
		fleetHours: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fleet_airframe_hours",
			Help:      "Sum of airframe hours across the fleet.",
		}),
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alert_scans_total",
			Help:      "Alert scans by result.",
		}, []string{"result"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "push_notifications_total",
			Help:      "Push notifications by result.",
		}, []string{"result"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.alerts, m.aircraft, m.overdueChecks, m.dueSoonChecks, m.fleetHours,
		m.scans, m.notifications, m.requests, m.latency,
	)
	return m
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveAlerts sets the alert gauges from a freshly computed alert list.
func (m *Metrics) ObserveAlerts(alerts []maintenance.Alert) {
	if m == nil {
		return
	}
	counts := map[maintenance.Urgency]int{
		maintenance.UrgencyCritical: 0,
		maintenance.UrgencyWarning:  0,
		maintenance.UrgencyInfo:     0,
	}
	for _, a := range alerts {
		counts[a.Urgency]++
	}
	for u, n := range counts {
		m.alerts.WithLabelValues(string(u)).Set(float64(n))
	}
}

// ObserveFleet sets the fleet gauges.
func (m *Metrics) ObserveFleet(fs maintenance.FleetStats) {
	if m == nil {
		return
	}
	m.aircraft.WithLabelValues(string(model.StatusAirworthy)).Set(float64(fs.AirworthyCount))
	m.aircraft.WithLabelValues(string(model.StatusGrounded)).Set(float64(fs.GroundedCount))
	m.aircraft.WithLabelValues(string(model.StatusMaintenance)).Set(float64(fs.MaintenanceCount))
	m.overdueChecks.Set(float64(fs.OverdueChecks))
	m.dueSoonChecks.Set(float64(fs.DueSoonChecks))
	m.fleetHours.Set(fs.TotalFleetHours)
}

// ScanCompleted counts an alert scan; err marks it failed.
func (m *Metrics) ScanCompleted(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.scans.WithLabelValues(result).Inc()
}

// NotificationSent counts a push delivery attempt. result is one of
// "sent", "failed" or "expired".
func (m *Metrics) NotificationSent(result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(result).Inc()
}

// Middleware records request counts and latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
