package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pedidos_http_requests_total",
			Help: "Total HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pedidos_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	loginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pedidos_logins_total",
			Help: "Login attempts by kind (admin, employee) and result",
		},
		[]string{"kind", "result"},
	)

	ordersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pedidos_orders_total",
			Help: "Order writes by action (created, edited, cleared)",
		},
		[]string{"action"},
	)

	cyclesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pedidos_cycles_created_total",
			Help: "Cycles created lazily by the current-cycle resolver",
		},
	)

	employeeSyncTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pedidos_employee_sync_changes_total",
			Help: "Employee rows touched by sync imports by outcome",
		},
		[]string{"outcome"},
	)
)

func ObserveLogin(kind, result string) {
	loginsTotal.WithLabelValues(kind, result).Inc()
}

func ObserveOrder(action string) {
	ordersTotal.WithLabelValues(action).Inc()
}

func ObserveCycleCreated() {
	cyclesCreated.Inc()
}

func ObserveSync(added, reactivated, deactivated int) {
	employeeSyncTotal.WithLabelValues("added").Add(float64(added))
	employeeSyncTotal.WithLabelValues("reactivated").Add(float64(reactivated))
	employeeSyncTotal.WithLabelValues("deactivated").Add(float64(deactivated))
}

// Middleware usa a rota registrada (não o path) para não explodir a cardinalidade.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := "unmatched"
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}

		httpRequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}
