// Package metrics métricas Prometheus de la API (HTTP, generación recurrente, webhooks, correo y feed).
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mayorista"

// Metrics agrupa los colectores sobre un registro propio (no el global).
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	generations  *prometheus.CounterVec
	webhooks     *prometheus.CounterVec
	emails       *prometheus.CounterVec
	reconnects   prometheus.Counter
	jobs         *prometheus.CounterVec
}

// New registra todos los colectores.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "Peticiones HTTP por método, ruta y código.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help: "Duración de las peticiones HTTP.", Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "standing", Name: "generations_total",
			Help: "Ocurrencias de pedidos recurrentes por resultado.",
		}, []string{"status"}),
		webhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "payments", Name: "webhook_events_total",
			Help: "Eventos de la pasarela de pagos por resultado.",
		}, []string{"result"}),
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "notify", Name: "emails_total",
			Help: "Correos enviados o fallidos.",
		}, []string{"result"}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "feed", Name: "reconnects_total",
			Help: "Reconexiones del listener LISTEN/NOTIFY.",
		}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "scheduler", Name: "job_runs_total",
			Help: "Ejecuciones de tareas programadas por tarea y resultado.",
		}, []string{"job", "result"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration, m.generations, m.webhooks, m.emails, m.reconnects, m.jobs,
	)
	return m
}

// Middleware mide cada petición usando la ruta registrada (no la URL) para acotar cardinalidad.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		m.httpRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler expone /metrics.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Gauge registra un gauge calculado al momento del scrape (clientes SSE, eventos descartados).
func (m *Metrics) Gauge(subsystem, name, help string, fn func() float64) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: subsystem, Name: name, Help: help,
	}, fn))
}

func (m *Metrics) GenerationRecorded(status string) { m.generations.WithLabelValues(status).Inc() }

func (m *Metrics) WebhookHandled(result string) { m.webhooks.WithLabelValues(result).Inc() }

func (m *Metrics) EmailSent(ok bool) {
	if ok {
		m.emails.WithLabelValues("sent").Inc()
		return
	}
	m.emails.WithLabelValues("failed").Inc()
}

func (m *Metrics) Reconnected() { m.reconnects.Inc() }

func (m *Metrics) JobRun(job string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.jobs.WithLabelValues(job, result).Inc()
}

// Registry registro subyacente (pruebas).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
