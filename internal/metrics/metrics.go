package metrics

import (
	"strconv"
	"time"

	"github.com/berfenger/econet2mqtt/pkg/econet300"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the bridge's Prometheus collectors.
type Metrics struct {
	requestDuration *prometheus.HistogramVec
	requestErrors   *prometheus.CounterVec
	controllerUp    prometheus.Gauge
	httpRequests    *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "econet_request_duration_seconds",
				Help:    "Duration of requests to the ecoNET300 local API.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint"},
		),
		requestErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "econet_request_errors_total",
				Help: "Failed requests to the ecoNET300 local API.",
			},
			[]string{"endpoint"},
		),
		controllerUp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "econet_controller_up",
				Help: "1 if the last request to the controller succeeded.",
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests processed.",
			},
			[]string{"method", "path", "status"},
		),
	}

	for _, c := range []prometheus.Collector{m.requestDuration, m.requestErrors, m.controllerUp, m.httpRequests} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// EconetInstrument records controller request timings.
func (m *Metrics) EconetInstrument() *econet300.Instrument {
	return &econet300.Instrument{
		RecordTime: func(endpoint string, duration time.Duration, err error) {
			m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
			if err != nil {
				m.requestErrors.WithLabelValues(endpoint).Inc()
				m.controllerUp.Set(0)
				return
			}
			m.controllerUp.Set(1)
		},
	}
}

// Middleware counts served HTTP requests by route pattern.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Path() == "/metrics" {
				return next(c)
			}
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else {
					status = 500
				}
			}
			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			m.httpRequests.WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).Inc()
			return err
		}
	}
}
