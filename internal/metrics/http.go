package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type httpMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	inFlight metric.Int64UpDownCounter
}

func newHTTPMetrics(meter metric.Meter, namespace string) (*httpMetrics, error) {
	requests, err := meter.Int64Counter(
		fmt.Sprintf("%s_http_requests_total", namespace),
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(
		fmt.Sprintf("%s_http_request_duration_seconds", namespace),
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	inFlight, err := meter.Int64UpDownCounter(
		fmt.Sprintf("%s_http_requests_in_flight", namespace),
		metric.WithDescription("HTTP requests currently being served"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}
	return &httpMetrics{requests: requests, duration: duration, inFlight: inFlight}, nil
}

// HTTPMetricsMiddleware records request counts, durations and the in-flight
// gauge. Paths are labelled with the route pattern, so /v1/callbacks/:client_id
// stays a single series. When the instruments cannot be created the
// middleware passes requests through untouched.
func HTTPMetricsMiddleware(meterProvider metric.MeterProvider, namespace string) gin.HandlerFunc {
	m, err := newHTTPMetrics(meterProvider.Meter(namespace), namespace)
	if err != nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		m.inFlight.Add(ctx, 1)
		defer m.inFlight.Add(ctx, -1)

		c.Next()

		attrs := metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("path", routePattern(c.FullPath())),
			attribute.String("status_code", strconv.Itoa(c.Writer.Status())),
		)
		m.requests.Add(ctx, 1, attrs)
		m.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	}
}

// routePattern labels unmatched requests "unknown" so requests for random paths
// cannot grow the series count.
func routePattern(fullPath string) string {
	if fullPath == "" {
		return "unknown"
	}
	return fullPath
}
