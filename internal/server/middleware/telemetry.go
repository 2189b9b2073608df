package middleware

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"medsupply/internal/telemetry"
	"medsupply/internal/telemetry/domain"
)

const instrumentationName = "medsupply/internal/server/middleware"

// httpRequestMetadata is the JSON shape stored in Event.Metadata for http_request events.
type httpRequestMetadata struct {
	Method     string `json:"method"`
	Route      string `json:"route"`
	StatusCode int    `json:"status_code"`
	DurationMs int64  `json:"duration_ms"`
	ClientIP   string `json:"client_ip"`
}

// Telemetry traces each request, records request count and latency, and emits an
// http_request event. emitter, tp and mp may be nil. skipRoutes are not emitted or traced.
func Telemetry(emitter telemetry.EventEmitter, tp trace.TracerProvider, mp metric.MeterProvider, skipRoutes map[string]bool) gin.HandlerFunc {
	var tracer trace.Tracer
	if tp != nil {
		tracer = tp.Tracer(instrumentationName)
	}
	var (
		requests metric.Int64Counter
		duration metric.Float64Histogram
	)
	if mp != nil {
		meter := mp.Meter(instrumentationName)
		var err error
		if requests, err = meter.Int64Counter("http.server.requests",
			metric.WithDescription("Number of HTTP requests handled.")); err != nil {
			log.Printf("telemetry: create request counter: %v", err)
		}
		if duration, err = meter.Float64Histogram("http.server.duration",
			metric.WithDescription("HTTP request latency."), metric.WithUnit("ms")); err != nil {
			log.Printf("telemetry: create duration histogram: %v", err)
		}
	}

	return func(c *gin.Context) {
		route := c.FullPath()
		if skipRoutes[route] {
			c.Next()
			return
		}
		if route == "" {
			route = "unmatched"
		}
		start := time.Now()
		var span trace.Span
		if tracer != nil {
			var ctx context.Context
			ctx, span = tracer.Start(c.Request.Context(), c.Request.Method+" "+route,
				trace.WithSpanKind(trace.SpanKindServer))
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()

		status := c.Writer.Status()
		elapsed := time.Since(start)
		attrs := []attribute.KeyValue{
			attribute.String("http.request.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.response.status_code", status),
		}
		if span != nil {
			span.SetAttributes(attrs...)
			if status >= 500 {
				span.SetStatus(codes.Error, "server error")
			}
			span.End()
		}
		ctx := c.Request.Context()
		if requests != nil {
			requests.Add(ctx, 1, metric.WithAttributes(attrs...))
		}
		if duration != nil {
			duration.Record(ctx, float64(elapsed.Microseconds())/1000, metric.WithAttributes(attrs...))
		}
		if emitter == nil {
			return
		}
		metaJSON, _ := json.Marshal(httpRequestMetadata{
			Method:     c.Request.Method,
			Route:      route,
			StatusCode: status,
			DurationMs: elapsed.Milliseconds(),
			ClientIP:   ClientIP(c.Request),
		})
		userID, _ := GetUserID(ctx)
		sessionID, _ := GetSessionID(ctx)
		telemetry.EmitAsync(emitter, &domain.Event{
			UserID:    userID,
			SessionID: sessionID,
			EventType: domain.EventHTTPRequest,
			Source:    "http_middleware",
			Metadata:  metaJSON,
		})
	}
}
