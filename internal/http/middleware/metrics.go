// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file exposes Prometheus instrumentation for HTTP traffic and for the
// realtime stream. Labels are kept bounded:
//
//   - method: HTTP method
//   - path:   the registered route (e.g. /api/v1/parties/:id/rsvps), or
//     "unmatched" when no route matched
//   - status: numeric status code
//   - kind:   stream frame type (snapshot, toast, rsvp, message, ...)
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	httpRespSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_response_size_bytes",
			Help: "Size of HTTP responses in bytes.",
			Buckets: []float64{
				200, 500, 1 << 10, 2 << 10, 5 << 10,
				10 << 10, 25 << 10, 50 << 10,
				100 << 10, 250 << 10, 500 << 10, 1 << 20,
			},
		},
		[]string{"method", "path"},
	)

	streamClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "party_stream_clients",
			Help: "Number of connected realtime stream clients.",
		},
	)

	streamFrames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "party_stream_frames_total",
			Help: "Frames exchanged over the realtime stream.",
		},
		[]string{"direction", "kind"},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, httpRespSize, streamClients, streamFrames)
}

// Metrics instruments requests with Prometheus. Hijacked connections
// (websocket streams) report no size and are skipped in the size histogram;
// their lifetime is tracked by StreamOpened instead.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		httpReqs.WithLabelValues(method, path, status).Inc()
		httpLat.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		if size := c.Writer.Size(); size >= 0 {
			httpRespSize.WithLabelValues(method, path).Observe(float64(size))
		}
	}
}

// StreamOpened counts a connected stream client; call the returned func
// when it disconnects.
func StreamOpened() (closed func()) {
	streamClients.Inc()
	return func() { streamClients.Dec() }
}

// CountFrame records one stream frame. direction is "in" or "out".
func CountFrame(direction, kind string) {
	streamFrames.WithLabelValues(direction, kind).Inc()
}
