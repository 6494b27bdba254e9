package api

import (
	"route-planner-service/internal/platform/metrics"
	"route-planner-service/internal/platform/obs"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const requestIDHeader = "X-Request-ID"

// requestIDMiddleware propagates or assigns a request id and stores it on the request context.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(requestIDHeader, reqID)
		c.Request = c.Request.WithContext(obs.WithRequestID(c.Request.Context(), reqID))
		c.Next()
	}
}

// loggingMiddleware logs end-to-end request duration and response size.
func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		log.Info().
			Str("req_id", obs.RequestID(c.Request.Context())).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.RequestURI()).
			Int("status", c.Writer.Status()).
			Int("bytes", c.Writer.Size()).
			Int64("dur_ms", time.Since(start).Milliseconds()).
			Msg("request")
	}
}

// prometheusMiddleware records request counts and latency per route template.
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "/metrics" || path == "/health" {
			c.Next()
			return
		}
		if path == "" {
			path = "unmatched"
		}

		metrics.HTTPRequestsInFlight.Inc()
		start := time.Now()

		c.Next()

		metrics.HTTPRequestsInFlight.Dec()
		status := strconv.Itoa(c.Writer.Status())
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func metricsHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
