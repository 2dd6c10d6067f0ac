// Package middleware provides HTTP middleware for metrics collection.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jose-deblas/dashboardcwv/internal/metrics"
)

var recordHTTPRequest = metrics.RecordHTTPRequest

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		endpoint := normalizeEndpoint(r.URL.Path)
		status := strconv.Itoa(wrapped.statusCode)

		recordHTTPRequest(r.Method, endpoint, status, duration)
	})
}

func normalizeEndpoint(path string) string {
	if strings.HasPrefix(path, "/api/vitals/") {
		return "/api/vitals/:id"
	}
	return path
}
