// Package middleware provides HTTP middleware for metrics collection and request logging.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nadmax/planwise/internal/metrics"
)

var recordHTTPRequest = metrics.RecordHTTPRequest

// fixed sub-routes under /api/tasks/ that are not task IDs
var taskActions = map[string]bool{
	"prioritize": true,
	"import":     true,
	"export":     true,
	"digest":     true,
}

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
	switch {
	case strings.HasPrefix(path, "/api/tasks/"):
		rest := strings.TrimPrefix(path, "/api/tasks/")
		if rest == "" || strings.Contains(rest, "/") || taskActions[rest] {
			return path
		}

		return "/api/tasks/:id"
	case strings.HasPrefix(path, "/api/recipes/"):
		parts := strings.Split(strings.TrimPrefix(path, "/api/recipes/"), "/")
		if len(parts) == 2 && parts[1] == "share" {
			return "/api/recipes/:id/share"
		}
		if len(parts) == 1 && parts[0] != "" {
			return "/api/recipes/:id"
		}

		return path
	case strings.HasPrefix(path, "/api/jobs/"):
		return "/api/jobs/:id"
	default:
		return path
	}
}
