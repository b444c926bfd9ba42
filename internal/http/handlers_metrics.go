package http

import (
	"fmt"
	"net/http"
	"time"

	"kharcha/internal/middleware/ratelimit"
)

// limiterMetrics is implemented by limiters that count rejections.
type limiterMetrics interface {
	GetMetrics() ratelimit.Metrics
}

// cacheSizer is implemented by category services that cache their lists.
type cacheSizer interface {
	CacheSize() int
}

// handleMetrics provides request, rate limit and security counters in Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	traceMetrics := s.tracer.GetMetrics()
	securityMetrics := s.detector.GetMetrics()

	var rateLimitMetrics ratelimit.Metrics
	if lm, ok := s.apiLimiter.(limiterMetrics); ok {
		rateLimitMetrics = lm.GetMetrics()
	}
	categoryCacheSize := 0
	if cs, ok := s.deps.Categories.(cacheSizer); ok {
		categoryCacheSize = cs.CacheSize()
	}

	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", traceMetrics.TotalRequests)

	fmt.Fprintf(w, "# HELP http_server_errors_total Responses with a 5xx status\n")
	fmt.Fprintf(w, "# TYPE http_server_errors_total counter\n")
	fmt.Fprintf(w, "http_server_errors_total %d\n\n", traceMetrics.ServerErrors)

	fmt.Fprintf(w, "# HELP http_last_response_us Duration of the most recent request in microseconds\n")
	fmt.Fprintf(w, "# TYPE http_last_response_us gauge\n")
	fmt.Fprintf(w, "http_last_response_us %d\n\n", traceMetrics.LastResponseTime)

	fmt.Fprintf(w, "# HELP rate_limit_rejected_total Requests rejected by the API rate limiter\n")
	fmt.Fprintf(w, "# TYPE rate_limit_rejected_total counter\n")
	fmt.Fprintf(w, "rate_limit_rejected_total %d\n\n", rateLimitMetrics.Rejected)

	fmt.Fprintf(w, "# HELP active_rate_limit_clients Currently tracked rate limit clients\n")
	fmt.Fprintf(w, "# TYPE active_rate_limit_clients gauge\n")
	fmt.Fprintf(w, "active_rate_limit_clients %d\n\n", rateLimitMetrics.ClientCount)

	fmt.Fprintf(w, "# HELP suspicious_requests_total Total suspicious requests detected\n")
	fmt.Fprintf(w, "# TYPE suspicious_requests_total counter\n")
	fmt.Fprintf(w, "suspicious_requests_total %d\n\n", securityMetrics.SuspiciousRequests)

	fmt.Fprintf(w, "# HELP blocked_requests_total Requests refused for a disallowed method\n")
	fmt.Fprintf(w, "# TYPE blocked_requests_total counter\n")
	fmt.Fprintf(w, "blocked_requests_total %d\n\n", securityMetrics.BlockedRequests)

	fmt.Fprintf(w, "# HELP cache_entries Current cache entries\n")
	fmt.Fprintf(w, "# TYPE cache_entries gauge\n")
	fmt.Fprintf(w, "cache_entries{type=\"categories\"} %d\n\n", categoryCacheSize)

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", time.Since(s.startedAt).Seconds())
}
