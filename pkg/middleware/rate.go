// Package middleware provides the HTTP middleware of the catalog API.
package middleware

import (
	"net"
	"net/http"

	"github.com/bazarromero/catalog/pkg/logger"
	"github.com/bazarromero/catalog/pkg/metrics"
	"github.com/bazarromero/catalog/pkg/ratelimit"
	"github.com/bazarromero/catalog/pkg/response"
)

// RateLimit admits a request only while limiter allows its client key.
// Refused requests get 429. A failing limiter refuses with 500.
func RateLimit(limiter ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := limiter.Check(r.Context(), ClientKey(r))
			if err != nil {
				logger.WithCtx(r.Context()).Error("rate limiter unavailable", "error", err)
				response.InternalError(w)
				return
			}
			if !ok {
				metrics.RecordLogin("limited")
				response.TooManyRequests(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientKey identifies the caller by IP. RemoteAddr has already been
// settled by ClientAddr.
func ClientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
