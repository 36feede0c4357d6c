package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ClientAddr settles r.RemoteAddr to the address the catalog keys clients
// on. Without a trusted proxy the socket peer is kept and forwarding headers
// are ignored. With one, the last X-Forwarded-For hop is used: it is the one
// our proxy appended, while earlier hops come from the client.
func ClientAddr(trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !trustProxy {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip := lastForwardedHop(r.Header.Values("X-Forwarded-For")); ip != "" {
				r.RemoteAddr = ip
			}
			next.ServeHTTP(w, r)
		})
	}
}

func lastForwardedHop(values []string) string {
	if len(values) == 0 {
		return ""
	}
	hops := strings.Split(values[len(values)-1], ",")
	hop := strings.TrimSpace(hops[len(hops)-1])
	if net.ParseIP(hop) == nil {
		return ""
	}
	return hop
}
