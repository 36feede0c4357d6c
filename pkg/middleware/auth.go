package middleware

import (
	"net/http"
	"strings"

	"github.com/bazarromero/catalog/pkg/auth"
	"github.com/bazarromero/catalog/pkg/response"
)

// Verifier turns a bearer token into the identity it was issued for.
type Verifier interface {
	Verify(token string) (auth.Identity, error)
}

// RequireAuth rejects requests without a valid "Bearer <token>" header with
// 401 and stores the identity in the request context otherwise.
func RequireAuth(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := authenticate(v, r)
			if !ok {
				response.Unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// OptionalAuth attaches the identity when a valid token is present and
// passes anonymous or invalid requests through untouched.
func OptionalAuth(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, ok := authenticate(v, r); ok {
				r = r.WithContext(auth.WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func authenticate(v Verifier, r *http.Request) (auth.Identity, bool) {
	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		return auth.Identity{}, false
	}
	id, err := v.Verify(token)
	if err != nil {
		return auth.Identity{}, false
	}
	return id, true
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
