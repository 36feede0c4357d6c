package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/bazarromero/catalog/pkg/logger"
	"github.com/bazarromero/catalog/pkg/response"
)

// Recovery answers a panicking catalog handler with the 500 envelope and
// logs the stack. http.ErrAbortHandler is re-raised untouched.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.L.Error("catalog handler panicked",
				"request_id", chimw.GetReqID(r.Context()),
				"route", routePattern(r),
				"client", ClientKey(r),
				"panic", fmt.Sprint(rec),
				"stack", string(debug.Stack()),
			)
			response.InternalError(w)
		}()
		next.ServeHTTP(w, r)
	})
}
