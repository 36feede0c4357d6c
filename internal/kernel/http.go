// Package kernel assembles the HTTP handler: global middleware, the
// operational endpoints and the API routes.
package kernel

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/bazarromero/catalog/app/controllers"
	"github.com/bazarromero/catalog/app/routes"
	"github.com/bazarromero/catalog/pkg/metrics"
	"github.com/bazarromero/catalog/pkg/middleware"
	"github.com/bazarromero/catalog/pkg/response"
	"github.com/bazarromero/catalog/pkg/router"
)

// Options carries what the kernel needs beyond the API dependencies.
type Options struct {
	AllowedOrigins []string
	TrustProxy     bool
	Driver         string
	Ping           controllers.Pinger
}

type HTTPKernel struct {
	router *router.Router
}

func NewHTTPKernel(deps routes.Dependencies, opts Options) *HTTPKernel {
	r := router.New()

	// Global middleware stack (outermost → innermost):
	//  1. Prometheus metrics, for total latency
	//  2. Request ID, before anything logs
	//  3. Client address; forwarding headers count only behind a trusted proxy
	//  4. Recovery
	//  5. Logger, tagged with the request id
	//  6. CORS
	r.Use(
		metrics.Middleware(),
		chimw.RequestID,
		middleware.ClientAddr(opts.TrustProxy),
		middleware.Recovery,
		middleware.Logger,
		middleware.CORS(opts.AllowedOrigins),
	)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { response.NotFound(w) })
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Handle("/metrics", "metrics", metrics.Handler())
	r.Get("/health", "health", controllers.NewHealthController(opts.Driver, opts.Ping).Show)

	routes.RegisterAPI(r, deps)

	return &HTTPKernel{router: r}
}

func (k *HTTPKernel) Handler() http.Handler { return k.router.Handler() }

// Routes lists every mounted route, for route:list.
func (k *HTTPKernel) Routes() []router.Route { return k.router.Routes() }
