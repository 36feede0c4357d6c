package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/api/products/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(RequestTotal.WithLabelValues("GET", "/api/products/{id}", "404"))
	for _, id := range []string{"7", "8"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products/"+id, nil))
	}
	after := testutil.ToFloat64(RequestTotal.WithLabelValues("GET", "/api/products/{id}", "404"))

	assert.Equal(t, 2.0, after-before)
}

func TestHandlerExposesCatalogMetrics(t *testing.T) {
	RecordLogin("success")
	ObserveDBQuery("file", "list", time.Now())

	rec := httptest.NewRecorder()
	Handler()(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(body, "catalog_auth_login_attempts_total"))
	assert.True(t, strings.Contains(body, "catalog_store_operation_duration_seconds"))
}
