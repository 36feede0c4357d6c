package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazarromero/catalog/pkg/apperror"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSuccessKeepsEmptyData(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, []string{})

	body := decodeBody(t, rec)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, []any{}, body["data"])
}

func TestFromErrorMapping(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{apperror.NewValidation("a", "b"), 400, "Validation failed"},
		{fmt.Errorf("no image provided: %w", apperror.ErrBadRequest), 400, "no image provided"},
		{fmt.Errorf("product: %w", apperror.ErrNotFound), 404, "Not found"},
		{apperror.ErrInvalidCredentials, 401, "Invalid credentials"},
		{apperror.ErrUnauthorized, 401, "Unauthorized"},
		{apperror.ErrRateLimited, 429, "Too many login attempts, try again later"},
		{errors.New("dial tcp 10.0.0.5:5432: refused"), 500, "Internal server error"},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		FromError(rec, req, c.err)

		body := decodeBody(t, rec)
		assert.Equal(t, c.status, rec.Code, "%v", c.err)
		assert.Equal(t, c.message, body["message"], "%v", c.err)
		assert.NotContains(t, rec.Body.String(), "10.0.0.5")
	}
}

func TestValidationErrorListsViolationsInOrder(t *testing.T) {
	rec := httptest.NewRecorder()
	FromError(rec, httptest.NewRequest(http.MethodPost, "/", nil), apperror.NewValidation("first", "second"))

	body := decodeBody(t, rec)
	assert.Equal(t, []any{"first", "second"}, body["errors"])
}
