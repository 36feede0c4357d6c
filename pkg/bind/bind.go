// Package bind decodes JSON request bodies.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bazarromero/catalog/config"
	"github.com/bazarromero/catalog/pkg/apperror"
)

// JSON decodes r.Body into dest. The body is capped at MAX_BODY_BYTES
// (10 MB by default). Malformed, empty or oversized bodies yield an error
// wrapping apperror.ErrBadRequest.
func JSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxBodyBytes())

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return fmt.Errorf("request body too large (max %d bytes): %w", maxErr.Limit, apperror.ErrBadRequest)
		case errors.Is(err, io.EOF):
			return fmt.Errorf("request body is empty: %w", apperror.ErrBadRequest)
		default:
			return fmt.Errorf("invalid JSON body: %w", apperror.ErrBadRequest)
		}
	}
	return nil
}
