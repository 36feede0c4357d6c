// Package response writes the JSON envelope every endpoint answers with:
//
//	{"status": 200, "message": "...", "data": ...}
//	{"status": 400, "message": "Validation failed", "errors": ["..."]}
package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/bazarromero/catalog/pkg/apperror"
	"github.com/bazarromero/catalog/pkg/logger"
)

type envelope struct {
	Status  int         `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

type errorEnvelope struct {
	Status  int      `json:"status"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

func write(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// Success sends a 200 with data.
func Success(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusOK, envelope{Status: http.StatusOK, Data: data})
}

// SuccessMessage sends a 200 with a message and data.
func SuccessMessage(w http.ResponseWriter, message string, data interface{}) {
	write(w, http.StatusOK, envelope{Status: http.StatusOK, Message: message, Data: data})
}

// Created sends a 201 with data.
func Created(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusCreated, envelope{Status: http.StatusCreated, Data: data})
}

// Error sends an error envelope.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, errorEnvelope{Status: status, Message: message})
}

// ValidationError sends a 400 with the ordered violation list.
func ValidationError(w http.ResponseWriter, errs []string) {
	write(w, http.StatusBadRequest, errorEnvelope{
		Status:  http.StatusBadRequest,
		Message: "Validation failed",
		Errors:  errs,
	})
}

func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "Unauthorized")
}

func NotFound(w http.ResponseWriter) {
	Error(w, http.StatusNotFound, "Not found")
}

func TooManyRequests(w http.ResponseWriter) {
	Error(w, http.StatusTooManyRequests, "Too many login attempts, try again later")
}

func InternalError(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, "Internal server error")
}

// FromError maps err onto a response. Unauthorized and internal errors get
// fixed messages; the cause of a 500 is logged, never sent.
func FromError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperror.StatusFromError(err)
	switch status {
	case http.StatusBadRequest:
		if details := apperror.Details(err); details != nil {
			ValidationError(w, details)
			return
		}
		Error(w, status, badRequestMessage(err))
	case http.StatusNotFound:
		NotFound(w)
	case http.StatusUnauthorized:
		message := "Unauthorized"
		if errors.Is(err, apperror.ErrInvalidCredentials) {
			message = "Invalid credentials"
		}
		Error(w, status, message)
	case http.StatusTooManyRequests:
		TooManyRequests(w)
	default:
		logger.WithCtx(r.Context()).Error("request failed", "error", err)
		InternalError(w)
	}
}

// badRequestMessage drops the wrapped sentinel text from err.
func badRequestMessage(err error) string {
	return strings.TrimSuffix(err.Error(), ": "+apperror.ErrBadRequest.Error())
}
