// Package respond writes JSON responses and maps classified errors to
// HTTP status codes.
package respond

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dalemusser/clubsphere/internal/app/system/apperr"
	"go.uber.org/zap"
)

// errorBody is the shape of every non-2xx JSON body.
type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Message writes {"message": msg}.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, errorBody{Message: msg})
}

// StatusFor returns the HTTP status for err.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrGatewayUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindAuthorization:
		return http.StatusUnauthorized
	case apperr.KindForbidden, apperr.KindPrecondition:
		return http.StatusForbidden
	case apperr.KindUpstream:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Error writes err as a JSON error body. Classified client errors carry
// their message and code; everything else is logged and reported as a
// generic failure.
func Error(w http.ResponseWriter, log *zap.Logger, err error) {
	status := StatusFor(err)
	body := errorBody{Message: http.StatusText(status)}

	if e := apperr.As(err); e != nil {
		body.Message = err.Error()
		body.Code = e.Code
	}

	if status >= http.StatusInternalServerError && log != nil {
		log.Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	if status == http.StatusInternalServerError {
		body = errorBody{Message: "internal server error"}
	}
	JSON(w, status, body)
}

// Decode reads a JSON request body into v. Unknown fields are accepted;
// a malformed body is a validation error.
func Decode(r *http.Request, v any) error {
	if r.Body == nil {
		return apperr.ErrMissingField
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidField, err)
	}
	return nil
}
