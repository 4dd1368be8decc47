package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/OscarFredriksson/tire-logger/internal/logging"
	"github.com/OscarFredriksson/tire-logger/internal/schema"
	"github.com/OscarFredriksson/tire-logger/internal/transfer"
)

var errImportRunning = errors.New("another import is in progress")

// requestError is a malformed request parameter.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   string                   `json:"error"`
	Code    string                   `json:"code,omitempty"`
	Table   string                   `json:"table,omitempty"`
	Row     *int                     `json:"row,omitempty"`
	Details []schema.ValidationError `json:"details,omitempty"`
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errImportRunning):
		return http.StatusConflict
	case errors.As(err, new(*requestError)):
		return http.StatusBadRequest
	case transfer.IsShapeError(err), transfer.IsUnknownTableError(err):
		return http.StatusBadRequest
	case transfer.IsConstraintError(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes it as JSON.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
	)

	body := ErrorResponse{Error: err.Error()}
	var te *transfer.Error
	if errors.As(err, &te) {
		body.Code = string(te.Code)
		body.Table = te.Table
		if te.Row >= 0 {
			row := te.Row
			body.Row = &row
		}
		body.Details = te.Validation
	}
	respondJSON(w, status, body)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
