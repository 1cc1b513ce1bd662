// Package errors is the JSON envelope the dashboard API answers with.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
)

type Code string

const (
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeInvalidParam Code = "VALIDATION_ERROR"
	CodeBadSignals   Code = "BAD_REQUEST"
	CodeRateLimit    Code = "RATE_LIMIT_EXCEEDED"
	CodeNotReady     Code = "SERVICE_UNAVAILABLE"
)

// APIError is a request failure as reported to the client. Param and Value
// name the offending query parameter when there is one. Details carries the
// cause text for client errors only.
type APIError struct {
	Code      Code   `json:"code"`
	Message   string `json:"message"`
	Param     string `json:"param,omitempty"`
	Value     string `json:"value,omitempty"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`

	Status int   `json:"-"`
	Cause  error `json:"-"`
}

func (e *APIError) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Param != "" {
		msg += fmt.Sprintf(" (%s=%q)", e.Param, e.Value)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

func newError(code Code, status int, message string, cause error) *APIError {
	e := &APIError{Code: code, Message: message, Status: status, Cause: cause}
	if cause != nil && status < http.StatusInternalServerError {
		e.Details = cause.Error()
	}
	return e
}

// InvalidParam rejects a query parameter such as mode, sort, dir, view or key.
func InvalidParam(param, value string, cause error) *APIError {
	e := newError(CodeInvalidParam, http.StatusBadRequest, "invalid "+param, cause)
	e.Param = param
	e.Value = value
	return e
}

// BadSignals rejects a datastar signals payload that does not decode.
func BadSignals(cause error) *APIError {
	e := newError(CodeBadSignals, http.StatusBadRequest, "invalid signals", cause)
	e.Param = "datastar"
	return e
}

func RateLimited() *APIError {
	return newError(CodeRateLimit, http.StatusTooManyRequests, "too many requests", nil)
}

// NotReady reports that no analytics payload is being served.
func NotReady(message string) *APIError {
	return newError(CodeNotReady, http.StatusServiceUnavailable, message, nil)
}

// Internal hides cause from the client; it is only logged.
func Internal(cause error) *APIError {
	return newError(CodeInternal, http.StatusInternalServerError, "an unexpected error occurred", cause)
}

type failure struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

type success struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// WriteError answers with the error envelope. Errors that are not an
// *APIError anywhere in their chain are reported as internal.
func WriteError(w http.ResponseWriter, logger *slog.Logger, err error, requestID string) {
	var apiErr *APIError
	if !stderrors.As(err, &apiErr) {
		apiErr = Internal(err)
	}
	apiErr.RequestID = requestID

	level := slog.LevelWarn
	if apiErr.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logger.Log(context.Background(), level, "request failed",
		"code", apiErr.Code,
		"status", apiErr.Status,
		"param", apiErr.Param,
		"request_id", requestID,
		"cause", apiErr.Cause,
	)

	writeJSON(w, apiErr.Status, failure{Error: apiErr})
}

func WriteSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, success{Success: true, Data: data})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
