package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"todo/internal/service"
)

// ErrMalformedResponse is wrapped by every error caused by a response body that
// is not valid JSON or does not have the expected shape.
var ErrMalformedResponse = errors.New("malformed response")

// APIError is returned for responses with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Is makes 404 responses match service.ErrNotFound.
func (e *APIError) Is(target error) bool {
	return target == service.ErrNotFound && e.StatusCode == http.StatusNotFound
}

// RequestError is returned when no response was received.
type RequestError struct {
	Method string
	URL    string
	Err    error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// errorBody covers the error shapes task servers send:
// {"error": "..."} and {"message": "..."}.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func newAPIError(status int, body []byte) *APIError {
	msg := ""
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil {
		msg = eb.Error
		if msg == "" {
			msg = eb.Message
		}
	}
	if msg == "" {
		msg = strings.ToLower(http.StatusText(status))
	}
	if msg == "" {
		msg = "unexpected status"
	}
	return &APIError{StatusCode: status, Message: msg}
}

// wrapError wraps transport errors with user-friendly messages.
func wrapError(method, url string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &RequestError{Method: method, URL: url, Err: fmt.Errorf("request timed out: %w", err)}
	}
	return &RequestError{Method: method, URL: url, Err: err}
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedResponse, fmt.Sprintf(format, args...))
}
