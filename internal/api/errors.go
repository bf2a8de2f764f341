package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNetwork covers transport failures, timeouts and an open circuit.
	ErrNetwork = errors.New("network error")
	ErrTimeout = fmt.Errorf("%w: request timed out", ErrNetwork)
)

const DefaultErrorMessage = "Something went wrong. Please try again."

// APIError is a non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// Message returns the text to show a user for err, or "" when err carries
// none. Server messages win; transport failures map to fixed strings.
func Message(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "Request timed out. Please try again."
	case errors.Is(err, ErrNetwork):
		return "Network Error"
	}
	return ""
}

// errorMessage pulls a message out of an error body. The backend sends either
// {"message": "..."} or {"message": ["...", "..."]} or {"error": "..."}.
func errorMessage(body []byte) string {
	var payload struct {
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return DefaultErrorMessage
	}

	if len(payload.Message) > 0 {
		var s string
		if err := json.Unmarshal(payload.Message, &s); err == nil && s != "" {
			return s
		}
		var list []string
		if err := json.Unmarshal(payload.Message, &list); err == nil && len(list) > 0 {
			return strings.Join(list, ", ")
		}
	}
	if payload.Error != "" {
		return payload.Error
	}
	return DefaultErrorMessage
}
