package clients

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrMissingJobID is returned when a call is made without a job identifier
var ErrMissingJobID = errors.New("job id is required")

// maxErrorBody bounds how much of an error response is read
const maxErrorBody = 64 << 10

// APIError is a server-side failure: a non-2xx status or a body with
// success=false. Message carries the server-provided message when present.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api request failed: status=%d, message=%s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api request failed: status=%d, body=%s", e.StatusCode, e.Body)
}

// ErrorMessage returns the server-provided message carried by err, if any
func ErrorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// newAPIError builds an APIError from an error response body
func newAPIError(status int, body io.Reader) *APIError {
	raw, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))

	apiErr := &APIError{
		StatusCode: status,
		Body:       string(raw),
	}

	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		apiErr.Message = envelope.Message
	}

	return apiErr
}
