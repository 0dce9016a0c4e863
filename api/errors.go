package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	// ErrNotFound indicates the requested channel, stream or profile does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates a missing or expired session token
	// (run `streamwatch login`).
	ErrUnauthorized = errors.New("unauthorized")
)

// StatusError reports an unexpected HTTP status from the platform API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("platform api: unexpected status %d", e.Code)
	}
	return fmt.Sprintf("platform api: unexpected status %d: %s", e.Code, e.Body)
}

// newStatusError captures the status code and a short body snippet for diagnostics.
func newStatusError(resp *http.Response) *StatusError {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	return &StatusError{
		Code: resp.StatusCode,
		Body: strings.TrimSpace(string(snippet)),
	}
}
