package seventv

import (
	"fmt"
	"strings"
)

// TransportError is a request that never produced an HTTP response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "provider transport failed: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPError is a 4xx/5xx response from the provider.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("provider request failed (HTTP %d): %s", e.Status, e.Body)
}

// GraphErrorDetail is one entry of the top-level "errors" array.
type GraphErrorDetail struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// GraphError is a successful HTTP exchange whose payload carried errors.
type GraphError struct {
	Details []GraphErrorDetail
}

func (e *GraphError) Error() string {
	msgs := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		msgs = append(msgs, d.Message)
	}

	return "provider query failed: " + strings.Join(msgs, "; ")
}
