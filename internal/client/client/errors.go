package client

import (
	"fmt"
	"net/http"
)

// CatalogSearchError reports a failed catalog search. StatusCode is 0 when
// the request never got an HTTP response.
type CatalogSearchError struct {
	StatusCode int
	Message    string
}

func (e *CatalogSearchError) Error() string {
	if e.StatusCode == 0 {
		return "Search failed: " + e.Message
	}
	return fmt.Sprintf("Search failed: %d %s", e.StatusCode, e.Message)
}

func statusError(code int) *CatalogSearchError {
	msg := http.StatusText(code)
	if msg == "" {
		msg = "Unexpected Status"
	}
	return &CatalogSearchError{StatusCode: code, Message: msg}
}
