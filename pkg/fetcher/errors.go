package fetcher

import (
	"errors"
	"fmt"
)

// ErrTransport is matched by every TransportError
var ErrTransport = errors.New("page fetch failed")

// TransportError is a network failure or a non-2xx response. StatusCode is 0
// when no response was received.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}
