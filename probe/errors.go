package probe

import (
	"errors"
	"fmt"
)

// ErrTransport matches any *TransportError via errors.Is.
var ErrTransport = errors.New("probe: transport failure")

// ErrInvalidURL indicates the probe target could not be turned into a request.
var ErrInvalidURL = errors.New("probe: invalid url")

// TransportError reports a network-level failure while probing.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("probe %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is reports whether target is ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}
