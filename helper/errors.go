package helper

import (
	"errors"
	"fmt"
	"strings"
)

// ErrHelperNotFound indicates the helper executable or its runtime is missing.
var ErrHelperNotFound = errors.New("helper: credential provider not found")

// Kind classifies a helper failure.
type Kind int

const (
	// KindProcessFailed means the helper exited with a non-zero code.
	KindProcessFailed Kind = iota + 1
	// KindEncoding means stdout was not valid UTF-8.
	KindEncoding
	// KindMalformedPayload means stdout was not the expected JSON object.
	KindMalformedPayload
)

func (k Kind) String() string {
	switch k {
	case KindProcessFailed:
		return "process failed"
	case KindEncoding:
		return "encoding error"
	case KindMalformedPayload:
		return "malformed payload"
	default:
		return "unknown"
	}
}

// Error is a failed helper invocation.
type Error struct {
	Kind     Kind
	PID      int
	ExitCode int

	// Diagnostic holds stderr output that was not forwarded live.
	Diagnostic string

	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("failed to get credentials: ")
	switch e.Kind {
	case KindProcessFailed:
		fmt.Fprintf(&b, "process with PID %d exited with code %d", e.PID, e.ExitCode)
		if d := strings.TrimSpace(e.Diagnostic); d != "" {
			fmt.Fprintf(&b, "; additional error message: %s", d)
		}
	case KindEncoding:
		b.WriteString("the credential provider's output could not be decoded using UTF-8")
	case KindMalformedPayload:
		b.WriteString("the credential provider's output could not be parsed as JSON")
		if e.Err != nil {
			fmt.Fprintf(&b, ": %v", e.Err)
		}
	default:
		b.WriteString(e.Kind.String())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a helper *Error of kind k.
func IsKind(err error, k Kind) bool {
	var he *Error
	return errors.As(err, &he) && he.Kind == k
}
