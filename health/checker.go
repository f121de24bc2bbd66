package health

import (
	"context"
	"fmt"
	"time"
)

// Status is the verdict of one check. Higher is worse.
type Status int

const (
	// StatusOK means the prerequisite is in place.
	StatusOK Status = iota
	// StatusWarn means resolution can run but will not produce a credential
	// for the checked feed.
	StatusWarn
	// StatusFail means resolution will fail.
	StatusFail
)

// String returns the label used in the doctor report.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusWarn:
		return "WARN"
	case StatusFail:
		return "FAIL"
	default:
		return "?"
	}
}

// Result is what one check found.
type Result struct {
	Status  Status
	Message string

	// Detail is an optional second line for the report, such as the
	// located command.
	Detail string

	Err      error
	Duration time.Duration
}

// OK returns a passing result.
func OK(message string) Result {
	return Result{Status: StatusOK, Message: message}
}

// Warn returns a warning result.
func Warn(message string) Result {
	return Result{Status: StatusWarn, Message: message}
}

// Fail returns a failing result carrying err.
func Fail(message string, err error) Result {
	return Result{Status: StatusFail, Message: message, Err: err}
}

// WithDetail sets Detail using fmt.Sprintf.
func (r Result) WithDetail(format string, args ...any) Result {
	r.Detail = fmt.Sprintf(format, args...)
	return r
}

// Check is one named environment check.
type Check struct {
	Name string
	Run  func(ctx context.Context) Result
}
