package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// TimeoutConfig configures the timeout wrapper.
type TimeoutConfig struct {
	// Timeout is the maximum duration for the operation.
	// Zero or negative disables the deadline.
	Timeout time.Duration
}

// Timeout wraps operations with an optional deadline.
type Timeout struct {
	config TimeoutConfig
}

// NewTimeout creates a new timeout wrapper.
func NewTimeout(config TimeoutConfig) *Timeout {
	if config.Timeout < 0 {
		config.Timeout = 0
	}
	return &Timeout{config: config}
}

// Enabled reports whether a deadline is applied.
func (t *Timeout) Enabled() bool {
	return t != nil && t.config.Timeout > 0
}

// Execute runs op under the deadline and waits for it to return; op must
// honor ctx. When the deadline fires the error matches both ErrTimeout and
// whatever op returned.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	if !t.Enabled() {
		return op(ctx)
	}

	tctx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	err := op(tctx)
	if err != nil && ctx.Err() == nil && errors.Is(tctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s: %w", ErrTimeout, t.config.Timeout, err)
	}
	return err
}

// Config returns the timeout configuration.
func (t *Timeout) Config() TimeoutConfig {
	return t.config
}

// ExecuteWithTimeout is a convenience function to run an operation with timeout.
func ExecuteWithTimeout(ctx context.Context, timeout time.Duration, op func(context.Context) error) error {
	return NewTimeout(TimeoutConfig{Timeout: timeout}).Execute(ctx, op)
}
