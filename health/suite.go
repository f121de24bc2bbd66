package health

import (
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultCheckTimeout bounds a check when Suite.Timeout is zero.
const DefaultCheckTimeout = 10 * time.Second

// Suite runs a fixed list of checks.
type Suite struct {
	// Timeout bounds each check individually.
	Timeout time.Duration

	checks []Check
}

// Add appends checks to the suite.
func (s *Suite) Add(checks ...Check) {
	s.checks = append(s.checks, checks...)
}

// Entry is one named result in a Report.
type Entry struct {
	Name string
	Result
}

// Report holds results in the order their checks were added.
type Report []Entry

// Run executes every check concurrently.
func (s *Suite) Run(ctx context.Context) Report {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}

	report := make(Report, len(s.checks))
	var g errgroup.Group
	for i, c := range s.checks {
		i, c := i, c
		report[i].Name = c.Name
		g.Go(func() error {
			report[i].Result = run(ctx, c, timeout)
			return nil
		})
	}
	_ = g.Wait()
	return report
}

// run gives up on a check at the deadline even if Run ignores ctx.
func run(ctx context.Context, c Check, timeout time.Duration) Result {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	done := make(chan Result, 1)
	go func() {
		done <- c.Run(ctx)
	}()

	var r Result
	select {
	case r = <-done:
	case <-ctx.Done():
		r = Fail("check timed out", ErrCheckTimeout)
	}
	r.Duration = time.Since(start)
	return r
}

// Status returns the worst status in the report; an empty report is OK.
func (r Report) Status() Status {
	worst := StatusOK
	for _, e := range r {
		if e.Status > worst {
			worst = e.Status
		}
	}
	return worst
}

// Render writes one line per entry, followed by indented detail and error
// lines where present.
func (r Report) Render(w io.Writer) error {
	for _, e := range r {
		if _, err := fmt.Fprintf(w, "%-4s %s: %s\n", e.Status, e.Name, e.Message); err != nil {
			return err
		}
		if e.Detail != "" {
			if _, err := fmt.Fprintf(w, "     %s\n", e.Detail); err != nil {
				return err
			}
		}
		if e.Err != nil {
			if _, err := fmt.Fprintf(w, "     %v\n", e.Err); err != nil {
				return err
			}
		}
	}
	return nil
}
