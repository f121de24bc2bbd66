package helper

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"os/exec"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/jonwraymond/feedcred/observe"
)

// maxDiagnosticTail bounds how much unforwarded stderr an Error keeps.
const maxDiagnosticTail = 64 << 10

// Invoker obtains a credential from the helper.
//
// Contract:
//   - Errors: failures are *Error, ErrHelperNotFound, or a wrapped context error.
//   - Ownership: any process started by Invoke has exited and all of its pipes
//     are closed by the time Invoke returns.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (Credential, error)
}

// ProcessInvoker runs the helper as a child process.
type ProcessInvoker struct {
	// Command is the executable followed by any fixed leading arguments,
	// e.g. {"dotnet", "exec", "/path/CredentialProvider.Microsoft.dll"}.
	Command []string

	// Env is appended to the current environment. Nil inherits it unchanged.
	Env []string

	// Diagnostics receives the helper's stderr live, one line at a time.
	// When nil, stderr is captured into Error.Diagnostic instead.
	Diagnostics io.Writer
}

// NewProcessInvoker creates an invoker that forwards diagnostics to os.Stderr.
func NewProcessInvoker(command []string) *ProcessInvoker {
	return &ProcessInvoker{
		Command:     command,
		Diagnostics: os.Stderr,
	}
}

// Invoke runs the helper once and decodes its output.
//
// There is no internal timeout: a helper waiting on an interactive login
// blocks until it exits or ctx is done.
func (p *ProcessInvoker) Invoke(ctx context.Context, req Request) (Credential, error) {
	if len(p.Command) == 0 || p.Command[0] == "" {
		return Credential{}, fmt.Errorf("%w: no command configured", ErrHelperNotFound)
	}

	args := make([]string, 0, len(p.Command)-1+10)
	args = append(args, p.Command[1:]...)
	args = append(args, req.Args()...)

	cmd := exec.CommandContext(ctx, p.Command[0], args...)
	if len(p.Env) > 0 {
		cmd.Env = append(os.Environ(), p.Env...)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Credential{}, fmt.Errorf("helper: stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Credential{}, fmt.Errorf("helper: stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return Credential{}, fmt.Errorf("%w: %s: %v", ErrHelperNotFound, p.Command[0], err)
		}
		return Credential{}, fmt.Errorf("helper: start %s: %w", p.Command[0], err)
	}
	pid := cmd.Process.Pid

	// Both streams are drained to EOF before Wait, which closes the pipes.
	// Stdout is buffered but only looked at once a zero exit is confirmed.
	var out bytes.Buffer
	tail := &tailBuffer{max: maxDiagnosticTail}

	var g errgroup.Group
	g.Go(func() error {
		_, err := io.Copy(&out, stdout)
		return err
	})
	g.Go(func() error {
		return p.forward(stderr, tail)
	})
	drainErr := g.Wait()
	waitErr := cmd.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return Credential{}, fmt.Errorf("helper: process %d: %w", pid, ctxErr)
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return Credential{}, &Error{
				Kind:       KindProcessFailed,
				PID:        pid,
				ExitCode:   exitErr.ExitCode(),
				Diagnostic: tail.String(),
				Err:        waitErr,
			}
		}
		return Credential{}, fmt.Errorf("helper: wait for process %d: %w", pid, waitErr)
	}
	if drainErr != nil {
		return Credential{}, fmt.Errorf("helper: read output of process %d: %w", pid, drainErr)
	}

	cred, err := DecodePayload(out.Bytes())
	if err != nil {
		var he *Error
		if errors.As(err, &he) {
			he.PID = pid
		}
		return Credential{}, err
	}
	return cred, nil
}

// forward copies stderr to Diagnostics line by line, flushing after each
// line. Invalid UTF-8 is replaced rather than rejected. Lines that cannot be
// forwarded are kept in tail.
func (p *ProcessInvoker) forward(r io.Reader, tail *tailBuffer) error {
	br := bufio.NewReader(transform.NewReader(r, unicode.UTF8.NewDecoder()))
	sink := p.Diagnostics

	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			if sink != nil {
				if _, werr := sink.Write(line); werr != nil {
					// Keep draining so the child never blocks on a full pipe.
					sink = nil
					tail.Write(line)
				} else {
					flush(sink)
				}
			} else {
				tail.Write(line)
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func flush(w io.Writer) {
	switch f := w.(type) {
	case interface{ Flush() error }:
		_ = f.Flush()
	case interface{ Sync() error }:
		// Sync on a terminal or pipe returns EINVAL; nothing to do about it.
		_ = f.Sync()
	}
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	max int
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	return string(t.buf)
}

type instrumented struct {
	next Invoker
	mw   *observe.Middleware
}

// Instrument wraps inv so every invocation is traced, counted and logged.
func Instrument(inv Invoker, mw *observe.Middleware) Invoker {
	if mw == nil {
		return inv
	}
	return &instrumented{next: inv, mw: mw}
}

func (i *instrumented) Invoke(ctx context.Context, req Request) (Credential, error) {
	var cred Credential
	meta := observe.OpMeta{Name: observe.OpHelper, Host: hostOf(req.URI), Retry: req.IsRetry}
	err := i.mw.Do(ctx, meta, func(ctx context.Context) error {
		var err error
		cred, err = i.next.Invoke(ctx, req)
		return err
	})
	var he *Error
	if errors.As(err, &he) {
		i.mw.Logger().WithOperation(meta).Debug(ctx, "credential provider failed",
			observe.F("kind", he.Kind.String()),
			observe.F("pid", he.PID),
			observe.F("exit_code", he.ExitCode),
		)
	}
	return cred, err
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

var (
	_ Invoker = (*ProcessInvoker)(nil)
	_ Invoker = (*instrumented)(nil)
)
