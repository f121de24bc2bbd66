package helper

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
)

const (
	providerDir = "CredentialProvider.Microsoft"
	providerExe = "CredentialProvider.Microsoft.exe"
	providerDLL = "CredentialProvider.Microsoft.dll"
	dotnetCmd   = "dotnet"
)

// Locator resolves the command line used to start the helper.
//
// On Windows the .NET Framework build under the user profile is run
// directly. Everywhere else the .NET Core build is run through
// `dotnet exec`, which requires dotnet on PATH.
type Locator struct {
	GOOS string

	// Override, when set, is used instead of the platform default path.
	// A .dll override is run through dotnet.
	Override string

	LookupEnv func(string) (string, bool)
	LookPath  func(string) (string, error)
	Stat      func(string) (fs.FileInfo, error)
}

// NewLocator creates a Locator for the running platform.
func NewLocator(override string) *Locator {
	return &Locator{
		GOOS:      runtime.GOOS,
		Override:  override,
		LookupEnv: os.LookupEnv,
		LookPath:  exec.LookPath,
		Stat:      os.Stat,
	}
}

// DefaultPath returns the unexpanded default helper path for the platform.
func (l *Locator) DefaultPath() string {
	if l.GOOS == "windows" {
		return joinFor(l.GOOS, "${UserProfile}", ".nuget", "plugins", "netfx", providerDir, providerExe)
	}
	return joinFor(l.GOOS, "${HOME}", ".nuget", "plugins", "netcore", providerDir, providerDLL)
}

// Locate returns the helper command (executable plus leading arguments).
// Every failure wraps ErrHelperNotFound.
func (l *Locator) Locate() ([]string, error) {
	template := l.Override
	if template == "" {
		template = l.DefaultPath()
	}

	path, err := expandStrict(template, l.LookupEnv)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHelperNotFound, err)
	}

	var command []string
	if strings.EqualFold(ext(path), ".dll") {
		runtimePath, err := l.LookPath(dotnetCmd)
		if err != nil {
			return nil, fmt.Errorf("%w: unable to find dependency dotnet, please install the .NET SDK and ensure 'dotnet' is in your PATH: %v", ErrHelperNotFound, err)
		}
		command = []string{runtimePath, "exec", path}
	} else {
		command = []string{path}
	}

	info, err := l.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to find credential provider in the expected path: %s", ErrHelperNotFound, path)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: expected a file but found a directory: %s", ErrHelperNotFound, path)
	}

	return command, nil
}

func joinFor(goos string, parts ...string) string {
	sep := "/"
	if goos == "windows" {
		sep = `\`
	}
	return strings.Join(parts, sep)
}

func ext(path string) string {
	i := strings.LastIndexAny(path, `./\`)
	if i < 0 || path[i] != '.' {
		return ""
	}
	return path[i:]
}

// Invoker returns an Invoker that locates the helper on first use. A failed
// lookup is remembered and returned by every later call.
func (l *Locator) Invoker(diagnostics io.Writer) Invoker {
	return &locatedInvoker{locator: l, diagnostics: diagnostics}
}

type locatedInvoker struct {
	locator     *Locator
	diagnostics io.Writer

	once sync.Once
	inv  *ProcessInvoker
	err  error
}

func (li *locatedInvoker) Invoke(ctx context.Context, req Request) (Credential, error) {
	li.once.Do(func() {
		command, err := li.locator.Locate()
		if err != nil {
			li.err = err
			return
		}
		li.inv = &ProcessInvoker{Command: command, Diagnostics: li.diagnostics}
	})
	if li.err != nil {
		return Credential{}, li.err
	}
	return li.inv.Invoke(ctx, req)
}
