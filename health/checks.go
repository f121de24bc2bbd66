package health

import (
	"context"
	"errors"
	"strings"

	"github.com/jonwraymond/feedcred/helper"
	"github.com/jonwraymond/feedcred/probe"
)

// Locator finds the credential provider command.
type Locator interface {
	Locate() ([]string, error)
}

// HelperCheck verifies the credential provider (and dotnet, where needed)
// can be found.
func HelperCheck(l Locator) Check {
	return Check{Name: "credential-provider", Run: func(context.Context) Result {
		command, err := l.Locate()
		if err != nil {
			return Fail("credential provider not found", err)
		}
		return OK("found").WithDetail("%s", strings.Join(command, " "))
	}}
}

// HostCheck verifies the feed host is on the allowlist.
func HostCheck(serviceURL string, supported func(string) bool) Check {
	return Check{Name: "host-allowlist", Run: func(context.Context) Result {
		if supported(serviceURL) {
			return OK("host is supported")
		}
		return Warn("host is not an Azure Artifacts feed; no credential will be provided")
	}}
}

// EndpointCheck probes serviceURL without credentials. A rejection passes:
// it only means the feed requires authentication.
func EndpointCheck(p probe.Prober, serviceURL string) Check {
	return Check{Name: "endpoint", Run: func(ctx context.Context) Result {
		outcome, err := p.Probe(ctx, serviceURL, nil)
		switch {
		case errors.Is(err, probe.ErrInvalidURL):
			return Fail("invalid feed URL", err)
		case err != nil:
			return Fail("feed unreachable", err)
		case outcome == probe.OutcomeRejected:
			return OK("feed requires authentication")
		default:
			return OK("feed requires no authentication")
		}
	}}
}

var _ Locator = (*helper.Locator)(nil)
