package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/http/httpproxy"

	"github.com/jonwraymond/feedcred/observe"
)

// Outcome is the classification of a probe response.
type Outcome int

const (
	// OutcomeAccepted means the endpoint accepted the request as presented.
	// Without credentials this means the feed needs no authentication.
	OutcomeAccepted Outcome = iota
	// OutcomeRejected means the endpoint answered 401 or 403.
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Classify maps an HTTP status code to an Outcome.
//
// Only 401 and 403 are rejections. 5xx counts as accepted: a failing server
// is not evidence of bad credentials.
func Classify(status int) Outcome {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return OutcomeRejected
	}
	return OutcomeAccepted
}

// Basic is a username/password pair presented as HTTP basic auth.
type Basic struct {
	Username string
	Password string
}

// Prober tests whether an endpoint accepts a request.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Errors: transport failures are returned as errors (matching ErrTransport),
//     never as OutcomeRejected. Implementations must not retry.
//   - State: nothing is retained between calls.
type Prober interface {
	Probe(ctx context.Context, rawURL string, cred *Basic) (Outcome, error)
}

// HTTPProber probes endpoints with a plain GET.
type HTTPProber struct {
	client *http.Client
	proxy  *httpproxy.Config
}

// Option configures an HTTPProber.
type Option func(*HTTPProber)

// WithClient sets the HTTP client. Its transport is used as-is.
func WithClient(c *http.Client) Option {
	return func(p *HTTPProber) {
		if c != nil {
			p.client = c
		}
	}
}

// WithProxy routes probes according to cfg (HTTP_PROXY, HTTPS_PROXY and
// NO_PROXY semantics). Ignored when WithClient is also given.
func WithProxy(cfg *httpproxy.Config) Option {
	return func(p *HTTPProber) {
		if cfg != nil {
			p.proxy = cfg
		}
	}
}

// NewHTTPProber creates a prober whose client transport emits
// OpenTelemetry client spans. Proxy settings are read from the environment
// unless WithProxy is given.
func NewHTTPProber(opts ...Option) *HTTPProber {
	p := &HTTPProber{}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil {
		if p.proxy == nil {
			p.proxy = httpproxy.FromEnvironment()
		}
		proxyFunc := p.proxy.ProxyFunc()

		base := http.DefaultTransport.(*http.Transport).Clone()
		base.Proxy = func(req *http.Request) (*url.URL, error) {
			return proxyFunc(req.URL)
		}
		p.client = &http.Client{Transport: otelhttp.NewTransport(base)}
	}
	return p
}

// Probe sends one GET to rawURL, with basic auth when cred is non-nil.
func (p *HTTPProber) Probe(ctx context.Context, rawURL string, cred *Basic) (Outcome, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return OutcomeRejected, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if cred != nil {
		req.SetBasicAuth(cred.Username, cred.Password)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return OutcomeRejected, &TransportError{URL: redact(req.URL), Err: err}
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused; the body is never inspected.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	return Classify(resp.StatusCode), nil
}

func redact(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.Redacted()
}

// instrumented decorates a Prober with observe.Middleware.
type instrumented struct {
	next Prober
	mw   *observe.Middleware
}

// Instrument wraps p so every probe is traced, counted and logged.
func Instrument(p Prober, mw *observe.Middleware) Prober {
	if mw == nil {
		return p
	}
	return &instrumented{next: p, mw: mw}
}

func (i *instrumented) Probe(ctx context.Context, rawURL string, cred *Basic) (Outcome, error) {
	var outcome Outcome
	meta := observe.OpMeta{Name: observe.OpProbe, Host: hostOf(rawURL)}
	err := i.mw.Do(ctx, meta, func(ctx context.Context) error {
		var err error
		outcome, err = i.next.Probe(ctx, rawURL, cred)
		return err
	})
	if err == nil {
		i.mw.Logger().WithOperation(meta).Debug(ctx, "probe classified",
			observe.F("outcome", outcome.String()),
			observe.F("authenticated", cred != nil),
		)
	}
	return outcome, err
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

var (
	_ Prober = (*HTTPProber)(nil)
	_ Prober = (*instrumented)(nil)
)
