package credential

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jonwraymond/feedcred/auth"
	"github.com/jonwraymond/feedcred/helper"
	"github.com/jonwraymond/feedcred/observe"
	"github.com/jonwraymond/feedcred/probe"
)

// Credential is a resolved username/password pair. The zero value means no
// credential is needed or none was provided.
type Credential = helper.Credential

// Options configures a Resolver.
type Options struct {
	// NonInteractive forbids the credential provider from prompting.
	NonInteractive bool

	// Middleware traces each resolution. Nil records nothing.
	Middleware *observe.Middleware

	// Logger overrides the middleware's logger.
	Logger observe.Logger
}

// Resolver obtains a credential for a feed URL.
//
// Contract:
//   - Concurrency: safe for concurrent use if its prober and invoker are.
//   - Errors: probe and helper errors are returned unchanged.
type Resolver struct {
	prober  probe.Prober
	invoker helper.Invoker
	opts    Options
	mw      *observe.Middleware
	logger  observe.Logger
	now     func() time.Time
}

// NewResolver creates a Resolver.
func NewResolver(p probe.Prober, inv helper.Invoker, opts Options) *Resolver {
	mw := opts.Middleware
	if mw == nil {
		mw = observe.NopMiddleware()
	}
	logger := opts.Logger
	if logger == nil {
		logger = mw.Logger()
	}
	return &Resolver{
		prober:  p,
		invoker: inv,
		opts:    opts,
		mw:      mw,
		logger:  logger,
		now:     time.Now,
	}
}

// Resolve returns the credential to use for serviceURL.
//
// The credential provider is asked at most twice. A credential returned by
// the second (IsRetry) call is not validated again.
func (r *Resolver) Resolve(ctx context.Context, serviceURL string) (Credential, error) {
	var cred Credential
	meta := observe.OpMeta{Name: observe.OpResolve, Host: hostOf(serviceURL)}
	err := r.mw.Do(ctx, meta, func(ctx context.Context) error {
		var err error
		cred, err = r.resolve(ctx, serviceURL)
		return err
	})
	return cred, err
}

func (r *Resolver) resolve(ctx context.Context, serviceURL string) (Credential, error) {
	log := r.logger.With(
		observe.F("resolution_id", uuid.NewString()),
		observe.F("host", hostOf(serviceURL)),
	)

	outcome, err := r.prober.Probe(ctx, serviceURL, nil)
	if err != nil {
		return Credential{}, err
	}
	if outcome == probe.OutcomeAccepted {
		log.Debug(ctx, "feed requires no authentication")
		return Credential{}, nil
	}

	cred, err := r.invoker.Invoke(ctx, helper.NewRequest(serviceURL, false, r.opts.NonInteractive))
	if err != nil {
		return Credential{}, err
	}
	if !cred.Present() {
		log.Debug(ctx, "credential provider returned no credential")
		return cred, nil
	}
	r.logToken(ctx, log, cred, false)

	outcome, err = r.prober.Probe(ctx, serviceURL, &probe.Basic{Username: cred.Username, Password: cred.Password})
	if err != nil {
		return Credential{}, err
	}
	if outcome == probe.OutcomeAccepted {
		return cred, nil
	}

	log.Info(ctx, "cached credential was rejected, requesting a new one")
	cred, err = r.invoker.Invoke(ctx, helper.NewRequest(serviceURL, true, r.opts.NonInteractive))
	if err != nil {
		return Credential{}, err
	}
	r.logToken(ctx, log, cred, true)
	return cred, nil
}

func (r *Resolver) logToken(ctx context.Context, log observe.Logger, cred Credential, retry bool) {
	info, err := auth.InspectToken(cred.Password)
	if err != nil || !info.HasExpiry() {
		return
	}
	log.Debug(ctx, "session token issued",
		observe.F("retry", retry),
		observe.F("expires_at", info.ExpiresAt.UTC().Format(time.RFC3339)),
		observe.F("remaining", info.Remaining(r.now()).Round(time.Second).String()),
	)
}
