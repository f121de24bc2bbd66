package credential

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/feedcred/auth"
	"github.com/jonwraymond/feedcred/cache"
	"github.com/jonwraymond/feedcred/observe"
	"github.com/jonwraymond/feedcred/resilience"
)

// DefaultHosts are the Azure Artifacts package host suffixes.
var DefaultHosts = []string{
	"pkgs.dev.azure.com",
	"pkgs.visualstudio.com",
	"pkgs.codedev.ms",
	"pkgs.vsts.me",
}

// ErrMalformedURL is logged, never returned, when a request URL cannot be
// parsed.
var ErrMalformedURL = errors.New("credential: malformed request URL")

// Source resolves a credential for a URL. *Resolver implements it.
type Source interface {
	Resolve(ctx context.Context, serviceURL string) (Credential, error)
}

// BackendOptions configures a Backend.
type BackendOptions struct {
	// ExtraHosts are appended to DefaultHosts.
	ExtraHosts []string

	// Cache memoizes credentials. Ignored unless Policy enables caching.
	Cache  cache.Cache
	Keyer  cache.Keyer
	Policy cache.Policy

	// Timeout bounds one resolution. Zero means no deadline.
	Timeout time.Duration

	Logger observe.Logger
}

// Backend answers password requests for supported feed hosts.
type Backend struct {
	source  Source
	hosts   []string
	cache   cache.Cache
	keyer   cache.Keyer
	policy  cache.Policy
	timeout *resilience.Timeout
	logger  observe.Logger
	group   singleflight.Group
	now     func() time.Time
}

// NewBackend creates a Backend.
func NewBackend(source Source, opts BackendOptions) *Backend {
	hosts := make([]string, 0, len(DefaultHosts)+len(opts.ExtraHosts))
	hosts = append(hosts, DefaultHosts...)
	for _, h := range opts.ExtraHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			hosts = append(hosts, h)
		}
	}

	b := &Backend{
		source:  source,
		hosts:   hosts,
		cache:   opts.Cache,
		keyer:   opts.Keyer,
		policy:  opts.Policy,
		timeout: resilience.NewTimeout(resilience.TimeoutConfig{Timeout: opts.Timeout}),
		logger:  opts.Logger,
		now:     time.Now,
	}
	if b.logger == nil {
		b.logger = observe.NopLogger()
	}
	if b.policy.ShouldCache() {
		if b.cache == nil {
			b.cache = cache.NewMemoryCache()
		}
		if b.keyer == nil {
			b.keyer = cache.NewURLKeyer()
		}
	}
	return b
}

// Hosts returns the host suffixes the backend serves.
func (b *Backend) Hosts() []string {
	return append([]string(nil), b.hosts...)
}

// Supported reports whether serviceURL names a supported feed host.
func (b *Backend) Supported(serviceURL string) bool {
	u, err := url.Parse(serviceURL)
	if err != nil {
		return false
	}
	return b.supportedHost(u)
}

func (b *Backend) supportedHost(u *url.URL) bool {
	host := u.Host
	if i := strings.LastIndex(host, "@"); i >= 0 {
		host = host[i+1:]
	}
	host = strings.ToLower(host)
	if h, _, ok := strings.Cut(host, ":"); ok && !strings.HasPrefix(host, "[") {
		host = h
	}
	if host == "" {
		return false
	}
	for _, suffix := range b.hosts {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	return false
}

// Password returns the password for service. ok is false when the host is not
// supported, the URL is malformed, or no credential was resolved.
func (b *Backend) Password(ctx context.Context, service string) (string, bool, error) {
	cred, ok, err := b.Credential(ctx, service)
	if err != nil || !ok {
		return "", false, err
	}
	return cred.Password, true, nil
}

// Credential is Password returning the full pair.
func (b *Backend) Credential(ctx context.Context, service string) (Credential, bool, error) {
	u, err := url.Parse(service)
	if err != nil {
		b.logger.Warn(ctx, "ignoring request", observe.F("error", errors.Join(ErrMalformedURL, err).Error()))
		return Credential{}, false, nil
	}
	if !b.supportedHost(u) {
		return Credential{}, false, nil
	}

	target := service
	if u.User != nil {
		u.User = nil
		target = u.String()
	}

	cred, err := b.lookup(ctx, target)
	if err != nil {
		return Credential{}, false, err
	}
	if !cred.Present() {
		return Credential{}, false, nil
	}
	return cred, true, nil
}

func (b *Backend) lookup(ctx context.Context, target string) (Credential, error) {
	key := ""
	if b.policy.ShouldCache() {
		if k, err := b.keyer.Key(target); err == nil {
			key = k
			if cred, ok := b.cached(ctx, key); ok {
				return cred, nil
			}
		}
	}

	v, err, _ := b.group.Do(target, func() (any, error) {
		var cred Credential
		err := b.timeout.Execute(ctx, func(ctx context.Context) error {
			var err error
			cred, err = b.source.Resolve(ctx, target)
			return err
		})
		if err != nil {
			return Credential{}, err
		}
		if key != "" && cred.Present() {
			b.store(ctx, key, cred)
		}
		return cred, nil
	})
	if err != nil {
		return Credential{}, err
	}
	return v.(Credential), nil
}

func (b *Backend) cached(ctx context.Context, key string) (Credential, bool) {
	raw, ok := b.cache.Get(ctx, key)
	if !ok {
		return Credential{}, false
	}
	var cred Credential
	if err := json.Unmarshal(raw, &cred); err != nil {
		_ = b.cache.Delete(ctx, key)
		return Credential{}, false
	}
	return cred, true
}

func (b *Backend) store(ctx context.Context, key string, cred Credential) {
	var remaining time.Duration
	if info, err := auth.InspectToken(cred.Password); err == nil {
		if err := info.Validate(b.now(), b.policy.ExpirySkew); err != nil {
			return
		}
		remaining = info.Remaining(b.now())
	}
	ttl := b.policy.EffectiveTTL(remaining)
	if ttl <= 0 {
		return
	}
	raw, err := json.Marshal(cred)
	if err != nil {
		return
	}
	if err := b.cache.Set(ctx, key, raw, ttl); err != nil {
		b.logger.Debug(ctx, "credential not memoized", observe.F("error", err.Error()))
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

var _ Source = (*Resolver)(nil)
