package cache

import "time"

// Policy configures how long a credential is reused.
type Policy struct {
	// DefaultTTL is the TTL used when the token carries no expiry.
	// If zero, caching is disabled.
	DefaultTTL time.Duration

	// MaxTTL caps every TTL. If zero, no maximum is enforced.
	MaxTTL time.Duration

	// ExpirySkew is subtracted from a token's remaining lifetime.
	ExpirySkew time.Duration
}

// DefaultPolicy returns a policy with the given TTL, capped at one hour,
// that stops reusing a token one minute before it expires.
func DefaultPolicy(ttl time.Duration) Policy {
	return Policy{
		DefaultTTL: ttl,
		MaxTTL:     time.Hour,
		ExpirySkew: time.Minute,
	}
}

// NoCachePolicy returns a policy that disables caching entirely.
func NoCachePolicy() Policy {
	return Policy{}
}

// ShouldCache returns true if caching is enabled by this policy.
func (p Policy) ShouldCache() bool {
	return p.DefaultTTL > 0
}

// EffectiveTTL returns the TTL for a credential whose token has remaining
// lifetime left. A zero remaining means the token carries no expiry.
func (p Policy) EffectiveTTL(remaining time.Duration) time.Duration {
	if !p.ShouldCache() {
		return 0
	}

	ttl := p.DefaultTTL
	if remaining > 0 {
		bounded := remaining - p.ExpirySkew
		if bounded <= 0 {
			return 0
		}
		if bounded < ttl {
			ttl = bounded
		}
	}

	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		ttl = p.MaxTTL
	}
	return ttl
}
