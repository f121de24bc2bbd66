package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what a session token says about itself.
type TokenInfo struct {
	Subject  string
	Issuer   string
	Audience []string

	// ExpiresAt and IssuedAt are zero when the claim is absent.
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// InspectToken reads the registered claims of a JWT without verifying it.
// Opaque (non-JWT) tokens return ErrTokenMalformed.
func InspectToken(raw string) (TokenInfo, error) {
	raw = strings.TrimSpace(raw)
	if strings.Count(raw, ".") != 2 {
		return TokenInfo{}, ErrTokenMalformed
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return TokenInfo{}, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	var info TokenInfo
	info.Subject, _ = claims.GetSubject()
	info.Issuer, _ = claims.GetIssuer()
	if aud, err := claims.GetAudience(); err == nil {
		info.Audience = aud
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		info.IssuedAt = iat.Time
	}
	return info, nil
}

// HasExpiry reports whether the token carries an exp claim.
func (i TokenInfo) HasExpiry() bool {
	return !i.ExpiresAt.IsZero()
}

// Remaining returns the lifetime left at now. Tokens without an expiry
// report zero.
func (i TokenInfo) Remaining(now time.Time) time.Duration {
	if !i.HasExpiry() {
		return 0
	}
	if d := i.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Validate returns ErrTokenExpired if the token expires within skew of now.
func (i TokenInfo) Validate(now time.Time, skew time.Duration) error {
	if i.HasExpiry() && !now.Add(skew).Before(i.ExpiresAt) {
		return fmt.Errorf("%w at %s", ErrTokenExpired, i.ExpiresAt.UTC().Format(time.RFC3339))
	}
	return nil
}
