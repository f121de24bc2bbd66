package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

// Keyer derives cache keys from service URLs.
//
// Contract:
//   - Determinism: URLs naming the same feed produce the same key.
//   - Keys never contain the URL itself.
type Keyer interface {
	Key(serviceURL string) (string, error)
}

// URLKeyer hashes a normalized service URL.
type URLKeyer struct {
	// Prefix namespaces keys. Default: "cred".
	Prefix string
}

// NewURLKeyer creates a keyer with the default prefix.
func NewURLKeyer() *URLKeyer {
	return &URLKeyer{Prefix: "cred"}
}

// Key returns <prefix>:<first 16 hex chars of SHA-256(normalized URL)>.
//
// Normalization drops userinfo, query and fragment, lowercases scheme and
// host, and trims trailing slashes from the path.
func (k *URLKeyer) Key(serviceURL string) (string, error) {
	u, err := url.Parse(serviceURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: no host in %q", ErrInvalidKey, u.Redacted())
	}

	host := u.Host
	if i := strings.LastIndex(host, "@"); i >= 0 {
		host = host[i+1:]
	}
	normalized := strings.ToLower(u.Scheme) + "://" + strings.ToLower(host) + strings.TrimRight(u.EscapedPath(), "/")

	sum := sha256.Sum256([]byte(normalized))
	prefix := k.Prefix
	if prefix == "" {
		prefix = "cred"
	}
	return prefix + ":" + hex.EncodeToString(sum[:8]), nil
}

var _ Keyer = (*URLKeyer)(nil)
