package cache

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"
)

// MaxKeyLength bounds keys. URLKeyer output is far shorter; the limit guards
// custom Keyer implementations.
const MaxKeyLength = 256

var (
	// ErrInvalidKey is returned for blank keys, keys containing control
	// characters, and URLs a Keyer cannot derive a key from.
	ErrInvalidKey = errors.New("cache: key is invalid")

	// ErrKeyTooLong is returned for keys longer than MaxKeyLength.
	ErrKeyTooLong = errors.New("cache: key exceeds max length")
)

// Cache holds encoded credentials for the life of the process.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Errors: Get never errors; it returns (nil, false) on miss or expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value for ttl. A non-positive ttl stores nothing.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete is idempotent.
	Delete(ctx context.Context, key string) error
}

// ValidateKey rejects keys a Cache must not store.
func ValidateKey(key string) error {
	switch {
	case strings.TrimSpace(key) == "":
		return ErrInvalidKey
	case len(key) > MaxKeyLength:
		return ErrKeyTooLong
	case strings.IndexFunc(key, unicode.IsControl) >= 0:
		return ErrInvalidKey
	}
	return nil
}
