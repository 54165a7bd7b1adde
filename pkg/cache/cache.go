// Package cache stores generation service responses.
//
// Generating a map from the same prompt twice costs a full model call, so
// the generation client can consult a [Cache] before calling the service.
// Keys come from a [Keyer] and hash every input that influences the
// response (prompt, image, current spec, mode).
//
// # Backends
//
//   - [FileCache]: JSON entries under ~/.cache/anymaps/ (CLI default)
//   - [NullCache]: never stores anything (caching disabled)
//
// Use [NewScopedKeyer] to isolate keys per generation service endpoint so a
// switch of base URL never serves a stale answer from another backend.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTL.
type Cache interface {
	// Get returns the value for key. A miss reports ok=false with no error.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources.
	Close() error
}

// Keyer derives cache keys for generation requests.
type Keyer interface {
	// GenerateKey returns the key of a full generation request.
	GenerateKey(prompt, imageBase64 string) string

	// EnhanceKey returns the key of an enhancement request against the spec
	// whose canonical JSON is specJSON.
	EnhanceKey(specJSON []byte, prompt, mode string) string
}

// DefaultKeyer hashes request inputs into namespaced keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// GenerateKey implements Keyer.
func (DefaultKeyer) GenerateKey(prompt, imageBase64 string) string {
	return hashKey("generate", prompt, Hash([]byte(imageBase64)))
}

// EnhanceKey implements Keyer.
func (DefaultKeyer) EnhanceKey(specJSON []byte, prompt, mode string) string {
	return hashKey("enhance", Hash(specJSON), prompt, mode)
}
