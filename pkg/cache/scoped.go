package cache

// ScopedKeyer wraps a Keyer with a prefix, isolating entries of different
// generation endpoints that share one cache directory.
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "http://localhost:8000|")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// GenerateKey returns a prefixed generation key.
func (k *ScopedKeyer) GenerateKey(prompt, imageBase64 string) string {
	return k.prefix + k.inner.GenerateKey(prompt, imageBase64)
}

// EnhanceKey returns a prefixed enhancement key.
func (k *ScopedKeyer) EnhanceKey(specJSON []byte, prompt, mode string) string {
	return k.prefix + k.inner.EnhanceKey(specJSON, prompt, mode)
}
