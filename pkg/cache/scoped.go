package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments or
// configurations can share one backend without colliding.
//
// Example usage:
//
//	// Separate namespace for the staging API
//	staging := NewScopedKeyer(NewDefaultKeyer(), "staging:")
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

// StrikeKey generates a prefixed strike key.
func (k *ScopedKeyer) StrikeKey(opts StrikeKeyOpts) string {
	return k.prefix + k.inner.StrikeKey(opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(strikeKey string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(strikeKey, opts)
}
