package cache

// ScopedKeyer wraps a Keyer with a prefix so several sites can share one
// Redis or MongoDB backend without colliding.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "site:photos.example.com:")
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

// ProbeKey generates a prefixed key for probed image sizes.
func (k *ScopedKeyer) ProbeKey(url, version string) string {
	return k.prefix + k.inner.ProbeKey(url, version)
}

// ExifKey generates a prefixed key for exposure metadata.
func (k *ScopedKeyer) ExifKey(url, version string) string {
	return k.prefix + k.inner.ExifKey(url, version)
}

// TrackKey generates a prefixed key for audio tags.
func (k *ScopedKeyer) TrackKey(url, version string) string {
	return k.prefix + k.inner.TrackKey(url, version)
}
