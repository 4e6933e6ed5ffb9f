package cache

import "time"

// Keyer builds cache keys for each kind of cached metadata.
type Keyer interface {
	// ProbeKey keys the natural size of an image resource.
	ProbeKey(url string, version string) string
	// ExifKey keys the exposure metadata of a full-resolution image.
	ExifKey(url string, version string) string
	// TrackKey keys the tag data of an audio file.
	TrackKey(url string, version string) string
}

// DefaultKeyer produces "kind:hash" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ProbeKey implements Keyer.
func (DefaultKeyer) ProbeKey(url, version string) string {
	return hashKey("probe", url, version)
}

// ExifKey implements Keyer.
func (DefaultKeyer) ExifKey(url, version string) string {
	return hashKey("exif", url, version)
}

// TrackKey implements Keyer.
func (DefaultKeyer) TrackKey(url, version string) string {
	return hashKey("track", url, version)
}

// Version derives a cache version string from a file's size and mtime so an
// edited file invalidates its entries.
func Version(size int64, modTime time.Time) string {
	return hashKey("v", size, modTime.UnixNano())
}
