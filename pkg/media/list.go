package media

import (
	"os"
	"sort"
	"strings"
)

// Extension allow-lists, lower case with the leading dot.
var (
	PhotoExts = []string{".jpg", ".jpeg", ".png", ".webp", ".avif"}
	AudioExts = []string{".mp3", ".wav", ".flac", ".m4a", ".ogg"}
	// ThumbSourceExts are the formats the thumbnail generator can decode.
	ThumbSourceExts = []string{".jpg", ".jpeg", ".png", ".webp"}
)

// List returns the names of regular files in dir whose extension matches
// one of exts, compared case-insensitively, sorted lexicographically. A
// missing directory yields an empty list and no error.
func List(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if HasExt(e.Name(), exts) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// HasExt reports whether name ends with one of exts, ignoring case.
func HasExt(name string, exts []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}
