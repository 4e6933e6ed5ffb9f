package media

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/jcolasacco/folio/pkg/errors"
)

// PublicPath maps a site-relative URL onto the filesystem below public.
// The query string and fragment are dropped and percent-escapes decoded
// before the path is validated, so escaped traversal is rejected too.
func PublicPath(public, rawURL string) (string, error) {
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		rawURL = rawURL[:i]
	}
	p, err := url.PathUnescape(rawURL)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "bad escape in %q", rawURL)
	}
	if err := errors.ValidateURLPath(p); err != nil {
		return "", err
	}
	return filepath.Join(public, filepath.FromSlash(p)), nil
}
