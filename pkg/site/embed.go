package site

import (
	"net/url"
	"strings"
)

// EmbedURL turns a Spotify share link into its embeddable player URL with
// the grey theme. Links that already point at /embed/ are only re-themed.
// Strings that do not parse as absolute URLs get the same treatment by
// plain text substitution.
func EmbedURL(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Scheme == "" || u.Host == "" {
		base := strings.Replace(link, "open.spotify.com", "open.spotify.com/embed", 1)
		sep := "?"
		if strings.Contains(base, "?") {
			sep = "&"
		}
		return base + sep + "theme=0"
	}

	if !strings.HasPrefix(u.Path, "/embed/") {
		u.Path = "/embed" + u.Path
		u.RawPath = ""
	}
	q := u.Query()
	q.Set("theme", "0")
	u.RawQuery = q.Encode()
	return u.String()
}

// EmbedURLs returns the player URLs of c.Spotify in order.
func (c Content) EmbedURLs() []string {
	urls := make([]string, len(c.Spotify))
	for i, e := range c.Spotify {
		urls[i] = EmbedURL(e.URL)
	}
	return urls
}
