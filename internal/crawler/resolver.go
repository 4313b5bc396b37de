package crawler

import (
	"net/url"
	"strings"
)

// Resolve turns an href candidate into an absolute URL. A candidate containing
// the substring "http" is taken as already absolute and used as-is; anything
// else is resolved against base using standard base+relative resolution.
// Unparseable input yields ("", false).
func Resolve(base, href string) (string, bool) {
	if href == "" {
		return "", false
	}
	if strings.Contains(href, "http") {
		if _, err := url.Parse(href); err != nil {
			return "", false
		}
		return href, true
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	return b.ResolveReference(ref).String(), true
}

// InScope reports whether a resolved URL falls under the start URL. This is a
// plain string-prefix match: "https://example.com/start-extra" is in scope for
// a start URL of "https://example.com/start". Upstream behavior, kept as-is.
func InScope(startURL, rawURL string) bool {
	return strings.HasPrefix(rawURL, startURL)
}
