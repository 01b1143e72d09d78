package crawler

import "strings"

// IsExcluded reports whether a node's link text or title carries an
// exclusion marker. Repealed and reserved entries are placeholders with no
// content; they are skipped entirely: never fetched, never recursed into,
// never written. The match is a case-insensitive substring so both
// "(Repealed)" and bare "RESERVED" forms are caught.
func IsExcluded(text string) bool {
	upper := strings.ToUpper(text)
	return strings.Contains(upper, "REPEALED") || strings.Contains(upper, "RESERVED")
}

// IsMalformedHref reports whether an href contains doubled path separators
// outside the scheme prefix. The site emits a handful of these; following
// one leads to redirect aliases of already-visited pages and is a known
// infinite-loop risk, so they are never dereferenced.
func IsMalformedHref(href string) bool {
	stripped := strings.Replace(href, "://", "", 1)
	return strings.Contains(stripped, "//")
}
