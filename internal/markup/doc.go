// Package markup wraps the parsed HTML of a regulation page and exposes the
// structural lookups the crawler and verifier need: the navigation region
// that marks a page as a branch, the ordered child links inside it, and the
// breadcrumb trail, title, citation and content body of a leaf.
//
// All site-layout knowledge lives here. The extraction heuristics (junk-div
// pruning, sibling collection) track the site's markup quirks and are
// expected to change when the site changes; the traversal and resume logic
// must never need to change with them.
//
// Design decision: We parse once with golang.org/x/net/html and keep both a
// raw node view (for ordered link walking, where document order is
// load-bearing) and a goquery view of the same tree (for the selector-heavy
// content extraction). goquery is built on the same node type, so the two
// views share one parse.
package markup
