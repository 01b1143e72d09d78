package model

// Record is the persisted unit for one regulation leaf. Records are written
// append-only, one JSON object per line, in leaf discovery order. Discovery
// order is not globally sorted by LexPath under concurrency because top-level
// sections interleave; consumers requiring global order must sort post-hoc.
//
// The field names match the dataset schema consumed downstream, so the JSON
// tags here are load-bearing.
type Record struct {
	// URL is the absolute source URL of the regulation page.
	URL string `json:"url"`

	// State is the two-letter jurisdiction identifier (e.g., "MT").
	State string `json:"state"`

	// Path is the human-readable breadcrumb trail, segments joined with "›",
	// starting at the jurisdiction's code title (the site-global prefix is
	// stripped).
	Path string `json:"path"`

	// Title is the page heading, sub-headings joined with " › ".
	Title string `json:"title"`

	// UnivCite reports whether the page carries a "Universal Citation" label.
	UnivCite bool `json:"univ_cite"`

	// Citation is the citation string when present, null otherwise.
	Citation *string `json:"citation"`

	// Content is the extracted regulation body with cleaned whitespace.
	Content string `json:"content"`

	// LexPath is the positional identity assigned during traversal.
	LexPath LexPath `json:"lex_path"`
}

// NodeLink is one anchor extracted from a branch page's navigation region,
// in document order. Order is significant: the position of a link among its
// siblings defines the child's sibling index and therefore its LexPath.
type NodeLink struct {
	// Text is the anchor's display text with surrounding whitespace trimmed.
	Text string `json:"text"`

	// Href is the anchor's href attribute, usually relative to the site base.
	Href string `json:"href"`
}

// Section is one top-level branch of the hierarchy (a department or title).
// The crawl distributes work across workers at section granularity.
type Section struct {
	// Name is the section's display text from the root navigation.
	Name string `json:"name"`

	// URL is the absolute section URL.
	URL string `json:"url"`

	// Index is the section's sibling index in the root navigation, which is
	// also the first element of every LexPath beneath it.
	Index int `json:"index"`
}
