package model

// FailureEntry is one line in the per-jurisdiction failure log. Entries are
// appended whenever a node cannot be processed; logging a failure never
// blocks or aborts the run. The log exists for manual or future automated
// recovery, so it carries enough context to re-locate the node.
type FailureEntry struct {
	// URL is the node that could not be processed.
	URL string `json:"url"`

	// LexPath is the node's positional identity, when known. Fetch failures
	// at classification time know their path; it is omitted only when the
	// failure happened before a path was assigned.
	LexPath LexPath `json:"lex_path,omitempty"`

	// Error describes what went wrong, in human-readable form.
	Error string `json:"error"`
}
