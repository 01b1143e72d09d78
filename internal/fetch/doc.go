// Package fetch retrieves pages from the regulation site.
//
// The traversal layer treats a fetch as binary: it either yields the page
// markup or a definitive, typed failure. Everything in between (pacing,
// retry with exponential backoff, honoring server rate-limit hints) lives
// entirely inside this package so the crawler never retries at its own
// level.
//
// Failures carry a Kind (status, timeout, connection, rate limit) and the
// HTTP status code when one was received, so the failure log can record what
// actually went wrong.
package fetch
