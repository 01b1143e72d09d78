// Package verify checks a persisted regulation dataset against the live
// site, section by section.
//
// The verifier never treats the persisted output as ground truth: it
// re-walks each top-level section's hierarchy from scratch to derive the
// expected leaf set, then diffs completeness, checks per-section lex_path
// order, and spot-checks a sample of stored contents against freshly
// fetched pages.
//
// A section is valid when it is complete and ordered. Content spot-checks
// are advisory: page layout drifts, so a chunk-match miss is reported but
// never gates validity. Verification is read-only with respect to the
// dataset.
package verify
