// Package model defines the core data structures used throughout regcrawl.
//
// This package contains the following main types:
//   - LexPath: A positional identity for a node in the site hierarchy
//   - Record: One persisted regulation leaf, serialized as a JSONL line
//   - NodeLink: An ordered navigation link extracted from a branch page
//   - FailureEntry: One entry in the per-jurisdiction failure log
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (crawler, verify, sink, report) need to use
// these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for dataset output and
// database storage.
package model
