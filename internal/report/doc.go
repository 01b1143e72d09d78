// Package report renders crawl run summaries and verification reports.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - MarkdownWriter: Markdown output for documentation and sharing
//
// Design decision: We separate report rendering from the data it renders
// (crawl stats live in the crawler package, verification results in the
// verify package) so new output formats can be added without touching the
// core data structures.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
