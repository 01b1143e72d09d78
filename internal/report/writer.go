package report

import (
	"io"

	"github.com/legalcorpora/regcrawl/internal/crawler"
	"github.com/legalcorpora/regcrawl/internal/verify"
)

// CrawlSummary is the renderable outcome of one crawl run.
type CrawlSummary struct {
	// Jurisdiction is the two-letter identifier of the crawled state.
	Jurisdiction string

	// OutputPath is where the dataset was written.
	OutputPath string

	// FailurePath is where node failures were logged; empty when the run
	// had none.
	FailurePath string

	// Stats are the traversal counters for the run.
	Stats crawler.Stats
}

// Writer defines the interface for report output.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// WriteCrawl outputs a crawl run summary.
	// Returns the number of bytes written and any error encountered.
	WriteCrawl(summary *CrawlSummary) (int, error)

	// WriteVerify outputs a verification report.
	WriteVerify(report *verify.Report) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteCrawl outputs the summary to all configured Writers.
// Returns the total bytes written; stops on first error encountered.
func (m *MultiWriter) WriteCrawl(summary *CrawlSummary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteCrawl(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteVerify outputs the report to all configured Writers.
func (m *MultiWriter) WriteVerify(report *verify.Report) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteVerify(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
