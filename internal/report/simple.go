package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/legalcorpora/regcrawl/internal/verify"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables per-URL detail in verification output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with per-URL detail.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteCrawl outputs the crawl summary in human-readable format.
func (w *SimpleWriter) WriteCrawl(summary *CrawlSummary) (int, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Crawl complete: %s\n", strings.ToUpper(summary.Jurisdiction))
	fmt.Fprintf(&sb, "%s\n", strings.Repeat("=", 60))
	fmt.Fprintf(&sb, "  Sections processed:  %d\n", summary.Stats.Sections)
	fmt.Fprintf(&sb, "  Sections skipped:    %d\n", summary.Stats.SkippedSections)
	fmt.Fprintf(&sb, "  Pages visited:       %d\n", summary.Stats.Visited)
	fmt.Fprintf(&sb, "  Records written:     %d\n", summary.Stats.Records)
	fmt.Fprintf(&sb, "  Failures logged:     %d\n", summary.Stats.Failures)
	fmt.Fprintf(&sb, "  Resumed:             %v\n", summary.Stats.Resumed)
	fmt.Fprintf(&sb, "  Elapsed:             %s\n", summary.Stats.Elapsed.Round(time.Second))
	fmt.Fprintf(&sb, "  Output:              %s\n", summary.OutputPath)
	if summary.FailurePath != "" {
		fmt.Fprintf(&sb, "  Failure log:         %s\n", summary.FailurePath)
	}

	return w.output.Write([]byte(sb.String()))
}

// WriteVerify outputs the verification report in human-readable format.
func (w *SimpleWriter) WriteVerify(report *verify.Report) (int, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Verification: %s (%d records)\n", strings.ToUpper(report.Jurisdiction), report.Records)
	fmt.Fprintf(&sb, "%s\n", strings.Repeat("=", 60))
	if report.Unindexed > 0 {
		fmt.Fprintf(&sb, "  WARNING: %d records carry no lex_path\n", report.Unindexed)
	}

	for _, sec := range report.Sections {
		fmt.Fprintf(&sb, "\n%s %s\n", sectionMark(sec), sec.Name)

		if sec.Complete() {
			fmt.Fprintf(&sb, "    complete: all %d records present\n", sec.Expected)
		} else {
			fmt.Fprintf(&sb, "    INCOMPLETE: %d missing, %d extra (expected %d, have %d)\n",
				len(sec.Missing), len(sec.Extra), sec.Expected, sec.Actual)
			w.writeURLList(&sb, "missing", sec.Missing)
			w.writeURLList(&sb, "extra", sec.Extra)
		}

		if sec.Ordered() {
			fmt.Fprintf(&sb, "    ordered\n")
		} else {
			fmt.Fprintf(&sb, "    OUT OF ORDER: %d issues\n", len(sec.OrderIssues))
			if w.verbose {
				for _, issue := range sec.OrderIssues {
					fmt.Fprintf(&sb, "      %s\n", issue)
				}
			}
		}

		if sec.SpotPassed+sec.SpotFailed > 0 {
			fmt.Fprintf(&sb, "    content spot-check: %d passed, %d failed\n", sec.SpotPassed, sec.SpotFailed)
			if w.verbose {
				for _, detail := range sec.SpotDetails {
					fmt.Fprintf(&sb, "      %s\n", detail)
				}
			}
		}
	}

	fmt.Fprintf(&sb, "\n%s\n", strings.Repeat("=", 60))
	if report.Valid() {
		fmt.Fprintf(&sb, "RESULT: VALID - all %d sections complete and ordered\n", len(report.Sections))
	} else {
		invalid := 0
		for _, sec := range report.Sections {
			if !sec.Valid() {
				invalid++
			}
		}
		fmt.Fprintf(&sb, "RESULT: INVALID - %d of %d sections failed\n", invalid, len(report.Sections))
	}

	return w.output.Write([]byte(sb.String()))
}

// writeURLList prints up to a handful of URLs, eliding the rest unless
// verbose output is on.
func (w *SimpleWriter) writeURLList(sb *strings.Builder, label string, urls []string) {
	const maxShown = 10

	shown := len(urls)
	if !w.verbose && shown > maxShown {
		shown = maxShown
	}
	for _, url := range urls[:shown] {
		fmt.Fprintf(sb, "      %s: %s\n", label, url)
	}
	if shown < len(urls) {
		fmt.Fprintf(sb, "      ... and %d more %s\n", len(urls)-shown, label)
	}
}

// sectionMark returns the pass/fail glyph for a section.
func sectionMark(sec verify.SectionResult) string {
	if sec.Valid() {
		return "[ok]"
	}
	return "[!!]"
}
