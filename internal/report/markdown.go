package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/legalcorpora/regcrawl/internal/verify"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WriteCrawl outputs the crawl summary in Markdown format.
func (w *MarkdownWriter) WriteCrawl(summary *CrawlSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Crawl Report: " + strings.ToUpper(summary.Jurisdiction))
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Sections processed", strconv.Itoa(summary.Stats.Sections)},
			{"Sections skipped", strconv.Itoa(summary.Stats.SkippedSections)},
			{"Pages visited", strconv.Itoa(summary.Stats.Visited)},
			{"Records written", strconv.Itoa(summary.Stats.Records)},
			{"Failures logged", strconv.Itoa(summary.Stats.Failures)},
			{"Resumed", strconv.FormatBool(summary.Stats.Resumed)},
			{"Elapsed", summary.Stats.Elapsed.String()},
			{"Output", "`" + summary.OutputPath + "`"},
		},
	})
	md.PlainText("")

	if summary.Stats.Failures > 0 {
		md.Warningf(
			"%d node(s) could not be resolved; see `%s` for recovery.",
			summary.Stats.Failures, summary.FailurePath,
		)
	} else {
		md.Tip("All reachable nodes were resolved without failures.")
	}
	md.PlainText("")

	return len(md.String()), md.Build()
}

// WriteVerify outputs the verification report in Markdown format.
func (w *MarkdownWriter) WriteVerify(report *verify.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Verification Report: " + strings.ToUpper(report.Jurisdiction))
	md.PlainText("")

	w.writeVerifySummary(md, report)
	w.writeSectionTable(md, report)
	w.writeSectionDetails(md, report)

	return len(md.String()), md.Build()
}

// writeVerifySummary writes the overall verdict and counters.
func (w *MarkdownWriter) writeVerifySummary(md *markdown.Markdown, report *verify.Report) {
	valid, invalid := 0, 0
	for _, sec := range report.Sections {
		if sec.Valid() {
			valid++
		} else {
			invalid++
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Records examined", strconv.Itoa(report.Records)},
			{"Sections checked", strconv.Itoa(len(report.Sections))},
			{"Sections valid", strconv.Itoa(valid)},
			{"Sections invalid", strconv.Itoa(invalid)},
			{"Unindexed records", strconv.Itoa(report.Unindexed)},
		},
	})
	md.PlainText("")

	if invalid+valid > 0 {
		w.writePieChart(md, valid, invalid)
	}

	switch {
	case invalid > 0:
		md.Cautionf("%d section(s) are incomplete or out of order; the dataset needs a re-crawl.", invalid)
	case report.Unindexed > 0:
		md.Warningf("%d record(s) carry no lex_path and could not be checked.", report.Unindexed)
	default:
		md.Tip("All sections are complete and ordered.")
	}
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart of the validity split.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, valid, invalid int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Section Validity"),
		piechart.WithShowData(true),
	)

	if valid > 0 {
		chart.LabelAndIntValue("Valid", uint64(valid))
	}
	if invalid > 0 {
		chart.LabelAndIntValue("Invalid", uint64(invalid))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeSectionTable writes the per-section result table.
func (w *MarkdownWriter) writeSectionTable(md *markdown.Markdown, report *verify.Report) {
	md.H2("Sections")
	md.PlainText("")

	rows := make([][]string, len(report.Sections))
	for i, sec := range report.Sections {
		verdict := "valid"
		if !sec.Valid() {
			verdict = "**invalid**"
		}
		spot := "-"
		if sec.SpotPassed+sec.SpotFailed > 0 {
			spot = strconv.Itoa(sec.SpotPassed) + "/" + strconv.Itoa(sec.SpotPassed+sec.SpotFailed)
		}
		rows[i] = []string{
			truncateString(sec.Name, 50),
			strconv.Itoa(sec.Expected),
			strconv.Itoa(sec.Actual),
			strconv.Itoa(len(sec.Missing)),
			strconv.Itoa(len(sec.Extra)),
			strconv.Itoa(len(sec.OrderIssues)),
			spot,
			verdict,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Section", "Expected", "Actual", "Missing", "Extra", "Order Issues", "Spot-check", "Verdict"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSectionDetails writes collapsible detail blocks for problem sections.
func (w *MarkdownWriter) writeSectionDetails(md *markdown.Markdown, report *verify.Report) {
	for _, sec := range report.Sections {
		if sec.Valid() && sec.SpotFailed == 0 {
			continue
		}

		var detail strings.Builder
		for _, url := range sec.Missing {
			detail.WriteString("missing: " + url + "\n")
		}
		for _, url := range sec.Extra {
			detail.WriteString("extra: " + url + "\n")
		}
		for _, issue := range sec.OrderIssues {
			detail.WriteString(issue.String() + "\n")
		}
		for _, d := range sec.SpotDetails {
			detail.WriteString("spot-check: " + d + "\n")
		}

		md.Details(sec.Name, detail.String())
	}
	md.PlainText("")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
