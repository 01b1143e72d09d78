package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/legalcorpora/regcrawl/internal/crawler"
	"github.com/legalcorpora/regcrawl/internal/model"
	"github.com/legalcorpora/regcrawl/internal/verify"
)

func testCrawlSummary() *CrawlSummary {
	return &CrawlSummary{
		Jurisdiction: "mt",
		OutputPath:   "/data/mt.jsonl",
		FailurePath:  "/data/failed_mt.jsonl",
		Stats: crawler.Stats{
			Sections:        30,
			SkippedSections: 2,
			Visited:         1500,
			Records:         1200,
			Failures:        3,
			Resumed:         true,
			Elapsed:         42 * time.Minute,
		},
	}
}

func testVerifyReport() *verify.Report {
	return &verify.Report{
		Jurisdiction: "mt",
		Records:      1200,
		Sections: []verify.SectionResult{
			{
				Name:       "Agriculture",
				Index:      0,
				Expected:   500,
				Actual:     500,
				SpotPassed: 10,
			},
			{
				Name:     "Commerce",
				Index:    1,
				Expected: 700,
				Actual:   699,
				Missing:  []string{"https://regulations.justia.com/states/montana/commerce/rule-7/"},
				OrderIssues: []verify.OrderIssue{
					{Index: 3, Prev: model.LexPath{1, 2}, Current: model.LexPath{1, 1}},
				},
				SpotPassed: 9,
				SpotFailed: 1,
				SpotDetails: []string{
					"https://regulations.justia.com/states/montana/commerce/rule-2/ - content mismatch (only 8/20 chunks found, need 12)",
				},
			},
		},
	}
}

func TestSimpleWriterWriteCrawl(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewSimpleWriter(&buf)

	n, err := w.WriteCrawl(testCrawlSummary())
	if err != nil {
		t.Fatalf("WriteCrawl() error = %v", err)
	}
	if n != buf.Len() {
		t.Errorf("WriteCrawl() n = %d, buffer has %d bytes", n, buf.Len())
	}

	out := buf.String()
	for _, want := range []string{"MT", "1200", "30", "/data/mt.jsonl", "/data/failed_mt.jsonl"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSimpleWriterWriteVerify(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewSimpleWriter(&buf, WithVerbose(true))

	if _, err := w.WriteVerify(testVerifyReport()); err != nil {
		t.Fatalf("WriteVerify() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"INVALID",
		"Agriculture",
		"Commerce",
		"INCOMPLETE: 1 missing",
		"OUT OF ORDER: 1 issues",
		"commerce/rule-7",
		"content spot-check: 9 passed, 1 failed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSimpleWriterWriteVerifyValid(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewSimpleWriter(&buf)

	rep := &verify.Report{
		Jurisdiction: "al",
		Records:      10,
		Sections: []verify.SectionResult{
			{Name: "Agencies", Expected: 10, Actual: 10},
		},
	}
	if _, err := w.WriteVerify(rep); err != nil {
		t.Fatalf("WriteVerify() error = %v", err)
	}
	if !strings.Contains(buf.String(), "RESULT: VALID") {
		t.Errorf("output missing valid verdict:\n%s", buf.String())
	}
}

func TestMarkdownWriterWriteCrawl(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewMarkdownWriter(&buf)

	if _, err := w.WriteCrawl(testCrawlSummary()); err != nil {
		t.Fatalf("WriteCrawl() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "# Crawl Report: MT") {
		t.Errorf("output missing header:\n%s", out)
	}
	if !strings.Contains(out, "| Records written") {
		t.Errorf("output missing summary table:\n%s", out)
	}
	if !strings.Contains(out, "WARNING") {
		t.Errorf("output missing failure warning:\n%s", out)
	}
}

func TestMarkdownWriterWriteVerify(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewMarkdownWriter(&buf)

	if _, err := w.WriteVerify(testVerifyReport()); err != nil {
		t.Fatalf("WriteVerify() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Verification Report: MT",
		"| Agriculture",
		"| Commerce",
		"**invalid**",
		"pie",
		"CAUTION",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	mw := NewMultiWriter(NewSimpleWriter(&a), NewMarkdownWriter(&b))

	n, err := mw.WriteCrawl(testCrawlSummary())
	if err != nil {
		t.Fatalf("WriteCrawl() error = %v", err)
	}
	if a.Len() == 0 || b.Len() == 0 {
		t.Error("MultiWriter should write to every underlying writer")
	}
	if n != a.Len()+b.Len() {
		t.Errorf("WriteCrawl() n = %d, want %d", n, a.Len()+b.Len())
	}
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"this string is too long", 10, "this st..."},
		{"abc", 2, "ab"},
	}
	for _, tt := range tests {
		if got := truncateString(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}
