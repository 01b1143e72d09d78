package verify

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/legalcorpora/regcrawl/internal/crawler"
	"github.com/legalcorpora/regcrawl/internal/fetch"
	"github.com/legalcorpora/regcrawl/internal/markup"
	"github.com/legalcorpora/regcrawl/internal/model"
)

// SectionResult is the verification outcome for one top-level section.
type SectionResult struct {
	Name  string
	Index int

	// Expected is the number of leaf URLs the live hierarchy reaches.
	Expected int

	// Actual is the number of persisted records for this section.
	Actual int

	Missing []string
	Extra   []string

	OrderIssues []OrderIssue

	SpotPassed  int
	SpotFailed  int
	SpotDetails []string
}

// Complete reports whether every expected URL is persisted. Extra records
// do not break completeness; they are reported separately.
func (r SectionResult) Complete() bool { return len(r.Missing) == 0 }

// Ordered reports whether the section's records appear in non-decreasing
// lex_path order.
func (r SectionResult) Ordered() bool { return len(r.OrderIssues) == 0 }

// Valid reports whether the section is complete and ordered. Content
// spot-checks are advisory and do not affect validity.
func (r SectionResult) Valid() bool { return r.Complete() && r.Ordered() }

// Report is the outcome of verifying one jurisdiction's dataset.
type Report struct {
	Jurisdiction string

	// Records is the total number of persisted records examined.
	Records int

	// Unindexed counts records carrying no lex_path; they cannot be
	// attributed to a section and are excluded from section results.
	Unindexed int

	Sections []SectionResult
}

// Valid reports whether every section is complete and ordered.
func (r *Report) Valid() bool {
	for _, s := range r.Sections {
		if !s.Valid() {
			return false
		}
	}
	return true
}

// Verifier re-derives the expected state of a jurisdiction's hierarchy and
// compares a persisted dataset against it.
type Verifier struct {
	fetcher    fetch.Fetcher
	baseURL    string
	navClass   string
	maxDepth   int
	sampleSize int
	rng        *rand.Rand
	logger     *slog.Logger
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithBaseURL sets the site origin.
func WithBaseURL(base string) Option {
	return func(v *Verifier) { v.baseURL = base }
}

// WithNavClass sets the CSS class of the branch navigation region.
func WithNavClass(class string) Option {
	return func(v *Verifier) { v.navClass = class }
}

// WithMaxDepth sets the traversal depth ceiling for the expected-set walk.
func WithMaxDepth(depth int) Option {
	return func(v *Verifier) { v.maxDepth = depth }
}

// WithSampleSize sets how many records per section get a content
// spot-check. Zero disables spot-checking.
func WithSampleSize(n int) Option {
	return func(v *Verifier) { v.sampleSize = n }
}

// WithRand sets the sampling source, letting tests pin the sample.
func WithRand(rng *rand.Rand) Option {
	return func(v *Verifier) { v.rng = rng }
}

// WithLogger sets the verifier's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Verifier) { v.logger = logger }
}

// NewVerifier creates a Verifier reading the live site through fetcher.
func NewVerifier(fetcher fetch.Fetcher, opts ...Option) *Verifier {
	v := &Verifier{
		fetcher:    fetcher,
		baseURL:    "https://regulations.justia.com",
		navClass:   "codes-listing",
		maxDepth:   20,
		sampleSize: 10,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Run verifies records against the live hierarchy rooted at rootURL. It
// enumerates the live top-level sections, then checks each section's
// completeness, order, and sampled content fidelity.
//
// records must be in dataset order; order checking depends on it.
func (v *Verifier) Run(ctx context.Context, jurisdiction, rootURL string, records []model.Record) (*Report, error) {
	report := &Report{
		Jurisdiction: jurisdiction,
		Records:      len(records),
	}

	// Group persisted records by top-level section index, preserving
	// dataset order within each group.
	bySection := make(map[int][]model.Record)
	for _, rec := range records {
		if len(rec.LexPath) == 0 {
			report.Unindexed++
			continue
		}
		idx := rec.LexPath[0]
		bySection[idx] = append(bySection[idx], rec)
	}

	sections, _, err := v.sections(ctx, rootURL)
	if err != nil {
		return nil, err
	}

	for _, sec := range sections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		v.logger.InfoContext(ctx, "verifying section", "section", sec.Name, "index", sec.Index)

		result, err := v.verifySection(ctx, sec, bySection[sec.Index])
		if err != nil {
			return nil, fmt.Errorf("failed to verify section %q: %w", sec.Name, err)
		}
		report.Sections = append(report.Sections, result)
	}

	return report, nil
}

// sections enumerates the live top-level sections using a throwaway
// traversal engine.
func (v *Verifier) sections(ctx context.Context, rootURL string) ([]model.Section, int, error) {
	e := crawler.NewEngine(v.fetcher, &sync.Mutex{}, nil, nil,
		crawler.WithBaseURL(v.baseURL),
		crawler.WithNavClass(v.navClass),
		crawler.WithMaxDepth(v.maxDepth),
		crawler.WithLogger(v.logger),
		crawler.WithLeafFunc(func(context.Context, string, model.LexPath, *markup.Document) error {
			return nil
		}),
	)
	return e.Sections(ctx, rootURL)
}

// verifySection checks one section: expected-set diff, order, and content
// spot-checks.
func (v *Verifier) verifySection(ctx context.Context, sec model.Section, records []model.Record) (SectionResult, error) {
	result := SectionResult{
		Name:   sec.Name,
		Index:  sec.Index,
		Actual: len(records),
	}

	expected, err := v.expectedURLs(ctx, sec)
	if err != nil {
		return result, err
	}
	result.Expected = len(expected)

	actual := make(map[string]struct{}, len(records))
	for _, rec := range records {
		actual[rec.URL] = struct{}{}
	}
	result.Missing, result.Extra = DiffURLs(expected, actual)

	result.OrderIssues = CheckOrder(records)

	result.SpotPassed, result.SpotFailed, result.SpotDetails = v.spotCheck(ctx, records)

	return result, nil
}

// expectedURLs walks the live section and collects every leaf URL the
// traversal reaches. The walk uses the same engine as the crawl, so both
// passes agree on classification, exclusion, and depth semantics.
func (v *Verifier) expectedURLs(ctx context.Context, sec model.Section) (map[string]struct{}, error) {
	urls := make(map[string]struct{})
	mu := &sync.Mutex{}

	e := crawler.NewEngine(v.fetcher, mu, nil, nil,
		crawler.WithBaseURL(v.baseURL),
		crawler.WithNavClass(v.navClass),
		crawler.WithMaxDepth(v.maxDepth),
		crawler.WithLogger(v.logger),
		crawler.WithLeafFunc(func(_ context.Context, url string, _ model.LexPath, _ *markup.Document) error {
			mu.Lock()
			defer mu.Unlock()
			urls[url] = struct{}{}
			return nil
		}),
	)

	e.Walk(ctx, sec.URL, model.LexPath{sec.Index}, nil)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return urls, nil
}

// spotCheck re-fetches a sample of persisted records and fuzzy-matches
// their stored content against the live page text.
func (v *Verifier) spotCheck(ctx context.Context, records []model.Record) (passed, failed int, details []string) {
	if v.sampleSize <= 0 || len(records) == 0 {
		return 0, 0, nil
	}

	n := v.sampleSize
	if n > len(records) {
		n = len(records)
	}

	for _, i := range v.rng.Perm(len(records))[:n] {
		rec := records[i]

		ok, detail := v.checkRecord(ctx, rec)
		if ok {
			passed++
			continue
		}
		failed++
		details = append(details, fmt.Sprintf("%s - %s", rec.URL, detail))
	}

	return passed, failed, details
}

// checkRecord compares one stored record against its live page.
func (v *Verifier) checkRecord(ctx context.Context, rec model.Record) (bool, string) {
	if len(rec.Content) < minStoredLen {
		return false, fmt.Sprintf("content too short (%d chars)", len(rec.Content))
	}

	body, err := v.fetcher.Fetch(ctx, rec.URL)
	if err != nil {
		return false, fmt.Sprintf("failed to fetch: %v", err)
	}

	doc, err := markup.Parse(body)
	if err != nil {
		return false, fmt.Sprintf("failed to parse: %v", err)
	}

	// A stored leaf URL that now serves a navigation page has been
	// restructured; its content cannot be compared.
	if doc.IsBranch(v.navClass) {
		return false, "page is no longer a leaf"
	}

	pageText := doc.ComparableText()
	if pageText == "" {
		return false, "no main content found on page"
	}

	return MatchContent(rec.Content, pageText)
}
