package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/legalcorpora/regcrawl/internal/fetch"
	"github.com/legalcorpora/regcrawl/internal/markup"
	"github.com/legalcorpora/regcrawl/internal/model"
	"github.com/legalcorpora/regcrawl/internal/sink"
)

// ErrNoSections is returned when the root page has no navigation region,
// meaning the jurisdiction exposes no sections to crawl.
var ErrNoSections = errors.New("no sections found at root page")

// LeafFunc handles one classified leaf. The crawl run's default extracts a
// Record and writes it to the sink; the verifier substitutes a URL
// collector. Errors are logged to the failure log and do not abort
// siblings.
type LeafFunc func(ctx context.Context, url string, path model.LexPath, doc *markup.Document) error

// Engine walks the regulation hierarchy for one jurisdiction.
//
// An Engine is safe for concurrent use by multiple workers: all shared
// state (the visited set and, transitively, the sink) is guarded by the
// single run lock. Each worker's recursion stack is private.
type Engine struct {
	fetcher fetch.Fetcher

	// baseURL is the site origin relative hrefs resolve against.
	baseURL string

	// navClass is the CSS class marking a page's navigation region.
	navClass string

	// maxDepth bounds traversal recursion.
	maxDepth int

	// jurisdiction is the two-letter identifier stamped on records.
	jurisdiction string

	// mu is the run's single exclusion lock. It guards visited here and
	// the write path inside the sink.
	mu *sync.Mutex

	// visited is the process-wide set of URLs already dispatched for fetch
	// within this run. It never shrinks.
	visited map[string]struct{}

	out      *sink.Writer
	failures *sink.FailureLog
	leafFn   LeafFunc
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithBaseURL sets the site origin.
func WithBaseURL(base string) Option {
	return func(e *Engine) {
		e.baseURL = strings.TrimSuffix(base, "/")
	}
}

// WithNavClass sets the CSS class of the branch navigation region.
func WithNavClass(class string) Option {
	return func(e *Engine) {
		e.navClass = class
	}
}

// WithMaxDepth sets the traversal depth ceiling.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) {
		e.maxDepth = depth
	}
}

// WithJurisdiction sets the jurisdiction identifier stamped on records.
func WithJurisdiction(id string) Option {
	return func(e *Engine) {
		e.jurisdiction = id
	}
}

// WithLeafFunc replaces the default record-extracting leaf handler.
// The verifier uses this to collect expected leaf URLs without writing.
func WithLeafFunc(fn LeafFunc) Option {
	return func(e *Engine) {
		e.leafFn = fn
	}
}

// WithLogger sets the engine's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an Engine. The mutex is the run's shared exclusion
// lock and must be the same one given to the sink. out and failures may be
// nil when a custom LeafFunc neither writes records nor logs failures
// (verification).
func NewEngine(fetcher fetch.Fetcher, mu *sync.Mutex, out *sink.Writer, failures *sink.FailureLog, opts ...Option) *Engine {
	e := &Engine{
		fetcher:  fetcher,
		baseURL:  "https://regulations.justia.com",
		navClass: "codes-listing",
		maxDepth: 20,
		mu:       mu,
		visited:  make(map[string]struct{}),
		out:      out,
		failures: failures,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.leafFn == nil {
		e.leafFn = e.writeRecord
	}
	return e
}

// Sections fetches the root page once and enumerates the jurisdiction's
// top-level sections in document order, filtering exclusions and malformed
// hrefs. It returns the remaining sections and the number skipped.
//
// Sibling indices are assigned before filtering, so a skipped section
// leaves a gap in the index space rather than shifting its siblings. This
// keeps LexPath assignment stable when the site repeals a department.
func (e *Engine) Sections(ctx context.Context, rootURL string) ([]model.Section, int, error) {
	body, err := e.fetcher.Fetch(ctx, rootURL)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch root page: %w", err)
	}

	doc, err := markup.Parse(body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse root page: %w", err)
	}

	links, ok := doc.NavLinks(e.navClass)
	if !ok {
		return nil, 0, ErrNoSections
	}

	var sections []model.Section
	skipped := 0
	for i, link := range links {
		if IsExcluded(link.Text) {
			skipped++
			continue
		}
		if IsMalformedHref(link.Href) {
			e.logger.WarnContext(ctx, "skipping malformed section URL", "href", link.Href)
			skipped++
			continue
		}
		sections = append(sections, model.Section{
			Name:  link.Text,
			URL:   e.resolveURL(link.Href),
			Index: i,
		})
	}

	return sections, skipped, nil
}

// Walk traverses the subtree rooted at url, whose positional identity is
// path. cursor, when non-nil, is the still-active resume cursor.
//
// The state machine per node: visited gate, fetch, classify, then either
// descend (branch) or emit (leaf). Every failure is terminal for this node
// only.
func (e *Engine) Walk(ctx context.Context, url string, path model.LexPath, cursor model.LexPath) {
	// Visited gate: check and insert atomically so two workers reaching the
	// same URL via different paths cannot both fetch it.
	e.mu.Lock()
	if _, seen := e.visited[url]; seen {
		e.mu.Unlock()
		return
	}
	e.visited[url] = struct{}{}
	e.mu.Unlock()

	body, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		e.fail(ctx, url, path, err)
		return
	}

	doc, err := markup.Parse(body)
	if err != nil {
		e.fail(ctx, url, path, fmt.Errorf("failed to parse page: %w", err))
		return
	}

	if links, isBranch := doc.NavLinks(e.navClass); isBranch {
		e.walkBranch(ctx, url, path, cursor, links)
		return
	}

	// Leaf. The node exactly at the cursor was the last record the prior
	// run persisted; skip it to avoid duplication.
	if cursor != nil && path.Equal(cursor) {
		return
	}

	if IsExcluded(doc.Title()) {
		return
	}

	if err := e.leafFn(ctx, url, path, doc); err != nil {
		e.fail(ctx, url, path, err)
	}
}

// walkBranch descends into a branch's children in document order.
func (e *Engine) walkBranch(ctx context.Context, url string, path, cursor model.LexPath, links []model.NodeLink) {
	// Resume pruning: while this branch lies strictly on the path down to
	// the cursor, children below the cursor's index at this depth were
	// fully processed by the prior run.
	startIdx := 0
	if cursor != nil && path.IsPrefixOf(cursor) && len(path) < len(cursor) {
		startIdx = cursor[len(path)]
	}

	for i, link := range links {
		if ctx.Err() != nil {
			return
		}
		if i < startIdx {
			continue
		}
		if IsExcluded(link.Text) {
			continue
		}
		if IsMalformedHref(link.Href) {
			e.logger.WarnContext(ctx, "skipping malformed URL",
				"href", link.Href,
				"parent", url,
			)
			continue
		}

		// Depth guard: remaining children are unreachable for this run.
		if len(path) >= e.maxDepth {
			e.logger.WarnContext(ctx, "excessive path depth, stopping descent",
				"depth", len(path),
				"url", url,
			)
			return
		}

		// Once a child index overtakes the cursor's branch point, the
		// cursor has no further effect below this branch.
		childCursor := cursor
		if cursor != nil && i > startIdx {
			childCursor = nil
		}

		e.Walk(ctx, e.resolveURL(link.Href), path.Child(i), childCursor)
	}
}

// writeRecord is the default leaf handler: extract the regulation and
// append it to the dataset.
func (e *Engine) writeRecord(ctx context.Context, url string, path model.LexPath, doc *markup.Document) error {
	rec := &model.Record{
		URL:      url,
		State:    e.jurisdiction,
		Path:     doc.BreadcrumbPath(),
		Title:    doc.Title(),
		UnivCite: doc.HasUniversalCitation(),
		Citation: doc.Citation(),
		// Content prunes the tree, so it runs after the other lookups.
		Content: doc.Content(),
		LexPath: path,
	}

	if err := e.out.Write(rec); err != nil {
		return err
	}

	e.logger.DebugContext(ctx, "record written", "url", url, "lex_path", path.String())
	return nil
}

// fail records a terminal per-node failure. Siblings and the overall run
// are unaffected; a failure to log the failure is itself only logged.
func (e *Engine) fail(ctx context.Context, url string, path model.LexPath, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return
	}

	e.logger.WarnContext(ctx, "failed to process node",
		"url", url,
		"lex_path", path.String(),
		"error", err,
	)

	if e.failures == nil {
		return
	}
	entry := model.FailureEntry{URL: url, LexPath: path.Clone(), Error: err.Error()}
	if logErr := e.failures.Append(entry); logErr != nil {
		e.logger.ErrorContext(ctx, "failed to record failure", "url", url, "error", logErr)
	}
}

// resolveURL resolves an href against the site origin. The site's
// navigation hrefs are origin-relative; absolute URLs pass through.
func (e *Engine) resolveURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return e.baseURL + href
}

// Visited returns the number of URLs dispatched for fetch so far.
func (e *Engine) Visited() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.visited)
}
