package crawler

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/legalcorpora/regcrawl/internal/model"
)

// Stats summarizes one crawl run.
type Stats struct {
	// Sections is the number of top-level sections dispatched.
	Sections int

	// SkippedSections counts top-level sections excluded before dispatch.
	SkippedSections int

	// Visited is the number of distinct URLs fetched.
	Visited int

	// Records is the number of records appended this run.
	Records int

	// Failures is the number of per-node failures logged this run.
	Failures int

	// Resumed reports whether the run started from a resume cursor.
	Resumed bool

	// Elapsed is the wall-clock duration of the traversal.
	Elapsed time.Duration
}

// Run crawls every section concurrently with at most workers in flight,
// seeding each section's walk with its document-order index. The cursor,
// when non-nil, is handed only to the section it points into; all other
// sections start fresh.
//
// Run returns once every section's subtree has been fully walked. Worker
// errors cannot occur below the section level (node failures are absorbed
// by the engine), so the only error surfaced is context cancellation.
func (e *Engine) Run(ctx context.Context, sections []model.Section, cursor model.LexPath, workers int) error {
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, sec := range sections {
		// Resume pruning at the top level: sections below the cursor's
		// branch point were fully processed by the prior run. Only the
		// section the cursor points into carries it further down.
		var sectionCursor model.LexPath
		if cursor != nil {
			if sec.Index < cursor[0] {
				continue
			}
			if sec.Index == cursor[0] {
				sectionCursor = cursor
			}
		}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			e.logger.InfoContext(ctx, "crawling section",
				"section", sec.Name,
				"index", sec.Index,
				"resumed", sectionCursor != nil,
			)
			e.Walk(ctx, sec.URL, model.LexPath{sec.Index}, sectionCursor)
			return nil
		})
	}

	return g.Wait()
}
