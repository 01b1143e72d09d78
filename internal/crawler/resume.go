package crawler

import (
	"fmt"

	"github.com/legalcorpora/regcrawl/internal/model"
	"github.com/legalcorpora/regcrawl/internal/sink"
)

// LoadCursor reads the resume cursor from an existing output file: the
// lex_path of the last record written by a prior run. A missing or empty
// file yields a nil cursor, meaning a fresh crawl.
func LoadCursor(path string) (model.LexPath, error) {
	rec, err := sink.LastRecord(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load resume cursor: %w", err)
	}
	if rec == nil {
		return nil, nil
	}
	if len(rec.LexPath) == 0 {
		return nil, fmt.Errorf("last record in %s has no lex_path", path)
	}
	return rec.LexPath, nil
}
