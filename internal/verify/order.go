package verify

import (
	"fmt"

	"github.com/legalcorpora/regcrawl/internal/model"
)

// OrderIssue is one violation of non-decreasing lex_path order between two
// adjacent records of a section.
type OrderIssue struct {
	// Index is the position of the later record within the section's
	// record sequence.
	Index int

	Prev    model.LexPath
	Current model.LexPath
}

// String renders the issue for reports and logs.
func (o OrderIssue) String() string {
	return fmt.Sprintf("out of order at record %d: %s > %s", o.Index, o.Prev, o.Current)
}

// CheckOrder reports every adjacent pair of records whose lex_path order
// decreases. Records are expected in the order they appear in the dataset
// for one section; an empty result means the section is ordered.
func CheckOrder(records []model.Record) []OrderIssue {
	var issues []OrderIssue
	for i := 1; i < len(records); i++ {
		prev, cur := records[i-1].LexPath, records[i].LexPath
		if prev.Compare(cur) > 0 {
			issues = append(issues, OrderIssue{
				Index:   i,
				Prev:    prev.Clone(),
				Current: cur.Clone(),
			})
		}
	}
	return issues
}
