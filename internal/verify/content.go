package verify

import (
	"fmt"
	"strings"
	"unicode"
)

// Fuzzy-matching tuning. These ratios are empirically tuned against the
// site's layout churn, not derived invariants; a passing spot-check means
// "probably matches", nothing stronger.
const (
	// minStoredLen is the minimum stored content length considered
	// substantial enough to compare at all.
	minStoredLen = 50

	// shortContentLimit divides the short-content strategy (whole-string
	// then small chunks) from the sampled-chunk strategy.
	shortContentLimit = 500

	// shortChunkSize and shortMatchRatio drive short-content matching:
	// consecutive chunks of the stored text, of which at least the ratio
	// must appear on the page.
	shortChunkSize  = 50
	shortMatchRatio = 0.8

	// sampleChunks, chunkSize and chunkMatchRatio drive long-content
	// matching: evenly spaced samples across the stored text, of which at
	// least the ratio must appear on the page. Small chunks forgive
	// incidental markup differences.
	sampleChunks    = 20
	chunkSize       = 100
	chunkMatchRatio = 0.6
)

// MatchContent fuzzy-compares stored record content against the text of a
// freshly fetched page. It reports whether the stored content plausibly
// appears on the page, with a human-readable detail on mismatch.
//
// The page may carry promotional junk the extraction removed, so matching
// asks only whether chunks of the stored text appear anywhere in the page
// text, never the reverse.
func MatchContent(stored, pageText string) (bool, string) {
	if len(stored) < minStoredLen {
		return false, fmt.Sprintf("content too short (%d chars)", len(stored))
	}

	storedNorm := normalize(stored)
	pageNorm := normalize(pageText)

	if len(storedNorm) <= shortContentLimit {
		return matchShort(storedNorm, pageNorm)
	}
	return matchSampled(storedNorm, pageNorm)
}

// matchShort handles short content: exact containment first, then
// consecutive small chunks with a high required ratio.
func matchShort(stored, page string) (bool, string) {
	if strings.Contains(page, stored) {
		return true, ""
	}

	matched := 0
	for i := 0; i+shortChunkSize < len(stored); i += shortChunkSize {
		if strings.Contains(page, stored[i:i+shortChunkSize]) {
			matched += shortChunkSize
		}
	}
	if float64(matched) >= float64(len(stored))*shortMatchRatio {
		return true, ""
	}
	return false, fmt.Sprintf("content mismatch (only %d/%d chars matched)", matched, len(stored))
}

// matchSampled handles long content: evenly spaced chunk samples across
// the whole stored text, so a match requires agreement at the start,
// middle and end rather than any single region.
func matchSampled(stored, page string) (bool, string) {
	step := (len(stored) - chunkSize) / (sampleChunks - 1)

	var chunks []string
	for i := 0; i < sampleChunks; i++ {
		start := i * step
		if start+chunkSize <= len(stored) {
			chunks = append(chunks, stored[start:start+chunkSize])
		}
	}

	found := 0
	for _, chunk := range chunks {
		if strings.Contains(page, chunk) {
			found++
		}
	}

	required := int(float64(len(chunks)) * chunkMatchRatio)
	if required < 1 {
		required = 1
	}
	if found >= required {
		return true, ""
	}
	return false, fmt.Sprintf("content mismatch (only %d/%d chunks found, need %d)", found, len(chunks), required)
}

// normalize lowercases text and strips all whitespace, so markup
// reflow between crawl time and verify time cannot break containment.
func normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
