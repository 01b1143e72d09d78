package model

import (
	"strconv"
	"strings"
)

// LexPath is the positional identity of a node in the site hierarchy: the
// sequence of zero-based sibling indices chosen at each depth from the root.
// The root has the empty path. Depth equals the path length.
//
// LexPath values are totally ordered element-wise with shorter-prefix-first:
// a path that is a strict prefix of another sorts before it. Within a single
// crawl run, no two distinct leaves receive the same LexPath.
//
// Design decision: LexPath is a named slice type rather than a struct because:
//  1. Index access and append are the dominant operations during traversal
//  2. It serializes naturally as a JSON integer array ("lex_path")
//  3. A nil LexPath doubles as "no cursor" in resume handling
type LexPath []int

// Child returns the path of the i-th child of p. The receiver is not
// modified; the result is always a fresh slice so sibling paths built from
// the same parent never alias each other.
func (p LexPath) Child(i int) LexPath {
	child := make(LexPath, len(p), len(p)+1)
	copy(child, p)
	return append(child, i)
}

// Depth returns the depth of the node identified by p. The root is depth 0.
func (p LexPath) Depth() int {
	return len(p)
}

// Compare returns -1 if p sorts before q, +1 if p sorts after q, and 0 if
// they are equal. Comparison is element-wise; when one path is a strict
// prefix of the other, the shorter path sorts first.
func (p LexPath) Compare(q LexPath) int {
	for i := 0; i < len(p) && i < len(q); i++ {
		switch {
		case p[i] < q[i]:
			return -1
		case p[i] > q[i]:
			return 1
		}
	}
	switch {
	case len(p) < len(q):
		return -1
	case len(p) > len(q):
		return 1
	}
	return 0
}

// Less reports whether p sorts strictly before q.
func (p LexPath) Less(q LexPath) bool {
	return p.Compare(q) < 0
}

// Equal reports whether p and q identify the same node.
func (p LexPath) Equal(q LexPath) bool {
	return p.Compare(q) == 0
}

// IsPrefixOf reports whether p is a prefix of q (including p == q).
// The resume controller uses this to decide whether a branch lies on the
// path down to the cursor.
func (p LexPath) IsPrefixOf(q LexPath) bool {
	if len(p) > len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of p. A nil path clones to nil.
func (p LexPath) Clone() LexPath {
	if p == nil {
		return nil
	}
	c := make(LexPath, len(p))
	copy(c, p)
	return c
}

// String formats p as "[0 2 13]" style bracketed indices, primarily for
// log output.
func (p LexPath) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, n := range p {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.Itoa(n))
	}
	b.WriteByte(']')
	return b.String()
}
