// Package crawler implements the resumable tree-crawling engine.
//
// The site organizes regulations as a hierarchy of unknown depth and
// branching factor: every interior page carries an ordered navigation list
// of children, every leaf carries a regulation body. The Engine walks this
// tree depth-first in sibling order, assigning each node a LexPath (the
// sequence of sibling indices from the root) as its stable positional
// identity, and dispatches leaves to a leaf handler: the record extractor
// during a crawl, a URL collector during verification.
//
// Safety properties of the traversal:
//   - A process-wide visited set (one exclusion lock, shared with the output
//     sink) guarantees every URL is fetched at most once per run, breaking
//     navigation cycles and aliases.
//   - A depth ceiling halts descent through pathological hierarchies the
//     visited set cannot catch.
//   - Per-node failures (exhausted fetches, parse errors) are logged to the
//     failure log and never abort siblings or the run.
//
// Resumption: the cursor recovered from the last persisted record prunes
// exactly the nodes lexicographically at-or-before itself. While the current
// branch path is a strict prefix of the cursor, children below the cursor's
// index at that depth are skipped; the moment a child index overtakes the
// cursor, the cursor is deactivated for all descendants. Nodes after the
// cursor are processed normally, so interruption never loses records; at
// worst it re-emits work that was in flight, which the append-only sink and
// the verifier tolerate.
//
// Work distribution: the pool enumerates the root's sections once and runs
// one full traversal per section across a bounded worker group. There is no
// work-stealing below the top level, so effective parallelism is capped by
// the section count.
package crawler
