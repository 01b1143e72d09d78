// Package sink persists crawl output: the per-jurisdiction JSONL dataset and
// the failure log.
//
// Both files are append-only, one JSON object per line. Writes are
// serialized under the crawl run's shared lock and flushed per line, so the
// dataset is valid-so-far at any truncation point and the resume controller
// can always recover a cursor from the last complete line.
package sink
