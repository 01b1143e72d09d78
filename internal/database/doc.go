// Package database provides SQLite-based storage for crawl run history.
//
// Every crawl and verification run records a summary row, plus one row per
// unresolved node failure, so operators can answer "when did we last crawl
// a jurisdiction, how did it go, and what failed" without digging through
// logs. The regulation dataset itself never lives here; it stays in the
// append-only JSONL output.
package database
