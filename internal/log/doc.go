// Package log provides structured logging for regcrawl, built on top of the
// standard slog package.
//
// This package extends slog to provide:
//   - A JurisdictionHandler that stamps every record with the jurisdiction
//     being crawled, carried in the context
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// Worker goroutines crawl different sections of the same jurisdiction
// concurrently, so plain log lines are hard to attribute. Rather than thread
// a logger argument through every call, the crawl run puts its jurisdiction
// into the context once and the handler attaches it to every record emitted
// below that point.
//
// # Usage
//
//	logger := log.New(os.Stderr, true) // verbose=true
//	ctx := log.WithJurisdiction(context.Background(), "MT")
//
//	logger.InfoContext(ctx, "section complete",
//	    "section", "Department of Revenue",
//	) // => ... jurisdiction=MT section="Department of Revenue"
package log
