package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/legalcorpora/regcrawl/internal/config"
	"github.com/legalcorpora/regcrawl/internal/crawler"
	"github.com/legalcorpora/regcrawl/internal/database"
	"github.com/legalcorpora/regcrawl/internal/fetch"
	"github.com/legalcorpora/regcrawl/internal/log"
	"github.com/legalcorpora/regcrawl/internal/model"
	"github.com/legalcorpora/regcrawl/internal/report"
	"github.com/legalcorpora/regcrawl/internal/sink"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <jurisdiction>",
		Short: "Crawl a jurisdiction's regulation hierarchy into a JSONL dataset",
		Long: `Crawl walks a jurisdiction's regulation hierarchy top-down and writes one
JSON record per regulation to <output-dir>/<jurisdiction>.jsonl.

Top-level sections are crawled concurrently; within a section, records are
written in hierarchy order. Nodes that cannot be resolved after retries are
logged to failed_<jurisdiction>.jsonl and never abort the run.

Examples:
  # Crawl Montana's administrative rules
  regcrawl crawl MT

  # Resume an interrupted crawl from the last persisted record
  regcrawl crawl MT --resume

  # Crawl with four section workers into a specific directory
  regcrawl crawl MT -w 4 -O ./data

  # Use a custom configuration file
  regcrawl crawl MT -c myconfig.yaml

Configuration file (.regcrawl) example:
  defaults:
    requestDelay: 200ms
  jurisdictions:
    CA:
      requestDelay: 500ms`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeJurisdictions,
		RunE:              runCrawlCmd,
	}

	cmd.Flags().StringP("output-dir", "O", "",
		"Directory for JSONL datasets and failure logs (default: XDG data directory)")
	cmd.Flags().BoolP("resume", "r", false,
		"Resume from the last persisted record of a prior run")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent section workers")
	cmd.Flags().IntP("retries", "R", config.DefaultMaxRetries,
		"Retry attempts for failed requests")
	cmd.Flags().DurationP("delay", "D", config.DefaultRequestDelay,
		"Pacing delay before each request")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Per-request timeout")
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum traversal depth")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .regcrawl in current or home directory)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Write the run summary as Markdown instead of plain text")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCrawlConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.New(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return runCrawl(ctx, cmd, cfg, logger)
}

// buildCrawlConfig creates a Config from cobra command flags.
func buildCrawlConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Jurisdiction = strings.ToUpper(args[0])

	var err error

	if outputDir, ferr := cmd.Flags().GetString("output-dir"); ferr != nil {
		return nil, ferr
	} else if outputDir != "" {
		cfg.OutputDir = outputDir
	}

	cfg.Resume, err = cmd.Flags().GetBool("resume")
	if err != nil {
		return nil, err
	}

	cfg.Workers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}

	cfg.MaxRetries, err = cmd.Flags().GetInt("retries")
	if err != nil {
		return nil, err
	}

	cfg.RequestDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.MaxDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	if err := loadSiteConfigs(cmd, cfg); err != nil {
		return nil, err
	}
	cfg.ApplySiteConfig()

	// Run history always goes to the XDG data directory.
	cfg.DBDir = config.XDGDataDir()

	return cfg, nil
}

// loadSiteConfigs resolves and loads the .regcrawl configuration file.
// An explicitly named file must exist; otherwise a missing file just means
// no overrides.
func loadSiteConfigs(cmd *cobra.Command, cfg *config.Config) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	found := config.FindConfigFile(configPath)
	if found == "" {
		if configPath != "" {
			return fmt.Errorf("configuration file not found: %s", configPath)
		}
		return nil
	}

	cfg.Sites, err = config.LoadConfigFile(found)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", found, err)
	}
	return nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// newFetchClient builds the rate-limited, retrying HTTP fetcher from the
// run configuration.
func newFetchClient(cfg *config.Config, logger *slog.Logger) *fetch.Client {
	return fetch.NewClient(
		&http.Client{Timeout: cfg.Timeout},
		fetch.WithRetryPolicy(cfg.MaxRetries, cfg.RetryBaseDelay, cfg.RetryMaxDelay),
		fetch.WithRequestDelay(cfg.RequestDelay),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithLogger(logger),
	)
}

// runCrawl executes the crawl.
func runCrawl(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	rootURL, err := cfg.RootURL()
	if err != nil {
		return err
	}

	ctx = log.WithJurisdiction(ctx, cfg.Jurisdiction)

	// Resume: read the cursor before opening the sink, because opening in
	// truncate mode would destroy the very record the cursor reads.
	cursor, err := crawlCursor(cfg, logger)
	if err != nil {
		return err
	}

	mu := &sync.Mutex{}
	out, err := sink.NewWriter(cfg.OutputPath(), cursor != nil, mu)
	if err != nil {
		return fmt.Errorf("failed to open output sink: %w", err)
	}
	defer out.Close()

	failures := sink.NewFailureLog(cfg.FailurePath(), mu)
	defer failures.Close()

	client := newFetchClient(cfg, logger)
	engine := crawler.NewEngine(client, mu, out, failures,
		crawler.WithBaseURL(cfg.BaseURL),
		crawler.WithNavClass(cfg.NavClass),
		crawler.WithMaxDepth(cfg.MaxDepth),
		crawler.WithJurisdiction(strings.ToUpper(cfg.Jurisdiction)),
		crawler.WithLogger(logger),
	)

	logger.InfoContext(ctx, "starting crawl",
		"root", rootURL,
		"workers", cfg.Workers,
		"resume", cursor != nil,
		"output", cfg.OutputPath(),
	)

	start := time.Now()

	sections, skipped, err := engine.Sections(ctx, rootURL)
	if err != nil {
		return fmt.Errorf("failed to enumerate sections: %w", err)
	}
	logger.InfoContext(ctx, "sections enumerated", "count", len(sections), "skipped", skipped)

	if err := engine.Run(ctx, sections, cursor, cfg.Workers); err != nil {
		return fmt.Errorf("crawl interrupted: %w", err)
	}

	stats := crawler.Stats{
		Sections:        len(sections),
		SkippedSections: skipped,
		Visited:         engine.Visited(),
		Records:         out.Count(),
		Failures:        failures.Count(),
		Resumed:         cursor != nil,
		Elapsed:         time.Since(start),
	}

	summary := &report.CrawlSummary{
		Jurisdiction: cfg.Jurisdiction,
		OutputPath:   cfg.OutputPath(),
		Stats:        stats,
	}
	if stats.Failures > 0 {
		summary.FailurePath = cfg.FailurePath()
	}

	if err := recordCrawlRun(ctx, cfg, stats, logger); err != nil {
		logger.WarnContext(ctx, "failed to record run history", "error", err)
	}

	var w report.Writer = report.NewSimpleWriter(cmd.OutOrStdout(), report.WithVerbose(cfg.Verbose))
	if cfg.MarkdownReport {
		w = report.NewMarkdownWriter(cmd.OutOrStdout())
	}
	if _, err := w.WriteCrawl(summary); err != nil {
		return fmt.Errorf("failed to write run summary: %w", err)
	}

	return nil
}

// crawlCursor loads the resume cursor when resume is requested. A missing
// or empty prior dataset degrades to a full crawl; a cursor that cannot be
// read from an existing dataset is fatal, because falling through to
// truncate mode would destroy every record the prior run persisted.
func crawlCursor(cfg *config.Config, logger *slog.Logger) (model.LexPath, error) {
	if !cfg.Resume {
		return nil, nil
	}
	cursor, err := crawler.LoadCursor(cfg.OutputPath())
	if err != nil {
		return nil, fmt.Errorf("refusing to resume over %s: %w", cfg.OutputPath(), err)
	}
	if cursor == nil {
		logger.Info("no prior output found, starting full crawl")
		return nil, nil
	}
	logger.Info("resuming crawl", "cursor", cursor.String())
	return cursor, nil
}

// recordCrawlRun persists the run summary and its failures to the history
// database.
func recordCrawlRun(ctx context.Context, cfg *config.Config, stats crawler.Stats, logger *slog.Logger) error {
	if cfg.DBDir == "" {
		return nil
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	finished := time.Now()
	runID, err := db.InsertRun(ctx, &database.Run{
		Jurisdiction:    strings.ToLower(cfg.Jurisdiction),
		Kind:            database.RunKindCrawl,
		StartedAt:       finished.Add(-stats.Elapsed),
		FinishedAt:      finished,
		Resumed:         stats.Resumed,
		Sections:        stats.Sections,
		SkippedSections: stats.SkippedSections,
		Visited:         stats.Visited,
		Records:         stats.Records,
		Failures:        stats.Failures,
	})
	if err != nil {
		return err
	}

	if stats.Failures == 0 {
		return nil
	}
	entries, err := sink.LoadFailures(cfg.FailurePath())
	if err != nil {
		logger.WarnContext(ctx, "failed to read failure log for history", "error", err)
		return nil
	}
	return db.RecordFailures(ctx, runID, entries)
}
