package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/legalcorpora/regcrawl/internal/config"
	"github.com/legalcorpora/regcrawl/internal/database"
	"github.com/legalcorpora/regcrawl/internal/log"
	"github.com/legalcorpora/regcrawl/internal/report"
	"github.com/legalcorpora/regcrawl/internal/sink"
	"github.com/legalcorpora/regcrawl/internal/verify"
)

// NewVerifyCmd creates the verify command.
func NewVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <jurisdiction>",
		Short: "Verify a crawled dataset against the live hierarchy",
		Long: `Verify re-walks the live regulation hierarchy section by section and
checks the persisted dataset against it:

- Completeness: every leaf the live navigation reaches has a record
- Order: records within a section appear in non-decreasing lex_path order
- Content: a sample of records is re-fetched and fuzzy-matched

A section is valid when it is complete and ordered; content spot-checks
are advisory. The dataset file is never modified.

Examples:
  # Verify the Montana dataset
  regcrawl verify MT

  # Verify with a Markdown report written to a file
  regcrawl verify MT --markdown -o mt-report.md

  # Spot-check more records per section
  regcrawl verify MT --samples 25`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeJurisdictions,
		RunE:              runVerifyCmd,
	}

	cmd.Flags().StringP("output-dir", "O", "",
		"Directory holding the JSONL dataset (default: XDG data directory)")
	cmd.Flags().IntP("samples", "s", config.DefaultSampleSize,
		"Records to spot-check per section (0 disables content checks)")
	cmd.Flags().DurationP("delay", "D", config.DefaultRequestDelay,
		"Pacing delay before each request")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Per-request timeout")
	cmd.Flags().IntP("retries", "R", config.DefaultMaxRetries,
		"Retry attempts for failed requests")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output a Markdown report instead of plain text")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to the specified file instead of stdout")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .regcrawl in current or home directory)")

	return cmd
}

// runVerifyCmd executes the verify command.
func runVerifyCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildVerifyConfig(cmd, args)
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

	return runVerify(ctx, cmd, cfg, logger)
}

// buildVerifyConfig creates a Config from cobra command flags.
func buildVerifyConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Jurisdiction = strings.ToUpper(args[0])

	var err error

	if outputDir, ferr := cmd.Flags().GetString("output-dir"); ferr != nil {
		return nil, ferr
	} else if outputDir != "" {
		cfg.OutputDir = outputDir
	}

	cfg.SampleSize, err = cmd.Flags().GetInt("samples")
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

	cfg.MaxRetries, err = cmd.Flags().GetInt("retries")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	if err := loadSiteConfigs(cmd, cfg); err != nil {
		return nil, err
	}
	cfg.ApplySiteConfig()

	cfg.DBDir = config.XDGDataDir()

	return cfg, nil
}

// runVerify executes the verification.
func runVerify(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	rootURL, err := cfg.RootURL()
	if err != nil {
		return err
	}

	ctx = log.WithJurisdiction(ctx, cfg.Jurisdiction)

	records, err := sink.LoadRecords(cfg.OutputPath())
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	logger.InfoContext(ctx, "dataset loaded", "path", cfg.OutputPath(), "records", len(records))

	v := verify.NewVerifier(newFetchClient(cfg, logger),
		verify.WithBaseURL(cfg.BaseURL),
		verify.WithNavClass(cfg.NavClass),
		verify.WithMaxDepth(cfg.MaxDepth),
		verify.WithSampleSize(cfg.SampleSize),
		verify.WithLogger(logger),
	)

	start := time.Now()
	rep, err := v.Run(ctx, strings.ToLower(cfg.Jurisdiction), rootURL, records)
	if err != nil {
		return fmt.Errorf("verification aborted: %w", err)
	}
	elapsed := time.Since(start)

	if err := recordVerifyRun(ctx, cfg, rep, elapsed); err != nil {
		logger.WarnContext(ctx, "failed to record run history", "error", err)
	}

	if err := writeVerifyReport(cmd, cfg, rep); err != nil {
		return err
	}

	if !rep.Valid() {
		return fmt.Errorf("dataset for %s failed verification", cfg.Jurisdiction)
	}
	return nil
}

// writeVerifyReport renders the report to the configured destination.
func writeVerifyReport(cmd *cobra.Command, cfg *config.Config, rep *verify.Report) error {
	out := cmd.OutOrStdout()
	if cfg.ReportFile != "" {
		if dir := filepath.Dir(cfg.ReportFile); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}
		}
		f, err := os.Create(cfg.ReportFile) //nolint:gosec // destination comes from the operator
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		out = f
	}

	var w report.Writer = report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose))
	if cfg.MarkdownReport {
		w = report.NewMarkdownWriter(out)
	}
	if _, err := w.WriteVerify(rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// recordVerifyRun persists the verification outcome to the history
// database, with the full report as the summary blob.
func recordVerifyRun(ctx context.Context, cfg *config.Config, rep *verify.Report, elapsed time.Duration) error {
	if cfg.DBDir == "" {
		return nil
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	summaryJSON, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	records := 0
	for _, sec := range rep.Sections {
		records += sec.Actual
	}
	failures := 0
	for _, sec := range rep.Sections {
		failures += len(sec.Missing) + len(sec.Extra) + len(sec.OrderIssues)
	}

	finished := time.Now()
	_, err = db.InsertRun(ctx, &database.Run{
		Jurisdiction: strings.ToLower(cfg.Jurisdiction),
		Kind:         database.RunKindVerify,
		StartedAt:    finished.Add(-elapsed),
		FinishedAt:   finished,
		Sections:     len(rep.Sections),
		Visited:      0,
		Records:      records,
		Failures:     failures,
		Summary:      string(summaryJSON),
	})
	return err
}
