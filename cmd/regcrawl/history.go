package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/legalcorpora/regcrawl/internal/config"
	"github.com/legalcorpora/regcrawl/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [jurisdiction]",
		Short: "Show past crawl and verification runs",
		Long: `History lists past crawl and verification runs recorded in the local
run database, most recent first.

Examples:
  # Show runs for every jurisdiction
  regcrawl history

  # Show the last runs for Montana
  regcrawl history MT

  # Show the failures of a specific run
  regcrawl history --failures 12

  # Show the latest crawl and verification per jurisdiction
  regcrawl history --summary`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeJurisdictions,
		RunE:              runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to show (0 = all)")
	cmd.Flags().Int64P("failures", "f", 0, "Show the failure entries of the given run ID")
	cmd.Flags().BoolP("summary", "s", false, "Show one line per jurisdiction with its latest runs")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	db, err := database.Open(config.XDGDataDir(), database.Options{
		CreateIfNotExists: false,
		EnableWAL:         true,
	})
	if err != nil {
		return fmt.Errorf("no run history found (crawl something first): %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()

	runID, err := cmd.Flags().GetInt64("failures")
	if err != nil {
		return err
	}
	if runID > 0 {
		return printRunFailures(cmd, db, runID)
	}

	summary, err := cmd.Flags().GetBool("summary")
	if err != nil {
		return err
	}
	if summary {
		return printJurisdictionSummary(cmd, db)
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	jurisdiction := ""
	if len(args) == 1 {
		jurisdiction = strings.ToLower(args[0])
		if _, ok := config.JurisdictionSlug(jurisdiction); !ok {
			return config.ErrUnknownJurisdiction
		}
	}

	runs, err := db.RunHistory(ctx, jurisdiction, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tJURISDICTION\tKIND\tSTARTED\tDURATION\tSECTIONS\tRECORDS\tFAILURES\tRESUMED")
	for _, run := range runs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%d\t%d\t%v\n",
			run.ID,
			strings.ToUpper(run.Jurisdiction),
			run.Kind,
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			run.FinishedAt.Sub(run.StartedAt).Round(time.Second),
			run.Sections,
			run.Records,
			run.Failures,
			run.Resumed,
		)
	}
	return w.Flush()
}

// printJurisdictionSummary lists every jurisdiction with a stored run and
// its most recent crawl and verification.
func printJurisdictionSummary(cmd *cobra.Command, db *database.CrawlDB) error {
	ctx := cmd.Context()

	jurisdictions, err := db.ListJurisdictions(ctx)
	if err != nil {
		return err
	}
	if len(jurisdictions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "JURISDICTION\tLAST CRAWL\tRECORDS\tFAILURES\tLAST VERIFY")
	for _, j := range jurisdictions {
		crawl, err := db.LatestRun(ctx, j, database.RunKindCrawl)
		if err != nil {
			return err
		}
		verified, err := db.LatestRun(ctx, j, database.RunKindVerify)
		if err != nil {
			return err
		}

		lastCrawl, records, failures := "-", "-", "-"
		if crawl != nil {
			lastCrawl = crawl.StartedAt.Local().Format("2006-01-02 15:04")
			records = fmt.Sprintf("%d", crawl.Records)
			failures = fmt.Sprintf("%d", crawl.Failures)
		}
		lastVerify := "-"
		if verified != nil {
			lastVerify = verified.StartedAt.Local().Format("2006-01-02 15:04")
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			strings.ToUpper(j), lastCrawl, records, failures, lastVerify)
	}
	return w.Flush()
}

// printRunFailures lists the failure entries recorded for one run.
func printRunFailures(cmd *cobra.Command, db *database.CrawlDB, runID int64) error {
	entries, err := db.FailuresForRun(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No failures recorded for run %d.\n", runID)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "URL\tLEX_PATH\tERROR")
	for _, entry := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", entry.URL, entry.LexPath, entry.Error)
	}
	return w.Flush()
}
