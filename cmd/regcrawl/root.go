// Package main provides the entry point for the regcrawl CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/legalcorpora/regcrawl/internal/config"
)

// NewRootCmd creates the root command for regcrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regcrawl",
		Short: "Crawl and verify US state regulation hierarchies",
		Long: `regcrawl builds line-delimited JSON datasets of US state administrative
regulations by walking their published hierarchies.

Each regulation is written as one JSON record carrying its URL, title,
citation, full text, and a positional lex_path that encodes where the
regulation sits in the hierarchy. Interrupted crawls resume from the last
persisted record.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewVerifyCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// completeJurisdictions offers the known jurisdiction identifiers for
// shell completion of a command's jurisdiction argument.
func completeJurisdictions(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return config.Jurisdictions(), cobra.ShellCompDirectiveNoFileComp
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
