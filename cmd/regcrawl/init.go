package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/legalcorpora/regcrawl/internal/config"
)

//go:embed templates/regcrawl.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new regcrawl configuration file",
		Long: `Initialize creates a new .regcrawl configuration file in the current
directory.

The generated file includes:
- Default settings for request pacing and traversal depth
- Commented examples for per-jurisdiction overrides
- Documentation for all available options

Examples:
  # Create .regcrawl in current directory
  regcrawl init

  # Create config file at a specific path
  regcrawl init -o myconfig.yaml

  # Force overwrite existing file
  regcrawl init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/regcrawl.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprintln(cmd.OutOrStdout(), "Edit this file to configure per-jurisdiction settings such as:")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Request pacing delays for rate-limited jurisdictions")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Navigation markup overrides")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Traversal depth ceilings")

	return nil
}
