package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/legalcorpora/regcrawl/internal/config"
)

func runInit(t *testing.T, args ...string) error {
	t.Helper()
	cmd := NewInitCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestInitCmdCreatesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".regcrawl")
	if err := runInit(t, "-o", path); err != nil {
		t.Fatalf("init error = %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if !strings.Contains(string(content), "jurisdictions:") {
		t.Errorf("template missing jurisdictions section:\n%s", content)
	}

	// The template must stay parseable by the config loader.
	var cf config.File
	if err := yaml.Unmarshal(content, &cf); err != nil {
		t.Errorf("template does not parse as a config file: %v", err)
	}
}

func TestInitCmdRefusesOverwrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".regcrawl")
	if err := os.WriteFile(path, []byte("defaults: {}\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := runInit(t, "-o", path); err == nil {
		t.Error("init should refuse to overwrite an existing file without -f")
	}

	if err := runInit(t, "-o", path, "-f"); err != nil {
		t.Errorf("init -f error = %v", err)
	}
}

func TestInitCmdCreatesDirectories(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")
	if err := runInit(t, "-o", path); err != nil {
		t.Fatalf("init error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file not created in nested directory: %v", err)
	}
}
