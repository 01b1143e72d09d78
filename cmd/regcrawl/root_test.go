package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	if cmd.Use != "regcrawl" {
		t.Errorf("Use = %q, want %q", cmd.Use, "regcrawl")
	}

	want := map[string]bool{
		"crawl":   false,
		"verify":  false,
		"history": false,
		"init":    false,
		"version": false,
	}
	for _, sub := range cmd.Commands() {
		name := strings.Fields(sub.Use)[0]
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestRootCmdHelp(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(buf.String(), "regcrawl") {
		t.Errorf("help output missing command name:\n%s", buf.String())
	}
}

func TestCompleteJurisdictions(t *testing.T) {
	t.Parallel()

	got, directive := completeJurisdictions(nil, nil, "")
	if directive != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("directive = %v, want ShellCompDirectiveNoFileComp", directive)
	}
	if len(got) != 56 {
		t.Errorf("got %d completions, want 56", len(got))
	}
	found := false
	for _, id := range got {
		if id == "MT" {
			found = true
			break
		}
	}
	if !found {
		t.Error("completions missing MT")
	}

	// The argument slot is already filled; nothing more to offer.
	if got, _ := completeJurisdictions(nil, []string{"MT"}, ""); got != nil {
		t.Errorf("completions after the argument = %v, want none", got)
	}
}

func TestRootCmdUnknownCommand(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"no-such-command"})

	if err := cmd.Execute(); err == nil {
		t.Error("Execute() with unknown command should fail")
	}
}
