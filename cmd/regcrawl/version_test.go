package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCmd(t *testing.T) {
	cmd := NewVersionCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "regcrawl version") {
		t.Errorf("output missing version line:\n%s", out)
	}
	if !strings.Contains(out, "commit:") || !strings.Contains(out, "built:") {
		t.Errorf("output missing build metadata:\n%s", out)
	}
}

func TestGetVersionFromLdflags(t *testing.T) {
	orig := version
	defer func() { version = orig }()

	version = "v1.2.3"
	if got := getVersion(); got != "v1.2.3" {
		t.Errorf("getVersion() = %q, want %q", got, "v1.2.3")
	}
}

func TestGetCommitFromLdflags(t *testing.T) {
	orig := commit
	defer func() { commit = orig }()

	commit = "abc1234"
	if got := getCommit(); got != "abc1234" {
		t.Errorf("getCommit() = %q, want %q", got, "abc1234")
	}
}
