package markup

import (
	"strings"
	"testing"
)

// TestContent tests leaf body extraction against the site's scattered
// markup: sibling collection, junk pruning, and whitespace cleanup.
func TestContent(t *testing.T) {
	t.Parallel()

	t.Run("collects siblings and prunes junk", func(t *testing.T) {
		t.Parallel()

		doc, err := Parse([]byte(leafPage))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		content := doc.Content()

		if !strings.Contains(content, "principal office in Helena") {
			t.Errorf("main content missing: %q", content)
		}
		if !strings.Contains(content, "Each division administers its own programs.") {
			t.Errorf("content-indent sibling missing: %q", content)
		}
		for _, junk := range []string{"Newsletter", "cookies notice", "Disclaimer", "footer chrome", "site chrome", "Rule 1.2.3", "Universal Citation"} {
			if strings.Contains(content, junk) {
				t.Errorf("junk %q leaked into content: %q", junk, content)
			}
		}
	})

	t.Run("stops at disclaimer sibling", func(t *testing.T) {
		t.Parallel()

		page := `<html><body>
		<div id="main-content"><p>Body.</p></div>
		<div class="content-indent"><p>Continuation with Section text.</p></div>
		<div class="disclaimer">Disclaimer text.</div>
		<div class="content-indent"><p>After the disclaimer, not content.</p></div>
		</body></html>`

		doc, err := Parse([]byte(page))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		content := doc.Content()
		if !strings.Contains(content, "Continuation") {
			t.Errorf("expected continuation collected: %q", content)
		}
		if strings.Contains(content, "After the disclaimer") {
			t.Errorf("collection ran past the disclaimer: %q", content)
		}
	})

	t.Run("keyword sibling without content-indent class", func(t *testing.T) {
		t.Parallel()

		page := `<html><body>
		<div id="main-content"><p>Body.</p></div>
		<div><p>Section 2 continues the rule text here.</p></div>
		<div><p>Unrelated sidebar.</p></div>
		</body></html>`

		doc, err := Parse([]byte(page))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		content := doc.Content()
		if !strings.Contains(content, "Section 2 continues") {
			t.Errorf("keyword sibling not collected: %q", content)
		}
		if strings.Contains(content, "Unrelated sidebar") {
			t.Errorf("collection ran past an unrelated div: %q", content)
		}
	})

	t.Run("missing main content yields empty body", func(t *testing.T) {
		t.Parallel()

		doc, err := Parse([]byte(`<html><body><p>nothing here</p></body></html>`))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		if got := doc.Content(); got != "" {
			t.Errorf("expected empty content, got %q", got)
		}
	})
}

// TestCleanupWhitespace tests line normalization.
func TestCleanupWhitespace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "trims lines", in: "  a  \n\tb\t", want: "a\nb"},
		{name: "collapses blank runs", in: "a\n\n\n\nb", want: "a\n\nb"},
		{name: "drops leading blanks", in: "\n\na", want: "a"},
		{name: "drops trailing blanks", in: "a\n\n\n", want: "a"},
		{name: "empty input", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := cleanupWhitespace(tt.in); got != tt.want {
				t.Errorf("cleanupWhitespace(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
