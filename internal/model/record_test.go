package model

import (
	"encoding/json"
	"strings"
	"testing"
)

// TestRecordJSON tests that the persisted schema keeps its exact field names,
// including a null citation for records without one.
func TestRecordJSON(t *testing.T) {
	t.Parallel()

	t.Run("field names and null citation", func(t *testing.T) {
		t.Parallel()

		rec := Record{
			URL:      "https://regulations.example.com/states/montana/title-1/rule-1/",
			State:    "MT",
			Path:     "Administrative Rules of Montana›Title 1",
			Title:    "Rule 1 › Organization",
			UnivCite: false,
			Citation: nil,
			Content:  "The department shall...",
			LexPath:  LexPath{0, 0, 1},
		}

		data, err := json.Marshal(rec)
		if err != nil {
			t.Fatalf("failed to marshal record: %v", err)
		}

		for _, field := range []string{`"url"`, `"state"`, `"path"`, `"title"`, `"univ_cite"`, `"citation"`, `"content"`, `"lex_path"`} {
			if !strings.Contains(string(data), field) {
				t.Errorf("marshaled record missing field %s: %s", field, data)
			}
		}

		if !strings.Contains(string(data), `"citation":null`) {
			t.Errorf("expected null citation, got %s", data)
		}
		if !strings.Contains(string(data), `"lex_path":[0,0,1]`) {
			t.Errorf("expected lex_path [0,0,1], got %s", data)
		}
	})

	t.Run("round trip preserves lex_path", func(t *testing.T) {
		t.Parallel()

		line := `{"url":"https://x/","state":"VT","path":"Code of Vermont Rules","title":"T","univ_cite":true,"citation":"12-3 Vt. Code R. § 4","content":"body","lex_path":[2,1,3]}`

		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("failed to unmarshal record: %v", err)
		}

		if !rec.LexPath.Equal(LexPath{2, 1, 3}) {
			t.Errorf("expected lex_path [2 1 3], got %s", rec.LexPath)
		}
		if rec.Citation == nil || *rec.Citation != "12-3 Vt. Code R. § 4" {
			t.Errorf("citation not preserved: %v", rec.Citation)
		}
	})
}

// TestFailureEntryJSON tests that a failure without a known path omits the
// lex_path field entirely.
func TestFailureEntryJSON(t *testing.T) {
	t.Parallel()

	entry := FailureEntry{URL: "https://x/", Error: "HTTP 503"}
	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("failed to marshal failure entry: %v", err)
	}
	if strings.Contains(string(data), "lex_path") {
		t.Errorf("expected lex_path omitted, got %s", data)
	}
}
