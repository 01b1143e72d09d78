package sink

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/legalcorpora/regcrawl/internal/model"
)

// TestWriter tests append-only JSONL output.
func TestWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes one line per record", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "MT.jsonl")
		var mu sync.Mutex

		w, err := NewWriter(path, false, &mu)
		if err != nil {
			t.Fatalf("failed to open writer: %v", err)
		}
		defer w.Close() //nolint:errcheck

		for i := 0; i < 3; i++ {
			rec := &model.Record{URL: "https://x/", State: "MT", LexPath: model.LexPath{0, i}}
			if err := w.Write(rec); err != nil {
				t.Fatalf("failed to write record: %v", err)
			}
		}

		if w.Count() != 3 {
			t.Errorf("expected count 3, got %d", w.Count())
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read dataset: %v", err)
		}
		lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
		if len(lines) != 3 {
			t.Errorf("expected 3 lines, got %d", len(lines))
		}
	})

	t.Run("truncate vs append", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "VT.jsonl")
		var mu sync.Mutex

		w, err := NewWriter(path, false, &mu)
		if err != nil {
			t.Fatalf("failed to open writer: %v", err)
		}
		if err := w.Write(&model.Record{URL: "https://a/", LexPath: model.LexPath{0}}); err != nil {
			t.Fatalf("write: %v", err)
		}
		_ = w.Close()

		// Append mode keeps the prior record
		w, err = NewWriter(path, true, &mu)
		if err != nil {
			t.Fatalf("failed to reopen writer: %v", err)
		}
		if err := w.Write(&model.Record{URL: "https://b/", LexPath: model.LexPath{1}}); err != nil {
			t.Fatalf("write: %v", err)
		}
		_ = w.Close()

		records, err := LoadRecords(path)
		if err != nil {
			t.Fatalf("failed to load records: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 records after append, got %d", len(records))
		}

		// Truncate mode starts over
		w, err = NewWriter(path, false, &mu)
		if err != nil {
			t.Fatalf("failed to reopen writer: %v", err)
		}
		_ = w.Close()

		records, err = LoadRecords(path)
		if err != nil {
			t.Fatalf("failed to load records: %v", err)
		}
		if len(records) != 0 {
			t.Errorf("expected empty dataset after truncate, got %d records", len(records))
		}
	})

	t.Run("append drops a torn tail", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "MT.jsonl")
		var mu sync.Mutex

		w, err := NewWriter(path, false, &mu)
		if err != nil {
			t.Fatalf("failed to open writer: %v", err)
		}
		if err := w.Write(&model.Record{URL: "https://a/", LexPath: model.LexPath{0}}); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := w.Write(&model.Record{URL: "https://b/", LexPath: model.LexPath{1}}); err != nil {
			t.Fatalf("write: %v", err)
		}
		_ = w.Close()

		// Simulate a crash mid-write: a partial third record, no newline.
		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			t.Fatalf("failed to reopen dataset: %v", err)
		}
		if _, err := f.WriteString(`{"url":"https://c/","st`); err != nil {
			t.Fatalf("failed to tear the tail: %v", err)
		}
		_ = f.Close()

		// Reopening in append mode repairs the tail; the next record must
		// start on its own line.
		w, err = NewWriter(path, true, &mu)
		if err != nil {
			t.Fatalf("failed to reopen writer: %v", err)
		}
		if err := w.Write(&model.Record{URL: "https://c/", LexPath: model.LexPath{2}}); err != nil {
			t.Fatalf("write: %v", err)
		}
		_ = w.Close()

		records, err := LoadRecords(path)
		if err != nil {
			t.Fatalf("failed to load records: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected 3 records after repair, got %d", len(records))
		}
		if !records[2].LexPath.Equal(model.LexPath{2}) {
			t.Errorf("expected final lex_path [2], got %s", records[2].LexPath)
		}
	})
}

// TestLastRecord tests resume cursor recovery from the dataset tail.
func TestLastRecord(t *testing.T) {
	t.Parallel()

	t.Run("missing file means no cursor", func(t *testing.T) {
		t.Parallel()

		rec, err := LastRecord(filepath.Join(t.TempDir(), "absent.jsonl"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec != nil {
			t.Errorf("expected nil record, got %+v", rec)
		}
	})

	t.Run("empty file means no cursor", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "empty.jsonl")
		if err := os.WriteFile(path, nil, 0600); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}

		rec, err := LastRecord(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec != nil {
			t.Errorf("expected nil record, got %+v", rec)
		}
	})

	t.Run("returns final record", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "MT.jsonl")
		content := `{"url":"https://a/","state":"MT","path":"","title":"","univ_cite":false,"citation":null,"content":"","lex_path":[0,0]}
{"url":"https://b/","state":"MT","path":"","title":"","univ_cite":false,"citation":null,"content":"","lex_path":[2,1,3]}
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write dataset: %v", err)
		}

		rec, err := LastRecord(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec == nil {
			t.Fatal("expected a record")
		}
		if !rec.LexPath.Equal(model.LexPath{2, 1, 3}) {
			t.Errorf("expected lex_path [2 1 3], got %s", rec.LexPath)
		}
	})

	t.Run("single line without trailing newline", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "one.jsonl")
		line := `{"url":"https://a/","state":"MT","path":"","title":"","univ_cite":false,"citation":null,"content":"","lex_path":[5]}`
		if err := os.WriteFile(path, []byte(line), 0600); err != nil {
			t.Fatalf("failed to write dataset: %v", err)
		}

		rec, err := LastRecord(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec == nil || !rec.LexPath.Equal(model.LexPath{5}) {
			t.Errorf("expected lex_path [5], got %+v", rec)
		}
	})

	t.Run("last line larger than one chunk", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "big.jsonl")
		big := `{"url":"https://a/","state":"MT","path":"","title":"","univ_cite":false,"citation":null,"content":"` +
			strings.Repeat("x", 10000) + `","lex_path":[1,2]}` + "\n"
		if err := os.WriteFile(path, []byte(`{"url":"https://z/","state":"MT","path":"","title":"","univ_cite":false,"citation":null,"content":"","lex_path":[0]}`+"\n"+big), 0600); err != nil {
			t.Fatalf("failed to write dataset: %v", err)
		}

		rec, err := LastRecord(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec == nil || !rec.LexPath.Equal(model.LexPath{1, 2}) {
			t.Errorf("expected lex_path [1 2], got %+v", rec)
		}
	})

	t.Run("torn tail yields last complete record", func(t *testing.T) {
		t.Parallel()

		// A crash mid-write leaves a prefix of the next record with no
		// trailing newline. The cursor must come from the record before it.
		path := filepath.Join(t.TempDir(), "torn.jsonl")
		content := `{"url":"https://a/","state":"MT","path":"","title":"","univ_cite":false,"citation":null,"content":"","lex_path":[0,0]}
{"url":"https://b/","state":"MT","path":"","title":"","univ_cite":false,"citation":null,"content":"","lex_path":[0,1]}
{"url":"https://c/","state":"MT","pa`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write dataset: %v", err)
		}

		rec, err := LastRecord(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec == nil {
			t.Fatal("expected a record despite the torn tail")
		}
		if !rec.LexPath.Equal(model.LexPath{0, 1}) {
			t.Errorf("expected lex_path [0 1], got %s", rec.LexPath)
		}
	})

	t.Run("only a torn line means no cursor", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "torn-only.jsonl")
		if err := os.WriteFile(path, []byte(`{"url":"https://a/","st`), 0600); err != nil {
			t.Fatalf("failed to write dataset: %v", err)
		}

		rec, err := LastRecord(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec != nil {
			t.Errorf("expected nil record, got %+v", rec)
		}
	})
}

// TestFailureLog tests lazy creation and appends.
func TestFailureLog(t *testing.T) {
	t.Parallel()

	t.Run("no file until first failure", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "failed_MT.jsonl")
		var mu sync.Mutex

		l := NewFailureLog(path, &mu)
		defer l.Close() //nolint:errcheck

		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("expected no file before first append")
		}

		if err := l.Append(model.FailureEntry{URL: "https://x/", LexPath: model.LexPath{1, 2}, Error: "HTTP 503"}); err != nil {
			t.Fatalf("failed to append: %v", err)
		}
		if err := l.Append(model.FailureEntry{URL: "https://y/", Error: "timeout"}); err != nil {
			t.Fatalf("failed to append: %v", err)
		}

		if l.Count() != 2 {
			t.Errorf("expected 2 failures, got %d", l.Count())
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read log: %v", err)
		}
		lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
		if len(lines) != 2 {
			t.Errorf("expected 2 log lines, got %d", len(lines))
		}
		if !strings.Contains(lines[0], `"lex_path":[1,2]`) {
			t.Errorf("expected lex_path in entry, got %s", lines[0])
		}
	})
}
