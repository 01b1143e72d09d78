package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/legalcorpora/regcrawl/internal/model"
)

// FailureLog appends FailureEntry lines to the jurisdiction's failure log.
// The file is opened lazily on the first failure so clean runs leave no
// empty log behind; the run summary treats an absent file as zero failures.
type FailureLog struct {
	mu    *sync.Mutex
	path  string
	f     *os.File
	count int
}

// NewFailureLog creates a failure log writing to path under the shared run
// lock. No file is created until the first Append.
func NewFailureLog(path string, mu *sync.Mutex) *FailureLog {
	return &FailureLog{mu: mu, path: path}
}

// Append writes one failure entry. Append errors are returned for the caller
// to log; a failure to log a failure must never abort the run.
func (l *FailureLog) Append(entry model.FailureEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal failure entry: %w", err)
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.f == nil {
		if err := os.MkdirAll(filepath.Dir(l.path), 0750); err != nil {
			return fmt.Errorf("failed to create failure log directory: %w", err)
		}
		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644) //nolint:gosec // same permissions as the dataset files
		if err != nil {
			return fmt.Errorf("failed to open failure log: %w", err)
		}
		l.f = f
	}

	if _, err := l.f.Write(data); err != nil {
		return fmt.Errorf("failed to write failure entry: %w", err)
	}
	l.count++
	return nil
}

// Count returns the number of failures logged.
func (l *FailureLog) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// Close closes the log file if one was opened.
func (l *FailureLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	return l.f.Close()
}

// LoadFailures reads every entry from a failure log file. An absent file
// means a clean run and yields no entries.
func LoadFailures(path string) ([]model.FailureEntry, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from run configuration
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open failure log: %w", err)
	}
	defer f.Close()

	var entries []model.FailureEntry
	dec := json.NewDecoder(f)
	for dec.More() {
		var entry model.FailureEntry
		if err := dec.Decode(&entry); err != nil {
			return nil, fmt.Errorf("failed to parse failure entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
