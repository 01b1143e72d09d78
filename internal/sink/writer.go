package sink

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/legalcorpora/regcrawl/internal/model"
)

// Writer appends Records to the jurisdiction's JSONL dataset.
// One write call per leaf, serialized under the shared run lock.
type Writer struct {
	// mu is the crawl run's shared lock. It also guards the visited set,
	// so a record append and its visited-set insert cannot interleave.
	mu *sync.Mutex

	f     *os.File
	count int
}

// NewWriter opens the dataset at path. When appendMode is true, prior
// records are preserved and new ones appended (resume); otherwise the file
// is truncated for a fresh run. Parent directories are created as needed.
//
// Append mode first drops a torn partial line left by a crash mid-write, so
// the first appended record cannot concatenate onto it. Complete records
// always end with a newline; a tail without one is never a whole record.
func NewWriter(path string, appendMode bool, mu *sync.Mutex) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	if appendMode {
		if err := dropTornTail(path); err != nil {
			return nil, fmt.Errorf("failed to repair dataset tail: %w", err)
		}
	}

	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0644) //nolint:gosec // Dataset is world-readable by design
	if err != nil {
		return nil, fmt.Errorf("failed to open output sink: %w", err)
	}

	return &Writer{mu: mu, f: f}, nil
}

// Write appends one record as a JSON line. The write and flush happen under
// the shared lock; the critical section is a single marshal-free file write.
func (w *Writer) Write(rec *model.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	data = append(data, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.f.Write(data); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	if err := w.f.Sync(); err != nil {
		return fmt.Errorf("failed to flush record: %w", err)
	}
	w.count++
	return nil
}

// Count returns the number of records written by this Writer.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Close closes the underlying file.
func (w *Writer) Close() error {
	return w.f.Close()
}

// LastRecord reads the final complete record from a prior run's dataset.
// It returns (nil, nil) when the file does not exist, is empty, or holds no
// parseable record at all; callers treat that as "no resume cursor".
//
// A crash mid-write leaves a torn partial line at the tail. Resume must
// recover the record before it, never refuse or restart, so LastRecord
// walks backwards past unparseable trailing lines until a record parses.
//
// Design decision: We read backwards from the end rather than scanning the
// whole file because datasets reach hundreds of megabytes and resume only
// needs the tail.
func LastRecord(path string) (*model.Record, error) {
	f, err := os.Open(path) //nolint:gosec // Reading our own dataset path
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close() //nolint:errcheck // Read-only file

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	scanner := &backwardScanner{f: f, offset: info.Size()}
	for {
		line, err := scanner.prev()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		line = trimCR(line)
		if len(line) == 0 {
			continue
		}

		var rec model.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		return &rec, nil
	}
}

// backwardScanner yields a file's lines last-to-first, reading in chunks
// from the end. Lines are returned without their newline; the scanner
// returns io.EOF once the file start has been passed.
type backwardScanner struct {
	f      *os.File
	offset int64
	buf    []byte
	done   bool
}

func (s *backwardScanner) prev() ([]byte, error) {
	const chunk = 4096

	for {
		if i := bytes.LastIndexByte(s.buf, '\n'); i >= 0 {
			line := s.buf[i+1:]
			s.buf = s.buf[:i]
			return line, nil
		}
		if s.offset == 0 {
			if s.done {
				return nil, io.EOF
			}
			s.done = true
			return s.buf, nil
		}

		step := int64(chunk)
		if step > s.offset {
			step = s.offset
		}
		s.offset -= step

		part := make([]byte, step)
		if _, err := s.f.ReadAt(part, s.offset); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		s.buf = append(part, s.buf...)
	}
}

func trimCR(b []byte) []byte {
	for len(b) > 0 && b[len(b)-1] == '\r' {
		b = b[:len(b)-1]
	}
	return b
}

// dropTornTail truncates a torn partial line off the end of the dataset.
// Every complete record write ends with a newline, so any bytes after the
// last newline are the remains of an interrupted write. A missing file is
// fine; there is nothing to repair.
func dropTornTail(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0644) //nolint:gosec // Repairing our own dataset path
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close() //nolint:errcheck // Truncate is synced below

	info, err := f.Stat()
	if err != nil {
		return err
	}
	size := info.Size()
	if size == 0 {
		return nil
	}

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, size-1); err != nil {
		return err
	}
	if last[0] == '\n' {
		return nil
	}

	end, err := lastNewlineOffset(f, size)
	if err != nil {
		return err
	}
	if err := f.Truncate(end); err != nil {
		return err
	}
	return f.Sync()
}

// lastNewlineOffset returns the offset just past the final newline in f,
// or 0 when the file contains none.
func lastNewlineOffset(f *os.File, size int64) (int64, error) {
	const chunk = 4096

	offset := size
	for offset > 0 {
		step := int64(chunk)
		if step > offset {
			step = offset
		}
		offset -= step

		part := make([]byte, step)
		if _, err := f.ReadAt(part, offset); err != nil && !errors.Is(err, io.EOF) {
			return 0, err
		}
		if i := bytes.LastIndexByte(part, '\n'); i >= 0 {
			return offset + int64(i) + 1, nil
		}
	}
	return 0, nil
}

// LoadRecords reads every record from a dataset, skipping blank lines.
// The verifier uses this; the crawl path never reads its own output except
// for the final line.
func LoadRecords(path string) ([]model.Record, error) {
	f, err := os.Open(path) //nolint:gosec // Reading our own dataset path
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck // Read-only file

	var records []model.Record
	scanner := bufio.NewScanner(f)
	// Regulation bodies run long; give the scanner room.
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec model.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("failed to parse record %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
