package store

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cwbudde/randopt/internal/experiment"
)

// TraceEntry is one finished optimizer run.
// Each entry is serialized as a JSON line in trace.jsonl.
type TraceEntry struct {
	Problem   string `json:"problem"`
	Sweep     string `json:"sweep"` // optimizations or performances
	Label     string `json:"label"` // configuration, e.g. "GA pop_size=300"
	Seed      int64  `json:"seed"`
	Algorithm string `json:"algorithm"`

	BestFitness float64   `json:"bestFitness"`
	BestState   []int     `json:"bestState,omitempty"`
	Iterations  int       `json:"iterations"`
	Evaluations int       `json:"evaluations"`
	ElapsedMS   float64   `json:"elapsedMs"`
	Curve       []float64 `json:"curve,omitempty"`

	// Timestamp records when the run finished
	Timestamp time.Time `json:"timestamp"`
}

// NewTraceEntry converts a finished experiment run of problem into a trace entry.
func NewTraceEntry(problem string, run experiment.Run) TraceEntry {
	res := run.Result
	return TraceEntry{
		Problem:     problem,
		Sweep:       run.Sweep,
		Label:       run.Label,
		Seed:        run.Seed,
		Algorithm:   res.Algorithm,
		BestFitness: res.BestFitness,
		BestState:   res.BestState,
		Iterations:  res.Iterations,
		Evaluations: res.Evaluations,
		ElapsedMS:   float64(res.Elapsed.Microseconds()) / 1000,
		Curve:       res.Curve,
		Timestamp:   time.Now(),
	}
}

// TraceWriter writes trace entries to a JSONL file.
// It uses buffered I/O for performance and is safe for concurrent use.
type TraceWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	path   string
}

// NewTraceWriter creates the trace of a run at
// <baseDir>/runs/<runID>/trace.jsonl, replacing any earlier one.
func NewTraceWriter(baseDir, runID string) (*TraceWriter, error) {
	dir := runDir(baseDir, runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}

	path := tracePath(baseDir, runID)
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace file: %w", err)
	}

	return &TraceWriter{
		file:   file,
		writer: bufio.NewWriterSize(file, 64*1024),
		path:   path,
	}, nil
}

// Write appends a trace entry to the file.
// The entry is buffered and will be written on Flush() or Close().
func (tw *TraceWriter) Write(entry TraceEntry) error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	// Serialize to JSON
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal trace entry: %w", err)
	}

	// Write JSON line
	if _, err := tw.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write trace entry: %w", err)
	}

	// Write newline
	if err := tw.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

// Flush writes any buffered data to the file.
func (tw *TraceWriter) Flush() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if err := tw.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush trace writer: %w", err)
	}

	// Also sync to disk for durability
	if err := tw.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync trace file: %w", err)
	}

	return nil
}

// Close flushes buffered data and closes the trace file.
func (tw *TraceWriter) Close() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	// Flush buffer first
	if err := tw.writer.Flush(); err != nil {
		tw.file.Close() // Try to close anyway
		return fmt.Errorf("failed to flush on close: %w", err)
	}

	// Close file
	if err := tw.file.Close(); err != nil {
		return fmt.Errorf("failed to close trace file: %w", err)
	}

	return nil
}

// Path returns the filesystem path to the trace file.
func (tw *TraceWriter) Path() string {
	return tw.path
}

// TraceFilter selects trace entries. Empty fields match everything.
type TraceFilter struct {
	Problem string // plot name, e.g. "Four Peaks"
	Sweep   string // experiment.SweepOptimizations or experiment.SweepPerformances
}

// Match reports whether e passes the filter. Problems compare
// case-insensitively.
func (f TraceFilter) Match(e TraceEntry) bool {
	if f.Problem != "" && !strings.EqualFold(f.Problem, e.Problem) {
		return false
	}
	return f.Sweep == "" || f.Sweep == e.Sweep
}

// TraceReader streams the entries of a run's trace.
type TraceReader struct {
	file    *os.File
	scanner *bufio.Scanner
	line    int
	filter  TraceFilter
}

// NewTraceReader opens the trace of runID. Returns ErrNotFound if the run
// has no trace.
func NewTraceReader(baseDir, runID string) (*TraceReader, error) {
	file, err := os.Open(tracePath(baseDir, runID))
	if os.IsNotExist(err) {
		return nil, &NotFoundError{RunID: runID}
	} else if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}

	scanner := bufio.NewScanner(file)
	// Curves of long runs make long lines.
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	return &TraceReader{file: file, scanner: scanner}, nil
}

// Filter restricts Next and ReadAll to entries matching f.
func (tr *TraceReader) Filter(f TraceFilter) *TraceReader {
	tr.filter = f
	return tr
}

// Next returns the next matching entry, or io.EOF at the end of the trace.
// Blank lines are skipped; a malformed line is an error naming its number.
func (tr *TraceReader) Next() (TraceEntry, error) {
	for tr.scanner.Scan() {
		tr.line++
		line := tr.scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var entry TraceEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return TraceEntry{}, fmt.Errorf("trace line %d: %w", tr.line, err)
		}
		if tr.filter.Match(entry) {
			return entry, nil
		}
	}
	if err := tr.scanner.Err(); err != nil {
		return TraceEntry{}, fmt.Errorf("trace line %d: %w", tr.line+1, err)
	}
	return TraceEntry{}, io.EOF
}

// ReadAll returns every remaining matching entry in file order.
func (tr *TraceReader) ReadAll() ([]TraceEntry, error) {
	var entries []TraceEntry
	for {
		entry, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
}

// Close closes the trace file.
func (tr *TraceReader) Close() error {
	if err := tr.file.Close(); err != nil {
		return fmt.Errorf("failed to close trace file: %w", err)
	}
	return nil
}

func tracePath(baseDir, runID string) string {
	return filepath.Join(runDir(baseDir, runID), "trace.jsonl")
}
