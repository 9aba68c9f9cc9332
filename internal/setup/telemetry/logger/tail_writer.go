package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TailWriter is a log file writer that keeps the file bounded to roughly the
// most recent maxLines lines. Lines are tracked as they pass through; once
// twice the bound has accumulated, the file is compacted down to the newest
// maxLines in a single rewrite, so compaction cost stays amortized.
type TailWriter struct {
	mu       sync.Mutex
	file     *os.File
	path     string
	maxLines int
	tail     []string // most recent lines, oldest first
}

// NewTailWriter opens or creates the log file at path and bounds it to
// maxLines lines. A non-positive bound disables compaction.
func NewTailWriter(path string, maxLines int) (*TailWriter, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cannot open log file %s: %w", path, err)
	}

	return &TailWriter{
		file:     file,
		path:     path,
		maxLines: maxLines,
		tail:     make([]string, 0, max(maxLines*2, 1)),
	}, nil
}

// Write appends to the log file and compacts it once it holds twice the
// line bound.
func (w *TailWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.file.Write(p)
	if err != nil {
		return n, err
	}

	for line := range strings.SplitSeq(strings.TrimRight(string(p), "\n"), "\n") {
		if line == "" {
			continue
		}

		w.tail = append(w.tail, line)
	}

	if w.maxLines > 0 && len(w.tail) >= w.maxLines*2 {
		if err := w.compact(); err != nil {
			return n, fmt.Errorf("failed to compact log file: %w", err)
		}
	}

	return n, nil
}

// Sync flushes the underlying file. Satisfies zapcore.WriteSyncer.
func (w *TailWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.file.Sync()
}

// Close flushes and closes the underlying file.
func (w *TailWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.file.Close()
}

// compact rewrites the file with only the newest maxLines lines. The rewrite
// goes through a temp file in the same directory, so a crash mid-compaction
// leaves either the old or the new file, never a torn one.
func (w *TailWriter) compact() error {
	keep := w.tail[len(w.tail)-w.maxLines:]

	temp, err := os.CreateTemp(filepath.Dir(w.path), "compact-log-")
	if err != nil {
		return err
	}

	tempPath := temp.Name()

	if _, err := temp.WriteString(strings.Join(keep, "\n") + "\n"); err != nil {
		temp.Close()
		os.Remove(tempPath)

		return err
	}

	if err := temp.Sync(); err != nil {
		temp.Close()
		os.Remove(tempPath)

		return err
	}

	temp.Close()
	w.file.Close()

	// Windows requires the destination to be absent before rename
	os.Remove(w.path)

	if err := os.Rename(tempPath, w.path); err != nil {
		return err
	}

	file, err := os.OpenFile(w.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	w.file = file
	w.tail = append(w.tail[:0], keep...)

	return nil
}
