/*
Package flatfile provides the default on-disk LineStore: one text file per
log, one record per newline-terminated line, no header.

DURABILITY:
  Every operation opens the file, does its work, fsyncs and closes. Nothing
  is buffered between calls, so each append is on disk before the next
  date is fetched.

REMOVE LAST:
  The file is truncated to the start of its final line. This is the only
  operation that shortens a log.

LAYOUT:
  <dir>/mfpcl.dat   calories
  <dir>/mfpwt.dat   weight
  <dir>/st_rn.dat   runs

SEE ALSO:
  - generic/store.go: LineStore contract
*/
package flatfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tjwilli6/Fitness/generic"
)

// Dir is a directory of log files.
type Dir struct {
	Path string
}

func New(path string) *Dir {
	return &Dir{Path: path}
}

// Log returns the LineStore backed by <dir>/<name>.
func (d *Dir) Log(name string) generic.LineStore {
	return &File{Path: filepath.Join(d.Path, name)}
}

// File is a single log file.
type File struct {
	Path string
}

func (f *File) Name() string { return filepath.Base(f.Path) }

// Append writes line plus a newline and fsyncs.
func (f *File) Append(_ context.Context, line string) error {
	if strings.ContainsAny(line, "\r\n") {
		return fmt.Errorf("line contains a newline: %q", line)
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	fh, err := os.OpenFile(f.Path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	// a hand-edited file may lack its final newline
	terminated, err := endsWithNewline(fh)
	if err != nil {
		fh.Close()
		return fmt.Errorf("failed to read log: %w", err)
	}
	if !terminated {
		line = "\n" + line
	}
	if _, err := fh.WriteString(line + "\n"); err != nil {
		fh.Close()
		return fmt.Errorf("failed to write log: %w", err)
	}
	if err := fh.Sync(); err != nil {
		fh.Close()
		return fmt.Errorf("failed to sync log: %w", err)
	}
	return fh.Close()
}

// endsWithNewline is true for an empty file or one whose last byte is '\n'.
func endsWithNewline(fh *os.File) (bool, error) {
	info, err := fh.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return true, nil
	}
	last := make([]byte, 1)
	if _, err := fh.ReadAt(last, info.Size()-1); err != nil {
		return false, err
	}
	return last[0] == '\n', nil
}

// ReadAll returns every line. A missing file reads as an empty log.
func (f *File) ReadAll(_ context.Context) ([]string, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}
	return splitLines(data), nil
}

// RemoveLast truncates the file to the start of its final line.
func (f *File) RemoveLast(_ context.Context) (string, error) {
	fh, err := os.OpenFile(f.Path, os.O_RDWR, 0)
	if errors.Is(err, os.ErrNotExist) {
		return "", generic.ErrEmptyLog
	}
	if err != nil {
		return "", fmt.Errorf("failed to open log: %w", err)
	}
	defer fh.Close()

	data, err := io.ReadAll(fh)
	if err != nil {
		return "", fmt.Errorf("failed to read log: %w", err)
	}
	body := bytes.TrimRight(data, "\n")
	if len(body) == 0 {
		return "", generic.ErrEmptyLog
	}

	cut := bytes.LastIndexByte(body, '\n') + 1
	last := strings.TrimSuffix(string(body[cut:]), "\r")

	if err := fh.Truncate(int64(cut)); err != nil {
		return "", fmt.Errorf("failed to truncate log: %w", err)
	}
	if err := fh.Sync(); err != nil {
		return "", fmt.Errorf("failed to sync log: %w", err)
	}
	return last, nil
}

// Exists reports whether the file holds at least one line.
func (f *File) Exists(ctx context.Context) (bool, error) {
	lines, err := f.ReadAll(ctx)
	if err != nil {
		return false, err
	}
	return len(lines) > 0, nil
}

func splitLines(data []byte) []string {
	body := strings.TrimRight(string(data), "\n")
	if body == "" {
		return nil
	}
	lines := strings.Split(body, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
