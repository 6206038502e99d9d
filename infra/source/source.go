// Package source reads people from line-oriented text: one
// "name,yyyy-mm-dd" record per line. Blank lines and lines starting with '#'
// are skipped.
package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"
	"time"

	"github.com/kilianp07/cakeday/core/model"
)

// ErrMalformedRecord marks an input line that is not a valid person record.
var ErrMalformedRecord = errors.New("malformed record")

// ErrInvalidInput marks an input file that cannot be processed.
var ErrInvalidInput = errors.New("invalid input file")

const maxLineBytes = 1 << 20

// ParseLine parses one "name,yyyy-mm-dd" record.
func ParseLine(line string) (model.Person, error) {
	name, date, ok := strings.Cut(line, ",")
	if !ok {
		return model.Person{}, fmt.Errorf("%w: expected name,yyyy-mm-dd: %q", ErrMalformedRecord, line)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Person{}, fmt.Errorf("%w: empty name", ErrMalformedRecord)
	}
	date = strings.TrimSpace(date)
	dob, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return model.Person{}, fmt.Errorf("%w: invalid date %q, expected yyyy-mm-dd", ErrMalformedRecord, date)
	}
	return model.Person{Name: name, DateOfBirth: dob}, nil
}

// Records returns a lazy, single-pass sequence of people read from r. The
// first malformed line or read error is yielded and ends the sequence.
func Records(r io.Reader) iter.Seq2[model.Person, error] {
	return func(yield func(model.Person, error) bool) {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		lineNo := 0
		for sc.Scan() {
			lineNo++
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			p, err := ParseLine(line)
			if err != nil {
				yield(model.Person{}, fmt.Errorf("line %d: %w", lineNo, err))
				return
			}
			if !yield(p, nil) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			yield(model.Person{}, fmt.Errorf("read input: %w", err))
		}
	}
}

// FileInfo describes a validated input file.
type FileInfo struct {
	Path      string
	SizeBytes int64
}

// SizeMB returns the file size in megabytes.
func (f FileInfo) SizeMB() float64 {
	return float64(f.SizeBytes) / 1024 / 1024
}

// Validate checks that path is a readable, non-empty regular file.
func Validate(path string) (FileInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return FileInfo{}, fmt.Errorf("%w: file does not exist: %s", ErrInvalidInput, path)
		}
		return FileInfo{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if st.IsDir() {
		return FileInfo{}, fmt.Errorf("%w: is a directory: %s", ErrInvalidInput, path)
	}
	if st.Size() == 0 {
		return FileInfo{}, fmt.Errorf("%w: file is empty: %s", ErrInvalidInput, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("%w: file is not readable: %s", ErrInvalidInput, path)
	}
	_ = f.Close()
	return FileInfo{Path: path, SizeBytes: st.Size()}, nil
}
