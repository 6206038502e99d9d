package spill

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	corespill "github.com/kilianp07/cakeday/core/spill"
)

// JSONLStore keeps spill records as JSON lines in a uniquely named file.
// Each Append opens the file, writes the whole chunk and closes it again, so
// completed chunks are on disk even if a later one fails.
type JSONLStore struct {
	path string
	mu   sync.Mutex
}

// NewJSONLStore creates an empty spill file in dir. An empty dir means the
// system temp directory.
func NewJSONLStore(dir string) (*JSONLStore, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, "cakeday-spill-"+uuid.NewString()+".jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	if cerr := f.Close(); cerr != nil {
		_ = os.Remove(path)
		return nil, cerr
	}
	return &JSONLStore{path: path}, nil
}

func (s *JSONLStore) Path() string { return s.path }

func (s *JSONLStore) Append(ctx context.Context, recs []corespill.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return corespill.IOError("open for append", err)
	}
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, r := range recs {
		if err := enc.Encode(r); err != nil {
			_ = f.Close()
			return corespill.IOError("encode record", err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return corespill.IOError("flush", err)
	}
	if err := f.Close(); err != nil {
		return corespill.IOError("close", err)
	}
	return nil
}

func (s *JSONLStore) Scan(ctx context.Context, fn func(corespill.Record) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.Open(s.path)
	if err != nil {
		return corespill.IOError("open for read", err)
	}
	defer func() { _ = f.Close() }()
	dec := json.NewDecoder(bufio.NewReader(f))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var r corespill.Record
		if err := dec.Decode(&r); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return corespill.IOError("decode record", err)
		}
		if err := fn(r); err != nil {
			return err
		}
	}
}

func (s *JSONLStore) Remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return corespill.IOError("remove", err)
	}
	return nil
}
