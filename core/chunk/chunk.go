// Package chunk splits work into bounded batches. It is the single memory
// bounding mechanism used both for in-memory sub-batching and for consuming
// lazy record streams.
package chunk

import (
	"errors"
	"iter"
)

// ErrInvalidSize is returned when a chunk size is not positive.
var ErrInvalidSize = errors.New("chunk size must be positive")

// Slice splits items into consecutive sub-slices of at most size elements.
// The returned sub-slices alias items.
func Slice[T any](items []T, size int) ([][]T, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end:end])
	}
	return out, nil
}

// Exceeds reports whether n items need splitting under ceiling.
func Exceeds(n, ceiling int) bool {
	return ceiling > 0 && n > ceiling
}

// Seq groups a lazy sequence into chunks of at most size elements. Only one
// chunk is held at a time. The first error from seq is yielded with the
// pending partial chunk discarded, and iteration stops.
func Seq[T any](seq iter.Seq2[T, error], size int) iter.Seq2[[]T, error] {
	return func(yield func([]T, error) bool) {
		if size <= 0 {
			yield(nil, ErrInvalidSize)
			return
		}
		buf := make([]T, 0, size)
		for item, err := range seq {
			if err != nil {
				yield(nil, err)
				return
			}
			buf = append(buf, item)
			if len(buf) == size {
				if !yield(buf, nil) {
					return
				}
				buf = make([]T, 0, size)
			}
		}
		if len(buf) > 0 {
			yield(buf, nil)
		}
	}
}
