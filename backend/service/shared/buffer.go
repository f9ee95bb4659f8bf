package shared

import (
	"errors"
	"fmt"
)

// ErrBufferTooSmall is reported by an enumeration whose output buffer cannot hold every
// entry. The accompanying count is the number of entries required.
var ErrBufferTooSmall = errors.New("buffer too small")

// FetchWithResize runs an enumeration that fills buf and returns the entry count.
//
// The first call probes with a single-entry buffer. If it reports ErrBufferTooSmall the
// buffer is resized to the reported count and the call is repeated exactly once; any other
// failure, on either call, is returned as is.
func FetchWithResize[T any](fetch func(buf []T) (int, error)) ([]T, error) {
	buf := make([]T, 1)
	n, err := fetch(buf)
	if errors.Is(err, ErrBufferTooSmall) {
		if n <= len(buf) {
			return nil, fmt.Errorf("enumeration asked for %d entries: %w", n, err)
		}
		buf = make([]T, n)
		n, err = fetch(buf)
	}
	if err != nil {
		return nil, err
	}
	if n < 0 || n > len(buf) {
		return nil, fmt.Errorf("enumeration returned %d entries for a buffer of %d: %w", n, len(buf), ErrBufferTooSmall)
	}
	return buf[:n], nil
}
