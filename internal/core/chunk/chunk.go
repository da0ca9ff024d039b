// Package chunk splits large identifier lists into bounded groups for bulk
// IN (...) lookups. Pure and stateless.
package chunk

import (
	"strconv"
	"strings"
)

// DefaultSize bounds one IN (...) group; driven by query-parameter limits of
// the target store
const DefaultSize = 900

// Split returns successive sublists of xs, each at most size long.
// size <= 0 falls back to DefaultSize. The sublists alias xs.
func Split[T any](xs []T, size int) [][]T {
	if size <= 0 {
		size = DefaultSize
	}
	if len(xs) == 0 {
		return nil
	}
	out := make([][]T, 0, (len(xs)+size-1)/size)
	for start := 0; start < len(xs); start += size {
		end := start + size
		if end > len(xs) {
			end = len(xs)
		}
		out = append(out, xs[start:end])
	}
	return out
}

// Placeholders renders n numbered placeholders starting at start,
// e.g. Placeholders(3, 2) == "$2,$3,$4". Start lets callers reserve leading
// parameters for non-list arguments.
func Placeholders(n, start int) string {
	if n <= 0 {
		return ""
	}
	var sb strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('$')
		sb.WriteString(strconv.Itoa(start + i))
	}
	return sb.String()
}

// Args widens a typed id list into the []any shape Exec/Query take
func Args[T any](xs []T) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}
