// Package chunker splits source text into fixed-size overlapping windows.
package chunker

import (
	"fmt"
	"iter"
	"slices"
	"unicode/utf8"

	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
)

// Chunk returns the windows [i, i+size) of text, advancing i by size-overlap, and
// stops after the first window that reaches the end of the text. The sequence is
// lazy and every range over it starts again from offset 0.
//
// Offsets are byte offsets; a window end that would split a multi-byte rune is
// moved back to the rune start.
func Chunk(text string, size, overlap int) (iter.Seq[string], error) {
	if size <= 0 || overlap < 0 || size <= overlap {
		return nil, fmt.Errorf("%w: chunk size must be > overlap >= 0 (size=%d overlap=%d)",
			commonModels.ErrInvalidArgument, size, overlap)
	}

	return func(yield func(string) bool) {
		n := len(text)
		start := 0
		for start < n {
			end := start + size
			if end >= n {
				yield(text[start:])
				return
			}
			end = runeFloor(text, end)
			if end <= start {
				_, width := utf8.DecodeRuneInString(text[start:])
				end = start + width
			}
			if !yield(text[start:end]) {
				return
			}

			next := runeFloor(text, end-overlap)
			if next <= start {
				next = end
			}
			start = next
		}
	}, nil
}

// Collect materialises Chunk.
func Collect(text string, size, overlap int) ([]string, error) {
	seq, err := Chunk(text, size, overlap)
	if err != nil {
		return nil, err
	}
	return slices.Collect(seq), nil
}

// Count is the number of windows Chunk yields for a text of length n.
func Count(n, size, overlap int) int {
	if n == 0 {
		return 0
	}
	if n <= size {
		return 1
	}
	step := size - overlap
	return (n - overlap + step - 1) / step
}

func runeFloor(text string, i int) int {
	for i > 0 && i < len(text) && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}
