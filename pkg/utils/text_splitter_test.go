package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		chunkSize int
		overlap   int
		want      []string
	}{
		{name: "short text is one chunk", text: "bail", chunkSize: 10, overlap: 2, want: []string{"bail"}},
		{name: "breaks on whitespace", text: "aaaa bbbb cccc", chunkSize: 10, overlap: 0, want: []string{"aaaa bbbb ", "cccc"}},
		{name: "hard cut without whitespace", text: "abcdefghij", chunkSize: 4, overlap: 0, want: []string{"abcd", "efgh", "ij"}},
		{name: "overlap repeats the tail", text: "abcdefgh", chunkSize: 4, overlap: 2, want: []string{"abcd", "cdef", "efgh"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitText(tt.text, tt.chunkSize, tt.overlap))
		})
	}
}

func TestSplitText_CountsRunes(t *testing.T) {
	text := strings.Repeat("é", 12)
	chunks := SplitText(text, 5, 0)
	assert.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 5)
	}
}
