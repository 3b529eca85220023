package fsutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBinary(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		want    bool
	}{
		{"plain text", []byte("hello\nworld"), false},
		{"empty", nil, false},
		{"nul byte", []byte("ab\x00cd"), true},
		{"utf16 bom", []byte{0xFF, 0xFE, 'a', 0x00}, false},
		{"utf32 be bom", []byte{0x00, 0x00, 0xFE, 0xFF, 'a'}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBinary(tt.content))
		})
	}
}

func TestIsBinary_NulPastSample(t *testing.T) {
	content := make([]byte, binarySampleSize+10)
	for i := range content {
		content[i] = 'a'
	}
	content[binarySampleSize+5] = 0

	assert.False(t, IsBinary(content))
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"line1", []string{"line1"}},
		{"a\nb\nc", []string{"a", "b", "c"}},
		{"a\n", []string{"a"}},
		{"", nil},
		{"\n", []string{""}},
		{"a\r\nb\r\n", []string{"a", "b"}},
		{"a\rb", []string{"a\rb"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitLines(tt.input), "input %q", tt.input)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "ab... [truncated]", Truncate("abcdef", 2))
	assert.Equal(t, "abc", Truncate("abc", 0))
}
