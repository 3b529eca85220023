package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollector(t *testing.T) {
	t.Run("under limit", func(t *testing.T) {
		c := newCollector(10, 5)
		n, err := c.Write([]byte("abc"))
		assert.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Equal(t, "abc", c.String())
		assert.False(t, c.Truncated())
	})

	t.Run("over limit", func(t *testing.T) {
		c := newCollector(5, 5)
		n, _ := c.Write([]byte("abcdef"))
		assert.Equal(t, 6, n)
		assert.Equal(t, "abcde", c.String())
		assert.True(t, c.Truncated())
	})

	t.Run("binary", func(t *testing.T) {
		c := newCollector(10, 5)
		_, _ = c.Write([]byte{'a', 0, 'b'})
		_, _ = c.Write([]byte("more"))
		assert.Equal(t, binaryPlaceholder, c.String())
		assert.True(t, c.Truncated())
	})

	t.Run("NUL past the sample is kept", func(t *testing.T) {
		c := newCollector(20, 2)
		_, _ = c.Write([]byte("ab"))
		_, _ = c.Write([]byte{'c', 0})
		assert.Equal(t, "abc\x00", c.String())
	})
}
