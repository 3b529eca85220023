package shell

import (
	"bytes"

	"github.com/Cyclone1070/terminus/internal/tool/fsutil"
)

// binaryPlaceholder replaces a stream that turned out to be binary.
const binaryPlaceholder = "[binary output]"

// collector keeps the first maxBytes of a stream. The first sampleSize bytes are
// sniffed; binary content discards everything captured so far and the rest of the stream.
type collector struct {
	buf      bytes.Buffer
	maxBytes int

	sniffLeft int
	binary    bool
	truncated bool
}

func newCollector(maxBytes, sampleSize int) *collector {
	return &collector{maxBytes: maxBytes, sniffLeft: sampleSize}
}

// Write always reports len(p) so the copier keeps draining the pipe.
func (c *collector) Write(p []byte) (int, error) {
	n := len(p)
	if c.binary {
		return n, nil
	}

	if c.sniffLeft > 0 {
		head := p[:min(n, c.sniffLeft)]
		c.sniffLeft -= len(head)
		if fsutil.IsBinary(head) {
			c.binary, c.truncated = true, true
			c.buf.Reset()
			return n, nil
		}
	}

	room := c.maxBytes - c.buf.Len()
	if n > room {
		c.truncated = c.truncated || n > 0
		p = p[:max(room, 0)]
	}
	if _, err := c.buf.Write(p); err != nil {
		return 0, err
	}
	return n, nil
}

func (c *collector) String() string {
	if c.binary {
		return binaryPlaceholder
	}
	return c.buf.String()
}

func (c *collector) Truncated() bool {
	return c.truncated
}
