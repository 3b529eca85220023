package fsutil

// binarySampleSize matches git's heuristic of scanning the first 8000 bytes.
const binarySampleSize = 8000

// IsBinary reports whether content looks binary: a NUL byte in the sample
// that is not explained by a UTF-16 or UTF-32 byte order mark.
func IsBinary(content []byte) bool {
	if len(content) >= 4 {
		if (content[0] == 0xFF && content[1] == 0xFE && content[2] == 0x00 && content[3] == 0x00) ||
			(content[0] == 0x00 && content[1] == 0x00 && content[2] == 0xFE && content[3] == 0xFF) {
			return false
		}
	}
	if len(content) >= 2 {
		if (content[0] == 0xFF && content[1] == 0xFE) || (content[0] == 0xFE && content[1] == 0xFF) {
			return false
		}
	}

	n := min(len(content), binarySampleSize)
	for i := range n {
		if content[i] == 0 {
			return true
		}
	}
	return false
}

// SplitLines splits on \n and \r\n without the line endings.
// A trailing newline does not produce an empty final line.
func SplitLines(content string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(content); i++ {
		switch {
		case content[i] == '\n':
			lines = append(lines, content[start:i])
			start = i + 1
		case content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n':
			lines = append(lines, content[start:i])
			start = i + 2
			i++
		}
	}
	if start < len(content) {
		lines = append(lines, content[start:])
	}
	return lines
}

// Truncate shortens s to max bytes, marking the cut.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "... [truncated]"
}
