package llm

import (
	"bytes"
	"strings"
)

// lineBuffer reassembles complete lines from arbitrarily chunked reads.
// Splitting happens at the byte level, so a read boundary inside a multi-byte
// rune never corrupts the decoded text. An unterminated trailing partial line
// is simply never emitted, which mirrors the completions API: the stream ends
// with a sentinel on its own line, so a dangling partial carries no event.
type lineBuffer struct {
	rem []byte
}

// feed appends a raw chunk and returns every line completed by it, with the
// line terminator (and any preceding \r) stripped.
func (b *lineBuffer) feed(p []byte) []string {
	b.rem = append(b.rem, p...)

	var lines []string
	for {
		i := bytes.IndexByte(b.rem, '\n')
		if i < 0 {
			return lines
		}
		line := strings.TrimSuffix(string(b.rem[:i]), "\r")
		b.rem = b.rem[i+1:]
		lines = append(lines, line)
	}
}

// pending reports how many buffered bytes are waiting for a terminator.
func (b *lineBuffer) pending() int {
	return len(b.rem)
}
