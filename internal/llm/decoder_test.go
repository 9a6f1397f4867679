package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineBufferFeed(t *testing.T) {
	t.Run("single complete line", func(t *testing.T) {
		var b lineBuffer
		lines := b.feed([]byte("hello\n"))
		assert.Equal(t, []string{"hello"}, lines)
		assert.Equal(t, 0, b.pending())
	})

	t.Run("multiple lines in one chunk", func(t *testing.T) {
		var b lineBuffer
		lines := b.feed([]byte("one\ntwo\nthree\n"))
		assert.Equal(t, []string{"one", "two", "three"}, lines)
	})

	t.Run("crlf terminators stripped", func(t *testing.T) {
		var b lineBuffer
		lines := b.feed([]byte("one\r\ntwo\r\n"))
		assert.Equal(t, []string{"one", "two"}, lines)
	})

	t.Run("partial line retained across feeds", func(t *testing.T) {
		var b lineBuffer
		assert.Empty(t, b.feed([]byte("hel")))
		assert.Equal(t, 3, b.pending())

		lines := b.feed([]byte("lo\nwor"))
		assert.Equal(t, []string{"hello"}, lines)
		assert.Equal(t, 3, b.pending())

		lines = b.feed([]byte("ld\n"))
		assert.Equal(t, []string{"world"}, lines)
		assert.Equal(t, 0, b.pending())
	})

	t.Run("chunk boundary inside a multi-byte rune", func(t *testing.T) {
		// "héllo\n" with the split falling between the two bytes of é.
		raw := []byte("h\xc3\xa9llo\n")
		var b lineBuffer
		assert.Empty(t, b.feed(raw[:2]))
		lines := b.feed(raw[2:])
		assert.Equal(t, []string{"héllo"}, lines)
	})

	t.Run("byte at a time reassembles identically", func(t *testing.T) {
		input := "data: {\"a\":1}\n\ndata: [DONE]\n"
		var whole, byByte lineBuffer
		wholeLines := whole.feed([]byte(input))

		var lines []string
		for i := 0; i < len(input); i++ {
			lines = append(lines, byByte.feed([]byte{input[i]})...)
		}
		assert.Equal(t, wholeLines, lines)
	})

	t.Run("empty lines preserved", func(t *testing.T) {
		var b lineBuffer
		lines := b.feed([]byte("\n\n"))
		assert.Equal(t, []string{"", ""}, lines)
	})

	t.Run("trailing partial is never emitted", func(t *testing.T) {
		var b lineBuffer
		lines := b.feed([]byte("complete\ndangling"))
		assert.Equal(t, []string{"complete"}, lines)
		assert.Equal(t, len("dangling"), b.pending())
	})
}
