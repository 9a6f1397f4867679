package llm

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
)

const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"
)

// streamDelta is the wire shape of one streamed completion event.
type streamDelta struct {
	Choices []struct {
		Delta struct {
			Content          string             `json:"content"`
			Reasoning        string             `json:"reasoning"`
			ReasoningContent string             `json:"reasoning_content"`
			ToolCalls        []ToolCallFragment `json:"tool_calls"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// reasoning returns the delta's reasoning text regardless of which field name
// the provider uses for it.
func (d *streamDelta) reasoning() string {
	if r := d.Choices[0].Delta.Reasoning; r != "" {
		return r
	}
	return d.Choices[0].Delta.ReasoningContent
}

// errStreamDone signals normal termination of an event stream, either via the
// explicit sentinel or end of transport.
var errStreamDone = errors.New("stream done")

// eventScanner extracts structured delta events from a raw SSE byte stream.
// It is a lazy, finite, single-use sequence for exactly one provider turn:
// once the termination sentinel is seen, no further events are produced even
// if more lines remain buffered.
type eventScanner struct {
	r       io.Reader
	lines   lineBuffer
	queue   []string
	buf     []byte
	done    bool
	readErr error
}

func newEventScanner(r io.Reader) *eventScanner {
	return &eventScanner{r: r, buf: make([]byte, 4096)}
}

// next returns the next parsed delta, or errStreamDone at termination.
// Malformed payloads are dropped with a diagnostic and scanning continues.
func (s *eventScanner) next() (*streamDelta, error) {
	for {
		payload, err := s.nextPayload()
		if err != nil {
			return nil, err
		}

		var delta streamDelta
		if err := json.Unmarshal([]byte(payload), &delta); err != nil {
			slog.Debug("dropping malformed stream payload", "error", err, "payload_length", len(payload))
			continue
		}
		if len(delta.Choices) == 0 {
			continue
		}
		return &delta, nil
	}
}

func (s *eventScanner) nextPayload() (string, error) {
	for {
		for len(s.queue) > 0 {
			line := s.queue[0]
			s.queue = s.queue[1:]

			if !strings.HasPrefix(line, dataPrefix) {
				continue
			}
			payload := strings.TrimSpace(strings.TrimPrefix(line, dataPrefix))
			if payload == doneSentinel {
				s.done = true
				s.queue = nil
				return "", errStreamDone
			}
			if payload == "" {
				continue
			}
			return payload, nil
		}

		if s.done {
			return "", errStreamDone
		}
		if s.readErr != nil {
			if errors.Is(s.readErr, io.EOF) {
				return "", errStreamDone
			}
			return "", s.readErr
		}

		n, err := s.r.Read(s.buf)
		if n > 0 {
			s.queue = append(s.queue, s.lines.feed(s.buf[:n])...)
		}
		if err != nil {
			// Lines completed by the final read are drained before the
			// error surfaces; the unterminated remainder is discarded.
			s.readErr = err
		}
	}
}
