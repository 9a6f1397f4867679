package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oslek-labs/lookout/internal/chat"
	"github.com/oslek-labs/lookout/internal/llm"
	"github.com/oslek-labs/lookout/internal/search"
)

// stubGenerator records its inputs and emits a scripted event sequence.
type stubGenerator struct {
	history []llm.ChatMessage
	opts    chat.Options
	events  []chat.Event
	err     error
}

func (g *stubGenerator) Run(ctx context.Context, em chat.Emitter, history []llm.ChatMessage, opts chat.Options) error {
	g.history = history
	g.opts = opts
	for _, ev := range g.events {
		em.Emit(ev)
	}
	return g.err
}

func postChat(t *testing.T, h *ChatHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestChatHandler(t *testing.T) {
	t.Run("invalid body rejected", func(t *testing.T) {
		h := NewChatHandler(&stubGenerator{}, true)
		rec := postChat(t, h, "{not json")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	})

	t.Run("empty messages rejected before streaming", func(t *testing.T) {
		gen := &stubGenerator{}
		h := NewChatHandler(gen, true)
		rec := postChat(t, h, `{"messages":[]}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Nil(t, gen.history, "generator must not run")

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp["error"], "messages")
	})

	t.Run("unconfigured provider rejected", func(t *testing.T) {
		h := NewChatHandler(&stubGenerator{}, false)
		rec := postChat(t, h, `{"messages":[{"role":"user","content":"hi"}]}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("flags map to mode and noSearch", func(t *testing.T) {
		gen := &stubGenerator{}
		h := NewChatHandler(gen, true)
		rec := postChat(t, h, `{"messages":[{"role":"user","content":"hi"}],"search":true,"noSearch":true}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, chat.ModeSearch, gen.opts.Mode)
		assert.True(t, gen.opts.NoSearch)
		require.Len(t, gen.history, 1)
		assert.Equal(t, llm.ChatMessage{Role: "user", Content: "hi"}, gen.history[0])
	})

	t.Run("streams ndjson lines with streaming headers", func(t *testing.T) {
		gen := &stubGenerator{events: []chat.Event{
			chat.ChunkEvent{Content: "Hello"},
			chat.SearchEvent{Query: "weather"},
			chat.SourcesEvent{Sources: []search.Result{{Title: "T", URL: "https://example.com", Desc: "D"}}},
			chat.DoneEvent{ElapsedMS: 42},
		}}
		h := NewChatHandler(gen, true)
		rec := postChat(t, h, `{"messages":[{"role":"user","content":"hi"}]}`)

		assert.Equal(t, "application/x-ndjson", rec.Header().Get("Content-Type"))
		assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
		assert.Equal(t, "no", rec.Header().Get("X-Accel-Buffering"))

		var lines []map[string]any
		scanner := bufio.NewScanner(rec.Body)
		for scanner.Scan() {
			var obj map[string]any
			require.NoError(t, json.Unmarshal(scanner.Bytes(), &obj), "each line must be standalone JSON")
			lines = append(lines, obj)
		}
		require.Len(t, lines, 4)

		assert.Equal(t, "chunk", lines[0]["type"])
		assert.Equal(t, "Hello", lines[0]["content"])
		assert.Equal(t, "search", lines[1]["type"])
		assert.Equal(t, "weather", lines[1]["query"])
		assert.Equal(t, "sources", lines[2]["type"])
		assert.Equal(t, "done", lines[3]["type"])
		assert.Equal(t, float64(42), lines[3]["elapsed_ms"])
	})

	t.Run("generator failure after stream start leaves the stream intact", func(t *testing.T) {
		gen := &stubGenerator{
			events: []chat.Event{chat.ErrorEvent{Message: "provider down"}},
			err:    errors.New("provider down"),
		}
		h := NewChatHandler(gen, true)
		rec := postChat(t, h, `{"messages":[{"role":"user","content":"hi"}]}`)

		// Headers are already sent; the failure travels as an error event.
		assert.Equal(t, http.StatusOK, rec.Code)
		var obj map[string]any
		require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(rec.Body.String())), &obj))
		assert.Equal(t, "error", obj["type"])
		assert.Equal(t, "provider down", obj["message"])
	})
}

func TestRelayEmit(t *testing.T) {
	t.Run("thinking and sources shapes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		relay, err := NewRelay(rec)
		require.NoError(t, err)

		relay.Emit(chat.ThinkingEvent{Content: "step by step"})
		relay.Emit(chat.SourcesEvent{Sources: []search.Result{
			{Title: "T", URL: "https://example.com", Desc: "D"},
		}})

		lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
		require.Len(t, lines, 2)
		assert.JSONEq(t, `{"type":"thinking","content":"step by step"}`, lines[0])
		assert.JSONEq(t, `{"type":"sources","sources":[{"title":"T","url":"https://example.com","desc":"D"}]}`, lines[1])
	})
}
