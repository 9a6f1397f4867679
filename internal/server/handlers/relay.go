package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/oslek-labs/lookout/internal/chat"
	"github.com/oslek-labs/lookout/internal/search"
)

// Relay owns the outbound connection for one chat request. Each event is
// serialized as a single JSON line and flushed immediately, so the client
// observes text incrementally; the connection closes when the handler
// returns, after the last event.
type Relay struct {
	w       http.ResponseWriter
	flusher http.Flusher
	broken  bool
}

// NewRelay prepares w for an incremental, uncached, persistent response.
// It fails if the underlying writer cannot flush.
func NewRelay(w http.ResponseWriter) (*Relay, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support streaming")
	}

	h := w.Header()
	h.Set("Content-Type", "application/x-ndjson")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	return &Relay{w: w, flusher: flusher}, nil
}

// wire envelopes, one per event kind.
type chunkFrame struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type searchFrame struct {
	Type  string `json:"type"`
	Query string `json:"query"`
}

type thinkingFrame struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type sourcesFrame struct {
	Type    string          `json:"type"`
	Sources []search.Result `json:"sources"`
}

type doneFrame struct {
	Type      string `json:"type"`
	ElapsedMS int64  `json:"elapsed_ms"`
}

type errorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Emit writes one event to the wire. A write failure (client gone) marks the
// relay broken; later emissions become no-ops while the orchestrator winds
// down via context cancellation.
func (r *Relay) Emit(ev chat.Event) {
	if r.broken {
		return
	}

	var frame any
	switch e := ev.(type) {
	case chat.ChunkEvent:
		frame = chunkFrame{Type: e.Kind(), Content: e.Content}
	case chat.SearchEvent:
		frame = searchFrame{Type: e.Kind(), Query: e.Query}
	case chat.ThinkingEvent:
		frame = thinkingFrame{Type: e.Kind(), Content: e.Content}
	case chat.SourcesEvent:
		frame = sourcesFrame{Type: e.Kind(), Sources: e.Sources}
	case chat.DoneEvent:
		frame = doneFrame{Type: e.Kind(), ElapsedMS: e.ElapsedMS}
	case chat.ErrorEvent:
		frame = errorFrame{Type: e.Kind(), Message: e.Message}
	default:
		slog.Error("unknown outbound event", "kind", ev.Kind())
		return
	}

	data, err := json.Marshal(frame)
	if err != nil {
		slog.Error("failed to marshal outbound event", "kind", ev.Kind(), "error", err)
		return
	}

	if _, err := r.w.Write(append(data, '\n')); err != nil {
		slog.Debug("client write failed, dropping stream", "error", err)
		r.broken = true
		return
	}
	r.flusher.Flush()
}
