package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/oslek-labs/lookout/internal/chat"
	"github.com/oslek-labs/lookout/internal/id"
	"github.com/oslek-labs/lookout/internal/llm"
)

// ChatRequest is the inbound request body for POST /api/chat.
type ChatRequest struct {
	Messages []InboundMessage `json:"messages"`
	Search   bool             `json:"search"`
	Think    bool             `json:"think"`
	Fast     bool             `json:"fast"`
	NoSearch bool             `json:"noSearch"`
}

// InboundMessage is one prior conversation message supplied by the client.
type InboundMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseGenerator runs the turn loop for one request.
type ResponseGenerator interface {
	Run(ctx context.Context, em chat.Emitter, history []llm.ChatMessage, opts chat.Options) error
}

type ChatHandler struct {
	gen        ResponseGenerator
	configured bool
}

// NewChatHandler builds the streaming chat endpoint. configured reflects
// whether provider credentials are present; without them every request is
// rejected before a stream is opened.
func NewChatHandler(gen ResponseGenerator, configured bool) *ChatHandler {
	return &ChatHandler{gen: gen, configured: configured}
}

func (h *ChatHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Messages) == 0 {
		respondError(w, "messages is required", http.StatusBadRequest)
		return
	}
	if !h.configured {
		respondError(w, "LLM API key not configured", http.StatusInternalServerError)
		return
	}

	history := make([]llm.ChatMessage, len(req.Messages))
	for i, m := range req.Messages {
		history[i] = llm.ChatMessage{Role: m.Role, Content: m.Content}
	}

	opts := chat.Options{
		Mode:     chat.ModeFromFlags(req.Search, req.Think, req.Fast),
		NoSearch: req.NoSearch,
	}

	relay, err := NewRelay(w)
	if err != nil {
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	requestID := id.NewRequest()
	slog.Info("chat stream opened", "request_id", requestID, "mode", opts.Mode.String(), "no_search", opts.NoSearch, "messages", len(history))

	if err := h.gen.Run(r.Context(), relay, history, opts); err != nil {
		slog.Error("chat stream failed", "request_id", requestID, "error", err)
	}
}
