package chat

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/oslek-labs/lookout/internal/llm"
	"github.com/oslek-labs/lookout/internal/metrics"
	"github.com/oslek-labs/lookout/internal/search"
)

// DefaultMaxTurns bounds the provider round-trips per request. It is the
// sole safeguard against runaway tool-call cycling; there is no timeout.
const DefaultMaxTurns = 10

// SearchToolName is the function name declared to the provider.
const SearchToolName = "web_search"

// Provider is the streaming completion collaborator.
type Provider interface {
	StreamChat(ctx context.Context, req llm.ChatRequest) (<-chan llm.StreamEvent, error)
}

// Searcher is the web search collaborator.
type Searcher interface {
	Search(ctx context.Context, query string, count int) ([]search.Result, error)
}

// Orchestrator runs the turn loop for chat requests. It holds no per-request
// state; one instance serves all requests concurrently.
type Orchestrator struct {
	provider Provider
	searcher Searcher
	maxTurns int
}

func NewOrchestrator(provider Provider, searcher Searcher, maxTurns int) *Orchestrator {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Orchestrator{
		provider: provider,
		searcher: searcher,
		maxTurns: maxTurns,
	}
}

func searchToolDeclaration() []llm.Tool {
	return []llm.Tool{{
		Type: "function",
		Function: llm.ToolFunction{
			Name:        SearchToolName,
			Description: "Search the web for current information. Returns ranked results with title, URL and description.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "The search query",
					},
				},
				"required": []string{"query"},
			},
		},
	}}
}

// Run drives one request to completion, emitting events as they occur. All
// failure modes surface to the client through the emitter; the returned
// error is for the caller's logging only.
func (o *Orchestrator) Run(ctx context.Context, em Emitter, history []llm.ChatMessage, opts Options) error {
	start := time.Now()
	metrics.StreamsActive.Inc()
	defer metrics.StreamsActive.Dec()

	pol := PolicyFor(opts)

	msgs := make([]llm.ChatMessage, 0, len(history)+1)
	msgs = append(msgs, llm.ChatMessage{Role: "system", Content: pol.SystemPrompt})
	msgs = append(msgs, history...)

	toolChoice := pol.ToolChoice
	var sources []search.Result
	var reasoning strings.Builder
	var reply string
	answered := false
	turns := 0

	for turn := 0; turn < o.maxTurns; turn++ {
		turns++

		req := llm.ChatRequest{
			Messages:  msgs,
			MaxTokens: pol.MaxTokens,
		}
		if pol.CaptureReasoning {
			req.ReasoningFormat = "parsed"
		}
		if !opts.NoSearch {
			req.Tools = searchToolDeclaration()
			req.ToolChoice = toolChoice
			if turn == o.maxTurns-1 {
				// Last permitted turn: forbid tool use so the provider must
				// produce an answer instead of requesting another search.
				req.ToolChoice = "none"
			}
		}

		events, err := o.provider.StreamChat(ctx, req)
		if err != nil {
			slog.ErrorContext(ctx, "provider request failed", "turn", turn, "error", err)
			em.Emit(ErrorEvent{Message: err.Error()})
			return err
		}

		outcome := consumeTurn(em, events)
		if outcome.err != nil {
			slog.ErrorContext(ctx, "provider stream failed", "turn", turn, "error", outcome.err)
			em.Emit(ErrorEvent{Message: outcome.err.Error()})
			return outcome.err
		}
		if outcome.reasoning != "" {
			reasoning.WriteString(outcome.reasoning)
		}

		if len(outcome.calls) == 0 {
			reply = outcome.text
			if opts.Mode != ModeThink {
				reply = stripThinkMarkup(reply)
			}
			answered = true
			break
		}

		msgs = append(msgs, llm.ChatMessage{
			Role:      "assistant",
			Content:   outcome.text,
			ToolCalls: outcome.calls,
		})
		// The forced first call is spent; let the provider decide from here.
		toolChoice = "auto"

		for _, call := range outcome.calls {
			if call.Function.Name != SearchToolName {
				continue
			}
			query, _ := call.ParsedArguments()["query"].(string)
			em.Emit(SearchEvent{Query: query})

			content, hits := o.executeSearch(ctx, query, pol.ResultBudget)
			sources = append(sources, hits...)
			msgs = append(msgs, llm.ChatMessage{
				Role:       "tool",
				Content:    content,
				ToolCallID: call.ID,
			})
		}
	}

	metrics.TurnsPerRequest.Observe(float64(turns))

	if opts.Mode == ModeThink && reasoning.Len() > 0 {
		em.Emit(ThinkingEvent{Content: reasoning.String()})
	}
	if len(sources) > 0 {
		em.Emit(SourcesEvent{Sources: sources})
	}
	em.Emit(DoneEvent{ElapsedMS: time.Since(start).Milliseconds()})

	slog.InfoContext(ctx, "chat request complete",
		"mode", opts.Mode.String(),
		"turns", turns,
		"answered", answered,
		"reply_length", len(reply),
		"sources", len(sources),
		"elapsed", time.Since(start))
	return nil
}

// executeSearch runs one tool call against the search collaborator and
// renders the tool message fed back to the provider. A collaborator failure
// is recovered as a "no results" message; it never aborts the conversation.
func (o *Orchestrator) executeSearch(ctx context.Context, query string, budget int) (string, []search.Result) {
	results, err := o.searcher.Search(ctx, query, budget)
	if err != nil {
		slog.WarnContext(ctx, "search failed", "query", query, "error", err)
		return "No results found: " + err.Error(), nil
	}
	if len(results) == 0 {
		return "No results found.", nil
	}
	if len(results) > budget {
		results = results[:budget]
	}
	return renderSearchResults(results), results
}

func renderSearchResults(results []search.Result) string {
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n%s\n%s\n\n", i+1, r.Title, r.URL, r.Desc)
	}
	return strings.TrimSpace(b.String())
}

type turnClass int

const (
	turnUnclassified turnClass = iota
	turnText
	turnTool
)

type turnOutcome struct {
	text      string
	reasoning string
	calls     []llm.ToolCall
	err       error
}

// consumeTurn drains one provider turn, streaming answer text as it arrives.
// Classification locks on the first meaningful delta: tool-call fragments
// make it a tool turn (content is captured but not streamed), content or
// reasoning makes it a text turn. Reasoning is always buffered silently.
func consumeTurn(em Emitter, events <-chan llm.StreamEvent) turnOutcome {
	acc := llm.NewToolCallAccumulator()
	var text, reasoning strings.Builder
	class := turnUnclassified

	for ev := range events {
		if ev.Err != nil {
			return turnOutcome{err: ev.Err}
		}
		if len(ev.ToolCalls) > 0 {
			if class == turnUnclassified {
				class = turnTool
			}
			acc.Add(ev.ToolCalls)
		}
		if ev.Reasoning != "" {
			if class == turnUnclassified {
				class = turnText
			}
			reasoning.WriteString(ev.Reasoning)
		}
		if ev.Content != "" {
			if class == turnUnclassified {
				class = turnText
			}
			text.WriteString(ev.Content)
			if class == turnText {
				em.Emit(ChunkEvent{Content: ev.Content})
			}
		}
	}

	return turnOutcome{
		text:      text.String(),
		reasoning: reasoning.String(),
		calls:     acc.Calls(),
	}
}

var thinkMarkup = regexp.MustCompile(`(?s)<think>.*?</think>`)

// stripThinkMarkup removes raw reasoning delimiters some models leak into
// answer text when reasoning capture is not requested.
func stripThinkMarkup(s string) string {
	s = thinkMarkup.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "<think>", "")
	s = strings.ReplaceAll(s, "</think>", "")
	return strings.TrimSpace(s)
}
