package chat

import "github.com/oslek-labs/lookout/internal/search"

// Event is one outbound protocol event. Each variant carries only the fields
// relevant to its kind; serialization to the wire framing belongs to the
// emitter that owns the client connection.
type Event interface {
	Kind() string
}

// ChunkEvent is an incremental piece of the assistant's answer text.
type ChunkEvent struct {
	Content string
}

// SearchEvent announces that a web search is being executed.
type SearchEvent struct {
	Query string
}

// ThinkingEvent delivers the accumulated reasoning text, once, at the end of
// a think-mode request.
type ThinkingEvent struct {
	Content string
}

// SourcesEvent delivers the aggregated search results backing the answer.
type SourcesEvent struct {
	Sources []search.Result
}

// DoneEvent closes a request, successful or exhausted.
type DoneEvent struct {
	ElapsedMS int64
}

// ErrorEvent reports a fatal request failure; it is the last event emitted.
type ErrorEvent struct {
	Message string
}

func (ChunkEvent) Kind() string    { return "chunk" }
func (SearchEvent) Kind() string   { return "search" }
func (ThinkingEvent) Kind() string { return "thinking" }
func (SourcesEvent) Kind() string  { return "sources" }
func (DoneEvent) Kind() string     { return "done" }
func (ErrorEvent) Kind() string    { return "error" }

// Emitter delivers events to the client as they occur, without buffering.
type Emitter interface {
	Emit(Event)
}
