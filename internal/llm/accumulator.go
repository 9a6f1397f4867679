package llm

import "sort"

// ToolCallAccumulator reassembles tool calls from indexed fragments spread
// across many delta events. Fragments for the same call share a position
// index; the id may arrive in any one fragment, while name and arguments
// grow by concatenation in arrival order. Keying by index rather than id is
// deliberate: ids are not guaranteed to arrive first.
type ToolCallAccumulator struct {
	calls map[int]*ToolCall
}

func NewToolCallAccumulator() *ToolCallAccumulator {
	return &ToolCallAccumulator{calls: make(map[int]*ToolCall)}
}

// Add merges a batch of fragments from one delta event.
func (a *ToolCallAccumulator) Add(fragments []ToolCallFragment) {
	for _, f := range fragments {
		call, ok := a.calls[f.Index]
		if !ok {
			call = &ToolCall{Type: "function"}
			a.calls[f.Index] = call
		}
		if call.ID == "" && f.ID != "" {
			call.ID = f.ID
		}
		if f.Type != "" {
			call.Type = f.Type
		}
		call.Function.Name += f.Function.Name
		call.Function.Arguments += f.Function.Arguments
	}
}

// Empty reports whether any fragments have been merged this turn.
func (a *ToolCallAccumulator) Empty() bool {
	return len(a.calls) == 0
}

// Calls returns the completed tool calls ordered by fragment index. The
// arguments strings are left as accumulated; they are parsed only when a
// tool is actually invoked.
func (a *ToolCallAccumulator) Calls() []ToolCall {
	indexes := make([]int, 0, len(a.calls))
	for i := range a.calls {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	calls := make([]ToolCall, 0, len(indexes))
	for _, i := range indexes {
		calls = append(calls, *a.calls[i])
	}
	return calls
}
