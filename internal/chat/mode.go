// Package chat drives the multi-turn exchange between the inbound client
// stream and the completion provider, grounding answers with web search.
package chat

// Mode selects the response style for one request.
type Mode int

const (
	ModeDefault Mode = iota
	ModeSearch
	ModeThink
	ModeFast
)

// ModeFromFlags collapses the request's boolean flags into a single mode.
// Priority order is fixed: search > fast > think > default, so at most one
// mode instruction is ever active.
func ModeFromFlags(search, think, fast bool) Mode {
	switch {
	case search:
		return ModeSearch
	case fast:
		return ModeFast
	case think:
		return ModeThink
	default:
		return ModeDefault
	}
}

func (m Mode) String() string {
	switch m {
	case ModeSearch:
		return "search"
	case ModeThink:
		return "think"
	case ModeFast:
		return "fast"
	default:
		return "default"
	}
}

// Options carries the per-request response configuration. NoSearch composes
// with any mode and removes the tool declaration from provider requests
// entirely.
type Options struct {
	Mode     Mode
	NoSearch bool
}

// Policy is the resolved per-request behavior derived from Options.
type Policy struct {
	SystemPrompt     string
	ToolChoice       string
	ResultBudget     int
	MaxTokens        int
	CaptureReasoning bool
}

const (
	promptCommon = "You are Lookout, a helpful assistant with access to live web search through the web_search tool."

	promptDefault = promptCommon + " Use web_search when a question needs current or factual information you are unsure about; answer directly otherwise. Keep replies clear and well organized."

	promptSearch = promptCommon + " The user asked for a web-grounded answer: search the web before replying, base the answer on what you find, and mention which sources support it."

	promptThink = promptCommon + " Reason through the problem carefully step by step before giving your final answer. Prefer thoroughness over speed."

	promptFast = promptCommon + " Answer as briefly and directly as possible. Skip preamble and caveats; only search when the answer genuinely depends on live information."
)

var modePolicies = map[Mode]Policy{
	ModeDefault: {SystemPrompt: promptDefault, ResultBudget: 8, MaxTokens: 2048},
	ModeSearch:  {SystemPrompt: promptSearch, ResultBudget: 20, MaxTokens: 3072},
	ModeThink:   {SystemPrompt: promptThink, ResultBudget: 25, MaxTokens: 8192, CaptureReasoning: true},
	ModeFast:    {SystemPrompt: promptFast, ResultBudget: 3, MaxTokens: 1024},
}

// PolicyFor resolves the request options through the mode lookup table.
// Search mode forces an initial tool call unless NoSearch neutralizes it.
func PolicyFor(opts Options) Policy {
	p := modePolicies[opts.Mode]
	if opts.Mode == ModeSearch && !opts.NoSearch {
		p.ToolChoice = "required"
	} else {
		p.ToolChoice = "auto"
	}
	return p
}
