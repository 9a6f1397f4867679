package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oslek-labs/lookout/internal/chat"
	"github.com/oslek-labs/lookout/internal/llm"
	"github.com/oslek-labs/lookout/internal/search"
)

// askCmd sends a single question and streams the answer to stdout
func askCmd() *cobra.Command {
	var (
		searchFlag   bool
		thinkFlag    bool
		fastFlag     bool
		noSearchFlag bool
	)

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a one-shot question from the terminal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cfg.IsLLMConfigured() {
				return fmt.Errorf("LLM API key not configured, set LOOKOUT_LLM_API_KEY or GROQ_API_KEY")
			}

			question := strings.Join(args, " ")

			llmClient := llm.NewClient(cfg.LLM.URL, cfg.LLM.APIKey, cfg.LLM.Model)
			searchClient := search.NewClient(
				search.WithKagiAPIKey(cfg.Search.KagiAPIKey),
				search.WithTimeout(cfg.Search.Timeout),
			)
			orch := chat.NewOrchestrator(llmClient, searchClient, cfg.Chat.MaxTurns)

			opts := chat.Options{
				Mode:     chat.ModeFromFlags(searchFlag, thinkFlag, fastFlag),
				NoSearch: noSearchFlag,
			}
			history := []llm.ChatMessage{{Role: "user", Content: question}}

			printer := &terminalEmitter{}
			if err := orch.Run(cmd.Context(), printer, history, opts); err != nil {
				return err
			}
			printer.finish()
			return nil
		},
	}

	cmd.Flags().BoolVar(&searchFlag, "search", false, "force web search before answering")
	cmd.Flags().BoolVar(&thinkFlag, "think", false, "use the reasoning model profile")
	cmd.Flags().BoolVar(&fastFlag, "fast", false, "use the fast, low-budget profile")
	cmd.Flags().BoolVar(&noSearchFlag, "no-search", false, "disable the web search tool entirely")

	return cmd
}

// terminalEmitter renders the event stream for an interactive terminal.
type terminalEmitter struct {
	sources []search.Result
	wrote   bool
}

func (t *terminalEmitter) Emit(ev chat.Event) {
	switch e := ev.(type) {
	case chat.ChunkEvent:
		fmt.Print(e.Content)
		t.wrote = true
	case chat.SearchEvent:
		fmt.Fprintf(os.Stderr, "[searching: %s]\n", e.Query)
	case chat.ThinkingEvent:
		fmt.Fprintf(os.Stderr, "\n--- reasoning ---\n%s\n-----------------\n", e.Content)
	case chat.SourcesEvent:
		t.sources = e.Sources
	case chat.ErrorEvent:
		fmt.Fprintf(os.Stderr, "error: %s\n", e.Message)
	case chat.DoneEvent:
		// final newline handled in finish
	}
}

func (t *terminalEmitter) finish() {
	if t.wrote {
		fmt.Println()
	}
	if len(t.sources) > 0 {
		fmt.Println("\nSources:")
		for i, s := range t.sources {
			fmt.Printf("  %d. %s\n     %s\n", i+1, s.Title, s.URL)
		}
	}
}
