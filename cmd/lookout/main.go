package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oslek-labs/lookout/internal/config"
)

// Version information (set via ldflags)
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

var cfg *config.Config

func main() {
	rootCmd := &cobra.Command{
		Use:   "lookout",
		Short: "Lookout - search-grounded chat relay",
		Long: `Lookout relays chat conversations to a streaming LLM provider and
grounds answers with live web search results.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg = config.Load()
			return nil
		},
	}

	rootCmd.AddCommand(
		serveCmd(),
		askCmd(),
		configCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// configCmd shows current configuration
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("Current configuration:")
			fmt.Println()

			fmt.Println("Server:")
			fmt.Printf("  Host:       %s\n", cfg.Server.Host)
			fmt.Printf("  Port:       %d\n", cfg.Server.Port)
			fmt.Printf("  Static Dir: %s\n", cfg.Server.StaticDir)
			fmt.Println()

			fmt.Println("LLM:")
			fmt.Printf("  URL:     %s\n", cfg.LLM.URL)
			fmt.Printf("  Model:   %s\n", cfg.LLM.Model)
			fmt.Printf("  API Key: %s\n", maskSecret(cfg.LLM.APIKey))
			fmt.Printf("  Status:  %s\n", boolStatus(cfg.IsLLMConfigured()))
			fmt.Println()

			fmt.Println("Search:")
			fmt.Printf("  Kagi API Key: %s\n", maskSecret(cfg.Search.KagiAPIKey))
			fmt.Printf("  Timeout:      %s\n", cfg.Search.Timeout)
			fmt.Println()

			fmt.Println("Chat:")
			fmt.Printf("  Max Turns: %d\n", cfg.Chat.MaxTurns)
			fmt.Println()

			fmt.Println("Environment variables:")
			fmt.Println("  LOOKOUT_SERVER_HOST, LOOKOUT_SERVER_PORT, LOOKOUT_STATIC_DIR")
			fmt.Println("  LOOKOUT_LLM_URL, LOOKOUT_LLM_API_KEY, LOOKOUT_LLM_MODEL")
			fmt.Println("  LOOKOUT_KAGI_API_KEY, LOOKOUT_SEARCH_TIMEOUT")
			fmt.Println("  LOOKOUT_MAX_TURNS, LOOKOUT_ALLOWED_ORIGINS")

			return nil
		},
	}
}

// versionCmd shows version information
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Lookout %s\n", version)
			fmt.Printf("  Commit:     %s\n", commit)
			fmt.Printf("  Build Date: %s\n", buildDate)
		},
	}
}

// maskSecret masks a secret string for display
func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 8 {
		return "(set)"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// boolStatus returns a status string for a boolean
func boolStatus(b bool) string {
	if b {
		return "configured"
	}
	return "not configured"
}
