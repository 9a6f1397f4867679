package config

import "time"

type Config struct {
	Server ServerConfig
	LLM    LLMConfig
	Search SearchConfig
	Chat   ChatConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
	StaticDir      string
}

type LLMConfig struct {
	URL    string
	APIKey string
	Model  string
}

type SearchConfig struct {
	KagiAPIKey string
	Timeout    time.Duration
}

type ChatConfig struct {
	MaxTurns int
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           getEnvWithFallback("LOOKOUT_SERVER_HOST", "HOST", "0.0.0.0"),
			Port:           getEnvIntWithFallback("LOOKOUT_SERVER_PORT", "PORT", 3000),
			AllowedOrigins: getEnvSlice("LOOKOUT_ALLOWED_ORIGINS", []string{"*"}),
			StaticDir:      getEnv("LOOKOUT_STATIC_DIR", "public"),
		},
		LLM: LLMConfig{
			URL:    getEnvWithFallback("LOOKOUT_LLM_URL", "LLM_URL", "https://api.groq.com/openai"),
			APIKey: getEnvWithFallback("LOOKOUT_LLM_API_KEY", "GROQ_API_KEY", ""),
			Model:  getEnvWithFallback("LOOKOUT_LLM_MODEL", "LLM_MODEL", "llama-3.3-70b-versatile"),
		},
		Search: SearchConfig{
			KagiAPIKey: getEnvWithFallback("LOOKOUT_KAGI_API_KEY", "KAGI_API_KEY", ""),
			Timeout:    getEnvDuration("LOOKOUT_SEARCH_TIMEOUT", 15*time.Second),
		},
		Chat: ChatConfig{
			MaxTurns: getEnvInt("LOOKOUT_MAX_TURNS", 10),
		},
	}
}

func (c *Config) IsLLMConfigured() bool {
	return c.LLM.APIKey != ""
}
