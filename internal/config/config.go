package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     int
	LogLevel string

	DatabaseURL string
	RedisURL    string
	NatsURL     string
	NatsToken   string

	GenerationBackend   string // "ollama" or "openai"
	GenerationTimeout   time.Duration
	IncludeBreakthrough bool
	OllamaBaseURL       string
	OllamaModel         string
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	OpenAIModel         string

	SeedOnStart        bool
	CORSAllowedOrigins []string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real env vars win over it.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:                envInt("ELYX_PORT", 5000),
		LogLevel:            envStr("LOG_LEVEL", "info"),
		DatabaseURL:         envStr("DATABASE_URL", "sqlite://./data/elyx.db"),
		RedisURL:            envStr("REDIS_URL", ""),
		NatsURL:             envStr("NATS_URL", ""),
		NatsToken:           envStr("NATS_TOKEN", ""),
		GenerationBackend:   strings.ToLower(envStr("GENERATION_BACKEND", "ollama")),
		GenerationTimeout:   envDuration("GENERATION_TIMEOUT", 10*time.Minute),
		IncludeBreakthrough: envBool("GENERATION_INCLUDE_BREAKTHROUGH", false),
		OllamaBaseURL:       strings.TrimRight(envStr("OLLAMA_BASE_URL", "http://localhost:11434"), "/"),
		OllamaModel:         envStr("OLLAMA_MODEL", "llama3.1:8b"),
		OpenAIAPIKey:        envStr("OPENAI_API_KEY", ""),
		OpenAIBaseURL:       envStr("OPENAI_BASE_URL", "http://localhost:11434/v1"),
		OpenAIModel:         envStr("OPENAI_MODEL", "llama3.1:8b"),
		SeedOnStart:         envBool("SEED_ON_START", true),
		CORSAllowedOrigins:  envList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}
}

// Validate checks the combinations Load cannot default its way out of.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL cannot be empty")
	}
	switch c.GenerationBackend {
	case "ollama":
		if c.OllamaBaseURL == "" {
			return fmt.Errorf("OLLAMA_BASE_URL cannot be empty")
		}
	case "openai":
		if c.OpenAIBaseURL == "" {
			return fmt.Errorf("OPENAI_BASE_URL cannot be empty")
		}
	default:
		return fmt.Errorf("unknown GENERATION_BACKEND %q", c.GenerationBackend)
	}
	if c.GenerationTimeout <= 0 {
		return fmt.Errorf("GENERATION_TIMEOUT must be > 0")
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, entry := range strings.Split(v, ",") {
		if entry = strings.TrimSpace(entry); entry != "" {
			out = append(out, entry)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
