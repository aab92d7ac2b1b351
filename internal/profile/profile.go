package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is configuration to start main server.
type Profile struct {
	// AI provider configuration (OpenAI-compatible protocol).
	// All providers (openai, deepseek, siliconflow, ollama, ...) share the same config.
	AIProvider   string // Provider identifier
	AIAPIKey     string // API key; AI features are disabled when empty
	AIBaseURL    string // Base URL (optional, has a default per provider)
	AIModel      string // Model name: gpt-4o, deepseek-chat, etc.
	AITimeout    int    // Request timeout in seconds (default: 60)
	AIMaxRetries int    // Completion retry attempts (default: 3)

	// AIRequestsPerMinute caps outbound provider calls. 0 disables limiting.
	AIRequestsPerMinute int

	// Summarization pipeline tuning.
	SummarizeThreshold int // Auto-summarize a chat every N messages (default: 10)
	MaxContextMessages int // Sliding context window size (default: 20)

	Mode    string // dev, prod, demo
	Addr    string
	Port    int
	Data    string
	Driver  string // sqlite, postgres
	DSN     string
	Version string
}

// Provider default configurations.
// Used when AI_BASE_URL is not explicitly set.
var aiProviderDefaults = map[string]struct {
	BaseURL string
	Model   string
}{
	"openai": {
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o-mini",
	},
	"deepseek": {
		BaseURL: "https://api.deepseek.com",
		Model:   "deepseek-chat",
	},
	"siliconflow": {
		BaseURL: "https://api.siliconflow.cn/v1",
		Model:   "Qwen/Qwen2.5-72B-Instruct",
	},
	"openrouter": {
		BaseURL: "https://openrouter.ai/api/v1",
		Model:   "deepseek/deepseek-chat",
	},
	"ollama": {
		BaseURL: "http://localhost:11434/v1",
		Model:   "llama3.1",
	},
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if an AI API key is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIAPIKey != ""
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	p.AIProvider = getEnvOrDefault("SMARTNOTE_AI_PROVIDER", "openai")
	p.AIAPIKey = getEnvOrDefault("SMARTNOTE_AI_API_KEY", "")
	p.AIBaseURL = getEnvOrDefault("SMARTNOTE_AI_BASE_URL", "")
	p.AIModel = getEnvOrDefault("SMARTNOTE_AI_MODEL", "")
	p.AITimeout = getEnvOrDefaultInt("SMARTNOTE_AI_TIMEOUT_SECONDS", 60)
	p.AIMaxRetries = getEnvOrDefaultInt("SMARTNOTE_AI_MAX_RETRIES", 3)
	p.AIRequestsPerMinute = getEnvOrDefaultInt("SMARTNOTE_AI_REQUESTS_PER_MINUTE", 0)

	p.SummarizeThreshold = getEnvOrDefaultInt("SMARTNOTE_SUMMARIZE_THRESHOLD", 10)
	p.MaxContextMessages = getEnvOrDefaultInt("SMARTNOTE_MAX_CONTEXT_MESSAGES", 20)

	if p.AIProvider != "" {
		if _, ok := aiProviderDefaults[p.AIProvider]; !ok {
			slog.Warn("unknown AI provider, treating as generic OpenAI-compatible", "provider", p.AIProvider)
		}
	}
	if defaults, ok := aiProviderDefaults[p.AIProvider]; ok {
		if p.AIBaseURL == "" {
			p.AIBaseURL = defaults.BaseURL
		}
		if p.AIModel == "" {
			p.AIModel = defaults.Model
		}
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "smartnote")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/smartnote"
		}
	}

	if p.Mode != "prod" && p.Data == "" {
		p.Data = "."
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		return err
	}
	p.Data = dataDir

	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver == "sqlite" && p.DSN == "" {
		p.DSN = filepath.Join(p.Data, fmt.Sprintf("smartnote_%s.db", p.Mode))
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("dsn is required for postgres driver")
	}

	if p.SummarizeThreshold <= 0 {
		p.SummarizeThreshold = 10
	}
	if p.MaxContextMessages <= 0 {
		p.MaxContextMessages = 20
	}
	if p.AIMaxRetries <= 0 {
		p.AIMaxRetries = 3
	}

	return nil
}
