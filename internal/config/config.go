package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported upstream providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
)

var ErrUnknownProvider = errors.New("unknown LLM provider")

// DefaultAllowedOrigins are the frontends whose Origin is echoed back verbatim.
var DefaultAllowedOrigins = []string{
	"https://riskatlas.ai",
	"http://localhost:3000",
	"https://www.riskatlas.ai",
}

var defaultModels = map[string]string{
	ProviderAnthropic: "claude-haiku-4-20250514",
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderGemini:    "gemini-1.5-flash",
}

const (
	keyPort              = "port"
	keyEnv               = "env"
	keyLogLevel          = "log_level"
	keyProvider          = "llm_provider"
	keyModel             = "llm_model"
	keyMaxTokens         = "llm_max_tokens"
	keyBaseURL           = "llm_base_url"
	keyTimeoutSeconds    = "llm_timeout_seconds"
	keyAnthropicAPIKey   = "anthropic_api_key"
	keyOpenAIAPIKey      = "openai_api_key"
	keyGeminiAPIKey      = "gemini_api_key"
	keyAllowedOrigins    = "cors_allowed_origins"
	keyCORSStrict        = "cors_strict"
	keyKnowledgeBasePath = "knowledge_base_path"
	keyRateLimit         = "rate_limit_per_minute"
	keyRedisURL          = "redis_url"
	keyMaxRequestBytes   = "max_request_bytes"
	keyMetricsEnabled    = "metrics_enabled"
	keyTrustProxyHeaders = "trust_proxy_headers"
)

type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string

	// Upstream LLM
	LLMProvider       string
	LLMModel          string
	LLMMaxTokens      int
	LLMBaseURL        string
	LLMTimeoutSeconds int

	// Credentials, one per provider
	AnthropicAPIKey string
	OpenAIAPIKey    string
	GeminiAPIKey    string

	// CORS
	AllowedOrigins []string
	CORSStrict     bool

	// Knowledge base override; empty means the embedded copy
	KnowledgeBasePath string

	// Abuse controls, zero disables
	RateLimitPerMinute int
	RedisURL           string
	MaxRequestBytes    int64

	// Take the client address from X-Forwarded-For / X-Real-IP. Only safe
	// behind a proxy that overwrites those headers.
	TrustProxyHeaders bool

	MetricsEnabled bool
}

// Load reads configuration from the environment, a .env file and, when
// CONFIG_PATH is set, a YAML file. Environment variables take precedence.
func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	v := viper.New()
	v.SetDefault(keyPort, "8080")
	v.SetDefault(keyEnv, "development")
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyProvider, ProviderAnthropic)
	v.SetDefault(keyModel, "")
	v.SetDefault(keyMaxTokens, 1024)
	v.SetDefault(keyBaseURL, "")
	v.SetDefault(keyTimeoutSeconds, 0)
	v.SetDefault(keyAnthropicAPIKey, "")
	v.SetDefault(keyOpenAIAPIKey, "")
	v.SetDefault(keyGeminiAPIKey, "")
	v.SetDefault(keyAllowedOrigins, DefaultAllowedOrigins)
	v.SetDefault(keyCORSStrict, false)
	v.SetDefault(keyKnowledgeBasePath, "")
	v.SetDefault(keyRateLimit, 0)
	v.SetDefault(keyRedisURL, "")
	v.SetDefault(keyMaxRequestBytes, 0)
	v.SetDefault(keyMetricsEnabled, true)
	v.SetDefault(keyTrustProxyHeaders, false)
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Port:               v.GetString(keyPort),
		Env:                v.GetString(keyEnv),
		LogLevel:           v.GetString(keyLogLevel),
		LLMProvider:        strings.ToLower(strings.TrimSpace(v.GetString(keyProvider))),
		LLMModel:           v.GetString(keyModel),
		LLMMaxTokens:       v.GetInt(keyMaxTokens),
		LLMBaseURL:         v.GetString(keyBaseURL),
		LLMTimeoutSeconds:  v.GetInt(keyTimeoutSeconds),
		AnthropicAPIKey:    v.GetString(keyAnthropicAPIKey),
		OpenAIAPIKey:       v.GetString(keyOpenAIAPIKey),
		GeminiAPIKey:       v.GetString(keyGeminiAPIKey),
		AllowedOrigins:     originList(v),
		CORSStrict:         v.GetBool(keyCORSStrict),
		KnowledgeBasePath:  v.GetString(keyKnowledgeBasePath),
		RateLimitPerMinute: v.GetInt(keyRateLimit),
		RedisURL:           v.GetString(keyRedisURL),
		MaxRequestBytes:    v.GetInt64(keyMaxRequestBytes),
		TrustProxyHeaders:  v.GetBool(keyTrustProxyHeaders),
		MetricsEnabled:     v.GetBool(keyMetricsEnabled),
	}

	if _, ok := defaultModels[cfg.LLMProvider]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.LLMProvider)
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = defaultModels[cfg.LLMProvider]
	}
	if cfg.LLMMaxTokens <= 0 {
		return nil, fmt.Errorf("llm_max_tokens must be positive, got %d", cfg.LLMMaxTokens)
	}

	return cfg, nil
}

// APIKey returns the credential of the selected provider, empty when unset.
func (c *Config) APIKey() string {
	switch c.LLMProvider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderGemini:
		return c.GeminiAPIKey
	default:
		return c.AnthropicAPIKey
	}
}

func originList(v *viper.Viper) []string {
	// Env values arrive as a single comma separated string, YAML as a list.
	if raw, ok := v.Get(keyAllowedOrigins).(string); ok {
		return splitList(raw)
	}
	return v.GetStringSlice(keyAllowedOrigins)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
