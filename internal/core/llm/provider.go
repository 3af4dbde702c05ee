package llm

import "context"

// Message is one role-tagged entry of an ordered conversation context.
type Message struct {
	Role    string
	Content string
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Options are the sampling parameters for a single completion.
type Options struct {
	Temperature float32
	MaxTokens   int
}

// LLMProvider interface for multiple AI providers
type LLMProvider interface {
	GenerateChat(ctx context.Context, messages []Message, opts Options) (string, error)
	GetProviderName() string
}

// ProviderType for factory
type ProviderType string

const (
	ProviderOpenAI   ProviderType = "openai"
	ProviderGroq     ProviderType = "groq"
	ProviderDeepSeek ProviderType = "deepseek"
)

// ProviderConfig to create a provider
type ProviderConfig struct {
	Type ProviderType

	// API keys
	OpenAIKey   string
	GroqKey     string
	DeepSeekKey string

	Model string
}

// NewProvider factory to create an LLM provider
func NewProvider(cfg *ProviderConfig) (LLMProvider, error) {
	switch cfg.Type {
	case ProviderOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, ErrMissingAPIKey("OPENAI_API_KEY")
		}
		return NewOpenAIProvider(cfg.OpenAIKey, cfg.Model), nil

	case ProviderGroq:
		if cfg.GroqKey == "" {
			return nil, ErrMissingAPIKey("GROQ_API_KEY")
		}
		return NewGroqProvider(cfg.GroqKey, cfg.Model), nil

	case ProviderDeepSeek:
		if cfg.DeepSeekKey == "" {
			return nil, ErrMissingAPIKey("DEEPSEEK_API_KEY")
		}
		return NewDeepSeekProvider(cfg.DeepSeekKey, cfg.Model), nil

	default:
		return nil, &ConfigError{Reason: "unknown LLM provider type: " + string(cfg.Type)}
	}
}

// ConfigError marks a required external capability as unavailable. It is
// fatal at startup; there is no retry.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "llm configuration: " + e.Reason
}

func ErrMissingAPIKey(name string) error {
	return &ConfigError{Reason: name + " is required"}
}
