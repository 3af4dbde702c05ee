package llm

import "context"

// Service wraps an LLM provider for dependency injection. Providers are
// constructed once at process startup and handed to each orchestrator;
// there is no lazily built package-level client.
type Service struct {
	provider LLMProvider
}

func NewService(provider LLMProvider) *Service {
	return &Service{provider: provider}
}

// GenerateChat returns a single completion for an ordered message context.
func (s *Service) GenerateChat(ctx context.Context, messages []Message, opts Options) (string, error) {
	return s.provider.GenerateChat(ctx, messages, opts)
}

func (s *Service) GetProviderName() string {
	return s.provider.GetProviderName()
}
