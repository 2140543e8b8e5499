package driven

import "github.com/custodia-labs/docchat/internal/core/domain"

// AIConfigValidator checks provider settings against the live services
// before they are relied on. Unconfigured settings pass.
type AIConfigValidator interface {
	// ValidateEmbedding embeds a probe string and checks the vector size.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM pings the LLM provider.
	ValidateLLM(config *domain.LLMSettings) error
}
