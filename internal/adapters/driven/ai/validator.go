package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// DefaultValidateTimeout bounds each provider check.
const DefaultValidateTimeout = 10 * time.Second

// probeText is embedded to confirm the model's output dimensions.
const probeText = "docchat"

// ConfigValidator checks provider settings against the live services.
type ConfigValidator struct {
	timeout time.Duration
}

// ValidatorOption configures a ConfigValidator.
type ValidatorOption func(*ConfigValidator)

// WithValidateTimeout sets the deadline for each check.
func WithValidateTimeout(d time.Duration) ValidatorOption {
	return func(v *ConfigValidator) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// NewConfigValidator creates a validator.
func NewConfigValidator(opts ...ValidatorOption) *ConfigValidator {
	v := &ConfigValidator{timeout: DefaultValidateTimeout}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateEmbedding embeds a probe string and, for models with a known
// size, checks the vector length against it. Unconfigured settings pass.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()

	svc, err := CreateEmbeddingService(ctx, config)
	if err != nil {
		return fmt.Errorf("%w: %w. %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	want := domain.EmbeddingDimensions()[config.Model]
	vector, err := svc.Embed(ctx, probeText)
	if err != nil {
		return fmt.Errorf("%w: %s unreachable (%w). %s", domain.ErrEmbeddingUnavailable, config.Provider, err, fixHint)
	}
	if want > 0 && len(vector) != want {
		return fmt.Errorf("%w: %s returned %d dimensions, expected %d",
			domain.ErrDimensionMismatch, svc.ModelName(), len(vector), want)
	}
	return nil
}

// ValidateLLM pings the configured LLM provider. Unconfigured settings pass.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()

	svc, err := CreateLLMService(ctx, config)
	if err != nil {
		return fmt.Errorf("%w: %w. %s", domain.ErrLLMUnavailable, err, fixHint)
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %s unreachable (%w). %s", domain.ErrLLMUnavailable, config.Provider, err, fixHint)
	}
	return nil
}
