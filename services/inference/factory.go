package inference

import (
	"context"
	"fmt"

	"github.com/sahilchouksey/quiz-brain/config"
)

// NewClientFromEnv builds the shared model client from the environment
func NewClientFromEnv(ctx context.Context, env *config.EnviornmentVariable) (*Client, error) {
	var (
		provider     Provider
		defaultModel = env.QA_MODEL
	)

	switch env.MODEL_PROVIDER {
	case "gemini":
		gemini, err := NewGeminiProvider(ctx, env.GEMINI_API_KEY)
		if err != nil {
			return nil, err
		}
		provider = gemini
		if defaultModel == "" {
			defaultModel = DefaultGeminiModel
		}
	case "openai", "":
		provider = NewOpenAIProvider(OpenAIConfig{
			APIKey:  env.MODEL_ACCESS_KEY,
			BaseURL: env.MODEL_BASE_URL,
		})
		if defaultModel == "" {
			defaultModel = DefaultInferenceModel
		}
	default:
		return nil, fmt.Errorf("unknown MODEL_PROVIDER %q", env.MODEL_PROVIDER)
	}

	return NewClient(Config{
		Provider:      provider,
		DefaultModel:  defaultModel,
		FallbackModel: env.FALLBACK_MODEL,
		Retry: &RetryConfig{
			MaxRetries:   env.MAX_RETRIES,
			InitialDelay: env.INITIAL_RETRY_DELAY,
			MaxDelay:     env.MAX_RETRY_DELAY,
			Jitter:       DefaultJitter,
		},
		BatchSize:   env.RATE_LIMIT_BATCH_SIZE,
		Cooldown:    env.RATE_LIMIT_COOLDOWN,
		CallTimeout: env.MODEL_CALL_TIMEOUT,
	}), nil
}
