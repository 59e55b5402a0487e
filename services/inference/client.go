package inference

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/quiz-brain/model"
)

const (
	// DefaultCallTimeout bounds a single provider call
	DefaultCallTimeout = 2 * time.Minute
	// DefaultJitter is the relative spread applied to every backoff delay
	DefaultJitter = 0.2
)

// RetryConfig holds retry configuration for rate-limited requests
type RetryConfig struct {
	MaxRetries   int           // Retries after the first attempt (default: 5)
	InitialDelay time.Duration // Delay before the first retry (default: 2s)
	MaxDelay     time.Duration // Upper bound for any delay (default: 60s)
	Jitter       float64       // Relative jitter, 0.2 means ±20%
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   5,
		InitialDelay: 2 * time.Second,
		MaxDelay:     60 * time.Second,
		Jitter:       DefaultJitter,
	}
}

// Config holds configuration for the model client
type Config struct {
	Provider      Provider
	DefaultModel  string
	FallbackModel string
	Retry         *RetryConfig
	BatchSize     int
	Cooldown      time.Duration
	CallTimeout   time.Duration
}

// Client wraps every call to the generative model provider with the batch
// cooldown, retry with exponential backoff and the fallback model. A single
// Client is built at startup and shared by all jobs.
type Client struct {
	provider      Provider
	defaultModel  string
	fallbackModel string
	retry         RetryConfig
	limiter       *CooldownLimiter
	callTimeout   time.Duration

	mu     sync.Mutex
	models map[string]Model

	// replaced in tests
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() float64
}

// NewClient creates a new model client
func NewClient(config Config) *Client {
	retry := DefaultRetryConfig()
	if config.Retry != nil {
		retry = *config.Retry
	}
	if retry.Jitter < 0 || retry.Jitter >= 1 {
		retry.Jitter = DefaultJitter
	}
	if config.CallTimeout <= 0 {
		config.CallTimeout = DefaultCallTimeout
	}

	c := &Client{
		provider:      config.Provider,
		defaultModel:  config.DefaultModel,
		fallbackModel: config.FallbackModel,
		retry:         retry,
		limiter:       NewCooldownLimiter(config.BatchSize, config.Cooldown),
		callTimeout:   config.CallTimeout,
		models:        make(map[string]Model),
		sleep:         sleepContext,
	}
	c.jitter = func() float64 {
		return 1 + (rand.Float64()*2-1)*c.retry.Jitter
	}
	return c
}

// DefaultModel returns the model used when callers pass an empty name
func (c *Client) DefaultModel() string {
	return c.defaultModel
}

// ProviderName returns the name of the underlying provider
func (c *Client) ProviderName() string {
	return c.provider.Name()
}

// Generate sends one request. An empty modelName selects the default model.
func (c *Client) Generate(ctx context.Context, req Request, modelName string) (string, error) {
	if modelName == "" {
		modelName = c.defaultModel
	}

	if wait := c.limiter.Reserve(); wait > 0 {
		log.Infof("ModelClient: batch limit reached, cooling down for %s", wait.Round(time.Millisecond))
		if err := c.sleep(ctx, wait); err != nil {
			return "", &model.GenerationError{Model: modelName, Err: err}
		}
	}

	text, err := c.generateWithRetry(ctx, req, modelName)
	if err == nil {
		return text, nil
	}

	var exhausted *RetryExhaustedError
	if errors.As(err, &exhausted) && c.fallbackModel != "" && c.fallbackModel != modelName {
		log.Warnf("ModelClient: %s exhausted %d attempts, trying fallback model %s", modelName, exhausted.Attempts, c.fallbackModel)
		text, fallbackErr := c.attempt(ctx, req, c.fallbackModel)
		if fallbackErr == nil {
			return text, nil
		}
		return "", &model.GenerationError{Model: c.fallbackModel, Err: fmt.Errorf("fallback after %w: %v", err, fallbackErr)}
	}

	return "", &model.GenerationError{Model: modelName, Err: err}
}

// generateWithRetry makes up to MaxRetries+1 attempts against one model
func (c *Client) generateWithRetry(ctx context.Context, req Request, modelName string) (string, error) {
	for attempt := 1; ; attempt++ {
		text, err := c.attempt(ctx, req, modelName)
		if err == nil {
			return text, nil
		}
		if !IsRetryable(err) {
			return "", err
		}
		if attempt > c.retry.MaxRetries {
			return "", &RetryExhaustedError{Model: modelName, Attempts: attempt, Err: err}
		}

		delay := CalculateBackoff(attempt, c.retry, c.jitter())
		log.Warnf("ModelClient: %s attempt %d/%d failed (%v), retrying in %s",
			modelName, attempt, c.retry.MaxRetries+1, err, delay.Round(time.Millisecond))
		if err := c.sleep(ctx, delay); err != nil {
			return "", err
		}
	}
}

// attempt performs a single provider call under the call-level timeout
func (c *Client) attempt(ctx context.Context, req Request, modelName string) (string, error) {
	handle, err := c.model(modelName)
	if err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	text, err := handle.Generate(callCtx, req)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// model returns the cached handle for name, creating it on first use
func (c *Client) model(name string) (Model, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.models[name]; ok {
		return m, nil
	}
	m, err := c.provider.Model(name)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize model %s: %w", name, err)
	}
	c.models[name] = m
	return m, nil
}

// CalculateBackoff returns the delay after the given failed attempt
// (1-indexed): initialDelay * 2^(attempt-1) scaled by jitter, capped at maxDelay
func CalculateBackoff(attempt int, config RetryConfig, jitter float64) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := float64(config.InitialDelay) * float64(uint64(1)<<uint(min(attempt-1, 32)))
	delay := time.Duration(base * jitter)
	if config.MaxDelay > 0 && delay > config.MaxDelay {
		return config.MaxDelay
	}
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
