package inference

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/sahilchouksey/quiz-brain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	mu    sync.Mutex
	calls int
	reply func(call int) (string, error)
}

func (m *fakeModel) Generate(ctx context.Context, req Request) (string, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	m.mu.Unlock()
	return m.reply(call)
}

func (m *fakeModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type fakeProvider struct {
	mu      sync.Mutex
	models  map[string]*fakeModel
	created map[string]int
}

func newFakeProvider(models map[string]*fakeModel) *fakeProvider {
	return &fakeProvider{models: models, created: map[string]int{}}
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Model(name string) (Model, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.models[name]
	if !ok {
		return nil, errors.New("unknown model " + name)
	}
	p.created[name]++
	return m, nil
}

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return nil
}

func rateLimited(call int) (string, error) {
	return "", &APIError{Provider: "fake", StatusCode: http.StatusTooManyRequests, Message: "slow down"}
}

func newTestClient(provider Provider, fallback string, maxRetries int) (*Client, *sleepRecorder) {
	client := NewClient(Config{
		Provider:      provider,
		DefaultModel:  "primary",
		FallbackModel: fallback,
		Retry: &RetryConfig{
			MaxRetries:   maxRetries,
			InitialDelay: 2 * time.Second,
			MaxDelay:     time.Hour,
			Jitter:       0.2,
		},
		BatchSize: 1000,
		Cooldown:  10 * time.Second,
	})
	rec := &sleepRecorder{}
	client.sleep = rec.sleep
	return client, rec
}

func TestGenerateRetriesRateLimitedCalls(t *testing.T) {
	const maxRetries = 5
	primary := &fakeModel{reply: rateLimited}
	client, rec := newTestClient(newFakeProvider(map[string]*fakeModel{"primary": primary}), "", maxRetries)

	_, err := client.Generate(context.Background(), Request{Prompt: "q"}, "")
	require.Error(t, err)

	var genErr *model.GenerationError
	require.ErrorAs(t, err, &genErr)
	var exhausted *RetryExhaustedError
	require.ErrorAs(t, err, &exhausted)

	assert.Equal(t, maxRetries+1, primary.Calls())
	require.Len(t, rec.delays, maxRetries)

	base := 2 * time.Second
	for i, delay := range rec.delays {
		expected := float64(base) * float64(int(1)<<i)
		assert.GreaterOrEqual(t, float64(delay), expected*0.8-1, "delay before attempt %d", i+2)
		assert.LessOrEqual(t, float64(delay), expected*1.2+1, "delay before attempt %d", i+2)
	}
}

func TestGenerateDelaysAreCapped(t *testing.T) {
	primary := &fakeModel{reply: rateLimited}
	client, rec := newTestClient(newFakeProvider(map[string]*fakeModel{"primary": primary}), "", 6)
	client.retry.MaxDelay = 10 * time.Second

	_, err := client.Generate(context.Background(), Request{Prompt: "q"}, "primary")
	require.Error(t, err)

	for _, delay := range rec.delays {
		assert.LessOrEqual(t, delay, 10*time.Second)
	}
}

func TestGenerateSucceedsAfterTransientFailures(t *testing.T) {
	primary := &fakeModel{reply: func(call int) (string, error) {
		if call < 3 {
			return "", &APIError{Provider: "fake", StatusCode: http.StatusServiceUnavailable, Message: "busy"}
		}
		return `{"questions": []}`, nil
	}}
	client, rec := newTestClient(newFakeProvider(map[string]*fakeModel{"primary": primary}), "", 5)

	text, err := client.Generate(context.Background(), Request{Prompt: "q"}, "")
	require.NoError(t, err)
	assert.Equal(t, `{"questions": []}`, text)
	assert.Equal(t, 3, primary.Calls())
	assert.Len(t, rec.delays, 2)
}

func TestGenerateDoesNotRetryOtherErrors(t *testing.T) {
	primary := &fakeModel{reply: func(call int) (string, error) {
		return "", &APIError{Provider: "fake", StatusCode: http.StatusBadRequest, Message: "bad prompt"}
	}}
	fallback := &fakeModel{reply: func(call int) (string, error) { return "ok", nil }}
	client, rec := newTestClient(newFakeProvider(map[string]*fakeModel{"primary": primary, "backup": fallback}), "backup", 5)

	_, err := client.Generate(context.Background(), Request{Prompt: "q"}, "")
	require.Error(t, err)
	assert.Equal(t, 1, primary.Calls())
	assert.Equal(t, 0, fallback.Calls())
	assert.Empty(t, rec.delays)
}

func TestGenerateFallsBackOnceAfterExhaustion(t *testing.T) {
	primary := &fakeModel{reply: rateLimited}
	fallback := &fakeModel{reply: func(call int) (string, error) { return "from fallback", nil }}
	client, _ := newTestClient(newFakeProvider(map[string]*fakeModel{"primary": primary, "backup": fallback}), "backup", 2)

	text, err := client.Generate(context.Background(), Request{Prompt: "q"}, "")
	require.NoError(t, err)
	assert.Equal(t, "from fallback", text)
	assert.Equal(t, 3, primary.Calls())
	assert.Equal(t, 1, fallback.Calls())
}

func TestGenerateFallbackFailureIsFinal(t *testing.T) {
	primary := &fakeModel{reply: rateLimited}
	fallback := &fakeModel{reply: rateLimited}
	client, _ := newTestClient(newFakeProvider(map[string]*fakeModel{"primary": primary, "backup": fallback}), "backup", 1)

	_, err := client.Generate(context.Background(), Request{Prompt: "q"}, "")
	var genErr *model.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "backup", genErr.Model)
	assert.Equal(t, 2, primary.Calls())
	assert.Equal(t, 1, fallback.Calls())
}

func TestGenerateTreatsBlankTextAsError(t *testing.T) {
	primary := &fakeModel{reply: func(call int) (string, error) { return "   \n", nil }}
	client, _ := newTestClient(newFakeProvider(map[string]*fakeModel{"primary": primary}), "", 3)

	_, err := client.Generate(context.Background(), Request{Prompt: "q"}, "")
	assert.ErrorIs(t, err, ErrEmptyResponse)
	assert.Equal(t, 1, primary.Calls())
}

func TestModelHandlesAreCached(t *testing.T) {
	primary := &fakeModel{reply: func(call int) (string, error) { return "ok", nil }}
	provider := newFakeProvider(map[string]*fakeModel{"primary": primary})
	client, _ := newTestClient(provider, "", 3)

	for i := 0; i < 3; i++ {
		_, err := client.Generate(context.Background(), Request{Prompt: "q"}, "primary")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, provider.created["primary"])
}

func TestGenerateCoolsDownAfterBatch(t *testing.T) {
	primary := &fakeModel{reply: func(call int) (string, error) { return "ok", nil }}
	client, rec := newTestClient(newFakeProvider(map[string]*fakeModel{"primary": primary}), "", 3)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	client.limiter = NewCooldownLimiter(3, 10*time.Second)
	client.limiter.lastCooldown = start
	client.limiter.now = func() time.Time { return start.Add(4 * time.Second) }

	for i := 0; i < 3; i++ {
		_, err := client.Generate(context.Background(), Request{Prompt: "q"}, "")
		require.NoError(t, err)
	}

	require.Len(t, rec.delays, 1)
	assert.Equal(t, 6*time.Second, rec.delays[0])
	assert.Equal(t, 0, client.limiter.count)
}

func TestCooldownLimiterSharedAcrossGoroutines(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	window := 10 * time.Second
	limiter := NewCooldownLimiter(3, window)
	limiter.lastCooldown = start
	limiter.now = func() time.Time { return start }

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		waits []time.Duration
	)
	for i := 0; i < 9; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wait := limiter.Reserve()
			mu.Lock()
			waits = append(waits, wait)
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.ElementsMatch(t, []time.Duration{
		0, 0,
		window, window, window,
		2 * window, 2 * window, 2 * window,
		3 * window,
	}, waits)

	perWindow := map[time.Duration]int{}
	for _, wait := range waits {
		perWindow[wait/window]++
	}
	for w, n := range perWindow {
		assert.LessOrEqual(t, n, 3, "window %d", w)
	}
}

func TestCooldownLimiterHoldsRequestsDuringCooldown(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	limiter := NewCooldownLimiter(3, 10*time.Second)
	limiter.lastCooldown = start
	limiter.now = func() time.Time { return now }

	assert.Equal(t, time.Duration(0), limiter.Reserve())
	assert.Equal(t, time.Duration(0), limiter.Reserve())
	assert.Equal(t, 10*time.Second, limiter.Reserve())

	// a caller arriving while the third request still sleeps is held too
	now = start.Add(2 * time.Second)
	assert.Equal(t, 8*time.Second, limiter.Reserve())

	// once the cooldown has passed requests go straight out again
	now = start.Add(11 * time.Second)
	assert.Equal(t, time.Duration(0), limiter.Reserve())
	assert.Equal(t, 9*time.Second, limiter.Reserve())
}

func TestCalculateBackoff(t *testing.T) {
	cfg := RetryConfig{InitialDelay: time.Second, MaxDelay: 5 * time.Second}

	assert.Equal(t, time.Second, CalculateBackoff(1, cfg, 1))
	assert.Equal(t, 2*time.Second, CalculateBackoff(2, cfg, 1))
	assert.Equal(t, 4*time.Second, CalculateBackoff(3, cfg, 1))
	assert.Equal(t, 5*time.Second, CalculateBackoff(4, cfg, 1))
	assert.Equal(t, 1200*time.Millisecond, CalculateBackoff(1, cfg, 1.2))
}
