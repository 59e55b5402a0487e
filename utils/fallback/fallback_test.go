package fallback

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nonBlank(s string) bool { return strings.TrimSpace(s) != "" }

func TestRunReturnsFirstAcceptedResult(t *testing.T) {
	calls := 0
	result, outcome, err := Run(context.Background(), nonBlank,
		Step[string]{Name: "a", Run: func(ctx context.Context) (string, error) { calls++; return "", errors.New("boom") }},
		Step[string]{Name: "b", Run: func(ctx context.Context) (string, error) { calls++; return "  ", nil }},
		Step[string]{Name: "c", Run: func(ctx context.Context) (string, error) { calls++; return "text", nil }},
		Step[string]{Name: "d", Run: func(ctx context.Context) (string, error) { calls++; return "never", nil }},
	)

	require.NoError(t, err)
	assert.Equal(t, "text", result)
	assert.Equal(t, "c", outcome.Winner)
	assert.Equal(t, []string{"a", "b", "c"}, outcome.Attempts)
	assert.Equal(t, 3, calls)
}

func TestRunJoinsErrorsWhenExhausted(t *testing.T) {
	boom := errors.New("boom")
	_, outcome, err := Run(context.Background(), nonBlank,
		Step[string]{Name: "a", Run: func(ctx context.Context) (string, error) { return "", boom }},
		Step[string]{Name: "b", Run: func(ctx context.Context) (string, error) { return "", nil }},
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, ErrRejected)
	assert.Empty(t, outcome.Winner)
	assert.Len(t, outcome.Attempts, 2)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, outcome, err := Run(ctx, nil,
		Step[int]{Name: "a", Run: func(ctx context.Context) (int, error) { return 1, nil }},
	)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, outcome.Attempts)
}
