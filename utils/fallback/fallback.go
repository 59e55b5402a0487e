package fallback

import (
	"context"
	"errors"
	"fmt"
)

// ErrRejected is recorded for a step whose result failed the acceptance check
var ErrRejected = errors.New("result rejected")

// Step is one alternative in a fallback chain
type Step[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

// Outcome describes which step produced a result
type Outcome struct {
	Winner   string
	Attempts []string
}

// Run tries each step in order and returns the first result that is
// accepted. A nil accept function accepts any result without error. When
// every step fails the joined step errors are returned.
func Run[T any](ctx context.Context, accept func(T) bool, steps ...Step[T]) (T, Outcome, error) {
	var (
		zero    T
		outcome Outcome
		errs    []error
	)

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		outcome.Attempts = append(outcome.Attempts, step.Name)
		result, err := step.Run(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", step.Name, err))
			continue
		}
		if accept != nil && !accept(result) {
			errs = append(errs, fmt.Errorf("%s: %w", step.Name, ErrRejected))
			continue
		}

		outcome.Winner = step.Name
		return result, outcome, nil
	}

	if len(errs) == 0 {
		errs = append(errs, errors.New("no strategies configured"))
	}
	return zero, outcome, errors.Join(errs...)
}
