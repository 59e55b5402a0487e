package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/quiz-brain/model"
	"github.com/sahilchouksey/quiz-brain/utils/cache"
)

// TTL configurations for job states
const (
	JobStateTTLSuccess = 1 * time.Hour  // 1 hour for completed jobs
	JobStateTTLFailure = 24 * time.Hour // 24 hours for failed jobs
	JobStateTTLPending = 24 * time.Hour // 24 hours for running jobs
	JobCancelTTL       = 1 * time.Hour
)

var (
	// ErrJobNotFound is returned for unknown or expired job ids
	ErrJobNotFound = errors.New("job not found or expired")
	// ErrJobFinished is returned when cancelling a completed or failed job
	ErrJobFinished = errors.New("job already finished")
)

// StateStore is the part of the Redis cache the tracker needs
type StateStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetJSON(ctx context.Context, key string, dest interface{}) error
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, keys ...string) error
	Keys(ctx context.Context, pattern string) ([]string, error)
}

// Tracker keeps job state in Redis so any API instance can report it
type Tracker struct {
	store StateStore
	now   func() time.Time
}

// NewTracker creates a tracker over a state store
func NewTracker(store StateStore) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// Create stores a new pending job
func (t *Tracker) Create(ctx context.Context, jobID, source string) (*model.JobState, error) {
	now := t.now()
	state := &model.JobState{
		JobID:          jobID,
		SourceDocument: source,
		Stage:          model.StagePending,
		Message:        "Job queued",
		StartedAt:      now,
		UpdatedAt:      now,
	}
	if err := t.store.SetJSON(ctx, stateKey(jobID), state, JobStateTTLPending); err != nil {
		return nil, fmt.Errorf("failed to save job state: %w", err)
	}
	return state, nil
}

// Get retrieves job state
func (t *Tracker) Get(ctx context.Context, jobID string) (*model.JobState, error) {
	var state model.JobState
	if err := t.store.GetJSON(ctx, stateKey(jobID), &state); err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
		}
		return nil, fmt.Errorf("failed to get job state: %w", err)
	}
	return &state, nil
}

// Observe records a pipeline transition. Store errors are logged, never
// returned: a broken progress store must not fail the job.
func (t *Tracker) Observe(ctx context.Context, ev Event) {
	state, err := t.Get(ctx, ev.JobID)
	if err != nil {
		log.Warnf("Tracker: no state for job %s, recreating: %v", ev.JobID, err)
		state = &model.JobState{JobID: ev.JobID, StartedAt: t.now()}
	}

	now := t.now()
	state.Stage = ev.To
	state.Progress = StageProgress(ev.To)
	state.Message = ev.Message
	state.UpdatedAt = now
	if ev.Metadata != nil {
		meta := *ev.Metadata
		state.Metadata = &meta
	}
	if ev.QuestionCount > 0 {
		state.QuestionCount = ev.QuestionCount
	}
	if ev.Failure != nil {
		state.FailedStage = ev.Failure.Stage
		state.FailureReason = ev.Failure.Reason
	}
	if ev.To.Terminal() {
		state.CompletedAt = &now
	}

	if err := t.store.SetJSON(ctx, stateKey(ev.JobID), state, ttlFor(state.Stage)); err != nil {
		log.Errorf("Tracker: failed to update job %s: %v", ev.JobID, err)
	}
}

// SetArtifactID links a completed job to its stored artifact
func (t *Tracker) SetArtifactID(ctx context.Context, jobID string, artifactID uint) error {
	state, err := t.Get(ctx, jobID)
	if err != nil {
		return err
	}
	state.ArtifactID = artifactID
	state.UpdatedAt = t.now()
	return t.store.SetJSON(ctx, stateKey(jobID), state, ttlFor(state.Stage))
}

// RequestCancel sets the cancellation flag read by the instance running the job
func (t *Tracker) RequestCancel(ctx context.Context, jobID string) error {
	state, err := t.Get(ctx, jobID)
	if err != nil {
		return err
	}
	if state.Stage.Terminal() {
		return fmt.Errorf("%w: %s is %s", ErrJobFinished, jobID, state.Stage)
	}
	return t.store.Set(ctx, cancelKey(jobID), "1", JobCancelTTL)
}

// CancelRequested reports whether a client asked to cancel the job
func (t *Tracker) CancelRequested(ctx context.Context, jobID string) bool {
	ok, err := t.store.Exists(ctx, cancelKey(jobID))
	return err == nil && ok
}

// Stale returns running jobs that have not moved for longer than maxAge
func (t *Tracker) Stale(ctx context.Context, maxAge time.Duration) ([]model.JobState, error) {
	keys, err := t.store.Keys(ctx, model.RedisKeyJobStatePattern)
	if err != nil {
		return nil, err
	}

	cutoff := t.now().Add(-maxAge)
	var stale []model.JobState
	for _, key := range keys {
		var state model.JobState
		if err := t.store.GetJSON(ctx, key, &state); err != nil {
			continue
		}
		if !state.Stage.Terminal() && state.UpdatedAt.Before(cutoff) {
			stale = append(stale, state)
		}
	}
	return stale, nil
}

// MarkAbandoned fails a job whose runner disappeared
func (t *Tracker) MarkAbandoned(ctx context.Context, state model.JobState) error {
	now := t.now()
	state.FailedStage = state.Stage
	state.FailureReason = "abandoned"
	state.Stage = model.StageFailed
	state.Message = "Job stopped reporting progress"
	state.UpdatedAt = now
	state.CompletedAt = &now
	if err := t.store.SetJSON(ctx, stateKey(state.JobID), state, JobStateTTLFailure); err != nil {
		return err
	}
	return t.store.Delete(ctx, cancelKey(state.JobID))
}

// StageProgress maps a stage to a coarse percentage
func StageProgress(stage model.JobStage) int {
	switch stage {
	case model.StagePending:
		return 0
	case model.StageClassifying:
		return 5
	case model.StageExtracting:
		return 15
	case model.StageGenerating:
		return 40
	case model.StageParsing:
		return 85
	case model.StageCompleted, model.StageFailed:
		return 100
	}
	return 0
}

func ttlFor(stage model.JobStage) time.Duration {
	switch stage {
	case model.StageCompleted:
		return JobStateTTLSuccess
	case model.StageFailed:
		return JobStateTTLFailure
	}
	return JobStateTTLPending
}

func stateKey(jobID string) string  { return fmt.Sprintf(model.RedisKeyJobState, jobID) }
func cancelKey(jobID string) string { return fmt.Sprintf(model.RedisKeyJobCancel, jobID) }
