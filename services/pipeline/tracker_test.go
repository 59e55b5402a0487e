package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/sahilchouksey/quiz-brain/model"
	"github.com/sahilchouksey/quiz-brain/utils/cache"
	"github.com/sahilchouksey/quiz-brain/utils/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory StateStore
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case string:
		m.data[key] = []byte(v)
	case []byte:
		m.data[key] = v
	default:
		return errors.New("unsupported value")
	}
	m.ttls[key] = expiration
	return nil
}

func (m *memStore) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return m.Set(ctx, key, raw, expiration)
}

func (m *memStore) GetJSON(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	raw, ok := m.data[key]
	m.mu.Unlock()
	if !ok {
		return cache.ErrNotFound
	}
	return json.Unmarshal(raw, dest)
}

func (m *memStore) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *memStore) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for key := range m.data {
		if ok, _ := path.Match(pattern, key); ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func TestTrackerFollowsPipeline(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	tracker := NewTracker(store)

	state, err := tracker.Create(ctx, "job-1", "cells.txt")
	require.NoError(t, err)
	assert.Equal(t, model.StagePending, state.Stage)

	_, err = newPipeline(reply(twoMCQs), nil).Run(ctx, "job-1", Input{Text: testutil.Words(80), RequestedCount: 2}, tracker)
	require.NoError(t, err)

	state, err = tracker.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, model.StageCompleted, state.Stage)
	assert.Equal(t, 100, state.Progress)
	assert.Equal(t, 2, state.QuestionCount)
	require.NotNil(t, state.Metadata)
	assert.Equal(t, model.DocTypeText, state.Metadata.DocType)
	assert.NotNil(t, state.CompletedAt)
	assert.Equal(t, JobStateTTLSuccess, store.ttls["quizjob:state:job-1"])

	require.NoError(t, tracker.SetArtifactID(ctx, "job-1", 42))
	state, err = tracker.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, uint(42), state.ArtifactID)
}

func TestTrackerRecordsFailure(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	tracker := NewTracker(store)
	_, err := tracker.Create(ctx, "job-2", "notes.txt")
	require.NoError(t, err)

	_, err = newPipeline(reply("no questions today"), nil).Run(ctx, "job-2", Input{Text: testutil.Words(80)}, tracker)
	require.Error(t, err)

	state, err := tracker.Get(ctx, "job-2")
	require.NoError(t, err)
	assert.Equal(t, model.StageFailed, state.Stage)
	assert.Equal(t, model.StageParsing, state.FailedStage)
	assert.NotEmpty(t, state.FailureReason)
	assert.Equal(t, JobStateTTLFailure, store.ttls["quizjob:state:job-2"])
}

func TestTrackerGetUnknownJob(t *testing.T) {
	_, err := NewTracker(newMemStore()).Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestTrackerCancellation(t *testing.T) {
	ctx := context.Background()
	tracker := NewTracker(newMemStore())

	assert.ErrorIs(t, tracker.RequestCancel(ctx, "missing"), ErrJobNotFound)

	_, err := tracker.Create(ctx, "job-3", "doc.pdf")
	require.NoError(t, err)
	assert.False(t, tracker.CancelRequested(ctx, "job-3"))
	require.NoError(t, tracker.RequestCancel(ctx, "job-3"))
	assert.True(t, tracker.CancelRequested(ctx, "job-3"))

	tracker.Observe(ctx, Event{JobID: "job-3", From: model.StagePending, To: model.StageFailed, Failure: &model.JobFailure{Stage: model.StagePending, Reason: "cancelled"}})
	assert.ErrorIs(t, tracker.RequestCancel(ctx, "job-3"), ErrJobFinished)
}

func TestTrackerStaleJobs(t *testing.T) {
	ctx := context.Background()
	tracker := NewTracker(newMemStore())
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tracker.now = func() time.Time { return now.Add(-2 * time.Hour) }
	_, err := tracker.Create(ctx, "old", "a.pdf")
	require.NoError(t, err)
	_, err = tracker.Create(ctx, "old-done", "b.pdf")
	require.NoError(t, err)
	tracker.Observe(ctx, Event{JobID: "old-done", To: model.StageCompleted})

	tracker.now = func() time.Time { return now }
	_, err = tracker.Create(ctx, "fresh", "c.pdf")
	require.NoError(t, err)

	stale, err := tracker.Stale(ctx, time.Hour)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "old", stale[0].JobID)

	require.NoError(t, tracker.MarkAbandoned(ctx, stale[0]))
	state, err := tracker.Get(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, model.StageFailed, state.Stage)
	assert.Equal(t, model.StagePending, state.FailedStage)
	assert.Equal(t, "abandoned", state.FailureReason)
}

func TestStageProgressIncreases(t *testing.T) {
	stages := []model.JobStage{model.StagePending, model.StageClassifying, model.StageExtracting, model.StageGenerating, model.StageParsing, model.StageCompleted}
	for i := 1; i < len(stages); i++ {
		assert.Greater(t, StageProgress(stages[i]), StageProgress(stages[i-1]), stages[i])
	}
}
