package cron

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sahilchouksey/quiz-brain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweeper struct {
	stale  []model.JobState
	marked []string
	failOn string
}

func (f *fakeSweeper) Stale(ctx context.Context, maxAge time.Duration) ([]model.JobState, error) {
	return f.stale, nil
}

func (f *fakeSweeper) MarkAbandoned(ctx context.Context, state model.JobState) error {
	if state.JobID == f.failOn {
		return errors.New("redis down")
	}
	f.marked = append(f.marked, state.JobID)
	return nil
}

type fakeObjects struct {
	prefix  string
	keys    []string
	deleted []string
}

func (f *fakeObjects) ListOlderThan(ctx context.Context, prefix string, cutoff time.Time) ([]string, error) {
	f.prefix = prefix
	return f.keys, nil
}

func (f *fakeObjects) DeleteFile(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

type fakePruner struct {
	cutoff time.Time
}

func (f *fakePruner) DeleteArtifactsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return 3, nil
}

func TestMarkStaleJobs(t *testing.T) {
	sweeper := &fakeSweeper{
		stale:  []model.JobState{{JobID: "a"}, {JobID: "b"}, {JobID: "c"}},
		failOn: "b",
	}
	m := NewCronManager(DefaultConfig(""), sweeper, nil, nil)

	msg, err := m.MarkStaleJobs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, sweeper.marked)
	assert.Equal(t, "marked 2 of 3 stale jobs", msg)
}

func TestCleanupTempUploads(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	write := func(name string, age time.Duration) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		require.NoError(t, os.Chtimes(path, now.Add(-age), now.Add(-age)))
		return path
	}
	old := write(UploadFilePrefix+"old.pdf", 7*time.Hour)
	fresh := write(UploadFilePrefix+"fresh.pdf", time.Hour)
	foreign := write("notes.pdf", 48*time.Hour)

	m := NewCronManager(DefaultConfig(dir), nil, nil, nil)
	m.now = func() time.Time { return now }

	msg, err := m.CleanupTempUploads(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "removed 1 temp uploads", msg)

	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh)
	assert.FileExists(t, foreign)
}

func TestCleanupRemoteData(t *testing.T) {
	now := time.Date(2025, 5, 10, 3, 0, 0, 0, time.UTC)
	objects := &fakeObjects{keys: []string{"uploads/1_a.pdf", "uploads/2_b.png"}}
	pruner := &fakePruner{}

	cfg := DefaultConfig("")
	cfg.ArtifactRetention = 30 * 24 * time.Hour
	m := NewCronManager(cfg, nil, objects, pruner)
	m.now = func() time.Time { return now }

	msg, err := m.CleanupRemoteData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "uploads/", objects.prefix)
	assert.Equal(t, objects.keys, objects.deleted)
	assert.Equal(t, now.Add(-30*24*time.Hour), pruner.cutoff)
	assert.Equal(t, "deleted 2 uploads, deleted 3 artifacts", msg)

	msg, err = NewCronManager(DefaultConfig(""), nil, nil, nil).CleanupRemoteData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "nothing to clean", msg)
}

func TestRegisterJobs(t *testing.T) {
	m := NewCronManager(DefaultConfig(t.TempDir()), nil, nil, nil)
	require.NoError(t, m.registerJobs())
	assert.Len(t, m.cron.Entries(), 3)
}

type fakeRecorder struct {
	runs   []model.CronRun
	cutoff time.Time
}

func (f *fakeRecorder) RecordCronRun(ctx context.Context, run *model.CronRun) error {
	if run.ID == 0 {
		run.ID = uint(len(f.runs) + 1)
	}
	f.runs = append(f.runs, *run)
	return nil
}

func (f *fakeRecorder) DeleteCronRunsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return 5, nil
}

func TestRunJobRecordsHistory(t *testing.T) {
	recorder := &fakeRecorder{}
	m := NewCronManager(DefaultConfig(""), nil, nil, nil)
	m.SetRecorder(recorder)

	m.runJob("ok", func(ctx context.Context) (string, error) { return "all good", nil })
	m.runJob("broken", func(ctx context.Context) (string, error) { return "", errors.New("spaces unreachable") })

	require.Len(t, recorder.runs, 4)
	assert.Equal(t, model.CronRunStarted, recorder.runs[0].Status)
	assert.Equal(t, model.CronRunCompleted, recorder.runs[1].Status)
	assert.Equal(t, recorder.runs[0].ID, recorder.runs[1].ID, "the started row is updated in place")
	assert.Equal(t, "all good", recorder.runs[1].Message)
	require.NotNil(t, recorder.runs[1].CompletedAt)

	assert.Equal(t, "broken", recorder.runs[3].JobName)
	assert.Equal(t, model.CronRunFailed, recorder.runs[3].Status)
	assert.Equal(t, "spaces unreachable", recorder.runs[3].Error)
}

func TestCleanupRemoteDataPrunesRunHistory(t *testing.T) {
	now := time.Date(2025, 5, 10, 3, 0, 0, 0, time.UTC)
	recorder := &fakeRecorder{}
	m := NewCronManager(DefaultConfig(""), nil, nil, nil)
	m.SetRecorder(recorder)
	m.now = func() time.Time { return now }

	msg, err := m.CleanupRemoteData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "deleted 5 cron runs", msg)
	assert.Equal(t, now.Add(-7*24*time.Hour), recorder.cutoff)
}
