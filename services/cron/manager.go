package cron

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/robfig/cron/v3"
	"github.com/sahilchouksey/quiz-brain/model"
)

// JobSweeper finds and fails jobs whose runner stopped reporting
type JobSweeper interface {
	Stale(ctx context.Context, maxAge time.Duration) ([]model.JobState, error)
	MarkAbandoned(ctx context.Context, state model.JobState) error
}

// ObjectStore is the part of Spaces the cleanup jobs use
type ObjectStore interface {
	ListOlderThan(ctx context.Context, prefix string, cutoff time.Time) ([]string, error)
	DeleteFile(ctx context.Context, key string) error
}

// ArtifactPruner removes expired artifacts
type ArtifactPruner interface {
	DeleteArtifactsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RunRecorder keeps the history of job executions
type RunRecorder interface {
	RecordCronRun(ctx context.Context, run *model.CronRun) error
	DeleteCronRunsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Config holds the cleanup thresholds
type Config struct {
	UploadDir         string
	TempFileMaxAge    time.Duration // local uploads left behind by crashed jobs
	StaleJobAfter     time.Duration
	RemoteUploadTTL   time.Duration
	ArtifactRetention time.Duration // 0 keeps artifacts forever
	RunHistory        time.Duration
}

// DefaultConfig returns the default thresholds
func DefaultConfig(uploadDir string) Config {
	return Config{
		UploadDir:       uploadDir,
		TempFileMaxAge:  6 * time.Hour,
		StaleJobAfter:   30 * time.Minute,
		RemoteUploadTTL: 24 * time.Hour,
		RunHistory:      7 * 24 * time.Hour,
	}
}

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron      *cron.Cron
	cfg       Config
	jobs      JobSweeper
	objects   ObjectStore
	artifacts ArtifactPruner
	recorder  RunRecorder
	now       func() time.Time
}

// NewCronManager creates a new cron manager. objects and artifacts may be
// nil when Spaces or the database are not configured.
func NewCronManager(cfg Config, jobs JobSweeper, objects ObjectStore, artifacts ArtifactPruner) *CronManager {
	return &CronManager{
		cron:      cron.New(cron.WithSeconds()),
		cfg:       cfg,
		jobs:      jobs,
		objects:   objects,
		artifacts: artifacts,
		now:       time.Now,
	}
}

// SetRecorder enables run history
func (m *CronManager) SetRecorder(r RunRecorder) {
	m.recorder = r
}

// Start registers and starts all cron jobs
func (m *CronManager) Start() error {
	log.Info("Cron: starting jobs")

	if err := m.registerJobs(); err != nil {
		return err
	}
	m.cron.Start()
	return nil
}

// Stop stops all cron jobs and waits for running ones
func (m *CronManager) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Info("Cron: jobs stopped")
}

func (m *CronManager) registerJobs() error {
	jobs := []struct {
		spec string
		name string
		run  func(ctx context.Context) (string, error)
	}{
		// Every 10 minutes: fail jobs that stopped reporting
		{"0 */10 * * * *", "mark_stale_jobs", m.MarkStaleJobs},
		// Every 30 minutes: remove leftover local uploads
		{"0 */30 * * * *", "cleanup_temp_uploads", m.CleanupTempUploads},
		// Daily at 3 AM: remove old Spaces uploads and expired artifacts
		{"0 0 3 * * *", "cleanup_remote_data", m.CleanupRemoteData},
	}

	for _, job := range jobs {
		job := job
		if _, err := m.cron.AddFunc(job.spec, func() { m.runJob(job.name, job.run) }); err != nil {
			return err
		}
	}
	log.Infof("Cron: registered %d jobs", len(jobs))
	return nil
}

func (m *CronManager) runJob(name string, run func(ctx context.Context) (string, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	start := m.now()
	log.Infof("[CRON] Starting job: %s", name)
	record := &model.CronRun{JobName: name, Status: model.CronRunStarted, StartedAt: start}
	m.record(ctx, record)

	message, err := run(ctx)
	completed := m.now()
	record.CompletedAt = &completed
	record.DurationMS = completed.Sub(start).Milliseconds()
	record.Message = message
	if err != nil {
		record.Status = model.CronRunFailed
		record.Error = err.Error()
		m.record(ctx, record)
		log.Errorf("[CRON] Error in job %s: %v", name, err)
		return
	}
	record.Status = model.CronRunCompleted
	m.record(ctx, record)
	log.Infof("[CRON] Completed job: %s in %v - %s", name, completed.Sub(start).Round(time.Millisecond), message)
}

func (m *CronManager) record(ctx context.Context, run *model.CronRun) {
	if m.recorder == nil {
		return
	}
	if err := m.recorder.RecordCronRun(ctx, run); err != nil {
		log.Warnf("[CRON] failed to record run of %s: %v", run.JobName, err)
	}
}
