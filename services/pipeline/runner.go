package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/quiz-brain/model"
)

// DefaultCancelPollInterval is how often a running job checks the shared
// cancellation flag
const DefaultCancelPollInterval = 2 * time.Second

// ArtifactStore persists completed artifacts
type ArtifactStore interface {
	SaveArtifact(ctx context.Context, artifact *model.GenerationArtifact) error
}

// Archive keeps a JSON copy of every artifact in object storage
type Archive interface {
	PutArtifact(ctx context.Context, jobID string, artifact model.Artifact) (string, error)
}

// Runner executes jobs in the background for the HTTP API. Each job gets its
// own goroutine; concurrency inside a job is bounded by the generator.
type Runner struct {
	pipeline     *Pipeline
	tracker      *Tracker
	store        ArtifactStore
	archive      Archive
	pollInterval time.Duration

	mu      sync.Mutex
	running map[string]context.CancelFunc
	wg      sync.WaitGroup
}

// NewRunner creates a runner. archive may be nil when Spaces is not configured.
func NewRunner(p *Pipeline, tracker *Tracker, store ArtifactStore, archive Archive) *Runner {
	return &Runner{
		pipeline:     p,
		tracker:      tracker,
		store:        store,
		archive:      archive,
		pollInterval: DefaultCancelPollInterval,
		running:      make(map[string]context.CancelFunc),
	}
}

// Submit registers the job and starts it. cleanup, when set, runs after the
// job ends whatever its outcome (used to remove uploaded temp files).
func (r *Runner) Submit(ctx context.Context, jobID string, in Input, cleanup func()) (*model.JobState, error) {
	state, err := r.tracker.Create(ctx, jobID, sourceName(in))
	if err != nil {
		return nil, err
	}

	jobCtx, cancel := context.WithCancel(context.Background())
	r.mu.Lock()
	r.running[jobID] = cancel
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			cancel()
			r.mu.Lock()
			delete(r.running, jobID)
			r.mu.Unlock()
			if cleanup != nil {
				cleanup()
			}
		}()

		go r.watchCancel(jobCtx, jobID, cancel)
		r.execute(jobCtx, jobID, in)
	}()

	return state, nil
}

func (r *Runner) execute(ctx context.Context, jobID string, in Input) {
	result, err := r.pipeline.Run(ctx, jobID, in, r.tracker)
	if err != nil {
		return
	}

	work := context.WithoutCancel(ctx)
	record, err := model.NewGenerationArtifact(jobID, result.Metadata, result.Artifact)
	if err != nil {
		log.Errorf("Runner: failed to convert artifact for job %s: %v", jobID, err)
		return
	}

	if r.archive != nil {
		key, err := r.archive.PutArtifact(work, jobID, result.Artifact)
		if err != nil {
			log.Warnf("Runner: failed to archive artifact for job %s: %v", jobID, err)
		} else {
			record.SpacesKey = key
		}
	}

	if r.store == nil {
		return
	}
	if err := r.store.SaveArtifact(work, record); err != nil {
		log.Errorf("Runner: failed to save artifact for job %s: %v", jobID, err)
		return
	}
	if err := r.tracker.SetArtifactID(work, jobID, record.ID); err != nil {
		log.Warnf("Runner: failed to link artifact %d to job %s: %v", record.ID, jobID, err)
	}
	log.Infof("Runner: job %s stored as artifact %d", jobID, record.ID)
}

// watchCancel picks up cancellations requested through another instance
func (r *Runner) watchCancel(ctx context.Context, jobID string, cancel context.CancelFunc) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if r.tracker.CancelRequested(ctx, jobID) {
				log.Infof("Runner: cancellation requested for job %s", jobID)
				cancel()
				return
			}
		}
	}
}

// Cancel stops a job at its next stage boundary
func (r *Runner) Cancel(ctx context.Context, jobID string) error {
	if err := r.tracker.RequestCancel(ctx, jobID); err != nil {
		return err
	}

	r.mu.Lock()
	cancel, ok := r.running[jobID]
	r.mu.Unlock()
	if ok {
		cancel()
	}
	return nil
}

// Running returns the number of jobs executing on this instance
func (r *Runner) Running() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.running)
}

// Shutdown cancels every running job and waits for them to stop
func (r *Runner) Shutdown(timeout time.Duration) error {
	r.mu.Lock()
	for _, cancel := range r.running {
		cancel()
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("timed out waiting for %d jobs", r.Running())
	}
}
