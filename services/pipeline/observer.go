package pipeline

import (
	"context"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/quiz-brain/model"
)

// Event is one stage transition of a job
type Event struct {
	JobID         string
	From          model.JobStage
	To            model.JobStage
	Message       string
	Metadata      *model.DocumentMetadata
	Failure       *model.JobFailure
	QuestionCount int
}

// Observer is told about every transition. Observe must not block for long;
// the job waits for it.
type Observer interface {
	Observe(ctx context.Context, ev Event)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(ctx context.Context, ev Event)

func (f ObserverFunc) Observe(ctx context.Context, ev Event) { f(ctx, ev) }

// LogObserver writes transitions to the log
type LogObserver struct{}

func (LogObserver) Observe(_ context.Context, ev Event) {
	if ev.Failure != nil {
		log.Warnf("Job %s: %s -> %s (%s)", ev.JobID, ev.From, ev.To, ev.Failure.Reason)
		return
	}
	log.Infof("Job %s: %s -> %s: %s", ev.JobID, ev.From, ev.To, ev.Message)
}

// Observers fans an event out to several observers in order
type Observers []Observer

func (o Observers) Observe(ctx context.Context, ev Event) {
	for _, observer := range o {
		if observer != nil {
			observer.Observe(ctx, ev)
		}
	}
}
