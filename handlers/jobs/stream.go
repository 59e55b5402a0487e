package jobs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/quiz-brain/model"
	"github.com/sahilchouksey/quiz-brain/services/pipeline"
	"github.com/sahilchouksey/quiz-brain/utils/response"
	"github.com/sahilchouksey/quiz-brain/utils/sse"
)

// Stream timing defaults
const (
	DefaultStreamInterval = time.Second
	DefaultStreamTimeout  = 30 * time.Minute
	keepAliveEveryNthPoll = 15
)

// StreamJob handles GET /api/v1/jobs/:id/events. It pushes the job state as
// server-sent events whenever it changes and closes after a terminal stage.
func (h *JobHandler) StreamJob(c *fiber.Ctx) error {
	jobID := c.Params("id")
	state, err := h.states.Get(c.UserContext(), jobID)
	if err != nil {
		if errors.Is(err, pipeline.ErrJobNotFound) {
			return response.NotFound(c, "Job not found or expired")
		}
		return response.InternalServerError(c, "Failed to read job state")
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // Disable nginx buffering

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		// the fiber context is not valid inside the stream writer
		h.stream(context.Background(), w, state)
	})
	return nil
}

func (h *JobHandler) stream(ctx context.Context, w *bufio.Writer, state *model.JobState) {
	if err := sse.Send(w, stateEvent(state)); err != nil || state.Stage.Terminal() {
		return
	}

	ticker := time.NewTicker(h.streamInterval)
	defer ticker.Stop()
	deadline := h.now().Add(h.streamTimeout)

	last := state
	polls := 0
	for range ticker.C {
		if h.now().After(deadline) {
			_ = sse.SendError(w, fmt.Errorf("stream timed out after %s, job is still %s", h.streamTimeout, last.Stage))
			return
		}

		current, err := h.states.Get(ctx, state.JobID)
		if err != nil {
			_ = sse.SendError(w, err)
			return
		}

		polls++
		if !changed(last, current) {
			if polls%keepAliveEveryNthPoll == 0 {
				if err := sse.SendKeepAlive(w); err != nil {
					return
				}
			}
			continue
		}

		if err := sse.Send(w, stateEvent(current)); err != nil {
			log.Infof("JobHandler: client left stream for job %s", state.JobID)
			return
		}
		if current.Stage.Terminal() {
			return
		}
		last = current
	}
}

func changed(a, b *model.JobState) bool {
	return a.Stage != b.Stage || a.Progress != b.Progress || a.Message != b.Message || !a.UpdatedAt.Equal(b.UpdatedAt)
}

func stateEvent(state *model.JobState) sse.Event {
	name := "progress"
	switch state.Stage {
	case model.StageCompleted:
		name = "complete"
	case model.StageFailed:
		name = "failed"
	}
	return sse.Event{
		Event: name,
		ID:    fmt.Sprintf("%d", state.UpdatedAt.UnixMilli()),
		Data:  state,
	}
}
