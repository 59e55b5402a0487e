package handlers

import (
	"context"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/quiz-brain/utils/response"
)

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// JobCounter reports jobs running on this instance
type JobCounter interface {
	Running() int
}

// HealthHandler reports the state of the service dependencies
type HealthHandler struct {
	checks  map[string]HealthCheck
	jobs    JobCounter
	timeout time.Duration
}

// NewHealthHandler creates a health handler. Components without a check
// (for example an unconfigured Spaces bucket) are simply not reported.
func NewHealthHandler(checks map[string]HealthCheck, jobs JobCounter) *HealthHandler {
	return &HealthHandler{checks: checks, jobs: jobs, timeout: 3 * time.Second}
}

// Ping handles GET /ping
func (h *HealthHandler) Ping(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Health handles GET /api/v1/health
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	healthy := true
	components := fiber.Map{}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			log.Warnf("Health: %s unhealthy: %v", name, err)
			components[name] = fiber.Map{"status": "unhealthy", "error": err.Error()}
			healthy = false
			continue
		}
		components[name] = fiber.Map{"status": "healthy"}
	}

	data := fiber.Map{"status": "healthy", "components": components}
	if h.jobs != nil {
		data["running_jobs"] = h.jobs.Running()
	}
	if !healthy {
		data["status"] = "unhealthy"
		return c.Status(fiber.StatusServiceUnavailable).JSON(response.Response{Success: false, Data: data})
	}
	return response.Success(c, data)
}
