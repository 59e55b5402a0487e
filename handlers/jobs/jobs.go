package jobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/sahilchouksey/quiz-brain/database"
	"github.com/sahilchouksey/quiz-brain/model"
	"github.com/sahilchouksey/quiz-brain/services/cron"
	"github.com/sahilchouksey/quiz-brain/services/digitalocean"
	"github.com/sahilchouksey/quiz-brain/services/pipeline"
	"github.com/sahilchouksey/quiz-brain/utils/pdfvalidation"
	"github.com/sahilchouksey/quiz-brain/utils/response"
	"github.com/sahilchouksey/quiz-brain/utils/validation"
)

// DefaultMaxUploadSize caps uploaded documents
const DefaultMaxUploadSize = 50 * 1024 * 1024 // 50MB

// supportedUploads lists the MIME types the pipeline can classify
var supportedUploads = []string{
	"application/pdf",
	"image/png",
	"image/jpeg",
	"image/tiff",
	"image/webp",
	"image/bmp",
	"text/plain",
	"text/html",
}

// JobRunner starts and cancels background jobs
type JobRunner interface {
	Submit(ctx context.Context, jobID string, in pipeline.Input, cleanup func()) (*model.JobState, error)
	Cancel(ctx context.Context, jobID string) error
}

// StateReader reads tracked job state
type StateReader interface {
	Get(ctx context.Context, jobID string) (*model.JobState, error)
}

// ArtifactReader loads stored artifacts
type ArtifactReader interface {
	GetArtifactByJobID(ctx context.Context, jobID string) (*model.GenerationArtifact, error)
}

// ObjectStore is the part of Spaces the handler uses
type ObjectStore interface {
	UploadBytes(ctx context.Context, key string, data []byte, contentType string) error
	DownloadFile(ctx context.Context, key string) ([]byte, error)
}

// Config holds request defaults and limits
type Config struct {
	UploadDir            string
	MaxUploadSize        int64
	DefaultQuestionType  model.QuestionType
	DefaultAnswerOptions int
	PDFLimits            pdfvalidation.PDFLimits
}

// JobHandler handles generation job requests
type JobHandler struct {
	runner    JobRunner
	states    StateReader
	artifacts ArtifactReader
	objects   ObjectStore
	validator *validation.Validator
	cfg       Config
	newID     func() string
	now       func() time.Time

	streamInterval time.Duration
	streamTimeout  time.Duration
}

// NewJobHandler creates a new job handler. artifacts and objects may be nil
// when the database or Spaces are not configured.
func NewJobHandler(runner JobRunner, states StateReader, artifacts ArtifactReader, objects ObjectStore, cfg Config) *JobHandler {
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = DefaultMaxUploadSize
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = os.TempDir()
	}
	if cfg.DefaultQuestionType == "" {
		cfg.DefaultQuestionType = model.QuestionTypeMultipleChoice
	}
	if cfg.DefaultAnswerOptions <= 0 {
		cfg.DefaultAnswerOptions = 4
	}
	if cfg.PDFLimits.MaxPages == 0 {
		cfg.PDFLimits.MaxPages = pdfvalidation.DefaultLimits.MaxPages
	}

	return &JobHandler{
		runner:    runner,
		states:    states,
		artifacts: artifacts,
		objects:   objects,
		validator: validation.NewValidator(),
		cfg:       cfg,
		newID:     uuid.NewString,
		now:       time.Now,

		streamInterval: DefaultStreamInterval,
		streamTimeout:  DefaultStreamTimeout,
	}
}

// CreateJobRequest carries the job options, from JSON or multipart form fields
type CreateJobRequest struct {
	Text          string `json:"text" form:"text" validate:"omitempty,max=2000000"`
	SpacesKey     string `json:"spaces_key" form:"spaces_key" validate:"omitempty,max=500"`
	SourceName    string `json:"source_name" form:"source_name" validate:"omitempty,max=255"`
	Language      string `json:"language" form:"language" validate:"omitempty,oneof=auto english bengali"`
	QuestionType  string `json:"question_type" form:"question_type" validate:"question_type"`
	AnswerOptions int    `json:"answer_options" form:"answer_options" validate:"omitempty,min=2,max=6"`
	Count         int    `json:"count" form:"count" validate:"omitempty,min=1,max=200"`
}

// CreateJob handles POST /api/v1/jobs
func (h *JobHandler) CreateJob(c *fiber.Ctx) error {
	var req CreateJobRequest
	if err := c.BodyParser(&req); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
		return response.BadRequest(c, "Invalid request body")
	}
	req.Text = validation.SanitizeString(req.Text)
	req.SpacesKey = strings.TrimSpace(req.SpacesKey)

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	file, _ := c.FormFile("file")

	sources := 0
	for _, set := range []bool{file != nil, req.Text != "", req.SpacesKey != ""} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return response.BadRequest(c, "Provide exactly one of file, text or spaces_key")
	}

	jobID := h.newID()
	in := pipeline.Input{
		SourceName:     req.SourceName,
		Language:       model.ParseLanguage(req.Language),
		QuestionType:   h.cfg.DefaultQuestionType,
		AnswerOptions:  h.cfg.DefaultAnswerOptions,
		RequestedCount: req.Count,
	}
	if req.QuestionType != "" {
		in.QuestionType = model.ParseQuestionType(strings.ToUpper(req.QuestionType))
	}
	if req.AnswerOptions > 0 {
		in.AnswerOptions = req.AnswerOptions
	}

	var cleanup func()
	switch {
	case req.Text != "":
		in.Text = req.Text
	case file != nil:
		if file.Size > h.cfg.MaxUploadSize {
			return response.RequestTooLarge(c, fmt.Sprintf("File size exceeds maximum allowed size of %dMB", h.cfg.MaxUploadSize/(1024*1024)))
		}
		data, err := readUpload(file, h.cfg.MaxUploadSize)
		if err != nil {
			return response.InternalServerError(c, "Failed to read file")
		}
		if in.SourceName == "" {
			in.SourceName = filepath.Base(file.Filename)
		}
		path, status, err := h.stage(c.UserContext(), jobID, file.Filename, data, true)
		if err != nil {
			return h.stageError(c, status, err)
		}
		in.Path = path
		cleanup = removeFile(path)
	default:
		if h.objects == nil {
			return response.ServiceUnavailable(c, "Object storage is not configured")
		}
		data, err := h.objects.DownloadFile(c.UserContext(), req.SpacesKey)
		if err != nil {
			log.Warnf("JobHandler: failed to download %s: %v", req.SpacesKey, err)
			return response.NotFound(c, "Object not found in storage")
		}
		if in.SourceName == "" {
			in.SourceName = filepath.Base(req.SpacesKey)
		}
		path, status, err := h.stage(c.UserContext(), jobID, req.SpacesKey, data, false)
		if err != nil {
			return h.stageError(c, status, err)
		}
		in.Path = path
		cleanup = removeFile(path)
	}

	state, err := h.runner.Submit(c.UserContext(), jobID, in, cleanup)
	if err != nil {
		if cleanup != nil {
			cleanup()
		}
		log.Errorf("JobHandler: failed to submit job %s: %v", jobID, err)
		return response.InternalServerError(c, "Failed to start job")
	}

	log.Infof("JobHandler: accepted job %s for %s", jobID, state.SourceDocument)
	return response.Accepted(c, "Job accepted", state)
}

// stage sniffs the document, writes it to the upload dir and optionally
// mirrors it to Spaces. The returned status is set when err is a client error.
func (h *JobHandler) stage(ctx context.Context, jobID, filename string, data []byte, mirror bool) (string, int, error) {
	if len(data) == 0 {
		return "", fiber.StatusBadRequest, errors.New("file is empty")
	}

	mime := mimetype.Detect(data)
	if !supported(mime) {
		return "", fiber.StatusUnsupportedMediaType, fmt.Errorf("unsupported file type %s", mime.String())
	}
	if mime.Is("application/pdf") {
		result, err := pdfvalidation.ValidatePDFBytes(data, h.cfg.PDFLimits)
		if err != nil {
			return "", fiber.StatusInternalServerError, err
		}
		if !result.Valid {
			return "", fiber.StatusBadRequest, errors.New(result.Error)
		}
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = mime.Extension()
	}
	path := filepath.Join(h.cfg.UploadDir, cron.UploadFilePrefix+jobID+ext)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fiber.StatusInternalServerError, fmt.Errorf("failed to store upload: %w", err)
	}

	if mirror && h.objects != nil {
		key := digitalocean.GenerateKey(digitalocean.UploadPrefix, filename, h.now())
		if err := h.objects.UploadBytes(ctx, key, data, mime.String()); err != nil {
			log.Warnf("JobHandler: failed to mirror %s to Spaces: %v", filename, err)
		}
	}
	return path, 0, nil
}

func (h *JobHandler) stageError(c *fiber.Ctx, status int, err error) error {
	switch status {
	case fiber.StatusBadRequest:
		return response.BadRequest(c, err.Error())
	case fiber.StatusUnsupportedMediaType:
		return response.UnsupportedMediaType(c, err.Error())
	}
	log.Errorf("JobHandler: %v", err)
	return response.InternalServerError(c, "Failed to store file")
}

// GetJob handles GET /api/v1/jobs/:id
func (h *JobHandler) GetJob(c *fiber.Ctx) error {
	state, err := h.states.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, pipeline.ErrJobNotFound) {
			return response.NotFound(c, "Job not found")
		}
		log.Errorf("JobHandler: failed to read job %s: %v", c.Params("id"), err)
		return response.InternalServerError(c, "Failed to read job state")
	}
	return response.Success(c, state)
}

// CancelJob handles DELETE /api/v1/jobs/:id
func (h *JobHandler) CancelJob(c *fiber.Ctx) error {
	jobID := c.Params("id")
	err := h.runner.Cancel(c.UserContext(), jobID)
	switch {
	case err == nil:
		return response.Accepted(c, "Cancellation requested", fiber.Map{"job_id": jobID})
	case errors.Is(err, pipeline.ErrJobNotFound):
		return response.NotFound(c, "Job not found")
	case errors.Is(err, pipeline.ErrJobFinished):
		return response.Conflict(c, "Job already finished")
	}
	log.Errorf("JobHandler: failed to cancel job %s: %v", jobID, err)
	return response.InternalServerError(c, "Failed to cancel job")
}

// GetArtifact handles GET /api/v1/jobs/:id/artifact
func (h *JobHandler) GetArtifact(c *fiber.Ctx) error {
	if h.artifacts == nil {
		return response.ServiceUnavailable(c, "Artifact storage is not configured")
	}

	jobID := c.Params("id")
	record, err := h.artifacts.GetArtifactByJobID(c.UserContext(), jobID)
	if err != nil {
		if errors.Is(err, database.ErrArtifactNotFound) {
			return response.NotFound(c, "Artifact not found")
		}
		log.Errorf("JobHandler: failed to load artifact for job %s: %v", jobID, err)
		return response.InternalServerError(c, "Failed to load artifact")
	}

	artifact := record.ToArtifact()
	if c.Query("format") == "raw" {
		return c.JSON(artifact)
	}
	return response.Success(c, fiber.Map{
		"job_id":     record.JobID,
		"doc_type":   record.DocType,
		"language":   record.Language,
		"spaces_key": record.SpacesKey,
		"artifact":   artifact,
	})
}

func supported(mime *mimetype.MIME) bool {
	for m := mime; m != nil; m = m.Parent() {
		for _, allowed := range supportedUploads {
			if m.Is(allowed) {
				return true
			}
		}
	}
	return false
}

func readUpload(file *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, limit))
}

func removeFile(path string) func() {
	return func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warnf("JobHandler: failed to remove %s: %v", path, err)
		}
	}
}
