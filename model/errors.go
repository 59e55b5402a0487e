package model

import (
	"errors"
	"fmt"
)

// ErrCancelled is the failure reason of a job cancelled between stages
var ErrCancelled = errors.New("cancelled")

// ClassificationError means the input could not be inspected. It is never
// fatal: the classifier degrades to unknown metadata.
type ClassificationError struct {
	Path string
	Err  error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classification of %s failed: %v", e.Path, e.Err)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// ExtractionError means every rasterization or OCR strategy was exhausted
type ExtractionError struct {
	Strategy string
	Err      error
}

func (e *ExtractionError) Error() string {
	if e.Strategy == "" {
		return fmt.Sprintf("extraction failed: %v", e.Err)
	}
	return fmt.Sprintf("extraction failed (%s): %v", e.Strategy, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// GenerationError means all retries and the fallback model were exhausted
type GenerationError struct {
	Model string
	Chunk int
	Err   error
}

func (e *GenerationError) Error() string {
	if e.Chunk > 0 {
		return fmt.Sprintf("generation failed for chunk %d (model %s): %v", e.Chunk, e.Model, e.Err)
	}
	return fmt.Sprintf("generation failed (model %s): %v", e.Model, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ParseError means no parser tier could recover records from a response
type ParseError struct {
	Chunk  int
	Length int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("no records parsed from chunk %d (%d chars)", e.Chunk, e.Length)
}

// JobFailure is the terminal error of a failed job
type JobFailure struct {
	Stage  JobStage
	Reason string
	Err    error
}

func (e *JobFailure) Error() string {
	return fmt.Sprintf("job failed at %s: %s", e.Stage, e.Reason)
}

func (e *JobFailure) Unwrap() error { return e.Err }
