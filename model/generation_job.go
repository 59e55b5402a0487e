package model

import "time"

// JobStage is a state of the generation pipeline
type JobStage string

const (
	StagePending     JobStage = "pending"
	StageClassifying JobStage = "classifying"
	StageExtracting  JobStage = "extracting"
	StageGenerating  JobStage = "generating"
	StageParsing     JobStage = "parsing"
	StageCompleted   JobStage = "completed"
	StageFailed      JobStage = "failed"
)

// Terminal reports whether no transition leaves this stage
func (s JobStage) Terminal() bool {
	return s == StageCompleted || s == StageFailed
}

// stageOrder gives the forward position of every non-terminal stage
var stageOrder = map[JobStage]int{
	StagePending:     0,
	StageClassifying: 1,
	StageExtracting:  2,
	StageGenerating:  3,
	StageParsing:     4,
}

// CanTransition enforces the forward-only job state machine
func CanTransition(from, to JobStage) bool {
	if from.Terminal() {
		return false
	}
	if to == StageFailed {
		return true
	}
	if to == StageCompleted {
		return from == StageParsing
	}
	return stageOrder[to] == stageOrder[from]+1
}

// GenerationJob is the transient context carried through every stage
type GenerationJob struct {
	Source            string       `json:"source"`
	Language          Language     `json:"language"`
	DocumentType      string       `json:"document_type"` // context_document or question_paper
	QuestionType      QuestionType `json:"question_type"`
	AnswerOptionCount int          `json:"answer_option_count"`
	RequestedCount    int          `json:"requested_count"` // 0 means auto-sized
}

const (
	DocumentTypeContext       = "context_document"
	DocumentTypeQuestionPaper = "question_paper"
)

// JobState is the externally visible state of a job, stored in Redis
type JobState struct {
	JobID          string   `json:"job_id"`
	SourceDocument string   `json:"source_document"`
	Stage          JobStage `json:"stage"`
	Progress       int      `json:"progress"` // 0-100
	Message        string   `json:"message,omitempty"`
	FailedStage    JobStage `json:"failed_stage,omitempty"`
	FailureReason  string   `json:"failure_reason,omitempty"`
	QuestionCount  int      `json:"question_count,omitempty"`
	ArtifactID     uint     `json:"artifact_id,omitempty"`

	Metadata *DocumentMetadata `json:"metadata,omitempty"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Redis key patterns for generation jobs
const (
	// RedisKeyJobState stores the full job state as JSON
	// Usage: fmt.Sprintf(RedisKeyJobState, jobID)
	RedisKeyJobState = "quizjob:state:%s"

	// RedisKeyJobCancel is set when a client asks to cancel a job
	// Usage: fmt.Sprintf(RedisKeyJobCancel, jobID)
	RedisKeyJobCancel = "quizjob:cancel:%s"

	// RedisKeyJobStatePattern matches every stored job state
	RedisKeyJobStatePattern = "quizjob:state:*"
)
