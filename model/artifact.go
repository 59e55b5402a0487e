package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GenerationArtifact is the persisted header of a completed job
type GenerationArtifact struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	JobID           string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"job_id"`
	SourceDocument  string         `gorm:"type:varchar(500);not null" json:"source_document"`
	DocType         DocType        `gorm:"type:varchar(20)" json:"doc_type"`
	Language        Language       `gorm:"type:varchar(20)" json:"language"`
	IsQuestionPaper bool           `gorm:"default:false" json:"is_question_paper"`
	QuestionCount   int            `gorm:"default:0" json:"question_count"`
	SpacesKey       string         `gorm:"type:varchar(500)" json:"spaces_key,omitempty"` // archived artifact JSON
	GeneratedAt     time.Time      `gorm:"not null" json:"generated_at"`

	Questions []GeneratedQuestion `gorm:"foreignKey:ArtifactID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

// GeneratedQuestion is one persisted question-answer record
type GeneratedQuestion struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	ArtifactID      uint           `gorm:"not null;index" json:"artifact_id"`
	Position        int            `gorm:"not null" json:"position"`
	Question        string         `gorm:"type:text;not null" json:"question"`
	Answer          string         `gorm:"type:text" json:"answer"`
	QuestionType    QuestionType   `gorm:"type:varchar(20);not null" json:"question_type"`
	Options         datatypes.JSON `gorm:"type:jsonb" json:"options,omitempty"`
	CorrectOption   string         `gorm:"type:varchar(10)" json:"correct_option,omitempty"`
	Difficulty      string         `gorm:"type:varchar(20)" json:"difficulty,omitempty"`
	ConfidenceScore *float64       `json:"confidence_score,omitempty"`
	SourceText      string         `gorm:"type:text" json:"source_text,omitempty"`
	Incomplete      bool           `gorm:"default:false" json:"incomplete"`
	Degraded        bool           `gorm:"default:false" json:"degraded"`
}

// NewGenerationArtifact converts a pipeline artifact into its persisted form
func NewGenerationArtifact(jobID string, meta DocumentMetadata, artifact Artifact) (*GenerationArtifact, error) {
	record := &GenerationArtifact{
		JobID:           jobID,
		SourceDocument:  artifact.SourceDocument,
		DocType:         meta.DocType,
		Language:        meta.Language,
		IsQuestionPaper: meta.IsQuestionPaper,
		QuestionCount:   len(artifact.Questions),
		GeneratedAt:     artifact.GeneratedAt,
	}

	for i, qa := range artifact.Questions {
		var options datatypes.JSON
		if len(qa.Options) > 0 {
			raw, err := json.Marshal(qa.Options)
			if err != nil {
				return nil, err
			}
			options = datatypes.JSON(raw)
		}
		record.Questions = append(record.Questions, GeneratedQuestion{
			Position:        i + 1,
			Question:        qa.Question,
			Answer:          qa.Answer,
			QuestionType:    qa.QuestionType,
			Options:         options,
			CorrectOption:   qa.CorrectOption,
			Difficulty:      qa.Difficulty,
			ConfidenceScore: qa.ConfidenceScore,
			SourceText:      qa.SourceText,
			Incomplete:      qa.Incomplete,
			Degraded:        qa.Degraded,
		})
	}
	return record, nil
}

// ToArtifact rebuilds the output artifact from the stored rows
func (a *GenerationArtifact) ToArtifact() Artifact {
	out := Artifact{
		SourceDocument: a.SourceDocument,
		GeneratedAt:    a.GeneratedAt,
		Questions:      make([]QuestionAnswer, 0, len(a.Questions)),
	}
	for _, q := range a.Questions {
		qa := QuestionAnswer{
			Question:        q.Question,
			Answer:          q.Answer,
			QuestionType:    q.QuestionType,
			CorrectOption:   q.CorrectOption,
			Difficulty:      q.Difficulty,
			ConfidenceScore: q.ConfidenceScore,
			SourceText:      q.SourceText,
			Incomplete:      q.Incomplete,
			Degraded:        q.Degraded,
		}
		if len(q.Options) > 0 {
			_ = json.Unmarshal(q.Options, &qa.Options)
		}
		out.Questions = append(out.Questions, qa)
	}
	return out
}
