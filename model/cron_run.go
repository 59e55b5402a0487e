package model

import "time"

// CronRunStatus is the outcome of one scheduled job execution
type CronRunStatus string

const (
	CronRunStarted   CronRunStatus = "started"
	CronRunCompleted CronRunStatus = "completed"
	CronRunFailed    CronRunStatus = "failed"
)

// CronRun records one execution of a cleanup job
type CronRun struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	JobName     string        `gorm:"type:varchar(100);not null;index" json:"job_name"`
	Status      CronRunStatus `gorm:"type:varchar(20);not null" json:"status"`
	StartedAt   time.Time     `gorm:"not null" json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	DurationMS  int64         `json:"duration_ms"`
	Message     string        `gorm:"type:text" json:"message,omitempty"`
	Error       string        `gorm:"type:text" json:"error,omitempty"`
}

func (CronRun) TableName() string {
	return "cron_runs"
}
