package types

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus enumerates the lifecycle states of a GenerationJob.
type JobStatus string

// GenerationJob lifecycle states.
const (
	JobStatusDraft     JobStatus = "draft"
	JobStatusRunning   JobStatus = "running"
	JobStatusRefining  JobStatus = "refining"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// QualityScores holds the numeric quality sub-scores for a finished letter.
// All scores are on a 0-100 scale.
type QualityScores struct {
	Style       float64 `json:"style"`
	ATSKeywords float64 `json:"ats_keywords"`
	Clarity     float64 `json:"clarity"`
	Impact      float64 `json:"impact"`
	Validation  float64 `json:"validation"`
	Overall     float64 `json:"overall"`
}

// GenerationJob identifies one (user, job posting) generation target. It is
// owned exclusively by the orchestrator while a run is in flight and persisted
// in the record store between runs.
type GenerationJob struct {
	ID           int64          `json:"id"`
	UserID       int64          `json:"user_id"`
	JobPostingID int64          `json:"job_posting_id"`
	Status       JobStatus      `json:"status"`
	Sections     *SectionMap    `json:"sections,omitempty"`
	Scores       QualityScores  `json:"scores"`
	Iterations   int            `json:"iterations"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// RunStatus enumerates the lifecycle states of a PipelineRun.
type RunStatus string

// PipelineRun lifecycle states.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusStopped   RunStatus = "stopped"
)

// PipelineRun records the progress of one execution attempt of a
// GenerationJob. It is created at run start, mutated by the orchestrator after
// every phase, and terminal once completed, failed, or stopped.
type PipelineRun struct {
	ID          int64             `json:"id"`
	JobID       int64             `json:"job_id"`
	RunKey      uuid.UUID         `json:"run_key"`
	CurrentStep string            `json:"current_step"`
	Progress    int               `json:"progress"`
	Status      RunStatus         `json:"status"`
	Log         map[string]string `json:"log,omitempty"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// Terminal reports whether the run has reached a terminal state.
func (r *PipelineRun) Terminal() bool {
	switch r.Status {
	case RunStatusCompleted, RunStatusFailed, RunStatusStopped:
		return true
	}
	return false
}

// JobPosting is the job description a letter is generated against.
type JobPosting struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	Company     string `json:"company"`
	RoleTitle   string `json:"role_title"`
	Description string `json:"description"`
}
