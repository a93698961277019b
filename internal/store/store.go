// Package store defines the persistence and document-access collaborators
// the pipeline consumes, with in-memory and PostgreSQL implementations.
package store

import (
	"context"
	"errors"

	"github.com/jonathan/coverletter-agent/internal/types"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// DocumentCategory names the kinds of reference documents a user uploads.
type DocumentCategory string

// Document categories.
const (
	CategoryStyleGuide DocumentCategory = "style-guide"
	CategoryResume     DocumentCategory = "resume"
)

// DocumentProvider supplies the extracted text of a user's uploaded
// documents. Implementations return empty text when nothing is uploaded.
type DocumentProvider interface {
	GetContent(ctx context.Context, userID int64, category DocumentCategory) (string, error)
}

// DocumentRenderer turns a finished section map into a distributable
// document. Rendering happens strictly after the pipeline completes.
type DocumentRenderer interface {
	Render(sections *types.SectionMap) ([]byte, error)
}

// RecordStore persists generation jobs, their pipeline runs, and job
// postings by numeric id.
type RecordStore interface {
	CreateJob(ctx context.Context, job *types.GenerationJob) (int64, error)
	GetJob(ctx context.Context, id int64) (*types.GenerationJob, error)
	UpdateJob(ctx context.Context, job *types.GenerationJob) error
	FindJobsForUser(ctx context.Context, userID int64) ([]*types.GenerationJob, error)

	CreateRun(ctx context.Context, run *types.PipelineRun) (int64, error)
	GetRun(ctx context.Context, id int64) (*types.PipelineRun, error)
	UpdateRun(ctx context.Context, run *types.PipelineRun) error

	CreateJobPosting(ctx context.Context, posting *types.JobPosting) (int64, error)
	GetJobPosting(ctx context.Context, id int64) (*types.JobPosting, error)
}
