package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/coverletter-agent/internal/types"
)

func TestMemoryStoreJobLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	job := &types.GenerationJob{UserID: 7, JobPostingID: 3, Status: types.JobStatusDraft}
	id, err := s.CreateJob(ctx, job)
	require.NoError(t, err)
	assert.Equal(t, id, job.ID)
	assert.False(t, job.CreatedAt.IsZero())

	got, err := s.GetJob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, types.JobStatusDraft, got.Status)

	got.Status = types.JobStatusRunning
	require.NoError(t, s.UpdateJob(ctx, got))

	again, err := s.GetJob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, types.JobStatusRunning, again.Status)
	assert.True(t, again.UpdatedAt.After(again.CreatedAt) || again.UpdatedAt.Equal(again.CreatedAt))
}

func TestMemoryStoreGetJobNotFound(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.GetJob(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreUpdateJobNotFound(t *testing.T) {
	s := NewMemoryStore()
	err := s.UpdateJob(context.Background(), &types.GenerationJob{ID: 42})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreGetJobReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	job := &types.GenerationJob{UserID: 1, Status: types.JobStatusDraft}
	id, err := s.CreateJob(ctx, job)
	require.NoError(t, err)

	first, err := s.GetJob(ctx, id)
	require.NoError(t, err)
	first.Status = types.JobStatusFailed

	second, err := s.GetJob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, types.JobStatusDraft, second.Status)
}

func TestMemoryStoreFindJobsForUser(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for _, userID := range []int64{1, 2, 1} {
		_, err := s.CreateJob(ctx, &types.GenerationJob{UserID: userID, Status: types.JobStatusDraft})
		require.NoError(t, err)
	}

	jobs, err := s.FindJobsForUser(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
	for _, j := range jobs {
		assert.Equal(t, int64(1), j.UserID)
	}

	none, err := s.FindJobsForUser(ctx, 9)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryStoreRunLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	run := &types.PipelineRun{JobID: 5, RunKey: uuid.New(), Status: types.RunStatusRunning}
	id, err := s.CreateRun(ctx, run)
	require.NoError(t, err)
	assert.False(t, run.StartedAt.IsZero())

	run.CurrentStep = "generating"
	run.Progress = 50
	require.NoError(t, s.UpdateRun(ctx, run))

	got, err := s.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "generating", got.CurrentStep)
	assert.Equal(t, 50, got.Progress)
	assert.False(t, got.Terminal())

	got.Status = types.RunStatusCompleted
	require.NoError(t, s.UpdateRun(ctx, got))

	final, err := s.GetRun(ctx, id)
	require.NoError(t, err)
	assert.True(t, final.Terminal())
}

func TestMemoryStoreJobPostings(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	posting := &types.JobPosting{UserID: 2, Company: "Acme", RoleTitle: "Engineer", Description: "Build things."}
	id, err := s.CreateJobPosting(ctx, posting)
	require.NoError(t, err)

	got, err := s.GetJobPosting(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Company)

	_, err = s.GetJobPosting(ctx, id+1)
	assert.ErrorIs(t, err, ErrNotFound)
}
