package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/coverletter-agent/internal/types"
)

// PostgresStore is the production RecordStore over a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// CreateJob inserts a generation job and returns its id.
func (s *PostgresStore) CreateJob(ctx context.Context, job *types.GenerationJob) (int64, error) {
	sections, scores, err := marshalJobPayloads(job)
	if err != nil {
		return 0, err
	}
	err = s.pool.QueryRow(ctx,
		`INSERT INTO generation_jobs (user_id, job_posting_id, status, sections, scores, iterations)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		job.UserID, job.JobPostingID, job.Status, sections, scores, job.Iterations,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to create generation job: %w", err)
	}
	return job.ID, nil
}

// GetJob retrieves a generation job by id.
func (s *PostgresStore) GetJob(ctx context.Context, id int64) (*types.GenerationJob, error) {
	var job types.GenerationJob
	var sections, scores []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, job_posting_id, status, sections, scores, iterations, created_at, updated_at
		 FROM generation_jobs WHERE id = $1`, id,
	).Scan(&job.ID, &job.UserID, &job.JobPostingID, &job.Status, &sections, &scores, &job.Iterations, &job.CreatedAt, &job.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get generation job: %w", err)
	}
	if err := unmarshalJobPayloads(&job, sections, scores); err != nil {
		return nil, err
	}
	return &job, nil
}

// UpdateJob replaces a generation job's mutable fields.
func (s *PostgresStore) UpdateJob(ctx context.Context, job *types.GenerationJob) error {
	sections, scores, err := marshalJobPayloads(job)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE generation_jobs
		 SET status = $1, sections = $2, scores = $3, iterations = $4, updated_at = NOW()
		 WHERE id = $5`,
		job.Status, sections, scores, job.Iterations, job.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update generation job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// FindJobsForUser returns every generation job belonging to a user.
func (s *PostgresStore) FindJobsForUser(ctx context.Context, userID int64) ([]*types.GenerationJob, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, job_posting_id, status, sections, scores, iterations, created_at, updated_at
		 FROM generation_jobs WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list generation jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*types.GenerationJob
	for rows.Next() {
		var job types.GenerationJob
		var sections, scores []byte
		if err := rows.Scan(&job.ID, &job.UserID, &job.JobPostingID, &job.Status, &sections, &scores, &job.Iterations, &job.CreatedAt, &job.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan generation job: %w", err)
		}
		if err := unmarshalJobPayloads(&job, sections, scores); err != nil {
			return nil, err
		}
		jobs = append(jobs, &job)
	}
	return jobs, rows.Err()
}

// CreateRun inserts a pipeline run and returns its id.
func (s *PostgresStore) CreateRun(ctx context.Context, run *types.PipelineRun) (int64, error) {
	logJSON, err := json.Marshal(run.Log)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal run log: %w", err)
	}
	err = s.pool.QueryRow(ctx,
		`INSERT INTO pipeline_runs (job_id, run_key, current_step, progress, status, log)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, started_at`,
		run.JobID, run.RunKey, run.CurrentStep, run.Progress, run.Status, logJSON,
	).Scan(&run.ID, &run.StartedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to create pipeline run: %w", err)
	}
	return run.ID, nil
}

// GetRun retrieves a pipeline run by id.
func (s *PostgresStore) GetRun(ctx context.Context, id int64) (*types.PipelineRun, error) {
	var run types.PipelineRun
	var logJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, job_id, run_key, current_step, progress, status, log, started_at, completed_at
		 FROM pipeline_runs WHERE id = $1`, id,
	).Scan(&run.ID, &run.JobID, &run.RunKey, &run.CurrentStep, &run.Progress, &run.Status, &logJSON, &run.StartedAt, &run.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pipeline run: %w", err)
	}
	if len(logJSON) > 0 {
		if err := json.Unmarshal(logJSON, &run.Log); err != nil {
			return nil, fmt.Errorf("failed to decode run log: %w", err)
		}
	}
	return &run, nil
}

// UpdateRun replaces a pipeline run's mutable fields.
func (s *PostgresStore) UpdateRun(ctx context.Context, run *types.PipelineRun) error {
	logJSON, err := json.Marshal(run.Log)
	if err != nil {
		return fmt.Errorf("failed to marshal run log: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE pipeline_runs
		 SET current_step = $1, progress = $2, status = $3, log = $4, completed_at = $5
		 WHERE id = $6`,
		run.CurrentStep, run.Progress, run.Status, logJSON, run.CompletedAt, run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update pipeline run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateJobPosting inserts a job posting and returns its id.
func (s *PostgresStore) CreateJobPosting(ctx context.Context, posting *types.JobPosting) (int64, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO job_postings (user_id, company, role_title, description)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		posting.UserID, posting.Company, posting.RoleTitle, posting.Description,
	).Scan(&posting.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to create job posting: %w", err)
	}
	return posting.ID, nil
}

// GetJobPosting retrieves a job posting by id.
func (s *PostgresStore) GetJobPosting(ctx context.Context, id int64) (*types.JobPosting, error) {
	var posting types.JobPosting
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, company, role_title, description
		 FROM job_postings WHERE id = $1`, id,
	).Scan(&posting.ID, &posting.UserID, &posting.Company, &posting.RoleTitle, &posting.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job posting: %w", err)
	}
	return &posting, nil
}

func marshalJobPayloads(job *types.GenerationJob) (sections, scores []byte, err error) {
	if job.Sections != nil {
		sections, err = json.Marshal(job.Sections)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal sections: %w", err)
		}
	}
	scores, err = json.Marshal(job.Scores)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal scores: %w", err)
	}
	return sections, scores, nil
}

func unmarshalJobPayloads(job *types.GenerationJob, sections, scores []byte) error {
	if len(sections) > 0 {
		job.Sections = types.NewSectionMap()
		if err := json.Unmarshal(sections, job.Sections); err != nil {
			return fmt.Errorf("failed to decode sections: %w", err)
		}
	}
	if len(scores) > 0 {
		if err := json.Unmarshal(scores, &job.Scores); err != nil {
			return fmt.Errorf("failed to decode scores: %w", err)
		}
	}
	return nil
}
