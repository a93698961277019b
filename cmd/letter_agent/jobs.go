package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/coverletter-agent/internal/rendering"
	"github.com/jonathan/coverletter-agent/internal/store"
)

var jobsCommand = &cobra.Command{
	Use:   "jobs",
	Short: "List a user's generation jobs",
	RunE:  runJobsCmd,
}

var renderCommand = &cobra.Command{
	Use:   "render",
	Short: "Render a completed generation job to a text letter",
	RunE:  runRenderCmd,
}

var (
	jobsUserID      int64
	jobsDatabaseURL string

	renderJobID       int64
	renderDatabaseURL string
	renderOutput      string
	renderTemplate    string
)

func init() {
	jobsCommand.Flags().Int64VarP(&jobsUserID, "user", "u", 1, "Numeric user id")
	jobsCommand.Flags().StringVar(&jobsDatabaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")

	renderCommand.Flags().Int64Var(&renderJobID, "job-id", 0, "Generation job id (required)")
	renderCommand.Flags().StringVar(&renderDatabaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	renderCommand.Flags().StringVarP(&renderOutput, "output", "o", "cover_letter.txt", "Output path for the rendered letter")
	renderCommand.Flags().StringVarP(&renderTemplate, "template", "t", "", "Path to a custom letter template")
	_ = renderCommand.MarkFlagRequired("job-id")

	rootCmd.AddCommand(jobsCommand)
	rootCmd.AddCommand(renderCommand)
}

func connectRecords(ctx context.Context, url string) (*store.PostgresStore, error) {
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		return nil, fmt.Errorf("a database URL is required (set --db-url or DATABASE_URL)")
	}
	return store.Connect(ctx, url)
}

func runJobsCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	records, err := connectRecords(ctx, jobsDatabaseURL)
	if err != nil {
		return err
	}
	defer records.Close()

	jobs, err := records.FindJobsForUser(ctx, jobsUserID)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		fmt.Printf("No generation jobs for user %d.\n", jobsUserID)
		return nil
	}

	for _, job := range jobs {
		fmt.Printf("#%d  posting=%d  status=%-10s  overall=%5.1f  updated=%s\n",
			job.ID, job.JobPostingID, job.Status, job.Scores.Overall, job.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runRenderCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	records, err := connectRecords(ctx, renderDatabaseURL)
	if err != nil {
		return err
	}
	defer records.Close()

	job, err := records.GetJob(ctx, renderJobID)
	if err != nil {
		return fmt.Errorf("failed to load job %d: %w", renderJobID, err)
	}
	if job.Sections == nil {
		return fmt.Errorf("job %d has no generated content", renderJobID)
	}

	renderer := rendering.NewTextRenderer()
	if renderTemplate != "" {
		renderer, err = rendering.NewTextRendererFromFile(renderTemplate)
		if err != nil {
			return err
		}
	}
	letter, err := renderer.Render(job.Sections)
	if err != nil {
		return fmt.Errorf("failed to render letter: %w", err)
	}
	if err := os.WriteFile(renderOutput, letter, 0o644); err != nil {
		return fmt.Errorf("failed to write letter: %w", err)
	}
	fmt.Printf("Rendered job %d to %s.\n", renderJobID, renderOutput)
	return nil
}
