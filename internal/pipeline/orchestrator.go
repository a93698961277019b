// Package pipeline provides the high-level orchestration for the cover
// letter generation process.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/coverletter-agent/internal/agents"
	"github.com/jonathan/coverletter-agent/internal/analysis"
	"github.com/jonathan/coverletter-agent/internal/cache"
	"github.com/jonathan/coverletter-agent/internal/claims"
	"github.com/jonathan/coverletter-agent/internal/llm"
	"github.com/jonathan/coverletter-agent/internal/observability"
	"github.com/jonathan/coverletter-agent/internal/store"
	"github.com/jonathan/coverletter-agent/internal/trimming"
	"github.com/jonathan/coverletter-agent/internal/types"
)

// Pipeline states, in execution order. The terminal states (completed,
// failed) are not entered through advance; they are set on exit.
const (
	stateInitializing = iota
	stateAnalyzing
	stateLoadingContext
	stateMapping
	stateGenerating
	stateValidating
	stateRefining
	stateTrimming
	stateFinalizing
	stateCount // non-terminal states; terminal adds one more
)

var stateNames = [stateCount]string{
	"initializing",
	"analyzing",
	"loading-context",
	"mapping-accomplishments",
	"generating",
	"validating",
	"refining-coherence",
	"trimming",
	"finalizing",
}

// ErrStopped is returned when a run is aborted by a caller-initiated stop.
var ErrStopped = errors.New("pipeline run stopped by caller")

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`
	RunKey   string `json:"run_key,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Options holds the collaborators and tuning for an Orchestrator.
type Options struct {
	Store  store.RecordStore
	Docs   store.DocumentProvider
	Client llm.Client
	Caches *cache.Domains

	CandidateName    string
	WordBudget       int
	WatchdogInterval time.Duration

	OnProgress ProgressCallback
	Logf       func(format string, args ...any)

	// Printer, when set, prints intermediate artifacts for verbose mode.
	Printer *observability.Printer
}

// runHandle tracks the live state of one in-flight run. The watchdog and
// Stop read it from other goroutines.
type runHandle struct {
	stop atomic.Bool
	step atomic.Int32
}

// Orchestrator drives generation jobs through the pipeline states and
// persists progress after every transition.
type Orchestrator struct {
	opts Options

	mu     sync.Mutex
	active map[int64]*runHandle
}

// New creates an orchestrator. The zero WatchdogInterval defaults to 15s
// and a zero WordBudget defaults to 480 words.
func New(opts Options) *Orchestrator {
	if opts.WatchdogInterval <= 0 {
		opts.WatchdogInterval = 15 * time.Second
	}
	if opts.WordBudget <= 0 {
		opts.WordBudget = trimming.DefaultWordBudget
	}
	return &Orchestrator{
		opts:   opts,
		active: make(map[int64]*runHandle),
	}
}

func (o *Orchestrator) logf(format string, args ...any) {
	if o.opts.Logf != nil {
		o.opts.Logf(format, args...)
	}
}

func (o *Orchestrator) emit(run *types.PipelineRun, message string) {
	if o.opts.OnProgress != nil {
		o.opts.OnProgress(ProgressEvent{
			Step:     run.CurrentStep,
			Progress: run.Progress,
			Message:  message,
			RunKey:   run.RunKey.String(),
		})
	}
}

// progressFor maps a state index onto [0,100]. The denominator counts the
// terminal state so finalizing sits below 100.
func progressFor(state int) int {
	return int(math.Round(float64(state) / float64(stateCount+1) * 100))
}

// Run executes the full pipeline for a generation job. It creates the
// PipelineRun record, drives the state machine, and returns the completed
// job. On failure both records are marked failed and the error is returned;
// on a caller-initiated stop it returns ErrStopped.
func (o *Orchestrator) Run(ctx context.Context, jobID int64) (*types.GenerationJob, error) {
	run := &types.PipelineRun{
		JobID:       jobID,
		RunKey:      uuid.New(),
		CurrentStep: stateNames[stateInitializing],
		Progress:    progressFor(stateInitializing),
		Status:      types.RunStatusRunning,
		Log:         map[string]string{},
	}
	if _, err := o.opts.Store.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create pipeline run: %w", err)
	}

	handle := &runHandle{}
	o.mu.Lock()
	o.active[run.ID] = handle
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		delete(o.active, run.ID)
		o.mu.Unlock()
	}()

	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	go o.watchdog(watchCtx, run.RunKey, handle)

	job, err := o.execute(ctx, run, handle)
	if errors.Is(err, ErrStopped) {
		// Stop transitioned both records, but an advance persisting at the
		// same moment can overwrite that write. Re-assert terminal state
		// before returning so pollers never see a stopped run as running.
		o.confirmStopped(ctx, run.ID)
		return nil, ErrStopped
	}
	if err != nil {
		o.fail(ctx, run, jobID, err)
		return nil, err
	}
	return job, nil
}

// Stop aborts an in-flight run: both records transition to a terminal state
// and the orchestrator enters no further pipeline state. In-flight external
// calls are not preempted; their results are discarded.
func (o *Orchestrator) Stop(ctx context.Context, runID int64) error {
	o.mu.Lock()
	if handle, ok := o.active[runID]; ok {
		handle.stop.Store(true)
	}
	o.mu.Unlock()

	run, err := o.opts.Store.GetRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to load run %d: %w", runID, err)
	}
	if run.Terminal() {
		return nil
	}

	now := time.Now()
	run.Status = types.RunStatusStopped
	run.CompletedAt = &now
	if run.Log == nil {
		run.Log = map[string]string{}
	}
	run.Log["stopped"] = "stopped by caller at step " + run.CurrentStep
	if err := o.opts.Store.UpdateRun(ctx, run); err != nil {
		return fmt.Errorf("failed to mark run %d stopped: %w", runID, err)
	}

	job, err := o.opts.Store.GetJob(ctx, run.JobID)
	if err != nil {
		return fmt.Errorf("failed to load job %d: %w", run.JobID, err)
	}
	job.Status = types.JobStatusFailed
	if err := o.opts.Store.UpdateJob(ctx, job); err != nil {
		return fmt.Errorf("failed to mark job %d failed: %w", job.ID, err)
	}
	return nil
}

// confirmStopped reloads a stopped run and restores the terminal state if a
// concurrent progress write clobbered it after Stop persisted.
func (o *Orchestrator) confirmStopped(ctx context.Context, runID int64) {
	run, err := o.opts.Store.GetRun(ctx, runID)
	if err != nil || run.Terminal() {
		return
	}
	now := time.Now()
	run.Status = types.RunStatusStopped
	run.CompletedAt = &now
	if run.Log == nil {
		run.Log = map[string]string{}
	}
	run.Log["stopped"] = "stopped by caller at step " + run.CurrentStep
	if err := o.opts.Store.UpdateRun(ctx, run); err != nil {
		o.logf("failed to re-mark run %d stopped: %v", runID, err)
	}
	job, err := o.opts.Store.GetJob(ctx, run.JobID)
	if err != nil {
		return
	}
	if job.Status != types.JobStatusFailed && job.Status != types.JobStatusCompleted {
		job.Status = types.JobStatusFailed
		if err := o.opts.Store.UpdateJob(ctx, job); err != nil {
			o.logf("failed to re-mark job %d failed: %v", job.ID, err)
		}
	}
}

// advance enters a pipeline state: the run record is updated before the
// state's work starts so a concurrent poll always sees a step name
// consistent with in-flight work.
func (o *Orchestrator) advance(ctx context.Context, run *types.PipelineRun, handle *runHandle, state int) error {
	if handle.stop.Load() {
		return ErrStopped
	}
	handle.step.Store(int32(state))
	run.CurrentStep = stateNames[state]
	run.Progress = progressFor(state)
	if err := o.opts.Store.UpdateRun(ctx, run); err != nil {
		return fmt.Errorf("failed to persist progress at %s: %w", run.CurrentStep, err)
	}
	o.logf("Step %d/%d: %s", state+1, stateCount, run.CurrentStep)
	o.emit(run, "entered "+run.CurrentStep)
	return nil
}

func (o *Orchestrator) execute(ctx context.Context, run *types.PipelineRun, handle *runHandle) (*types.GenerationJob, error) {
	if err := o.advance(ctx, run, handle, stateInitializing); err != nil {
		return nil, err
	}
	job, err := o.opts.Store.GetJob(ctx, run.JobID)
	if err != nil {
		return nil, fmt.Errorf("job %d not found: %w", run.JobID, err)
	}
	posting, err := o.opts.Store.GetJobPosting(ctx, job.JobPostingID)
	if err != nil {
		return nil, fmt.Errorf("job posting %d not found: %w", job.JobPostingID, err)
	}
	job.Status = types.JobStatusRunning
	if err := o.opts.Store.UpdateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to mark job running: %w", err)
	}

	if err := o.advance(ctx, run, handle, stateAnalyzing); err != nil {
		return nil, err
	}
	jobAnalysis := o.analyzePosting(ctx, posting)
	if o.opts.Printer != nil {
		o.opts.Printer.PrintJobAnalysis(posting, jobAnalysis)
	}

	if err := o.advance(ctx, run, handle, stateLoadingContext); err != nil {
		return nil, err
	}
	style, _, err := cache.LoadOrCompute(ctx, o.opts.Caches.Style, job.UserID, "default",
		func(ctx context.Context) (string, error) {
			return o.opts.Docs.GetContent(ctx, job.UserID, store.CategoryStyleGuide)
		},
		func(ctx context.Context, raw string) (types.StyleProfile, error) {
			return analysis.ComputeStyleProfile(ctx, o.opts.Client, raw)
		},
		analysis.DefaultStyleProfile(),
	)
	if err != nil {
		return nil, err
	}
	resumeAnalysis, resumeText, err := cache.LoadOrCompute(ctx, o.opts.Caches.Resume, job.UserID, "default",
		func(ctx context.Context) (string, error) {
			return o.opts.Docs.GetContent(ctx, job.UserID, store.CategoryResume)
		},
		func(_ context.Context, raw string) (types.ResumeAnalysis, error) {
			return analysis.AnalyzeResume(raw), nil
		},
		types.ResumeAnalysis{},
	)
	if err != nil {
		return nil, err
	}
	if o.opts.Printer != nil {
		o.opts.Printer.PrintStyleProfile(style)
	}

	if err := o.advance(ctx, run, handle, stateMapping); err != nil {
		return nil, err
	}
	mapping := o.mapAccomplishments(ctx, job.UserID, posting.ID, jobAnalysis.Requirements, resumeAnalysis.Accomplishments)

	shared := &agents.Context{
		Posting:       *posting,
		Analysis:      jobAnalysis,
		Style:         style,
		Mapping:       mapping,
		CandidateName: o.opts.CandidateName,
	}

	if err := o.advance(ctx, run, handle, stateGenerating); err != nil {
		return nil, err
	}
	sections, err := o.generateSections(ctx, shared)
	if err != nil {
		return nil, err
	}

	if err := o.advance(ctx, run, handle, stateValidating); err != nil {
		return nil, err
	}
	validator, err := claims.NewValidator(resumeText)
	if err != nil {
		return nil, fmt.Errorf("failed to build claim validator: %w", err)
	}
	defer validator.Close()
	report := validator.ValidateSections(sections)
	run.Log["validation"] = fmt.Sprintf("score=%.0f flagged=%d corrected=%d",
		report.Score, len(report.FlaggedClaims), len(report.Corrections))
	if o.opts.Printer != nil {
		o.opts.Printer.PrintValidationReport(report)
	}

	if err := o.advance(ctx, run, handle, stateRefining); err != nil {
		return nil, err
	}
	job.Status = types.JobStatusRefining
	if err := o.opts.Store.UpdateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to mark job refining: %w", err)
	}
	sections = agents.Refine(ctx, o.opts.Client, shared, sections, o.opts.Logf)

	if err := o.advance(ctx, run, handle, stateTrimming); err != nil {
		return nil, err
	}
	before := sections.TotalWords()
	sections = trimming.Trim(sections, o.opts.WordBudget, trimming.DefaultPriority)
	if after := sections.TotalWords(); after < before {
		run.Log["trimming"] = fmt.Sprintf("trimmed %d words to fit budget %d", before-after, o.opts.WordBudget)
	}

	if err := o.advance(ctx, run, handle, stateFinalizing); err != nil {
		return nil, err
	}
	job.Sections = sections
	job.Scores = ComputeScores(sections, jobAnalysis, style, report.Score)
	job.Status = types.JobStatusCompleted
	job.Iterations++
	if err := o.opts.Store.UpdateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to persist completed job: %w", err)
	}

	now := time.Now()
	run.Status = types.RunStatusCompleted
	run.CurrentStep = "completed"
	run.Progress = 100
	run.CompletedAt = &now
	if err := o.opts.Store.UpdateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to persist completed run: %w", err)
	}
	o.emit(run, "run completed")
	return job, nil
}

// analyzePosting fans out the two extraction calls and joins on both. An
// extraction failure degrades to an empty list rather than aborting the run.
func (o *Orchestrator) analyzePosting(ctx context.Context, posting *types.JobPosting) types.JobAnalysis {
	var result types.JobAnalysis
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		keywords, err := analysis.ExtractKeywords(gctx, o.opts.Client, posting.Description)
		if err != nil {
			o.logf("keyword extraction degraded: %v", err)
			return nil
		}
		result.Keywords = keywords
		return nil
	})
	g.Go(func() error {
		requirements, err := analysis.ExtractRequirements(gctx, o.opts.Client, posting.Description)
		if err != nil {
			o.logf("requirement extraction degraded: %v", err)
			return nil
		}
		result.Requirements = requirements
		return nil
	})

	_ = g.Wait()
	return result
}

// mapAccomplishments resolves the cached requirement-to-accomplishment
// mapping for one (user, posting) pair. A compute failure yields the empty
// mapping and is not cached, so the next run retries.
func (o *Orchestrator) mapAccomplishments(ctx context.Context, userID, postingID int64, requirements, accomplishments []string) types.AccomplishmentMapping {
	scope := fmt.Sprintf("job-%d", postingID)

	var mapping types.AccomplishmentMapping
	if o.opts.Caches.Mapping.GetProcessed(userID, scope, &mapping) {
		return mapping
	}

	computed, err := analysis.MapAccomplishments(ctx, o.opts.Client, requirements, accomplishments)
	if err != nil {
		o.logf("accomplishment mapping degraded: %v", err)
		return analysis.EmptyMapping()
	}
	if err := o.opts.Caches.Mapping.SetProcessed(userID, scope, computed); err != nil {
		o.logf("failed to cache accomplishment mapping: %v", err)
	}
	return computed
}

// generateSections fans out every generation agent and joins on all of them
// before assembling the section map. Each agent owns fixed section names, so
// assembly order is deterministic regardless of completion order.
func (o *Orchestrator) generateSections(ctx context.Context, shared *agents.Context) (*types.SectionMap, error) {
	agentList := agents.All()
	results := make([]map[string]string, len(agentList))

	g, gctx := errgroup.WithContext(ctx)
	for i, agent := range agentList {
		g.Go(func() error {
			results[i] = agent.Run(gctx, o.opts.Client, shared, o.opts.Logf)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sections := types.NewSectionMap()
	for i, fields := range results {
		for name, text := range fields {
			if err := sections.Set(name, text); err != nil {
				return nil, fmt.Errorf("agent %s produced unknown section: %w", agentList[i].Name, err)
			}
		}
	}
	return sections, nil
}

// fail marks both records failed with the error recorded in the run log.
// Terminal records are left untouched.
func (o *Orchestrator) fail(ctx context.Context, run *types.PipelineRun, jobID int64, cause error) {
	o.logf("pipeline run %s failed at %s: %v", run.RunKey, run.CurrentStep, cause)

	if !run.Terminal() {
		now := time.Now()
		run.Status = types.RunStatusFailed
		if run.Log == nil {
			run.Log = map[string]string{}
		}
		run.Log["error"] = cause.Error()
		run.CompletedAt = &now
		if err := o.opts.Store.UpdateRun(ctx, run); err != nil {
			o.logf("failed to persist failed run %d: %v", run.ID, err)
		}
	}

	job, err := o.opts.Store.GetJob(ctx, jobID)
	if err != nil {
		return
	}
	if job.Status == types.JobStatusCompleted || job.Status == types.JobStatusFailed {
		return
	}
	job.Status = types.JobStatusFailed
	if err := o.opts.Store.UpdateJob(ctx, job); err != nil {
		o.logf("failed to persist failed job %d: %v", jobID, err)
	}
}

// watchdog emits a liveness signal on a fixed interval. It is observability
// only and is cancelled on every exit path of Run.
func (o *Orchestrator) watchdog(ctx context.Context, runKey uuid.UUID, handle *runHandle) {
	ticker := time.NewTicker(o.opts.WatchdogInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.logf("run %s still running (step=%s)", runKey, stateNames[handle.step.Load()])
		}
	}
}
