package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/coverletter-agent/internal/cache"
	"github.com/jonathan/coverletter-agent/internal/config"
	"github.com/jonathan/coverletter-agent/internal/llm"
	"github.com/jonathan/coverletter-agent/internal/observability"
	"github.com/jonathan/coverletter-agent/internal/pipeline"
	"github.com/jonathan/coverletter-agent/internal/rendering"
	"github.com/jonathan/coverletter-agent/internal/store"
	"github.com/jonathan/coverletter-agent/internal/types"
)

var generateCommand = &cobra.Command{
	Use:   "generate",
	Short: "Run the full cover letter pipeline end-to-end",
	Long: `Orchestrates the entire generation process: job analysis -> context loading -> accomplishment mapping -> section generation -> claim validation -> coherence refinement -> trimming.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runGenerateCmd,
}

var (
	genConfigPath  string
	genUserID      int64
	genCompany     string
	genRole        string
	genJobFile     string
	genName        string
	genAPIKey      string
	genDatabaseURL string
	genOutput      string
	genTemplate    string
	genWordBudget  int
	genVerbose     bool
)

func init() {
	generateCommand.Flags().StringVar(&genConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	generateCommand.Flags().Int64VarP(&genUserID, "user", "u", 1, "Numeric user id owning the documents")
	generateCommand.Flags().StringVarP(&genCompany, "company", "c", "", "Company name (required)")
	generateCommand.Flags().StringVarP(&genRole, "role", "r", "", "Role title (required)")
	generateCommand.Flags().StringVarP(&genJobFile, "job", "j", "", "Path to job posting text file (required)")
	generateCommand.Flags().StringVarP(&genName, "name", "n", "", "Candidate name")
	generateCommand.Flags().StringVar(&genAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	generateCommand.Flags().StringVar(&genDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	generateCommand.Flags().StringVarP(&genOutput, "output", "o", "", "Output path for the rendered letter")
	generateCommand.Flags().StringVarP(&genTemplate, "template", "t", "", "Path to a custom letter template")
	generateCommand.Flags().IntVar(&genWordBudget, "word-budget", 0, "Hard word ceiling for the letter")
	generateCommand.Flags().BoolVarP(&genVerbose, "verbose", "v", false, "Print detailed debug information")

	_ = generateCommand.MarkFlagRequired("company")
	_ = generateCommand.MarkFlagRequired("role")
	_ = generateCommand.MarkFlagRequired("job")

	rootCmd.AddCommand(generateCommand)
}

func runGenerateCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	description, err := os.ReadFile(genJobFile)
	if err != nil {
		return fmt.Errorf("failed to read job posting file: %w", err)
	}

	records, cleanup, err := openRecordStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	client, err := llm.NewGeminiClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}
	defer func() { _ = client.Close() }()

	caches, err := cache.NewDomains(cfg.TTL())
	if err != nil {
		return fmt.Errorf("failed to create caches: %w", err)
	}

	posting := &types.JobPosting{
		UserID:      genUserID,
		Company:     genCompany,
		RoleTitle:   genRole,
		Description: string(description),
	}
	if _, err := records.CreateJobPosting(ctx, posting); err != nil {
		return fmt.Errorf("failed to create job posting: %w", err)
	}
	job := &types.GenerationJob{
		UserID:       genUserID,
		JobPostingID: posting.ID,
		Status:       types.JobStatusDraft,
	}
	if _, err := records.CreateJob(ctx, job); err != nil {
		return fmt.Errorf("failed to create generation job: %w", err)
	}

	opts := pipeline.Options{
		Store:            records,
		Docs:             store.NewFSDocumentProvider(cfg.DocumentsDir),
		Client:           client,
		Caches:           caches,
		CandidateName:    cfg.CandidateName,
		WordBudget:       cfg.WordBudget,
		WatchdogInterval: cfg.WatchdogInterval(),
		OnProgress: func(event pipeline.ProgressEvent) {
			fmt.Printf("[%3d%%] %s\n", event.Progress, event.Step)
		},
	}
	if cfg.Verbose {
		opts.Logf = func(format string, args ...any) {
			fmt.Printf("[VERBOSE] "+format+"\n", args...)
		}
		caches.SetLogf(opts.Logf)
		opts.Printer = observability.NewPrinter(os.Stdout)
	}

	done, err := pipeline.New(opts).Run(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	if cfg.Verbose {
		printer := observability.NewPrinter(os.Stdout)
		printer.PrintSections(done.Sections)
		printer.PrintScores(done.Scores)
	}

	if err := writeLetter(done.Sections, cfg); err != nil {
		return err
	}
	fmt.Printf("Done! Letter written to %s (job %d, overall score %.1f).\n", cfg.OutputPath, done.ID, done.Scores.Overall)
	return nil
}

// resolveConfig applies the merge order: config file, environment, explicit
// CLI flags, defaults.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := &config.Config{}
	if genConfigPath != "" {
		loaded, err := config.LoadFile(genConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if genVerbose {
			fmt.Printf("Loaded config from: %s\n", genConfigPath)
		}
	}
	cfg.ApplyEnv()

	if cmd.Flags().Changed("name") {
		cfg.CandidateName = genName
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = genAPIKey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = genDatabaseURL
	}
	if cmd.Flags().Changed("output") {
		cfg.OutputPath = genOutput
	}
	if cmd.Flags().Changed("template") {
		cfg.TemplatePath = genTemplate
	}
	if cmd.Flags().Changed("word-budget") {
		cfg.WordBudget = genWordBudget
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = genVerbose
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openRecordStore connects to PostgreSQL when configured and falls back to
// the in-memory store otherwise.
func openRecordStore(ctx context.Context, cfg *config.Config) (store.RecordStore, func(), error) {
	if cfg.DatabaseURL == "" {
		return store.NewMemoryStore(), func() {}, nil
	}
	pg, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pg, pg.Close, nil
}

func newRenderer(cfg *config.Config) (store.DocumentRenderer, error) {
	if cfg.TemplatePath != "" {
		return rendering.NewTextRendererFromFile(cfg.TemplatePath)
	}
	return rendering.NewTextRenderer(), nil
}

func writeLetter(sections *types.SectionMap, cfg *config.Config) error {
	renderer, err := newRenderer(cfg)
	if err != nil {
		return err
	}
	letter, err := renderer.Render(sections)
	if err != nil {
		return fmt.Errorf("failed to render letter: %w", err)
	}
	if err := os.WriteFile(cfg.OutputPath, letter, 0o644); err != nil {
		return fmt.Errorf("failed to write letter: %w", err)
	}
	return nil
}
