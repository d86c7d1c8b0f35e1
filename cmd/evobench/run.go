package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/evobench/internal/bench"
	"github.com/jonathan/evobench/internal/config"
	"github.com/jonathan/evobench/internal/db"
	"github.com/jonathan/evobench/internal/evolve"
	"github.com/jonathan/evobench/internal/observability"
	"github.com/jonathan/evobench/internal/recording"
	"github.com/jonathan/evobench/internal/runner"
	"github.com/jonathan/evobench/internal/suite"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run a benchmark suite against the search engine",
	Long: `Iterates every task of a benchmark suite, fits the search engine on each
dataset under the configured deadlines and records evolution history, candidate
pipelines and held-out accuracy scores under the output directory. Tasks whose
output directory already exists are skipped, so an interrupted run can be
resumed by pointing it at the same --out.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runSuiteCmd,
}

var (
	runConfigPath  string
	runOut         string
	runSuiteName   string
	runTasks       string
	runDataDir     string
	runEngine      string
	runNJobs       int
	runTimeout     float64
	runTaskTimeout float64
	runMaxHeight   int
	runDatabaseURL string
	runVerbose     bool
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runOut, "out", "o", "", "Output root directory (required via flag or config)")
	runCommand.Flags().StringVarP(&runSuiteName, "suite", "s", "", "Benchmark suite name")
	runCommand.Flags().StringVar(&runTasks, "tasks", "", "Comma-separated task IDs to process (default: whole suite)")
	runCommand.Flags().StringVarP(&runDataDir, "data", "d", "", "Directory of CSV datasets forming the catalog (required via flag or config)")
	runCommand.Flags().StringVar(&runEngine, "engine", "", "Registered search engine name")
	runCommand.Flags().IntVar(&runNJobs, "n-jobs", 0, "Worker parallelism for the search engine")
	runCommand.Flags().Float64Var(&runTimeout, "timeout", 0, "Per-fit wall-clock budget in seconds (0 = unbounded)")
	runCommand.Flags().Float64Var(&runTaskTimeout, "task-timeout", 0, "Per-task wall-clock budget in seconds (0 = unbounded)")
	runCommand.Flags().IntVar(&runMaxHeight, "max-height", 0, "Structural depth bound for candidate pipelines")
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed progress information")

	rootCmd.AddCommand(runCommand)
}

func runSuiteCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	var cfg config.Config
	if runConfigPath != "" {
		loadedCfg, err := config.LoadConfig(runConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return err
		}

		cfg = *loadedCfg
		if runVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", runConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("out") {
		cfg.Out = runOut
	}
	if cmd.Flags().Changed("suite") {
		cfg.Suite = runSuiteName
	}
	if cmd.Flags().Changed("tasks") {
		ids, err := parseTaskIDs(runTasks)
		if err != nil {
			return err
		}
		cfg.TaskIDs = ids
	}
	if cmd.Flags().Changed("data") {
		cfg.DataDir = runDataDir
	}
	if cmd.Flags().Changed("engine") {
		cfg.Engine = runEngine
	}
	if cmd.Flags().Changed("n-jobs") {
		cfg.Settings.NJobs = runNJobs
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Settings.Timeout = runTimeout
	}
	if cmd.Flags().Changed("task-timeout") {
		cfg.Settings.TaskTimeout = runTaskTimeout
	}
	if cmd.Flags().Changed("max-height") {
		cfg.Settings.MaxHeight = runMaxHeight
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}

	// Step 3: Apply defaults for unset values
	defaults := config.Config{
		Suite:  "OpenML-CC18",
		Engine: "genetic",
	}
	cfg = cfg.MergeWithDefaults(defaults)

	// Step 4: Validate required fields
	if cfg.Out == "" {
		return fmt.Errorf("--out is required (via flag or config)")
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("--data is required (via flag or config)")
	}

	factory, err := evolve.LookupFactory(cfg.Engine)
	if err != nil {
		return err
	}

	catalog, err := bench.LoadDirCatalog(cfg.DataDir, cfg.Suite)
	if err != nil {
		return fmt.Errorf("failed to load dataset catalog: %w", err)
	}

	// Step 5: Database URL handling; persistence is optional and a failed
	// connection only costs the run records, never the run
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	var store *db.DB
	if cfg.DatabaseURL != "" {
		store, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			fmt.Printf("Warning: Failed to connect to database: %v\n", err)
			fmt.Println("Continuing without run persistence...")
			store = nil
		} else {
			defer store.Close()
		}
	}

	var printer *observability.Printer
	if cfg.Verbose {
		printer = observability.NewPrinter(os.Stdout)
	}

	orchestrator := &suite.Orchestrator{
		Catalog: catalog,
		Runner: &runner.TaskRunner{
			Factory:  factory,
			Recorder: recording.NewRecorder(),
			Printer:  printer,
			Store:    store,
		},
		Suite:   cfg.Suite,
		TaskIDs: cfg.TaskIDs,
		OutDir:  cfg.Out,
		Config:  cfg.RunConfig(),
	}

	return orchestrator.Run(ctx)
}

// parseTaskIDs parses a comma-separated list of positive task identifiers.
func parseTaskIDs(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid task ID %q in --tasks: %w", part, err)
		}
		if id < 1 {
			return nil, fmt.Errorf("invalid task ID %d in --tasks: must be positive", id)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
