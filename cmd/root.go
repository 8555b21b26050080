package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kilianp07/feasnet/config"
	coremetrics "github.com/kilianp07/feasnet/core/metrics"
	"github.com/kilianp07/feasnet/core/search"
	"github.com/kilianp07/feasnet/core/steplog"
	"github.com/kilianp07/feasnet/infra/consumption"
	"github.com/kilianp07/feasnet/infra/logger"
	"github.com/kilianp07/feasnet/infra/metrics"
	"github.com/kilianp07/feasnet/infra/sqlite"
	"github.com/kilianp07/feasnet/internal/eventbus"
	"github.com/kilianp07/feasnet/pkg/export"
)

var (
	cfgPath     string
	dbPath      string
	scenarioID  int64
	paths       int
	generations int
	maxSteps    int
	resultsPath string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "feasnet",
	Short: "Search for a feasible electric bus network",
	Long: `feasnet runs a randomized local search that makes an infeasible
vehicle rotation schedule feasible by electrifying stations and splitting
rotations, and reports the resulting cost frontier.`,
	RunE: run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "database", "", "schedule database file (overrides config)")
	rootCmd.Flags().Int64Var(&scenarioID, "scenario-id", 0, "id of the scenario to optimize")
	rootCmd.Flags().IntVar(&paths, "paths", 0, "number of parallel search paths (overrides config)")
	rootCmd.Flags().IntVar(&generations, "generations", 0, "restarts per trial (overrides config)")
	rootCmd.Flags().IntVar(&maxSteps, "max-steps", 0, "mutation limit per generation (overrides config)")
	rootCmd.Flags().StringVar(&resultsPath, "results", "", "results file (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if cmd.Flags().Changed("paths") {
		cfg.Search.Paths = paths
	}
	if cmd.Flags().Changed("generations") {
		cfg.Search.Generations = generations
	}
	if cmd.Flags().Changed("max-steps") {
		cfg.Search.MaxSteps = maxSteps
	}
	if resultsPath != "" {
		cfg.Results.Path = resultsPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	return cfg, nil
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if scenarioID == 0 {
		return fmt.Errorf("the scenario id must be specified; run `feasnet scenarios` to list them, then run with --scenario-id <id>")
	}

	log := logger.New("feasnet")

	// A previous run's results are reused instead of searching again.
	if _, err := os.Stat(cfg.Results.Path); err == nil {
		log.Infof("results file %s exists, skipping search", cfg.Results.Path)
		f, err := os.Open(cfg.Results.Path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		results, err := export.ReadJSON(f)
		if err != nil {
			return fmt.Errorf("read results: %w", err)
		}
		return report(cfg, results, log)
	}

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			log.Errorf("store close: %v", cerr)
		}
	}()

	bus := eventbus.New()
	defer bus.Close()
	startMetrics(ctx, cfg, bus, log)
	if verbose {
		wait := startProgress(bus, log)
		defer wait()
	}

	oracle := consumption.New(store)
	orch, err := search.NewOrchestrator(store, oracle, cfg.Search, log, bus)
	if err != nil {
		return err
	}
	results, err := orch.Run(ctx, scenarioID)
	if err != nil {
		return err
	}

	if err := persist(ctx, cfg, results, log); err != nil {
		return err
	}
	return report(cfg, results, log)
}

func startMetrics(ctx context.Context, cfg *config.Config, bus eventbus.EventBus, log logger.Logger) {
	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(nil)
		if err != nil {
			log.Errorf("prom sink: %v", err)
		} else {
			sinks = append(sinks, sink)
			go func() {
				if err := metrics.StartPromServer(ctx, cfg.Metrics.PrometheusAddr); err != nil {
					log.Errorf("prom server: %v", err)
				}
			}()
		}
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(
			cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket))
	}
	if len(sinks) == 0 {
		return
	}
	var sink coremetrics.Sink = sinks[0]
	if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}
	metrics.StartEventCollector(ctx, bus, sink)
}

// startProgress mirrors bus events onto the debug log while the search runs.
// It reports what the trials themselves cannot: oracle latencies and whether
// a step was answered from the memoization cache. The returned function
// detaches the subscriber and waits for it to drain.
func startProgress(bus eventbus.EventBus, log logger.Logger) func() {
	sub := bus.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range sub {
			switch e := ev.(type) {
			case search.StepEvent:
				log.Debugf("progress: trial %s generation %d step %d: %d electrified, %d split, %d rotations below zero (cache hit: %t)",
					e.TrialID, e.Generation, e.Step,
					e.Record.ElectrifiedStationCount, e.Record.SplitRotationCount,
					e.Record.RotationsBelowZero, e.CacheHit)
			case search.OracleEvent:
				log.Debugf("progress: oracle on scenario %d took %s (failed: %t)",
					e.ScenarioID, e.Duration, e.Failed)
			case search.GenerationDoneEvent:
				log.Debugf("progress: trial %s generation %d done: %s after %d steps",
					e.TrialID, e.Generation, e.Status, e.Steps)
			}
		}
	}()
	return func() {
		bus.Unsubscribe(sub)
		<-done
	}
}

// persist writes the trial histories to the results file and every step to
// the configured step-log store.
func persist(ctx context.Context, cfg *config.Config, results []search.TrialResult, log logger.Logger) error {
	f, err := os.Create(cfg.Results.Path)
	if err != nil {
		return fmt.Errorf("create results file: %w", err)
	}
	if err := export.WriteJSON(f, results); err != nil {
		_ = f.Close()
		return fmt.Errorf("write results: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Infof("wrote %d trial histories to %s", len(results), cfg.Results.Path)

	steps, err := cfg.Logging.OpenStore()
	if err != nil {
		return fmt.Errorf("open step log: %w", err)
	}
	defer func() {
		if cerr := steps.Close(); cerr != nil {
			log.Errorf("step log close: %v", cerr)
		}
	}()
	for _, tr := range results {
		for _, gen := range tr.Generations {
			for i, rec := range gen.Steps {
				entry := steplog.Record{
					Timestamp:  time.Now(),
					TrialID:    tr.TrialID,
					Bias:       tr.Bias,
					Generation: gen.Generation,
					Step:       i + 1,
					StepRecord: rec,
				}
				if err := steps.Append(ctx, entry); err != nil {
					return fmt.Errorf("append step log: %w", err)
				}
			}
		}
	}
	return nil
}

// report prints the frontier and writes its CSV form.
func report(cfg *config.Config, results []search.TrialResult, log logger.Logger) error {
	frontier := search.BuildFrontier(results)
	f, err := os.Create(cfg.Results.FrontierPath)
	if err != nil {
		return fmt.Errorf("create frontier file: %w", err)
	}
	defer func() { _ = f.Close() }()
	if err := export.WriteFrontierCSV(f, frontier); err != nil {
		return fmt.Errorf("write frontier: %w", err)
	}
	log.Infof("wrote %d frontier points to %s", len(frontier), cfg.Results.FrontierPath)

	fmt.Println("electrified stations | split rotations | rotations below zero")
	for _, p := range search.Pareto(frontier) {
		fmt.Printf("%20d | %15d | %20d\n",
			p.ElectrifiedStationCount, p.SplitRotationCount, p.RotationsBelowZero)
	}
	return nil
}
