package cmd

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	sim "github.com/backoff-sim/backoff-sim/sim"
	"github.com/backoff-sim/backoff-sim/sim/recording"
	"github.com/backoff-sim/backoff-sim/sim/trace"
)

var (
	// CLI flags for the sweep
	seed              int64    // Seed for slot draws
	logLevel          string   // Log verbosity level
	configPath        string   // YAML sweep config (flags explicitly set override it)
	experiments       int      // Number of experiments per policy
	trials            int      // Trials per population size
	deviceIncrement   int      // Devices added per experiment
	maxRounds         int      // Round bound per experiment (0 = unbounded)
	policyNames       []string // Growth policies to compare
	initialWindow     int      // Initial window size for every policy (0 = policy default)
	finalRoundLatency string   // Terminal round accounting
	traceLevel        string   // Round tracing level

	// Output flags
	csvPath     string // Per-trial CSV output
	sqlitePath  string // Per-trial SQLite output
	resultsPath string // Aggregated metrics JSON output
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "backoff-sim",
	Short: "Slotted collision-resolution simulator for backoff window-growth policies",
}

// runCmd executes the sweep using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a latency sweep over growing device populations",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := buildSweepConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("%v", err)
		}

		rec, err := openRecorders(csvPath, sqlitePath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		logrus.Infof("Starting sweep: seed=%d experiments=%d trials=%d increment=%d policies=%v",
			cfg.Seed, cfg.Experiments, cfg.Trials, cfg.DeviceIncrement, cfg.Policies)
		startTime := time.Now()

		result, err := sim.RunSweep(cfg, rec)
		if err != nil {
			logrus.Fatalf("Sweep failed: %v", err)
		}
		if rec != nil {
			if err := rec.Close(); err != nil {
				logrus.Fatalf("Closing recorders: %v", err)
			}
		}

		for _, series := range result.Policies {
			if series.Trace != nil {
				s := trace.Summarize(series.Trace)
				logrus.Infof("[%s] trace: %d rounds, %d collisions, %d idle slots, peak window %d, mean contention %.3f",
					series.Name, s.Rounds, s.TotalCollisions, s.TotalIdle, s.PeakWindowSize, s.MeanContention)
			}
		}

		metrics := sim.ComputeMetrics(result)
		metrics.Print()
		if resultsPath != "" {
			if err := metrics.SaveResults(resultsPath); err != nil {
				logrus.Fatalf("%v", err)
			}
		}

		logrus.Infof("Sweep %s complete in %v.", result.RunID, time.Since(startTime))
	},
}

// buildSweepConfig starts from the YAML file (or defaults) and applies
// every flag the user set explicitly.
func buildSweepConfig(cmd *cobra.Command) (sim.SweepConfig, error) {
	cfg := sim.DefaultSweepConfig()
	if configPath != "" {
		loaded, err := sim.LoadSweepConfig(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = *loaded
	}

	flags := cmd.Flags()
	if configPath == "" || flags.Changed("seed") {
		cfg.Seed = seed
	}
	if configPath == "" || flags.Changed("experiments") {
		cfg.Experiments = experiments
	}
	if configPath == "" || flags.Changed("trials") {
		cfg.Trials = trials
	}
	if configPath == "" || flags.Changed("increment") {
		cfg.DeviceIncrement = deviceIncrement
	}
	if configPath == "" || flags.Changed("max-rounds") {
		cfg.MaxRounds = maxRounds
	}
	if configPath == "" || flags.Changed("final-latency") {
		if !sim.IsValidFinalRoundLatency(finalRoundLatency) {
			return cfg, fmt.Errorf("unknown --final-latency %q; valid: last-device, last-slot", finalRoundLatency)
		}
		cfg.FinalRoundLatency = sim.FinalRoundLatency(finalRoundLatency)
	}
	if configPath == "" || flags.Changed("trace-level") {
		if !trace.IsValidTraceLevel(traceLevel) {
			return cfg, fmt.Errorf("unknown --trace-level %q; valid: none, rounds", traceLevel)
		}
		cfg.TraceLevel = trace.TraceLevel(traceLevel)
	}
	if configPath == "" || flags.Changed("policies") {
		cfg.Policies = make([]sim.PolicyConfig, 0, len(policyNames))
		for _, name := range policyNames {
			cfg.Policies = append(cfg.Policies, sim.PolicyConfig{Name: name, InitialWindowSize: sim.DefaultInitialWindowSize(name)})
		}
	}
	if flags.Changed("initial-window") {
		if configPath != "" {
			logrus.Warnf("--initial-window=%d overrides every initial_window_size in %s", initialWindow, configPath)
		}
		for i := range cfg.Policies {
			cfg.Policies[i].InitialWindowSize = initialWindow
		}
	}
	return cfg, nil
}

// openRecorders opens the requested result backends. Returns a nil
// Recorder when no output was requested.
func openRecorders(csvPath, sqlitePath string) (recording.Recorder, error) {
	var csvRec, sqliteRec recording.Recorder
	if csvPath != "" {
		r, err := recording.NewCSVRecorder(csvPath)
		if err != nil {
			return nil, err
		}
		csvRec = r
	}
	if sqlitePath != "" {
		r, err := recording.NewSQLiteRecorder(sqlitePath)
		if err != nil {
			if csvRec != nil {
				_ = csvRec.Close()
			}
			return nil, err
		}
		sqliteRec = r
	}
	return recording.Multi(csvRec, sqliteRec), nil
}

// Execute runs the CLI root command
func Execute() {
	// Fatal log calls go through atexit so buffered results are flushed.
	logrus.StandardLogger().ExitFunc = atexit.Exit
	if err := rootCmd.Execute(); err != nil {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

// registerRunFlags binds the run flags of cmd to the package-level flag
// variables, resetting them to their defaults.
func registerRunFlags(cmd *cobra.Command) {
	defaults := sim.DefaultSweepConfig()
	defaultPolicies := make([]string, 0, len(defaults.Policies))
	for _, p := range defaults.Policies {
		defaultPolicies = append(defaultPolicies, p.Name)
	}

	cmd.Flags().Int64Var(&seed, "seed", defaults.Seed, "Seed for random slot selection")
	cmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	cmd.Flags().StringVar(&configPath, "config", "", "YAML sweep config; explicitly set flags override it")

	// Sweep shape
	cmd.Flags().IntVar(&experiments, "experiments", defaults.Experiments, "Number of experiments per policy")
	cmd.Flags().IntVar(&trials, "trials", defaults.Trials, "Trials per population size")
	cmd.Flags().IntVar(&deviceIncrement, "increment", defaults.DeviceIncrement, "Devices added per experiment")
	cmd.Flags().IntVar(&maxRounds, "max-rounds", defaults.MaxRounds, "Rounds before an experiment is declared divergent (0 = unbounded)")
	cmd.Flags().StringSliceVar(&policyNames, "policies", defaultPolicies, "Comma-separated growth policies")
	cmd.Flags().IntVar(&initialWindow, "initial-window", 0, "Initial window size for every policy (0 = policy default)")
	cmd.Flags().StringVar(&finalRoundLatency, "final-latency", string(sim.LatencyLastDevice), "Final round accounting (last-device, last-slot)")
	cmd.Flags().StringVar(&traceLevel, "trace-level", string(trace.TraceLevelNone), "Round tracing (none, rounds)")

	// Outputs
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write per-trial results to this CSV file")
	cmd.Flags().StringVar(&sqlitePath, "sqlite", "", "Append per-trial results to this SQLite database")
	cmd.Flags().StringVar(&resultsPath, "results", "", "Write aggregated metrics JSON to this file")
}

// init sets up CLI flags and subcommands
func init() {
	registerRunFlags(runCmd)

	// Attach subcommands to `root`
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(policiesCmd)
	rootCmd.AddCommand(growCmd)
}
