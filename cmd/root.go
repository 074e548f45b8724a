package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cwbudde/randopt/internal/config"
)

var (
	logLevel   string
	configPath string
	logger     *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "randopt",
	Short: "Randomized optimization benchmarks (RHC, SA, GA, MIMIC)",
	Long: `randopt compares random hill climbing, simulated annealing, a genetic
algorithm and MIMIC on the Travelling Salesman, Knapsack and Four Peaks
problems. Without a subcommand it runs every problem of the suite, first the
hyperparameter optimizations sweep and then the performances comparison,
and writes the plots.`,
	Args: cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Setup logger
		var level slog.Level
		switch logLevel {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}

		opts := &slog.HandlerOptions{Level: level}
		handler := slog.NewJSONHandler(os.Stderr, opts)
		logger = slog.New(handler)
		slog.SetDefault(logger)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBenchmarks(cmd, nil)
	},
}

// flagKeys maps CLI flags onto suite keys so that flags override the config
// file and the environment.
var flagKeys = map[string]string{
	"out":          "output_dir",
	"data-dir":     "data_dir",
	"workers":      "workers",
	"max-attempts": "max_attempts",
	"mayfly":       "mayfly.enabled",
}

// loadSuite resolves the suite from defaults, --config, RANDOPT_* variables
// and whichever of the flagKeys flags cmd defines.
func loadSuite(cmd *cobra.Command) (*config.Suite, error) {
	v := viper.New()
	for flag, key := range flagKeys {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return nil, fmt.Errorf("failed to bind --%s: %w", flag, err)
		}
	}
	suite, err := config.Load(configPath, v)
	if err != nil {
		return nil, fmt.Errorf("failed to load suite: %w", err)
	}
	return suite, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Suite config file (YAML, JSON or TOML)")
	addRunFlags(rootCmd)
}
