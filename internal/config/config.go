// Package config holds the benchmark suite: the literal problem instances
// and hyperparameter tables every experiment runs with, plus the overlay
// logic that lets a config file, RANDOPT_* environment variables or CLI
// flags override them.
package config

import (
	"fmt"
	"io"
	"math"
	"runtime"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/randopt/internal/problem"
)

// Problem kinds.
const (
	KindTSP       = "tsp"
	KindKnapsack  = "knapsack"
	KindFourPeaks = "fourpeaks"
	KindFlipFlop  = "flipflop"
)

// EnvPrefix is the prefix for environment overrides, e.g. RANDOPT_WORKERS.
const EnvPrefix = "RANDOPT"

// Range is a numpy-style arange: Start, Start+Step, ... strictly below Stop.
type Range struct {
	Start float64 `mapstructure:"start" yaml:"start" json:"start"`
	Stop  float64 `mapstructure:"stop" yaml:"stop" json:"stop"`
	Step  float64 `mapstructure:"step" yaml:"step" json:"step"`
}

// Values expands the range. Values within 1e-9 steps of Stop are excluded
// and each value is rounded to 10 decimals to absorb float drift.
func (r Range) Values() []float64 {
	if r.Step <= 0 || r.Stop <= r.Start {
		return nil
	}
	n := int(math.Ceil((r.Stop-r.Start)/r.Step - 1e-9))
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Round((r.Start+float64(i)*r.Step)*1e10) / 1e10
	}
	return out
}

// Ints expands the range and rounds every value to the nearest integer.
func (r Range) Ints() []int {
	vals := r.Values()
	out := make([]int, len(vals))
	for i, v := range vals {
		out[i] = int(math.Round(v))
	}
	return out
}

// Optimizations is the hyperparameter table of the optimizations sweep.
type Optimizations struct {
	RHCMaxIters   int     `mapstructure:"rhc_max_iters" yaml:"rhc_max_iters" json:"rhcMaxIters"`
	SAMaxIters    int     `mapstructure:"sa_max_iters" yaml:"sa_max_iters" json:"saMaxIters"`
	GAMaxIters    int     `mapstructure:"ga_max_iters" yaml:"ga_max_iters" json:"gaMaxIters"`
	MIMICMaxIters int     `mapstructure:"mimic_max_iters" yaml:"mimic_max_iters" json:"mimicMaxIters"`
	SAInitTemp    float64 `mapstructure:"sa_init_temp" yaml:"sa_init_temp" json:"saInitTemp"`
	SADecayRates  Range   `mapstructure:"sa_decay_rates" yaml:"sa_decay_rates" json:"saDecayRates"`
	SAMinTemp     float64 `mapstructure:"sa_min_temp" yaml:"sa_min_temp" json:"saMinTemp"`
	GAPopSize     int     `mapstructure:"ga_pop_size" yaml:"ga_pop_size" json:"gaPopSize"`
	MIMICPopSize  int     `mapstructure:"mimic_pop_size" yaml:"mimic_pop_size" json:"mimicPopSize"`
	GAKeepPct     float64 `mapstructure:"ga_keep_pct" yaml:"ga_keep_pct" json:"gaKeepPct"`
	MIMICKeepPct  float64 `mapstructure:"mimic_keep_pct" yaml:"mimic_keep_pct" json:"mimicKeepPct"`
	PopSizes      Range   `mapstructure:"pop_sizes" yaml:"pop_sizes" json:"popSizes"`
	KeepPcts      Range   `mapstructure:"keep_pcts" yaml:"keep_pcts" json:"keepPcts"`
}

// Performances is the hyperparameter table of the performances sweep.
type Performances struct {
	RHCMaxIters    int     `mapstructure:"rhc_max_iters" yaml:"rhc_max_iters" json:"rhcMaxIters"`
	SAMaxIters     int     `mapstructure:"sa_max_iters" yaml:"sa_max_iters" json:"saMaxIters"`
	GAMaxIters     int     `mapstructure:"ga_max_iters" yaml:"ga_max_iters" json:"gaMaxIters"`
	MIMICMaxIters  int     `mapstructure:"mimic_max_iters" yaml:"mimic_max_iters" json:"mimicMaxIters"`
	SAInitTemp     float64 `mapstructure:"sa_init_temp" yaml:"sa_init_temp" json:"saInitTemp"`
	SAExpDecayRate float64 `mapstructure:"sa_exp_decay_rate" yaml:"sa_exp_decay_rate" json:"saExpDecayRate"`
	SAMinTemp      float64 `mapstructure:"sa_min_temp" yaml:"sa_min_temp" json:"saMinTemp"`
	GAPopSize      int     `mapstructure:"ga_pop_size" yaml:"ga_pop_size" json:"gaPopSize"`
	GAKeepPct      float64 `mapstructure:"ga_keep_pct" yaml:"ga_keep_pct" json:"gaKeepPct"`
	MIMICPopSize   int     `mapstructure:"mimic_pop_size" yaml:"mimic_pop_size" json:"mimicPopSize"`
	MIMICKeepPct   float64 `mapstructure:"mimic_keep_pct" yaml:"mimic_keep_pct" json:"mimicKeepPct"`
}

// Problem describes one benchmark instance and its two sweeps. Only the
// fields relevant to Kind are used.
type Problem struct {
	Kind       string `mapstructure:"kind" yaml:"kind" json:"kind"`
	PlotName   string `mapstructure:"plot_name" yaml:"plot_name" json:"plotName"`
	PlotYLabel string `mapstructure:"plot_ylabel" yaml:"plot_ylabel" json:"plotYLabel"`
	Length     int    `mapstructure:"length" yaml:"length" json:"length"`

	Distances []problem.Edge `mapstructure:"distances" yaml:"distances,omitempty" json:"distances,omitempty"`
	Coords    [][]float64    `mapstructure:"coords" yaml:"coords,omitempty" json:"coords,omitempty"`

	Weights      []float64 `mapstructure:"weights" yaml:"weights,omitempty" json:"weights,omitempty"`
	Values       []float64 `mapstructure:"values" yaml:"values,omitempty" json:"values,omitempty"`
	MaxWeightPct float64   `mapstructure:"max_weight_pct" yaml:"max_weight_pct,omitempty" json:"maxWeightPct,omitempty"`

	TPct float64 `mapstructure:"t_pct" yaml:"t_pct,omitempty" json:"tPct,omitempty"`

	Optimizations Optimizations `mapstructure:"optimizations" yaml:"optimizations" json:"optimizations"`
	Performances  Performances  `mapstructure:"performances" yaml:"performances" json:"performances"`
}

// Problems holds every known instance. Run selects which ones execute.
type Problems struct {
	TSP       Problem `mapstructure:"tsp" yaml:"tsp" json:"tsp"`
	Knapsack  Problem `mapstructure:"knapsack" yaml:"knapsack" json:"knapsack"`
	FourPeaks Problem `mapstructure:"fourpeaks" yaml:"fourpeaks" json:"fourpeaks"`
	FlipFlop  Problem `mapstructure:"flipflop" yaml:"flipflop" json:"flipflop"`
}

// Mayfly configures the optional random-key baseline in the performances sweep.
type Mayfly struct {
	Enabled  bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	MaxIters int  `mapstructure:"max_iters" yaml:"max_iters" json:"maxIters"`
	PopSize  int  `mapstructure:"pop_size" yaml:"pop_size" json:"popSize"`
}

// Suite is the complete benchmark configuration.
type Suite struct {
	Seeds        []int64  `mapstructure:"seeds" yaml:"seeds" json:"seeds"`
	MaxAttempts  int      `mapstructure:"max_attempts" yaml:"max_attempts" json:"maxAttempts"`
	MutationProb float64  `mapstructure:"mutation_prob" yaml:"mutation_prob" json:"mutationProb"`
	Workers      int      `mapstructure:"workers" yaml:"workers" json:"workers"`
	OutputDir    string   `mapstructure:"output_dir" yaml:"output_dir" json:"outputDir"`
	DataDir      string   `mapstructure:"data_dir" yaml:"data_dir" json:"dataDir"`
	Run          []string `mapstructure:"run" yaml:"run" json:"run"`
	Mayfly       Mayfly   `mapstructure:"mayfly" yaml:"mayfly" json:"mayfly"`
	Problems     Problems `mapstructure:"problems" yaml:"problems" json:"problems"`
}

// Problem returns the instance for kind.
func (s *Suite) Problem(kind string) (*Problem, error) {
	switch strings.ToLower(kind) {
	case KindTSP:
		return &s.Problems.TSP, nil
	case KindKnapsack:
		return &s.Problems.Knapsack, nil
	case KindFourPeaks, "four_peaks", "four-peaks":
		return &s.Problems.FourPeaks, nil
	case KindFlipFlop, "flip_flop", "flip-flop":
		return &s.Problems.FlipFlop, nil
	default:
		return nil, fmt.Errorf("unknown problem: %s", kind)
	}
}

// Load overlays an optional config file, environment variables and any
// flags already bound to v onto Default, then validates the result.
func Load(path string, v *viper.Viper) (*Suite, error) {
	if v == nil {
		v = viper.New()
	}
	s := Default()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	defaults, err := defaultKeys(s)
	if err != nil {
		return nil, err
	}
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	// Lists in the file replace the defaults instead of merging by index.
	replaceLists := func(c *mapstructure.DecoderConfig) { c.ZeroFields = true }
	if err := v.Unmarshal(s, replaceLists); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if s.Workers <= 0 {
		s.Workers = runtime.NumCPU()
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// defaultKeys flattens s into dotted viper keys such as
// "problems.tsp.length". AutomaticEnv only resolves keys viper already
// knows, so every leaf is registered as a default. Lists are leaves.
func defaultKeys(s *Suite) (map[string]any, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode defaults: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to decode defaults: %w", err)
	}

	keys := make(map[string]any)
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, val := range m {
			key := prefix + k
			if sub, ok := val.(map[string]any); ok {
				walk(key+".", sub)
				continue
			}
			keys[key] = val
		}
	}
	walk("", tree)
	return keys, nil
}

// Encode writes the suite as YAML.
func (s *Suite) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode suite: %w", err)
	}
	return enc.Close()
}
