// Package config loads run configurations from YAML.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

type OperatorConfig struct {
	Probability float64 `yaml:"probability"`
	Schedule    string  `yaml:"schedule"`
	Final       float64 `yaml:"final"`
}

type RecombinationConfig struct {
	OperatorConfig  `yaml:",inline"`
	ParentSelection string `yaml:"parent_selection"`
	TournamentSize  int    `yaml:"tournament_size"`
}

type MutationConfig struct {
	OperatorConfig `yaml:",inline"`
	OnlyOffspring  bool    `yaml:"only_offspring"`
	Rate           float64 `yaml:"rate"`
}

type SurvivorConfig struct {
	Strategy string `yaml:"strategy"`
	Size     int    `yaml:"size"`
	MaxAge   int    `yaml:"max_age"`
}

type StoreConfig struct {
	Kind string `yaml:"kind"`
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type RunConfig struct {
	RunID       string `yaml:"run_id,omitempty"`
	Problem     string `yaml:"problem"`
	Seed        int64  `yaml:"seed"`
	Population  int    `yaml:"population"`
	Generations int    `yaml:"generations"`
	// FitnessGoal stops a run early once reached.
	FitnessGoal      *float64 `yaml:"fitness_goal,omitempty"`
	EvaluationsLimit int      `yaml:"evaluations_limit,omitempty"`

	Recombination RecombinationConfig `yaml:"recombination"`
	Mutation      MutationConfig      `yaml:"mutation"`
	Survivors     SurvivorConfig      `yaml:"survivors"`

	Dimensions int `yaml:"dimensions"`
	TrapSize   int `yaml:"trap_size"`

	// ResumeFrom seeds the initial population with the final population of
	// a stored run.
	ResumeFrom string `yaml:"resume_from,omitempty"`

	// Workers and Seeds drive benchmarks.
	Workers int     `yaml:"workers"`
	Seeds   []int64 `yaml:"seeds,omitempty"`

	Store        StoreConfig `yaml:"store"`
	Log          LogConfig   `yaml:"log"`
	ArtifactsDir string      `yaml:"artifacts_dir"`
}

func Default() RunConfig {
	return RunConfig{
		Problem:     "onemax",
		Seed:        1,
		Population:  50,
		Generations: 100,
		Recombination: RecombinationConfig{
			OperatorConfig:  OperatorConfig{Probability: 0.9, Schedule: "const"},
			ParentSelection: "tournament",
			TournamentSize:  3,
		},
		Mutation: MutationConfig{
			OperatorConfig: OperatorConfig{Probability: 0.2, Schedule: "const"},
		},
		Survivors:    SurvivorConfig{Strategy: "truncation"},
		Dimensions:   32,
		TrapSize:     4,
		Workers:      4,
		Store:        StoreConfig{Path: "evolver.db"},
		Log:          LogConfig{Level: "info", Format: "auto"},
		ArtifactsDir: "artifacts",
	}
}

// Load reads a YAML file over the defaults. JSON files work too.
func Load(path string) (RunConfig, error) {
	cfg := Default()
	buf, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, fmt.Errorf("read config file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return RunConfig{}, fmt.Errorf("parse config file %q: %w", path, err)
	}
	return cfg, nil
}

func (c RunConfig) Marshal() (string, error) {
	buf, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(buf), nil
}

func (c RunConfig) Validate() error {
	if c.Problem == "" {
		return invalid("problem is required")
	}
	if c.Population < 0 {
		return invalid("population must be >= 0, got %d", c.Population)
	}
	if c.Generations <= 0 {
		return invalid("generations must be > 0, got %d", c.Generations)
	}
	if c.EvaluationsLimit < 0 {
		return invalid("evaluations_limit must be >= 0, got %d", c.EvaluationsLimit)
	}
	if c.Dimensions <= 0 {
		return invalid("dimensions must be > 0, got %d", c.Dimensions)
	}
	if err := validateOperator("recombination", c.Recombination.OperatorConfig); err != nil {
		return err
	}
	if err := validateOperator("mutation", c.Mutation.OperatorConfig); err != nil {
		return err
	}
	if c.Recombination.TournamentSize < 0 {
		return invalid("recombination.tournament_size must be >= 0")
	}
	if c.Mutation.Rate < 0 || c.Mutation.Rate > 1 {
		return invalid("mutation.rate must be in [0, 1], got %g", c.Mutation.Rate)
	}
	if c.Survivors.Size < 0 || c.Survivors.MaxAge < 0 {
		return invalid("survivors size and max_age must be >= 0")
	}
	if c.Survivors.Strategy == "age_limited" && c.Survivors.MaxAge == 0 {
		return invalid("survivors.max_age is required for age_limited")
	}
	if c.Workers < 0 {
		return invalid("workers must be >= 0, got %d", c.Workers)
	}
	switch c.Log.Format {
	case "", "auto", "json", "console":
	default:
		return invalid("unsupported log format %q", c.Log.Format)
	}
	return nil
}

// validateOperator allows probabilities above 1; the driver treats them as 1.
func validateOperator(name string, op OperatorConfig) error {
	if op.Probability < 0 || op.Final < 0 {
		return invalid("%s probabilities must be >= 0", name)
	}
	switch op.Schedule {
	case "", "const", "linear", "exponential":
		return nil
	default:
		return invalid("%s.schedule %q is not one of const, linear, exponential", name, op.Schedule)
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...)
}
