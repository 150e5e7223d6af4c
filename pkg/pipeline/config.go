package pipeline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sbrown5x/Final-Project/pkg/dataset"
)

// ForestConfig fixes the ensemble shape and lists the tunable
// minimum-leaf-size grid.
type ForestConfig struct {
	Trees    int   `yaml:"trees" json:"trees"`
	MTry     int   `yaml:"mtry" json:"mtry"` // 0 = sqrt(feature count)
	MinLeaf  []int `yaml:"min_leaf" json:"min_leaf"`
	TreeSeed int64 `yaml:"tree_seed" json:"tree_seed"`
}

// LogisticConfig lists the penalty-strength grid.
type LogisticConfig struct {
	Lambda []float64 `yaml:"lambda" json:"lambda"`
}

// Config is the complete configuration surface of a run. All behavior is
// parameterized here; there is no other global state.
type Config struct {
	LogLevel string `yaml:"log_level" json:"log_level"`

	TrainYear          int   `yaml:"train_year" json:"train_year"`
	EvaluateYears      []int `yaml:"evaluate_years" json:"evaluate_years"`
	EvaluateImmigrants bool  `yaml:"evaluate_immigrants" json:"evaluate_immigrants"`

	TrainFraction  float64 `yaml:"train_fraction" json:"train_fraction"`
	SplitSeed      int64   `yaml:"split_seed" json:"split_seed"`
	FoldCount      int     `yaml:"fold_count" json:"fold_count"`
	FoldSeed       int64   `yaml:"fold_seed" json:"fold_seed"`
	ComponentCount int     `yaml:"component_count" json:"component_count"`
	DownsampleSeed int64   `yaml:"downsample_seed" json:"downsample_seed"`
	Workers        int     `yaml:"workers" json:"workers"`

	Forest   ForestConfig   `yaml:"forest" json:"forest"`
	Logistic LogisticConfig `yaml:"logistic" json:"logistic"`

	Encoder dataset.Spec `yaml:"encoder" json:"encoder"`
}

// LoadConfig reads and validates a yaml configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every parameter before any data is touched.
func (c *Config) Validate() error {
	if c.TrainFraction <= 0 || c.TrainFraction >= 1 {
		return &ConfigError{Param: "train_fraction", Detail: fmt.Sprintf("%v outside (0,1)", c.TrainFraction)}
	}
	if c.FoldCount < 2 {
		return &ConfigError{Param: "fold_count", Detail: fmt.Sprintf("%d below minimum of 2", c.FoldCount)}
	}
	if c.ComponentCount < 1 {
		return &ConfigError{Param: "component_count", Detail: fmt.Sprintf("%d must be positive", c.ComponentCount)}
	}
	if c.TrainYear == 0 {
		return &ConfigError{Param: "train_year", Detail: "not set"}
	}
	if c.Forest.Trees < 1 {
		return &ConfigError{Param: "forest.trees", Detail: "ensemble size must be positive"}
	}
	if len(c.Forest.MinLeaf) == 0 {
		return &ConfigError{Param: "forest.min_leaf", Detail: "empty hyperparameter grid"}
	}
	for _, v := range c.Forest.MinLeaf {
		if v < 1 {
			return &ConfigError{Param: "forest.min_leaf", Detail: fmt.Sprintf("%d must be positive", v)}
		}
	}
	if len(c.Logistic.Lambda) == 0 {
		return &ConfigError{Param: "logistic.lambda", Detail: "empty hyperparameter grid"}
	}
	for _, v := range c.Logistic.Lambda {
		if v < 0 {
			return &ConfigError{Param: "logistic.lambda", Detail: fmt.Sprintf("%v must be non-negative", v)}
		}
	}
	if len(c.Encoder.Categorical) == 0 && len(c.Encoder.Numeric) == 0 {
		return &ConfigError{Param: "encoder", Detail: "no variables configured"}
	}
	return nil
}
