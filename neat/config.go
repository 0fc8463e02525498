package neat

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Config stores the configuration parameters for a run. It is injected into an
// Engine before any evolutionary call and is treated as read-only afterwards.
type Config struct {
	Run        RunConfig        `yaml:"run"`
	Mutation   MutationConfig   `yaml:"mutation"`
	Speciation SpeciationConfig `yaml:"speciation"`
	Bounds     BoundsConfig     `yaml:"bounds"`
}

// RunConfig holds parameters describing the population and the seed genome.
type RunConfig struct {
	PopSize      int    `ini:"pop_size" yaml:"pop_size"`
	Seed         int64  `ini:"seed" yaml:"seed"` // 0 seeds from the clock
	NumInputs    int    `ini:"num_inputs" yaml:"num_inputs"`
	NumOutputs   int    `ini:"num_outputs" yaml:"num_outputs"`
	LSTMCapacity int    `ini:"lstm_capacity" yaml:"lstm_capacity"` // 0 disables the seed memory unit
	LogLevel     string `ini:"log_level" yaml:"log_level"`
}

// MutationConfig holds the Bernoulli probabilities of each mutation operator.
type MutationConfig struct {
	PAddNode           float64 `ini:"p_add_node" yaml:"p_add_node"`
	PAddConnection     float64 `ini:"p_add_connection" yaml:"p_add_connection"`
	PToggleConnection  float64 `ini:"p_toggle_connection" yaml:"p_toggle_connection"`
	PPerturbWeights    float64 `ini:"p_perturb_weights" yaml:"p_perturb_weights"`
	PRandomizeWeight   float64 `ini:"p_randomize_weight" yaml:"p_randomize_weight"`
	PerturbWeightPower float64 `ini:"perturb_weight_power" yaml:"perturb_weight_power"`
}

// SpeciationConfig holds the compatibility distance coefficients.
type SpeciationConfig struct {
	CompatibilityThreshold float64 `ini:"compatibility_threshold" yaml:"compatibility_threshold"`
	ExcessCoefficient      float64 `ini:"excess_coefficient" yaml:"excess_coefficient"`
	DisjointCoefficient    float64 `ini:"disjoint_coefficient" yaml:"disjoint_coefficient"`
	WeightsCoefficient     float64 `ini:"weights_coefficient" yaml:"weights_coefficient"`
}

// BoundsConfig holds the range connection weights are kept in.
type BoundsConfig struct {
	MinWeight float64 `ini:"min_weight" yaml:"min_weight"`
	MaxWeight float64 `ini:"max_weight" yaml:"max_weight"`
}

// DefaultConfig returns a configuration suitable for small tasks such as XOR.
func DefaultConfig() *Config {
	return &Config{
		Run: RunConfig{
			PopSize:    150,
			NumInputs:  2,
			NumOutputs: 1,
			LogLevel:   "info",
		},
		Mutation: MutationConfig{
			PAddNode:           0.03,
			PAddConnection:     0.05,
			PToggleConnection:  0.01,
			PPerturbWeights:    0.8,
			PRandomizeWeight:   0.1,
			PerturbWeightPower: 0.5,
		},
		Speciation: SpeciationConfig{
			CompatibilityThreshold: 3.0,
			ExcessCoefficient:      1.0,
			DisjointCoefficient:    1.0,
			WeightsCoefficient:     0.4,
		},
		Bounds: BoundsConfig{
			MinWeight: -5.0,
			MaxWeight: 5.0,
		},
	}
}

// LoadConfig loads configuration parameters from an INI file, or from YAML when
// the file name ends in .yaml or .yml. Missing keys keep their DefaultConfig value.
func LoadConfig(filePath string) (*Config, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		return loadYAMLConfig(filePath)
	default:
		return loadINIConfig(filePath)
	}
}

func loadINIConfig(filePath string) (*Config, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}

	config := DefaultConfig()
	if err := cfg.Section("Run").MapTo(&config.Run); err != nil {
		return nil, fmt.Errorf("failed to map [Run] section: %w", err)
	}
	if err := cfg.Section("Mutation").MapTo(&config.Mutation); err != nil {
		return nil, fmt.Errorf("failed to map [Mutation] section: %w", err)
	}
	if err := cfg.Section("Speciation").MapTo(&config.Speciation); err != nil {
		return nil, fmt.Errorf("failed to map [Speciation] section: %w", err)
	}
	if err := cfg.Section("Bounds").MapTo(&config.Bounds); err != nil {
		return nil, fmt.Errorf("failed to map [Bounds] section: %w", err)
	}
	config.Run.LogLevel = cleanIniString(config.Run.LogLevel)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func loadYAMLConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", filePath, err)
	}
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to decode yaml config '%s': %w", filePath, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks value ranges. It is called by LoadConfig and NewEngine.
func (c *Config) Validate() error {
	if c.Run.PopSize <= 0 {
		return fmt.Errorf("%w: pop_size must be positive", ErrConfig)
	}
	if c.Run.NumInputs <= 0 {
		return fmt.Errorf("%w: num_inputs must be positive", ErrConfig)
	}
	if c.Run.NumOutputs <= 0 {
		return fmt.Errorf("%w: num_outputs must be positive", ErrConfig)
	}
	if c.Run.LSTMCapacity < 0 {
		return fmt.Errorf("%w: lstm_capacity cannot be negative", ErrConfig)
	}

	probabilities := []struct {
		name  string
		value float64
	}{
		{"p_add_node", c.Mutation.PAddNode},
		{"p_add_connection", c.Mutation.PAddConnection},
		{"p_toggle_connection", c.Mutation.PToggleConnection},
		{"p_perturb_weights", c.Mutation.PPerturbWeights},
		{"p_randomize_weight", c.Mutation.PRandomizeWeight},
	}
	for _, p := range probabilities {
		if p.value < 0 || p.value > 1 {
			return fmt.Errorf("%w: %s must be between 0 and 1", ErrConfig, p.name)
		}
	}
	if c.Mutation.PerturbWeightPower < 0 {
		return fmt.Errorf("%w: perturb_weight_power cannot be negative", ErrConfig)
	}

	if c.Speciation.CompatibilityThreshold < 0 {
		return fmt.Errorf("%w: compatibility_threshold cannot be negative", ErrConfig)
	}
	if c.Speciation.ExcessCoefficient < 0 || c.Speciation.DisjointCoefficient < 0 || c.Speciation.WeightsCoefficient < 0 {
		return fmt.Errorf("%w: compatibility coefficients cannot be negative", ErrConfig)
	}

	if c.Bounds.MaxWeight < c.Bounds.MinWeight {
		return fmt.Errorf("%w: max_weight cannot be less than min_weight", ErrConfig)
	}
	return nil
}

// cleanIniString removes inline comments and trims whitespace from a string read from INI.
func cleanIniString(s string) string {
	if idx := strings.IndexAny(s, "#;"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
