package neat

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
)

// Engine carries everything the evolutionary operators share during a run:
// the read-only configuration, the innovation registry, the single random
// source, the logger and the genome id counter. Independent runs use
// independent engines. An Engine is not safe for concurrent use.
type Engine struct {
	Config      *Config
	Innovations *InnovationRegistry
	Rand        *rand.Rand
	Log         *logrus.Logger

	nextGenomeID int
}

// NewEngine validates the config and creates an engine seeded from Run.Seed.
// A nil logger is replaced with a fresh logrus logger at the configured level.
func NewEngine(config *Config, logger *logrus.Logger) (*Engine, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: nil config", ErrContract)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.New()
		if config.Run.LogLevel != "" {
			level, err := logrus.ParseLevel(config.Run.LogLevel)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid log_level %q: %v", ErrConfig, config.Run.LogLevel, err)
			}
			logger.SetLevel(level)
		}
	}

	seed := config.Run.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Engine{
		Config:      config,
		Innovations: NewInnovationRegistry(),
		Rand:        rand.New(rand.NewSource(seed)),
		Log:         logger,
	}, nil
}

// NewGenomeID returns the next unused genome id.
func (e *Engine) NewGenomeID() int {
	id := e.nextGenomeID
	e.nextGenomeID++
	return id
}

// Uniform draws a float uniformly from [lo, hi).
func (e *Engine) Uniform(lo, hi float64) float64 {
	return lo + e.Rand.Float64()*(hi-lo)
}

// UniformInt draws an int uniformly from [lo, hi], both ends inclusive.
func (e *Engine) UniformInt(lo, hi int) int {
	if hi < lo {
		panic(fmt.Sprintf("UniformInt: empty range [%d, %d]", lo, hi))
	}
	return lo + e.Rand.Intn(hi-lo+1)
}

func (e *Engine) chance(p float64) bool {
	return e.Rand.Float64() < p
}

func (e *Engine) randomWeight() float64 {
	return e.Uniform(e.Config.Bounds.MinWeight, e.Config.Bounds.MaxWeight)
}
