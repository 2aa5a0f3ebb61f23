package config

import (
	"github.com/kbukum/gostream/forkjoin"
	"github.com/kbukum/gostream/logger"
	"github.com/kbukum/gostream/prefix"
	"github.com/kbukum/gostream/validation"
)

// DefaultCancelCheckInterval is how many elements an unordered take-while
// or drop-while traverses between polls of its shared cancel flag.
const DefaultCancelCheckInterval = prefix.DefaultCheckInterval

// EngineConfig tunes parallel evaluation.
//
// Example config.yml:
//
//	parallelism: 8
//	leaf_factor: 4
//	cancel_check_interval: 64
//	check_sinks: false
//	logging:
//	  level: debug
type EngineConfig struct {
	// Parallelism is the expected number of workers; 0 means
	// runtime.GOMAXPROCS(0).
	Parallelism int `yaml:"parallelism" mapstructure:"parallelism" validate:"gte=0"`
	// LeafFactor is the number of leaf tasks aimed for per worker.
	LeafFactor int `yaml:"leaf_factor" mapstructure:"leaf_factor" validate:"gte=1"`
	// CancelCheckInterval must be a power of two.
	CancelCheckInterval int `yaml:"cancel_check_interval" mapstructure:"cancel_check_interval" validate:"pow2"`
	// CheckSinks makes every fused stage verify the sink lifecycle and
	// fail with an illegal-state error on a violation.
	CheckSinks bool          `yaml:"check_sinks" mapstructure:"check_sinks"`
	Logging    logger.Config `yaml:"logging" mapstructure:"logging"`
}

// ApplyDefaults fills unset fields.
func (c *EngineConfig) ApplyDefaults() {
	if c.LeafFactor == 0 {
		c.LeafFactor = forkjoin.DefaultLeafFactor
	}
	if c.CancelCheckInterval == 0 {
		c.CancelCheckInterval = DefaultCancelCheckInterval
	}
	c.Logging.ApplyDefaults()
}

// Validate checks the engine fields and the logging section.
func (c *EngineConfig) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	return validation.New().
		OneOf("logging.level", c.Logging.Level, logger.Levels).
		OneOf("logging.format", c.Logging.Format, logger.Formats).
		Err()
}

// ForkJoin returns the fork-join configuration described by c, logging
// through a logger built from its logging section.
func (c *EngineConfig) ForkJoin() forkjoin.Config {
	return forkjoin.Config{
		Parallelism: c.Parallelism,
		LeafFactor:  c.LeafFactor,
		Logger:      logger.New(&c.Logging).WithComponent("forkjoin"),
	}
}
