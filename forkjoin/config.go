package forkjoin

import (
	"runtime"

	"github.com/kbukum/gostream/logger"
	"github.com/kbukum/gostream/observability"
)

// DefaultLeafFactor is the number of leaf tasks aimed for per unit of
// parallelism.
const DefaultLeafFactor = 4

// Config controls how Run decomposes work.
type Config struct {
	// Parallelism is the expected number of workers; 0 means
	// runtime.GOMAXPROCS(0).
	Parallelism int
	// LeafFactor multiplies Parallelism to get the target leaf count;
	// 0 means DefaultLeafFactor.
	LeafFactor int
	// Operation names the evaluation in logs, spans and metrics.
	Operation string
	// Logger receives debug events; nil means logger.Get("forkjoin").
	Logger *logger.Logger
	// Metrics records evaluation metrics when set.
	Metrics *observability.Metrics
}

// DefaultConfig returns a Config sized to the current GOMAXPROCS.
func DefaultConfig() Config {
	return Config{}
}

// WithOperation returns a copy of c naming the evaluation op.
func (c Config) WithOperation(op string) Config {
	c.Operation = op
	return c
}

func (c Config) parallelism() int {
	if c.Parallelism > 0 {
		return c.Parallelism
	}
	return runtime.GOMAXPROCS(0)
}

func (c Config) leafFactor() int {
	if c.LeafFactor > 0 {
		return c.LeafFactor
	}
	return DefaultLeafFactor
}

func (c Config) logger() *logger.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logger.Get("forkjoin")
}

// LeafTarget returns the size below which a task stops splitting:
// max(1, estimate / (parallelism * leafFactor)).
func (c Config) LeafTarget(estimate int64) int64 {
	return LeafTarget(estimate, c.parallelism(), c.leafFactor())
}

// LeafTarget returns max(1, estimate / (parallelism * leafFactor)).
func LeafTarget(estimate int64, parallelism, leafFactor int) int64 {
	d := int64(max(parallelism, 1)) * int64(max(leafFactor, 1))
	return max(estimate/d, 1)
}
