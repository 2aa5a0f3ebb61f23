package sink

import (
	"github.com/kbukum/gostream/errors"
)

type lifecycle int

const (
	idle lifecycle = iota
	active
)

// checked enforces the Begin/Accept/End protocol around a delegate.
type checked[T any] struct {
	delegate Sink[T]
	state    lifecycle
}

// Checked wraps s so that any lifecycle violation panics with an
// illegal-state *errors.AppError: Accept outside Begin/End, Begin twice
// without End, or End without Begin.
func Checked[T any](s Sink[T]) Sink[T] {
	return &checked[T]{delegate: s}
}

func (c *checked[T]) Begin(size int64) {
	if c.state == active {
		panic(errors.IllegalState("sink: Begin called twice without End"))
	}
	c.state = active
	c.delegate.Begin(size)
}

func (c *checked[T]) Accept(v T) {
	if c.state != active {
		panic(errors.IllegalState("sink: Accept called outside Begin/End"))
	}
	c.delegate.Accept(v)
}

func (c *checked[T]) End() {
	if c.state != active {
		panic(errors.IllegalState("sink: End called without Begin"))
	}
	c.state = idle
	c.delegate.End()
}

func (c *checked[T]) CancellationRequested() bool {
	return c.delegate.CancellationRequested()
}
