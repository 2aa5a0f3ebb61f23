package node

import (
	"fmt"

	"github.com/kbukum/gostream/buffer"
	"github.com/kbukum/gostream/errors"
	"github.com/kbukum/gostream/sink"
)

// Builder is a sink that collects one traversal into a Node. Build may be
// called once, after End.
type Builder[T any] interface {
	sink.Sink[T]
	Build() (Node[T], error)
}

// NewBuilder returns a builder for exactSize elements: a fixed builder
// backed by one slice when 0 <= exactSize < errors.MaxArraySize, a
// growable one when exactSize < 0.
func NewBuilder[T any](exactSize int64) (Builder[T], error) {
	switch {
	case exactSize >= errors.MaxArraySize:
		return nil, errors.CapacityExceeded(exactSize)
	case exactSize >= 0:
		return &fixedBuilder[T]{items: make([]T, exactSize)}, nil
	}
	return &growableBuilder[T]{buf: buffer.New[T]()}, nil
}

// MustNewBuilder is NewBuilder for use inside a traversal, where failures
// are raised as panics and recovered by the evaluation.
func MustNewBuilder[T any](exactSize int64) Builder[T] {
	b, err := NewBuilder[T](exactSize)
	if err != nil {
		panic(err)
	}
	return b
}

type builderState int

const (
	stateReady builderState = iota
	stateBuilding
	stateEnded
	stateBuilt
)

func (s builderState) build() error {
	switch s {
	case stateEnded:
		return nil
	case stateBuilt:
		return errors.IllegalState("builder already built")
	}
	return errors.IllegalState("build called before end")
}

type fixedBuilder[T any] struct {
	items []T
	n     int
	state builderState
}

func (b *fixedBuilder[T]) Begin(size int64) {
	if b.state == stateBuilding || b.state == stateBuilt {
		panic(errors.IllegalState("begin called on a builder in use"))
	}
	if size != int64(len(b.items)) {
		panic(errors.IllegalState(fmt.Sprintf("begin size %d is not equal to fixed size %d", size, len(b.items))))
	}
	b.n = 0
	b.state = stateBuilding
}

func (b *fixedBuilder[T]) Accept(v T) {
	if b.state != stateBuilding {
		panic(errors.IllegalState("accept called outside begin and end"))
	}
	if b.n >= len(b.items) {
		panic(errors.IllegalState(fmt.Sprintf("accept exceeded fixed size of %d", len(b.items))))
	}
	b.items[b.n] = v
	b.n++
}

func (b *fixedBuilder[T]) End() {
	if b.state != stateBuilding {
		panic(errors.IllegalState("end called without begin"))
	}
	if b.n < len(b.items) {
		panic(errors.IllegalState(fmt.Sprintf("end size %d is less than fixed size %d", b.n, len(b.items))))
	}
	b.state = stateEnded
}

func (b *fixedBuilder[T]) CancellationRequested() bool { return false }

func (b *fixedBuilder[T]) Build() (Node[T], error) {
	if err := b.state.build(); err != nil {
		return nil, err
	}
	b.state = stateBuilt
	return OfSlice(b.items), nil
}

type growableBuilder[T any] struct {
	buf   *buffer.Spined[T]
	state builderState
}

func (b *growableBuilder[T]) Begin(size int64) {
	if b.state == stateBuilding || b.state == stateBuilt {
		panic(errors.IllegalState("begin called on a builder in use"))
	}
	b.buf.Clear()
	b.buf.Begin(size)
	b.state = stateBuilding
}

func (b *growableBuilder[T]) Accept(v T) {
	if b.state != stateBuilding {
		panic(errors.IllegalState("accept called outside begin and end"))
	}
	b.buf.Accept(v)
}

func (b *growableBuilder[T]) End() {
	if b.state != stateBuilding {
		panic(errors.IllegalState("end called without begin"))
	}
	b.state = stateEnded
}

func (b *growableBuilder[T]) CancellationRequested() bool { return false }

func (b *growableBuilder[T]) Build() (Node[T], error) {
	if err := b.state.build(); err != nil {
		return nil, err
	}
	b.state = stateBuilt
	if b.buf.Count() == 0 {
		return Empty[T](), nil
	}
	return OfBuffer(b.buf), nil
}
