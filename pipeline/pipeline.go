package pipeline

import (
	"context"
	"iter"

	"github.com/kbukum/gostream/config"
	"github.com/kbukum/gostream/errors"
	"github.com/kbukum/gostream/forkjoin"
	"github.com/kbukum/gostream/prefix"
	"github.com/kbukum/gostream/spliterator"
	"github.com/kbukum/gostream/stage"
)

// Iterator provides pull-based access to a sequence of values. It lets
// cursor-style sources feed a Stream through FromIterator.
type Iterator[T any] interface {
	// Next returns the next value. Returns (zero, false, nil) when exhausted.
	Next(ctx context.Context) (T, bool, error)
	// Close releases any resources held by the iterator.
	Close() error
}

// env is shared by every stage of one stream. Execution mode and
// configuration apply to the whole pipeline, whichever stage set them.
type env struct {
	parallel      bool
	cfg           forkjoin.Config
	checkInterval int
	checkSinks    bool
	release       func() error
	failure       forkjoin.SharedResult[error]
}

func (e *env) close() error {
	if e.release == nil {
		return nil
	}
	release := e.release
	e.release = nil
	return release()
}

// err returns the first error reported by the source, if any.
func (e *env) err() error {
	if err, ok := e.failure.Get(); ok {
		return err
	}
	return nil
}

// Stream is a lazy, single-use pipeline. No work happens until a terminal
// operation runs. Every intermediate operation consumes its receiver and
// returns a new Stream; using a consumed Stream again fails with an
// illegal-state error at the terminal.
type Stream[T any] struct {
	env    *env
	build  func(ctx context.Context) (stage.Segment[T], error)
	linked bool
	err    error
	// set on streams made by Skip or Limit
	window *window[T]
}

const errLinked = "stream has already been operated upon or closed"

func newStream[T any](build func(ctx context.Context) (stage.Segment[T], error)) *Stream[T] {
	return &Stream[T]{
		env:   &env{checkInterval: config.DefaultCancelCheckInterval},
		build: build,
	}
}

// link marks s as consumed by a downstream stage or terminal.
func (s *Stream[T]) link() error {
	if s.err != nil {
		return s.err
	}
	if s.linked {
		return errors.IllegalState(errLinked)
	}
	s.linked = true
	return nil
}

// --- Constructors ---

// FromSpliterator creates a stream over src.
func FromSpliterator[T any](src spliterator.Spliterator[T]) *Stream[T] {
	if src == nil {
		return &Stream[T]{env: &env{}, err: errors.NilArgument("source")}
	}
	s := newStream(func(context.Context) (stage.Segment[T], error) {
		return stage.Source(src), nil
	})
	s.env.release = func() error {
		spliterator.Release(src)
		return nil
	}
	return s
}

// FromSlice creates a stream over items. The slice is not copied.
func FromSlice[T any](items []T) *Stream[T] {
	return FromSpliterator(spliterator.OfSlice(items))
}

// FromSeq creates a stream over seq. The sequence is pulled lazily and
// stopped when the terminal operation returns.
func FromSeq[T any](seq iter.Seq[T]) *Stream[T] {
	if seq == nil {
		return &Stream[T]{env: &env{}, err: errors.NilArgument("seq")}
	}
	return FromSpliterator(spliterator.OfSeq(seq))
}

// Range creates a stream over the integers in [from, to).
func Range(from, to int64) *Stream[int64] {
	return FromSpliterator(spliterator.OfRange(from, to))
}

// FromIterator creates a stream that pulls from it with the context of the
// terminal operation. An error from Next ends the source and is returned
// by the terminal; it is closed when the terminal returns.
func FromIterator[T any](it Iterator[T]) *Stream[T] {
	if it == nil {
		return &Stream[T]{env: &env{}, err: errors.NilArgument("iterator")}
	}
	var s *Stream[T]
	s = newStream(func(ctx context.Context) (stage.Segment[T], error) {
		src := spliterator.OfSeq(func(yield func(T) bool) {
			for {
				v, ok, err := it.Next(ctx)
				if err != nil {
					s.env.failure.TrySet(err)
					return
				}
				if !ok || !yield(v) {
					return
				}
			}
		})
		s.env.release = func() error {
			spliterator.Release(src)
			return it.Close()
		}
		return stage.Source(src), nil
	})
	s.env.release = it.Close
	return s
}

// --- Modifiers ---

// Parallel switches the whole pipeline to parallel evaluation.
func (s *Stream[T]) Parallel() *Stream[T] {
	s.env.parallel = true
	return s
}

// Sequential switches the whole pipeline to sequential evaluation.
func (s *Stream[T]) Sequential() *Stream[T] {
	s.env.parallel = false
	return s
}

// IsParallel reports whether a terminal would evaluate in parallel.
func (s *Stream[T]) IsParallel() bool { return s.env.parallel }

// WithConfig sets the fork-join configuration used by parallel terminals.
func (s *Stream[T]) WithConfig(cfg forkjoin.Config) *Stream[T] {
	s.env.cfg = cfg
	return s
}

// WithEngine applies an engine configuration: the fork-join settings, the
// cancellation polling interval of unordered prefix operations and sink
// lifecycle checks.
func (s *Stream[T]) WithEngine(cfg *config.EngineConfig) *Stream[T] {
	if cfg == nil {
		return s
	}
	s.env.cfg = cfg.ForkJoin()
	s.env.checkInterval = cfg.CancelCheckInterval
	s.env.checkSinks = cfg.CheckSinks
	return s
}

// Unordered drops the encounter order constraint from this point on,
// which lets parallel TakeWhile, DropWhile, Skip and Limit avoid
// materializing their input.
func (s *Stream[T]) Unordered() *Stream[T] {
	return then(s, stage.Unordered[T])
}

// derive appends a stage built by next on top of the segment of s.
func derive[In, Out any](s *Stream[In], next func(ctx context.Context, e *env, up stage.Segment[In]) (stage.Segment[Out], error)) *Stream[Out] {
	out := &Stream[Out]{env: s.env}
	if err := s.link(); err != nil {
		out.err = err
		return out
	}
	build := s.build
	out.build = func(ctx context.Context) (stage.Segment[Out], error) {
		up, err := build(ctx)
		if err != nil {
			return nil, err
		}
		return next(ctx, out.env, up)
	}
	return out
}

// then appends a fused stateless operation. A panic raised while creating
// the operation, such as a nil function, is reported by the terminal.
func then[In, Out any](s *Stream[In], makeOp func() stage.Op[In, Out]) *Stream[Out] {
	var op stage.Op[In, Out]
	if err := forkjoin.Try(func() { op = makeOp() }); err != nil {
		s.linked = true
		return &Stream[Out]{env: s.env, err: err}
	}
	return derive(s, func(_ context.Context, e *env, up stage.Segment[In]) (stage.Segment[Out], error) {
		return fuse(e, up, op), nil
	})
}

// fuse appends op to up, checking its sink lifecycle when the engine asks
// for it.
func fuse[In, Out any](e *env, up stage.Segment[In], op stage.Op[In, Out]) stage.Segment[Out] {
	if e.checkSinks {
		op = stage.Checked(op)
	}
	return stage.Then(up, op)
}

// whileOp appends a take-while or drop-while stage.
func whileOp[T any](s *Stream[T], makeOp func() prefix.Op[T]) *Stream[T] {
	var op prefix.Op[T]
	if err := forkjoin.Try(func() { op = makeOp() }); err != nil {
		s.linked = true
		return &Stream[T]{env: s.env, err: err}
	}
	return derive(s, func(ctx context.Context, e *env, up stage.Segment[T]) (stage.Segment[T], error) {
		return applyWhile(ctx, e, up, op)
	})
}
