package stage

import (
	"github.com/kbukum/gostream/buffer"
	"github.com/kbukum/gostream/sink"
	"github.com/kbukum/gostream/spliterator"
)

// wrappingSpliterator exposes the output of a segment as a spliterator.
// Bulk traversal runs the fused chain directly; single-step traversal
// pushes source elements through the chain into a buffer until at least
// one output element is available.
type wrappingSpliterator[T any] struct {
	seg Segment[T]

	buf      *buffer.Spined[T]
	next     int64
	step     func() bool
	finish   func()
	finished bool
}

// AsSpliterator returns a spliterator over the output of seg. Splitting is
// only possible before traversal starts and splits the underlying source.
func AsSpliterator[T any](seg Segment[T]) spliterator.Spliterator[T] {
	return &wrappingSpliterator[T]{seg: seg}
}

func (w *wrappingSpliterator[T]) init() {
	if w.buf != nil {
		return
	}
	w.buf = buffer.New[T]()
	w.step, w.finish = w.seg.Pusher(sinkOf(w.buf))
}

// fill pushes source elements until the buffer has output or the chain is
// exhausted.
func (w *wrappingSpliterator[T]) fill() bool {
	w.buf.Clear()
	w.next = 0
	for w.buf.Count() == 0 {
		if w.finished {
			return false
		}
		if !w.step() {
			// End may flush elements held back by stateful sinks.
			w.finish()
			w.finished = true
		}
	}
	return true
}

func (w *wrappingSpliterator[T]) TryAdvance(action func(T)) bool {
	w.init()
	if w.next >= w.buf.Count() && !w.fill() {
		return false
	}
	v := w.buf.Get(w.next)
	w.next++
	action(v)
	return true
}

func (w *wrappingSpliterator[T]) ForEachRemaining(action func(T)) {
	if w.buf == nil && !w.finished {
		w.finished = true
		w.seg.WrapAndCopyInto(sink.Func(action))
		return
	}
	for w.TryAdvance(action) {
	}
}

func (w *wrappingSpliterator[T]) TrySplit() (spliterator.Spliterator[T], bool) {
	if w.buf != nil || w.finished {
		return nil, false
	}
	left, ok := w.seg.TrySplit()
	if !ok {
		return nil, false
	}
	return &wrappingSpliterator[T]{seg: left}, true
}

func (w *wrappingSpliterator[T]) EstimateSize() int64 {
	if n := w.seg.ExactOutputSize(); n >= 0 && w.buf == nil && !w.finished {
		return n
	}
	return w.seg.EstimateSize()
}

func (w *wrappingSpliterator[T]) Characteristics() spliterator.Characteristics {
	return ToCharacteristics(w.seg.Flags(), w.seg.SourceCharacteristics())
}

// sinkOf adapts a buffer to a sink that ignores the size hint, so a
// buffer reused across fills never reallocates its first chunk.
func sinkOf[T any](b *buffer.Spined[T]) sink.Sink[T] {
	return &bufferSink[T]{b: b}
}

type bufferSink[T any] struct{ b *buffer.Spined[T] }

func (s *bufferSink[T]) Begin(int64)                 {}
func (s *bufferSink[T]) Accept(v T)                  { s.b.Accept(v) }
func (s *bufferSink[T]) End()                        {}
func (s *bufferSink[T]) CancellationRequested() bool { return false }
