package sink

// Sink consumes the elements of one traversal. The lifecycle is
// Begin, then zero or more Accept calls, then End. A Sink may be reused
// only after End has been called.
type Sink[T any] interface {
	// Begin resets the sink for a traversal of size elements, or -1 when
	// the size is unknown.
	Begin(size int64)
	// Accept consumes one element.
	Accept(v T)
	// End signals that every element has been pushed.
	End()
	// CancellationRequested reports that the sink wants no more elements.
	// Sources that honor it stop pushing between elements.
	CancellationRequested() bool
}

// Chained forwards Begin, End and CancellationRequested to Downstream.
// Operation sinks embed it and implement Accept.
type Chained[Out any] struct {
	Downstream Sink[Out]
}

func (c *Chained[Out]) Begin(size int64) { c.Downstream.Begin(size) }

func (c *Chained[Out]) End() { c.Downstream.End() }

func (c *Chained[Out]) CancellationRequested() bool {
	return c.Downstream.CancellationRequested()
}

// Terminal gives sinks at the end of a chain a no-op lifecycle. Embedders
// implement Accept and may override CancellationRequested.
type Terminal struct{}

func (Terminal) Begin(int64) {}

func (Terminal) End() {}

func (Terminal) CancellationRequested() bool { return false }

// funcSink adapts a plain callback.
type funcSink[T any] struct {
	fn func(T)
}

// Func returns a Sink that calls fn for every element and ignores the
// rest of the lifecycle.
func Func[T any](fn func(T)) Sink[T] {
	return &funcSink[T]{fn: fn}
}

func (f *funcSink[T]) Begin(int64) {}

func (f *funcSink[T]) Accept(v T) { f.fn(v) }

func (f *funcSink[T]) End() {}

func (f *funcSink[T]) CancellationRequested() bool { return false }

// Drain pushes every element of forEach into s with the full lifecycle.
func Drain[T any](s Sink[T], size int64, forEach func(func(T))) {
	s.Begin(size)
	forEach(s.Accept)
	s.End()
}
