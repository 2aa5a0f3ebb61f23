package spliterator

type emptySpliterator[T any] struct{}

// Empty returns a Spliterator with no elements.
func Empty[T any]() Spliterator[T] { return emptySpliterator[T]{} }

func (emptySpliterator[T]) TryAdvance(func(T)) bool { return false }

func (emptySpliterator[T]) ForEachRemaining(func(T)) {}

func (emptySpliterator[T]) TrySplit() (Spliterator[T], bool) { return nil, false }

func (emptySpliterator[T]) EstimateSize() int64 { return 0 }

func (emptySpliterator[T]) Characteristics() Characteristics { return Sized | Subsized }
