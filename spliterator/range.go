package spliterator

// rangeSpliterator yields from, from+1, ..., upTo-1.
type rangeSpliterator struct {
	from    int64
	upTo    int64
	started bool
}

// OfRange returns a Spliterator over the half-open interval [from, upTo).
func OfRange(from, upTo int64) Spliterator[int64] {
	if upTo < from {
		upTo = from
	}
	return &rangeSpliterator{from: from, upTo: upTo}
}

func (r *rangeSpliterator) TryAdvance(action func(int64)) bool {
	r.started = true
	if r.from >= r.upTo {
		return false
	}
	v := r.from
	r.from++
	action(v)
	return true
}

func (r *rangeSpliterator) ForEachRemaining(action func(int64)) {
	r.started = true
	i, hi := r.from, r.upTo
	r.from = hi
	for ; i < hi; i++ {
		action(i)
	}
}

func (r *rangeSpliterator) TrySplit() (Spliterator[int64], bool) {
	if r.started {
		return nil, false
	}
	size := r.upTo - r.from
	if size <= 1 {
		return nil, false
	}
	mid := r.from + size/2
	left := &rangeSpliterator{from: r.from, upTo: mid}
	r.from = mid
	return left, true
}

func (r *rangeSpliterator) EstimateSize() int64 { return r.upTo - r.from }

func (r *rangeSpliterator) Characteristics() Characteristics {
	return Ordered | Sized | Subsized | Immutable | NonNull | Distinct | Sorted
}
