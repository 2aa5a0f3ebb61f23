package spliterator

import "sync/atomic"

const unorderedChunkSize = 1 << 7

type permitStatus int

const (
	permitsNoMore permitStatus = iota
	permitsMaybeMore
	permitsUnlimited
)

// permitPool is shared by every split of one UnorderedSlice. It starts with
// skip+limit permits (skip when unlimited); the first skip permits handed
// out mean "drop", the rest mean "keep".
type permitPool struct {
	permits       atomic.Int64
	unlimited     bool
	skipThreshold int64
	chunkSize     int64
}

// acquire grabs up to n permits and returns how many of the n elements may
// be emitted.
func (p *permitPool) acquire(n int64) int64 {
	var remaining, grabbing int64
	for {
		remaining = p.permits.Load()
		if remaining == 0 {
			if p.unlimited {
				return n
			}
			return 0
		}
		grabbing = min(remaining, n)
		if p.permits.CompareAndSwap(remaining, remaining-grabbing) {
			break
		}
	}
	switch {
	case p.unlimited:
		return max(n-grabbing, 0)
	case remaining > p.skipThreshold:
		return max(grabbing-(remaining-p.skipThreshold), 0)
	default:
		return grabbing
	}
}

func (p *permitPool) status() permitStatus {
	if p.permits.Load() > 0 {
		return permitsMaybeMore
	}
	if p.unlimited {
		return permitsUnlimited
	}
	return permitsNoMore
}

type unorderedSlice[T any] struct {
	s    Spliterator[T]
	pool *permitPool
}

// UnorderedSlice skips skip elements and keeps at most limit (limit < 0
// means unlimited) without regard to encounter order: which elements are
// skipped or kept depends on which split reaches the shared permit counter
// first. leafTarget tunes the chunk size used for bulk traversal; pass the
// fork-join leaf target of the evaluation.
func UnorderedSlice[T any](s Spliterator[T], skip, limit, leafTarget int64) Spliterator[T] {
	pool := &permitPool{unlimited: limit < 0, chunkSize: unorderedChunkSize}
	if limit >= 0 {
		pool.skipThreshold = limit
		if leafTarget < 1 {
			leafTarget = 1
		}
		pool.chunkSize = min(unorderedChunkSize, (skip+limit)/leafTarget+1)
		pool.permits.Store(skip + limit)
	} else {
		pool.permits.Store(skip)
	}
	return &unorderedSlice[T]{s: s, pool: pool}
}

func (u *unorderedSlice[T]) TryAdvance(action func(T)) bool {
	for u.pool.status() != permitsNoMore {
		var v T
		if !u.s.TryAdvance(func(e T) { v = e }) {
			return false
		}
		if u.pool.acquire(1) == 1 {
			action(v)
			return true
		}
	}
	return false
}

func (u *unorderedSlice[T]) ForEachRemaining(action func(T)) {
	var chunk []T
	for {
		switch u.pool.status() {
		case permitsNoMore:
			return
		case permitsUnlimited:
			u.s.ForEachRemaining(action)
			return
		}
		// Optimistically buffer up to chunkSize elements, then ask for
		// permits for all of them at once.
		if chunk == nil {
			chunk = make([]T, 0, u.pool.chunkSize)
		}
		chunk = chunk[:0]
		for int64(len(chunk)) < u.pool.chunkSize && u.s.TryAdvance(func(e T) { chunk = append(chunk, e) }) {
		}
		if len(chunk) == 0 {
			return
		}
		granted := u.pool.acquire(int64(len(chunk)))
		for i := int64(0); i < granted; i++ {
			action(chunk[i])
		}
		if int64(len(chunk)) < u.pool.chunkSize {
			return
		}
	}
}

func (u *unorderedSlice[T]) TrySplit() (Spliterator[T], bool) {
	if u.pool.permits.Load() == 0 {
		return nil, false
	}
	left, ok := u.s.TrySplit()
	if !ok {
		return nil, false
	}
	return &unorderedSlice[T]{s: left, pool: u.pool}, true
}

func (u *unorderedSlice[T]) EstimateSize() int64 { return u.s.EstimateSize() }

func (u *unorderedSlice[T]) Characteristics() Characteristics {
	return u.s.Characteristics() &^ (Sized | Subsized | Ordered)
}
