package forkjoin

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/kbukum/gostream/errors"
	"github.com/kbukum/gostream/logger"
	"github.com/kbukum/gostream/observability"
)

// Handler supplies the operation-specific parts of a computation.
type Handler[P, R any] struct {
	// Leaf computes the result of a part that is not split further.
	Leaf func(t *Task, part P) R
	// Merge combines the results of t's children, always left then right.
	Merge func(t *Task, left, right R) R
	// Empty is the result of a task that is canceled before it starts.
	// Nil means the zero R.
	Empty func() R
	// Done is polled before each task starts; once it reports true the
	// remaining tasks produce the empty result. Optional.
	Done func() bool
}

func (h *Handler[P, R]) empty() R {
	if h.Empty != nil {
		return h.Empty()
	}
	var zero R
	return zero
}

type evaluation[P Splitter[P], R any] struct {
	ctx        context.Context
	h          Handler[P, R]
	leafTarget int64

	leaves        atomic.Int64
	splits        atomic.Int64
	cancellations atomic.Int64
	aborted       atomic.Bool
}

// Run evaluates root as a tree of tasks. A task whose part is larger than
// the leaf target and splits successfully forks its left child onto a new
// goroutine, computes its right child itself, joins, and merges the two
// results. Any other task runs h.Leaf.
//
// A panic in any task fails the evaluation: *errors.AppError panic values
// are returned as is, anything else as an internal error. If ctx is done
// before every task has started, Run returns ctx.Err().
func Run[P Splitter[P], R any](ctx context.Context, cfg Config, root P, h Handler[P, R]) (R, error) {
	var result R
	if h.Leaf == nil {
		return result, errors.NilArgument("leaf")
	}
	if h.Merge == nil {
		return result, errors.NilArgument("merge")
	}

	op := cfg.Operation
	if op == "" {
		op = "evaluate"
	}
	id := uuid.NewString()
	log := cfg.logger()
	estimate := root.EstimateSize()

	ctx, ev := observability.StartEvaluation(ctx, id, op, cfg.Metrics)
	e := &evaluation[P, R]{ctx: ctx, h: h, leafTarget: cfg.LeafTarget(estimate)}
	observability.SetSpanAttribute(ctx, observability.AttrParallelism, cfg.parallelism())
	observability.SetSpanAttribute(ctx, observability.AttrLeafTarget, e.leafTarget)

	if log.DebugEnabled() {
		log.Debug("evaluation started", logger.Fields(
			logger.FieldEvaluationID, id,
			logger.FieldOperation, op,
			logger.FieldParallelism, cfg.parallelism(),
			logger.FieldEstimate, estimate,
			logger.FieldLeafTarget, e.leafTarget,
		))
	}

	var err error
	recovered := panics.Try(func() {
		result = e.compute(&Task{cancels: &e.cancellations}, root)
	})
	switch {
	case recovered != nil:
		err = recoveredError(recovered)
		log.Error("evaluation panicked", logger.Fields(
			logger.FieldEvaluationID, id,
			logger.FieldOperation, op,
			logger.FieldError, err.Error(),
		))
	case e.aborted.Load():
		err = ctx.Err()
	}
	if err != nil {
		var zero R
		result = zero
	}

	stats := ev.End(ctx, e.leaves.Load(), e.splits.Load(), e.cancellations.Load(), err)
	if log.DebugEnabled() {
		log.Debug("evaluation finished", logger.Fields(
			logger.FieldEvaluationID, id,
			logger.FieldOperation, op,
			logger.FieldLeaves, stats.Leaves,
			logger.FieldSplits, stats.Splits,
			logger.FieldCanceled, stats.Cancellations,
			logger.FieldDuration, stats.Duration.Milliseconds(),
		))
	}
	return result, err
}

func (e *evaluation[P, R]) stopped(t *Task) bool {
	if e.aborted.Load() {
		return true
	}
	if e.ctx.Err() != nil {
		e.aborted.Store(true)
		return true
	}
	return t.Canceled() || (e.h.Done != nil && e.h.Done())
}

func (e *evaluation[P, R]) compute(t *Task, part P) R {
	if e.stopped(t) {
		return e.h.empty()
	}
	if part.EstimateSize() > e.leafTarget {
		if left, ok := part.TrySplit(); ok {
			e.splits.Add(1)
			lt, rt := t.split()

			var wg conc.WaitGroup
			var l, r R
			wg.Go(func() { l = e.compute(lt, left) })
			func() {
				// join even if the right child panics
				defer wg.Wait()
				r = e.compute(rt, part)
			}()
			if e.aborted.Load() {
				return e.h.empty()
			}
			return e.h.Merge(t, l, r)
		}
	}
	t.leaf = true
	e.leaves.Add(1)
	return e.h.Leaf(t, part)
}

// recoveredError unwraps panics re-raised across joins and maps the
// original value to an error.
func recoveredError(r *panics.Recovered) error {
	v := r.Value
	for {
		inner, ok := v.(*panics.Recovered)
		if !ok {
			break
		}
		v = inner.Value
	}
	if err, ok := v.(error); ok {
		if appErr, ok := errors.AsAppError(err); ok {
			return appErr
		}
	}
	return errors.Internal(r.AsError())
}

// Try runs fn on the calling goroutine and converts a panic raised by fn
// the same way Run does. Sequential evaluations use it so both modes
// report failures identically.
func Try(fn func()) error {
	if recovered := panics.Try(fn); recovered != nil {
		return recoveredError(recovered)
	}
	return nil
}
