package reduce

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/kbukum/gostream/errors"
	"github.com/kbukum/gostream/forkjoin"
	"github.com/kbukum/gostream/spliterator"
	"github.com/kbukum/gostream/stage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func source(n int) stage.Segment[int] {
	items := make([]int, n)
	for i := range items {
		// scrambled so min and max are not at the ends
		items[i] = (i * 7919) % (n + 1)
	}
	return stage.Source(spliterator.OfSlice(items))
}

func evaluateBoth[R any](t *testing.T, n int, op Op[int, R]) (seq, par R) {
	t.Helper()
	ctx := context.Background()
	cfg := forkjoin.Config{Parallelism: 4}
	var err error
	if seq, err = Evaluate(ctx, cfg, source(n), op, false); err != nil {
		t.Fatalf("sequential: %v", err)
	}
	if par, err = Evaluate(ctx, cfg, source(n), op, true); err != nil {
		t.Fatalf("parallel: %v", err)
	}
	return seq, par
}

func TestSequentialEqualsParallel(t *testing.T) {
	for _, n := range []int{0, 1, 17, 1000, 65_537} {
		t.Run(strconv.Itoa(n), func(t *testing.T) {
			sum := Fold(0, func(acc, v int) int { return acc + v }, func(a, b int) int { return a + b })
			if s, p := evaluateBoth(t, n, sum); s != p {
				t.Errorf("sum: sequential %d, parallel %d", s, p)
			}

			if s, p := evaluateBoth(t, n, Min[int]()); s != p {
				t.Errorf("min: sequential %v, parallel %v", s, p)
			}
			if s, p := evaluateBoth(t, n, Max[int]()); s != p {
				t.Errorf("max: sequential %v, parallel %v", s, p)
			}

			concat := Fold("", func(acc string, v int) string { return acc + strconv.Itoa(v%10) },
				func(a, b string) string { return a + b })
			if n <= 1000 {
				if s, p := evaluateBoth(t, n, concat); s != p {
					t.Errorf("concat differs:\nsequential %q\nparallel   %q", s, p)
				}
			}

			builder := CollectInto(
				func() *strings.Builder { return &strings.Builder{} },
				func(b *strings.Builder, v int) { b.WriteByte(byte('a' + v%26)) },
				func(a, b *strings.Builder) { a.WriteString(b.String()) },
			)
			if s, p := evaluateBoth(t, n, builder); s.String() != p.String() {
				t.Error("CollectInto: sequential and parallel differ")
			}

			if s, p := evaluateBoth(t, n, Collect(ToSlice[int]())); !cmp.Equal(s, p) {
				t.Errorf("ToSlice differs (-seq +par)\n%s", cmp.Diff(s, p))
			}
		})
	}
}

func TestReduce_Empty(t *testing.T) {
	s, p := evaluateBoth(t, 0, Reduce(func(a, b int) int { return a + b }))
	if s.IsPresent() || p.IsPresent() {
		t.Error("reduce of no elements must be absent")
	}
	if got := s.OrElse(-1); got != -1 {
		t.Errorf("OrElse = %d", got)
	}
}

func TestMinMax(t *testing.T) {
	seg := stage.Source(spliterator.OfSlice([]int{5, 3, 9, 1, 7}))
	got, err := Evaluate(context.Background(), forkjoin.Config{}, seg, Min[int](), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, ok := got.Get(); !ok || v != 1 {
		t.Errorf("min = %v, %v", v, ok)
	}
}

// sizedOnly panics on traversal, proving the sized fast path skips it.
type sizedOnly struct {
	spliterator.Spliterator[int]
}

func (sizedOnly) ForEachRemaining(func(int)) { panic("traversed") }
func (sizedOnly) TryAdvance(func(int)) bool  { panic("traversed") }

func TestCount(t *testing.T) {
	ctx := context.Background()
	cfg := forkjoin.Config{Parallelism: 4}

	sized := stage.Then(stage.Source[int](sizedOnly{spliterator.OfSlice(make([]int, 12345))}), stage.Map(func(v int) int { return v }))
	for _, parallel := range []bool{false, true} {
		n, err := Evaluate(ctx, cfg, sized, Count[int](), parallel)
		if err != nil || n != 12345 {
			t.Errorf("sized count (parallel=%v) = %d, %v", parallel, n, err)
		}
	}

	filtered := func() stage.Segment[int] {
		return stage.Then(stage.Source(spliterator.OfSlice(make([]int, 1000))), stage.Filter(func(int) bool { return true }))
	}
	for _, parallel := range []bool{false, true} {
		n, err := Evaluate(ctx, cfg, filtered(), Count[int](), parallel)
		if err != nil || n != 1000 {
			t.Errorf("filtered count (parallel=%v) = %d, %v", parallel, n, err)
		}
	}
}

func TestGroupBy(t *testing.T) {
	c := Collect(GroupBy(func(v int) int { return v % 3 }))
	seg := stage.Source(spliterator.OfSlice([]int{0, 1, 2, 3, 4, 5, 6}))
	got, err := Evaluate(context.Background(), forkjoin.Config{}, seg, c, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[int][]int{0: {0, 3, 6}, 1: {1, 4}, 2: {2, 5}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GroupBy (-want +got)\n%s", diff)
	}
}

func TestCollector_Finisher(t *testing.T) {
	c := Collect(Collector[int, []int, int]{
		Supplier:    func() []int { return nil },
		Accumulator: func(s []int, v int) []int { return append(s, v) },
		Combiner:    func(a, b []int) []int { return append(a, b...) },
		Finisher:    func(s []int) int { return len(s) },
	})
	for _, parallel := range []bool{false, true} {
		n, err := Evaluate(context.Background(), forkjoin.Config{Parallelism: 2}, source(500), c, parallel)
		if err != nil || n != 500 {
			t.Errorf("parallel=%v: %d, %v", parallel, n, err)
		}
	}
}

func TestNilFunctionsPanic(t *testing.T) {
	defer func() {
		err, ok := recover().(error)
		if !ok || !errors.IsCode(err, errors.ErrCodeInvalidArgument) {
			t.Errorf("expected invalid-argument panic, got %v", err)
		}
	}()
	Fold[int, int](0, nil, nil)
}

func TestEvaluate_PanicBecomesError(t *testing.T) {
	boom := Fold(0, func(int, int) int { panic(errors.IllegalState("boom")) }, func(a, b int) int { return a + b })
	for _, parallel := range []bool{false, true} {
		_, err := Evaluate(context.Background(), forkjoin.Config{Parallelism: 2}, source(100), boom, parallel)
		if !errors.IsCode(err, errors.ErrCodeIllegalState) {
			t.Errorf("parallel=%v: expected illegal state, got %v", parallel, err)
		}
	}
}

// sequentialOnly has no parallel strategy.
type sequentialOnly struct{}

func (sequentialOnly) EvaluateSequential(seg stage.Segment[int]) int {
	n := 0
	seg.WrapAndCopyInto(countingSink(&n))
	return n
}

func countingSink(n *int) *countSinkInt { return &countSinkInt{n: n} }

type countSinkInt struct{ n *int }

func (c *countSinkInt) Begin(int64)                 {}
func (c *countSinkInt) Accept(int)                  { *c.n++ }
func (c *countSinkInt) End()                        {}
func (c *countSinkInt) CancellationRequested() bool { return false }

func TestEvaluate_FallsBackToSequential(t *testing.T) {
	n, err := Evaluate[int, int](context.Background(), forkjoin.Config{}, source(42), sequentialOnly{}, true)
	if err != nil || n != 42 {
		t.Errorf("got %d, %v", n, err)
	}
}

func TestEvaluate_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Evaluate(ctx, forkjoin.Config{}, source(10), Count[int](), false); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
