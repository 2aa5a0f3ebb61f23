package forkjoin

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/goleak"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/kbukum/gostream/errors"
	"github.com/kbukum/gostream/observability"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// interval is the half-open range [lo, hi).
type interval struct {
	lo, hi int64
}

func (iv *interval) TrySplit() (*interval, bool) {
	mid := iv.lo + (iv.hi-iv.lo)/2
	if mid == iv.lo {
		return nil, false
	}
	left := &interval{lo: iv.lo, hi: mid}
	iv.lo = mid
	return left, true
}

func (iv *interval) EstimateSize() int64 { return iv.hi - iv.lo }

func sumHandler() Handler[*interval, int64] {
	return Handler[*interval, int64]{
		Leaf: func(_ *Task, iv *interval) int64 {
			var s int64
			for i := iv.lo; i < iv.hi; i++ {
				s += i
			}
			return s
		},
		Merge: func(_ *Task, l, r int64) int64 { return l + r },
	}
}

func TestRun_Sum(t *testing.T) {
	for _, n := range []int64{0, 1, 7, 1000, 100_003} {
		got, err := Run(context.Background(), Config{Parallelism: 4}, &interval{0, n}, sumHandler())
		if err != nil {
			t.Fatalf("n=%d: unexpected error: %v", n, err)
		}
		if want := n * (n - 1) / 2; got != want {
			t.Errorf("n=%d: sum = %d, want %d", n, got, want)
		}
	}
}

func TestRun_MergeKeepsEncounterOrder(t *testing.T) {
	h := Handler[*interval, []int64]{
		Leaf: func(_ *Task, iv *interval) []int64 {
			var out []int64
			for i := iv.lo; i < iv.hi; i++ {
				out = append(out, i)
			}
			return out
		},
		Merge: func(_ *Task, l, r []int64) []int64 { return append(append([]int64{}, l...), r...) },
	}
	got, err := Run(context.Background(), Config{Parallelism: 8}, &interval{0, 5000}, h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range got {
		if int64(i) != v {
			t.Fatalf("element %d = %d", i, v)
		}
	}
	if len(got) != 5000 {
		t.Errorf("len = %d", len(got))
	}
}

func TestLeafTarget(t *testing.T) {
	tests := []struct {
		estimate          int64
		parallelism, leaf int
		want              int64
	}{
		{1000, 4, 4, 62},
		{10, 4, 4, 1},
		{0, 4, 4, 1},
		{1 << 20, 1, 4, 1 << 18},
		{100, 0, 0, 100},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d/%d", tt.estimate, tt.parallelism, tt.leaf), func(t *testing.T) {
			if got := LeafTarget(tt.estimate, tt.parallelism, tt.leaf); got != tt.want {
				t.Errorf("LeafTarget = %d, want %d", got, tt.want)
			}
		})
	}
	if got := (Config{Parallelism: 2}).LeafTarget(800); got != 100 {
		t.Errorf("config leaf target = %d, want 100", got)
	}
}

func TestRun_Panics(t *testing.T) {
	tests := []struct {
		name  string
		value any
		code  errors.ErrorCode
	}{
		{"app error", errors.IllegalState("already built"), errors.ErrCodeIllegalState},
		{"plain value", "boom", errors.ErrCodeInternal},
		{"plain error", fmt.Errorf("boom"), errors.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := sumHandler()
			leaf := h.Leaf
			h.Leaf = func(task *Task, iv *interval) int64 {
				if iv.lo <= 500 && 500 < iv.hi {
					panic(tt.value)
				}
				return leaf(task, iv)
			}
			_, err := Run(context.Background(), Config{Parallelism: 4}, &interval{0, 1000}, h)
			if !errors.IsCode(err, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestRun_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, Config{}, &interval{0, 1000}, sumHandler())
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRun_NilHandler(t *testing.T) {
	_, err := Run(context.Background(), Config{}, &interval{0, 10}, Handler[*interval, int64]{})
	if !errors.IsCode(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("expected invalid argument, got %v", err)
	}
}

func TestRun_Done(t *testing.T) {
	var leaves atomic.Int64
	var stop atomic.Bool
	h := Handler[*interval, int64]{
		Leaf: func(_ *Task, iv *interval) int64 {
			leaves.Add(1)
			stop.Store(true)
			return 1
		},
		Merge: func(_ *Task, l, r int64) int64 { return l + r },
		Empty: func() int64 { return 0 },
		Done:  stop.Load,
	}
	got, err := Run(context.Background(), Config{Parallelism: 64}, &interval{0, 1 << 16}, h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != leaves.Load() || got < 1 {
		t.Errorf("result %d, leaves %d", got, leaves.Load())
	}
	if leaves.Load() >= 256 {
		t.Errorf("expected early stop, ran %d leaves", leaves.Load())
	}
}

// tree builds root -> (a -> (aa, ab), b).
func tree() (root, a, b, aa, ab *Task) {
	root = &Task{cancels: new(atomic.Int64)}
	a, b = root.split()
	aa, ab = a.split()
	return root, a, b, aa, ab
}

func TestTask_Position(t *testing.T) {
	root, a, b, aa, ab := tree()
	for _, tt := range []struct {
		name     string
		task     *Task
		root     bool
		leftmost bool
	}{
		{"root", root, true, true},
		{"a", a, false, true},
		{"b", b, false, false},
		{"aa", aa, false, true},
		{"ab", ab, false, false},
	} {
		if tt.task.IsRoot() != tt.root {
			t.Errorf("%s: IsRoot = %v", tt.name, !tt.root)
		}
		if tt.task.IsLeftmost() != tt.leftmost {
			t.Errorf("%s: IsLeftmost = %v", tt.name, !tt.leftmost)
		}
	}
}

func TestTask_CancelLaterNodes(t *testing.T) {
	root, a, b, aa, ab := tree()
	aa.CancelLaterNodes()

	if aa.Canceled() || a.Canceled() || root.Canceled() {
		t.Error("tasks at or before aa must not be canceled")
	}
	if !ab.Canceled() || !b.Canceled() {
		t.Error("tasks after aa must be canceled")
	}
	if n := root.cancels.Load(); n != 2 {
		t.Errorf("cancellations = %d, want 2", n)
	}

	// Cancellation is inherited from ancestors.
	_, a, _, aa, _ = tree()
	a.Cancel()
	if !aa.Canceled() {
		t.Error("child of a canceled task must report canceled")
	}
}

func TestTask_LeftCompleted(t *testing.T) {
	root, a, b, aa, ab := tree()
	if ab.LeftCompleted(1) {
		t.Fatal("nothing completed yet")
	}

	ab.Complete(3)
	for _, tt := range []struct {
		name   string
		task   *Task
		target int64
		want   bool
	}{
		{"ab covers itself", ab, 3, true},
		{"ab short of target", ab, 4, false},
		{"b sees completed ab", b, 3, true},
		{"aa ignores later ab", aa, 1, false},
	} {
		if got := tt.task.LeftCompleted(tt.target); got != tt.want {
			t.Errorf("%s: LeftCompleted(%d) = %v, want %v", tt.name, tt.target, got, tt.want)
		}
	}

	aa.Complete(2)
	if !b.LeftCompleted(5) {
		t.Error("b: completed aa and ab cover 5")
	}
	a.Complete(5)
	b.Complete(10)
	if !root.LeftCompleted(15) || root.LeftCompleted(16) {
		t.Error("root: children cover exactly 15")
	}
}

func TestRun_StopsUnboundedSplitting(t *testing.T) {
	// An unbounded part keeps splitting until the leaves to its left
	// report enough output and cancel it.
	const target = 10
	var leaves atomic.Int64
	got, err := Run(context.Background(), Config{Parallelism: 4}, &endless{}, Handler[*endless, int64]{
		Leaf: func(t *Task, p *endless) int64 {
			leaves.Add(1)
			t.Complete(p.n)
			if !t.IsRoot() && t.LeftCompleted(target) {
				t.CancelLaterNodes()
			}
			return p.n
		},
		Merge: func(t *Task, l, r int64) int64 {
			if t.Canceled() {
				return 0
			}
			return l + r
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got < target {
		t.Errorf("result = %d, want at least %d", got, target)
	}
	if leaves.Load() == 0 {
		t.Error("no leaf ran")
	}
}

// endless is an unbounded part that splits off parts of 4 units.
type endless struct{ n int64 }

func (e *endless) TrySplit() (*endless, bool) { return &endless{n: 4}, true }

func (e *endless) EstimateSize() int64 {
	if e.n == 0 {
		return math.MaxInt64
	}
	return e.n
}

func TestSharedResult(t *testing.T) {
	var s SharedResult[int]
	if _, ok := s.Get(); ok || s.IsSet() {
		t.Fatal("new result must be unset")
	}

	var wg sync.WaitGroup
	var wins atomic.Int64
	for i := 1; i <= 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.TrySet(i) {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	if wins.Load() != 1 {
		t.Errorf("winners = %d, want 1", wins.Load())
	}
	if v, ok := s.Get(); !ok || v < 1 || v > 16 {
		t.Errorf("Get = %d, %v", v, ok)
	}
}

func TestRun_RecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())
	metrics, err := observability.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := Config{Parallelism: 2, Metrics: metrics}.WithOperation("sum")
	if _, err := Run(context.Background(), cfg, &interval{0, 1 << 10}, sumHandler()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	values := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					values[m.Name] += dp.Value
				}
			}
		}
	}
	if values[observability.MetricEvaluations] != 1 {
		t.Errorf("evaluations = %d, want 1", values[observability.MetricEvaluations])
	}
	if values[observability.MetricLeafTasks] != values[observability.MetricSplits]+1 {
		t.Errorf("leaves = %d, splits = %d", values[observability.MetricLeafTasks], values[observability.MetricSplits])
	}
}

func TestTry(t *testing.T) {
	if err := Try(func() {}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := Try(func() { panic(errors.CapacityExceeded(1 << 40)) })
	if !errors.IsCode(err, errors.ErrCodeCapacityExceeded) {
		t.Errorf("expected capacity error, got %v", err)
	}
}
