package prefix

import (
	"context"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/goleak"

	"github.com/kbukum/gostream/errors"
	"github.com/kbukum/gostream/forkjoin"
	"github.com/kbukum/gostream/node"
	"github.com/kbukum/gostream/spliterator"
	"github.com/kbukum/gostream/stage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func isEven(v int) bool { return v%2 == 0 }

func seq(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	return items
}

func sequential(t *testing.T, op Op[int], items []int) []int {
	t.Helper()
	n, err := node.Sequential(stage.Then(stage.Source(spliterator.OfSlice(items)), stage.Op[int, int](op)))
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}
	return n.AsSlice()
}

func ordered(t *testing.T, op Op[int], items []int, parallelism int) []int {
	t.Helper()
	cfg := forkjoin.Config{Parallelism: parallelism}
	n, err := op.EvaluateOrdered(context.Background(), cfg, stage.Source(spliterator.OfSlice(items)))
	if err != nil {
		t.Fatalf("ordered: %v", err)
	}
	return n.AsSlice()
}

func unordered(op Op[int], items []int) []int {
	var out []int
	op.Unordered(spliterator.OfSlice(items), DefaultCheckInterval).ForEachRemaining(func(v int) {
		out = append(out, v)
	})
	return out
}

func TestTakeDropWhile(t *testing.T) {
	tests := []struct {
		name  string
		items []int
		pred  func(int) bool
		take  []int
		drop  []int
	}{
		{"stops at first odd", []int{2, 4, 6, 7, 8}, isEven, []int{2, 4, 6}, []int{7, 8}},
		{"later matches ignored", []int{2, 4, 1, 6}, isEven, []int{2, 4}, []int{1, 6}},
		{"all match", []int{2, 4, 6}, isEven, []int{2, 4, 6}, nil},
		{"none match", []int{1, 2, 4}, isEven, nil, []int{1, 2, 4}},
		{"empty", nil, isEven, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			take, drop := TakeWhile(tt.pred), DropWhile(tt.pred)
			for _, p := range []int{1, 4} {
				mode := "parallelism " + strconv.Itoa(p)
				if diff := cmp.Diff(tt.take, ordered(t, take, tt.items, p), cmpopts.EquateEmpty()); diff != "" {
					t.Errorf("take-while %s (-want +got):\n%s", mode, diff)
				}
				if diff := cmp.Diff(tt.drop, ordered(t, drop, tt.items, p), cmpopts.EquateEmpty()); diff != "" {
					t.Errorf("drop-while %s (-want +got):\n%s", mode, diff)
				}
			}
			if diff := cmp.Diff(tt.take, sequential(t, take, tt.items), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("take-while sequential (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.drop, sequential(t, drop, tt.items), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("drop-while sequential (-want +got):\n%s", diff)
			}
			// a single unsplit traversal behaves like the ordered form
			if diff := cmp.Diff(tt.take, unordered(take, tt.items), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("take-while unordered (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.drop, unordered(drop, tt.items), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("drop-while unordered (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOrderedLarge(t *testing.T) {
	items := seq(100_000)
	tests := []struct {
		name string
		pred func(int) bool
		cut  int
	}{
		{"prefix boundary", func(v int) bool { return v < 60_000 }, 60_000},
		{"periodic failures", func(v int) bool { return v%1000 != 999 }, 999},
		{"fails immediately", func(v int) bool { return v > 0 }, 0},
		{"never fails", func(int) bool { return true }, 100_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			take := ordered(t, TakeWhile(tt.pred), items, 8)
			if diff := cmp.Diff(items[:tt.cut], take, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("take-while (-want +got):\n%s", diff)
			}
			drop := ordered(t, DropWhile(tt.pred), items, 8)
			if diff := cmp.Diff(items[tt.cut:], drop, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("drop-while (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOrderedAfterFilter(t *testing.T) {
	items := seq(10_000)
	seg := stage.Then(stage.Source(spliterator.OfSlice(items)), stage.Filter(func(v int) bool { return v%3 == 0 }))
	n, err := DropWhile(func(v int) bool { return v < 6_000 }).
		EvaluateOrdered(context.Background(), forkjoin.Config{Parallelism: 4}, seg)
	if err != nil {
		t.Fatal(err)
	}
	var want []int
	for v := 6_000; v < 10_000; v++ {
		if v%3 == 0 {
			want = append(want, v)
		}
	}
	if diff := cmp.Diff(want, n.AsSlice()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestOrderedCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := TakeWhile(isEven).EvaluateOrdered(ctx, forkjoin.DefaultConfig(), stage.Source(spliterator.OfSlice(seq(1000))))
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestFlags(t *testing.T) {
	if f := TakeWhile(isEven).Flags(); !f.Set.Has(stage.ShortCircuit) || !f.Clear.Has(stage.Sized) {
		t.Errorf("take-while flags = %+v", f)
	}
	if f := DropWhile(isEven).Flags(); f.Set.Has(stage.ShortCircuit) || !f.Clear.Has(stage.Sized) {
		t.Errorf("drop-while flags = %+v", f)
	}
}

func TestNilPredicate(t *testing.T) {
	for name, fn := range map[string]func(){
		"take": func() { TakeWhile[int](nil) },
		"drop": func() { DropWhile[int](nil) },
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				err, _ := recover().(error)
				if !errors.IsCode(err, errors.ErrCodeInvalidArgument) {
					t.Errorf("recovered %v, want invalid argument", err)
				}
			}()
			fn()
		})
	}
}

func drain(s spliterator.Spliterator[int]) []int {
	var out []int
	s.ForEachRemaining(func(v int) { out = append(out, v) })
	return out
}

func TestUnorderedTakeSharesCancel(t *testing.T) {
	s := TakeWhile(func(v int) bool { return v > 0 }).
		Unordered(spliterator.OfSlice([]int{1, 2, 3, -1, 5, 6, 7, 8}), DefaultCheckInterval)
	left, ok := s.TrySplit()
	if !ok {
		t.Fatal("expected split")
	}
	if diff := cmp.Diff([]int{1, 2, 3}, drain(left)); diff != "" {
		t.Errorf("left (-want +got):\n%s", diff)
	}
	if got := drain(s); len(got) != 0 {
		t.Errorf("right = %v, want nothing after a sibling failed", got)
	}
	if _, ok := s.TrySplit(); ok {
		t.Error("split after cancel")
	}
	if s.Characteristics().Has(spliterator.Sized) {
		t.Error("unordered take-while reports Sized")
	}
}

func TestUnorderedDropSharesCancel(t *testing.T) {
	s := DropWhile(func(v int) bool { return v > 0 }).
		Unordered(spliterator.OfSlice([]int{1, 2, -1, 4, 5, 6, 7, 8}), 1)
	left, ok := s.TrySplit()
	if !ok {
		t.Fatal("expected split")
	}
	if diff := cmp.Diff([]int{-1, 4}, drain(left)); diff != "" {
		t.Errorf("left (-want +got):\n%s", diff)
	}
	// the sibling stops dropping at its first poll
	if diff := cmp.Diff([]int{5, 6, 7, 8}, drain(s)); diff != "" {
		t.Errorf("right (-want +got):\n%s", diff)
	}
}

func TestUnorderedCheckInterval(t *testing.T) {
	for _, interval := range []int{0, -4, 3, 100} {
		u := newUnorderedWhile(spliterator.Empty[int](), isEven, interval)
		if u.mask != DefaultCheckInterval-1 {
			t.Errorf("interval %d: mask = %d", interval, u.mask)
		}
	}
	if u := newUnorderedWhile(spliterator.Empty[int](), isEven, 8); u.mask != 7 {
		t.Errorf("mask = %d, want 7", u.mask)
	}
}
