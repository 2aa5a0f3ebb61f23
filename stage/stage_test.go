package stage

import (
	"iter"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/kbukum/gostream/errors"
	"github.com/kbukum/gostream/sink"
	"github.com/kbukum/gostream/spliterator"
)

// countingSpliterator counts how many elements its source hands out.
type countingSpliterator struct {
	spliterator.Spliterator[int]
	pulled *int
}

func (c *countingSpliterator) TryAdvance(action func(int)) bool {
	return c.Spliterator.TryAdvance(func(v int) {
		*c.pulled++
		action(v)
	})
}

func (c *countingSpliterator) ForEachRemaining(action func(int)) {
	c.Spliterator.ForEachRemaining(func(v int) {
		*c.pulled++
		action(v)
	})
}

func ints(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func collect[T any](seg Segment[T]) []T {
	var out []T
	seg.WrapAndCopyInto(sink.Func(func(v T) { out = append(out, v) }))
	return out
}

func TestFusion_SingleTraversal(t *testing.T) {
	pulled := 0
	src := &countingSpliterator{Spliterator: spliterator.OfSlice(ints(100)), pulled: &pulled}
	var seg Segment[int] = Source[int](src)
	for i := 0; i < 10; i++ {
		seg = Then(seg, Map(func(v int) int { return v + 1 }))
	}
	seg = Then(seg, Filter(func(v int) bool { return v%2 == 0 }))

	got := collect(seg)
	if pulled != 100 {
		t.Errorf("source traversed %d elements, want 100", pulled)
	}
	if len(got) != 50 || got[0] != 10 {
		t.Errorf("unexpected output %v", got)
	}
}

func TestFlags(t *testing.T) {
	src := Source(spliterator.OfRange(0, 10))
	if want := Sized | Ordered | Distinct | Sorted; src.Flags() != want {
		t.Fatalf("source flags = %v, want %v", src.Flags(), want)
	}

	tests := []struct {
		name string
		seg  Segment[int64]
		want Flag
	}{
		{"map", Then(src, Map(func(v int64) int64 { return -v })), Sized | Ordered},
		{"filter", Then(src, Filter(func(int64) bool { return true })), Ordered | Distinct | Sorted},
		{"peek", Then(src, Peek(func(int64) {})), Sized | Ordered | Distinct | Sorted},
		{"unordered", Then(src, Unordered[int64]()), Sized | Distinct | Sorted},
		{"limit", Then(src, Slice[int64](0, 3)), Ordered | Distinct | Sorted | ShortCircuit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.seg.Flags() != tt.want {
				t.Errorf("flags = %v, want %v", tt.seg.Flags(), tt.want)
			}
		})
	}
}

func TestFlags_Then(t *testing.T) {
	a := Flags{Clear: Sized}
	b := Flags{Set: Sized | ShortCircuit}
	if got := a.Then(b).Apply(Ordered); got != Ordered|Sized|ShortCircuit {
		t.Errorf("got %v", got)
	}
	if got := b.Then(a).Apply(Ordered); got != Ordered|ShortCircuit {
		t.Errorf("got %v", got)
	}
}

func TestExactOutputSize(t *testing.T) {
	src := Source(spliterator.OfSlice(ints(8)))
	if n := Then(src, Map(func(v int) int { return v })).ExactOutputSize(); n != 8 {
		t.Errorf("map size = %d, want 8", n)
	}
	if n := Then(src, Filter(func(int) bool { return true })).ExactOutputSize(); n != -1 {
		t.Errorf("filter size = %d, want -1", n)
	}
}

func TestFilterBeginsUnsized(t *testing.T) {
	var sizes []int64
	rec := &sizeRecorder{sizes: &sizes}
	Then(Source(spliterator.OfSlice(ints(4))), Filter(func(int) bool { return true })).WrapAndCopyInto(rec)
	if diff := cmp.Diff([]int64{-1}, sizes); diff != "" {
		t.Errorf("begin sizes (-want +got)\n%s", diff)
	}
}

type sizeRecorder struct {
	sizes *[]int64
}

func (r *sizeRecorder) Begin(size int64)            { *r.sizes = append(*r.sizes, size) }
func (r *sizeRecorder) Accept(int)                  {}
func (r *sizeRecorder) End()                        {}
func (r *sizeRecorder) CancellationRequested() bool { return false }

func TestFlatMap(t *testing.T) {
	seg := Then(Source(spliterator.OfSlice([]int{1, 2, 3})), FlatMap(func(v int) iter.Seq[int] {
		return slices.Values(slices.Repeat([]int{v}, v))
	}))
	if diff := cmp.Diff([]int{1, 2, 2, 3, 3, 3}, collect(seg)); diff != "" {
		t.Errorf("flatMap (-want +got)\n%s", diff)
	}
}

func TestSlice_Sequential(t *testing.T) {
	tests := []struct {
		skip, limit int64
		want        []int
	}{
		{0, -1, ints(10)},
		{3, -1, []int{3, 4, 5, 6, 7, 8, 9}},
		{0, 3, []int{0, 1, 2}},
		{2, 3, []int{2, 3, 4}},
		{8, 5, []int{8, 9}},
		{20, 5, nil},
		{0, 0, nil},
	}
	for _, tt := range tests {
		pulled := 0
		src := &countingSpliterator{Spliterator: spliterator.OfSlice(ints(10)), pulled: &pulled}
		got := collect(Then(Source[int](src), Slice[int](tt.skip, tt.limit)))
		if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("skip=%d limit=%d (-want +got)\n%s", tt.skip, tt.limit, diff)
		}
		if tt.limit >= 0 && int64(pulled) > tt.skip+tt.limit {
			t.Errorf("skip=%d limit=%d pulled %d elements", tt.skip, tt.limit, pulled)
		}
	}
}

func TestSlice_NegativeSkipPanics(t *testing.T) {
	defer func() {
		err, ok := recover().(error)
		if !ok || !errors.IsCode(err, errors.ErrCodeInvalidArgument) {
			t.Errorf("expected invalid-argument panic, got %v", err)
		}
	}()
	Slice[int](-1, 0)
}

func TestNilFunctionPanics(t *testing.T) {
	defer func() {
		err, ok := recover().(error)
		if !ok || !errors.IsCode(err, errors.ErrCodeInvalidArgument) {
			t.Errorf("expected invalid-argument panic, got %v", err)
		}
	}()
	Map[int, int](nil)
}

func TestChecked(t *testing.T) {
	op := Checked(Map(func(v int) int { return v + 1 }))
	if op.Flags() != Map(func(v int) int { return v }).Flags() {
		t.Error("Checked changed the flags")
	}
	got := collect(Then(Source(spliterator.OfSlice(ints(5))), op))
	if diff := cmp.Diff([]int{1, 2, 3, 4, 5}, got); diff != "" {
		t.Errorf("(-want +got)\n%s", diff)
	}

	defer func() {
		err, ok := recover().(error)
		if !ok || !errors.IsCode(err, errors.ErrCodeIllegalState) {
			t.Errorf("expected illegal-state panic, got %v", err)
		}
	}()
	op.Wrap(0, sink.Func(func(int) {})).Accept(1)
}

func TestSplitKeepsOperations(t *testing.T) {
	seg := Then(Source(spliterator.OfSlice(ints(64))), Map(func(v int) int { return v * 2 }))
	left, ok := seg.TrySplit()
	if !ok {
		t.Fatal("expected split")
	}
	got := append(collect(left), collect(seg)...)
	want := make([]int, 64)
	for i := range want {
		want[i] = i * 2
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("split output (-want +got)\n%s", diff)
	}
}

func TestAsSpliterator(t *testing.T) {
	seg := Then(
		Then(Source(spliterator.OfSlice(ints(40))), Filter(func(v int) bool { return v%3 == 0 })),
		Slice[int](1, 5),
	)
	s := AsSpliterator(seg)
	if s.Characteristics().Has(spliterator.Sized) {
		t.Error("filtered output must not be sized")
	}
	var got []int
	for s.TryAdvance(func(v int) { got = append(got, v) }) {
	}
	if diff := cmp.Diff([]int{3, 6, 9, 12, 15}, got); diff != "" {
		t.Errorf("advance (-want +got)\n%s", diff)
	}
	if _, ok := s.TrySplit(); ok {
		t.Error("split after traversal must fail")
	}
}

func TestAsSpliterator_BulkAndSplit(t *testing.T) {
	s := AsSpliterator(Then(Source(spliterator.OfSlice(ints(32))), Map(func(v int) int { return v + 1 })))
	if n := s.EstimateSize(); n != 32 {
		t.Errorf("estimate = %d, want 32", n)
	}
	left, ok := s.TrySplit()
	if !ok {
		t.Fatal("expected split")
	}
	var got []int
	left.ForEachRemaining(func(v int) { got = append(got, v) })
	s.ForEachRemaining(func(v int) { got = append(got, v) })
	if len(got) != 32 || got[0] != 1 || got[31] != 32 {
		t.Errorf("unexpected output %v", got)
	}
}
