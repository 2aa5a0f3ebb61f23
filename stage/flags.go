package stage

import (
	"strings"

	"github.com/kbukum/gostream/spliterator"
)

// Flag is a bitset of properties known to hold for the elements flowing
// out of a pipeline stage.
type Flag uint32

const (
	// Distinct means no two elements are equal.
	Distinct Flag = 1 << iota
	// Sorted means elements arrive in sorted order.
	Sorted
	// Ordered means the stage has an encounter order that must be kept.
	Ordered
	// Sized means the element count is known without traversal.
	Sized
	// ShortCircuit means some stage may stop consuming early, so sources
	// must poll CancellationRequested between elements.
	ShortCircuit
)

// Has reports whether all bits in other are set.
func (f Flag) Has(other Flag) bool { return f&other == other }

func (f Flag) String() string {
	names := []struct {
		f    Flag
		name string
	}{{Distinct, "DISTINCT"}, {Sorted, "SORTED"}, {Ordered, "ORDERED"}, {Sized, "SIZED"}, {ShortCircuit, "SHORT_CIRCUIT"}}
	var parts []string
	for _, n := range names {
		if f.Has(n.f) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "NONE"
	}
	return strings.Join(parts, "|")
}

// Flags describes how an operation changes the flags of its input: bits in
// Set are turned on, bits in Clear are turned off, every other bit is
// preserved.
type Flags struct {
	Set   Flag
	Clear Flag
}

// Apply returns the flags of the operation's output given its input flags.
func (f Flags) Apply(upstream Flag) Flag {
	return (upstream &^ f.Clear) | f.Set
}

// Then composes f followed by next.
func (f Flags) Then(next Flags) Flags {
	return Flags{
		Set:   (f.Set &^ next.Clear) | next.Set,
		Clear: (f.Clear &^ next.Set) | next.Clear,
	}
}

// FromCharacteristics derives the source flags of a spliterator.
func FromCharacteristics(c spliterator.Characteristics) Flag {
	var f Flag
	if c.Has(spliterator.Distinct) {
		f |= Distinct
	}
	if c.Has(spliterator.Sorted) {
		f |= Sorted
	}
	if c.Has(spliterator.Ordered) {
		f |= Ordered
	}
	if c.Has(spliterator.Sized) {
		f |= Sized
	}
	return f
}

// ToCharacteristics narrows the characteristics of a source spliterator to
// what still holds after the pipeline's flags.
func ToCharacteristics(f Flag, source spliterator.Characteristics) spliterator.Characteristics {
	c := source
	if !f.Has(Sized) {
		c &^= spliterator.Sized | spliterator.Subsized
	}
	if !f.Has(Ordered) {
		c &^= spliterator.Ordered
	}
	if !f.Has(Distinct) {
		c &^= spliterator.Distinct
	}
	if !f.Has(Sorted) {
		c &^= spliterator.Sorted
	}
	return c
}
