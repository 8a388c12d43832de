// Package deferred specifies the contract between the executor and a pluggable
// deferred-expression backend: opaque values that denote computation a remote
// system will perform, batched together and resolved in as few round-trips as
// possible.
//
// The path types here mirror graphql.ResponsePath (see graphql/error.go) but
// add the one extra segment kind a response path never needs on its own: a
// placeholder standing in for a list index that isn't known until a deferred
// value materializes.
package deferred

import (
	"strconv"

	"github.com/deferexec/graphql/graphql"
)

// SegmentKind discriminates the three things a Segment can hold.
type SegmentKind uint8

const (
	// SegmentKey addresses an object field by name.
	SegmentKey SegmentKind = iota
	// SegmentIndex addresses a list element by position, or (as the first
	// segment of a BatchPath) a batch slot.
	SegmentIndex
	// SegmentPlaceholder stands for "one entry per materialized list element,
	// index not yet known." It only ever appears before a value has been
	// walked by the path-expand engine.
	SegmentPlaceholder
)

// Segment is one step of an OutputPath or BatchPath.
type Segment struct {
	Kind  SegmentKind
	Key   string
	Index int
}

// Field builds a SegmentKey segment.
func Field(name string) Segment {
	return Segment{Kind: SegmentKey, Key: name}
}

// Elem builds a SegmentIndex segment.
func Elem(index int) Segment {
	return Segment{Kind: SegmentIndex, Index: index}
}

// Placeholder builds a SegmentPlaceholder segment.
func Placeholder() Segment {
	return Segment{Kind: SegmentPlaceholder}
}

func (s Segment) String() string {
	switch s.Kind {
	case SegmentKey:
		return s.Key
	case SegmentIndex:
		return strconv.Itoa(s.Index)
	default:
		return "*"
	}
}

// OutputPath is a root-relative response path that, unlike graphql.ResponsePath,
// may still carry unresolved SegmentPlaceholder segments: it is a template for
// where a value will land once the path-expand engine walks a materialized
// deferred result down to concrete indices. Once every placeholder has been
// resolved it converts losslessly to a graphql.ResponsePath via ToResponsePath.
type OutputPath []Segment

// Append returns a new OutputPath with segs appended; the receiver is untouched.
func (p OutputPath) Append(segs ...Segment) OutputPath {
	out := make(OutputPath, len(p)+len(segs))
	copy(out, p)
	copy(out[len(p):], segs)
	return out
}

// PlaceholderCount returns the number of SegmentPlaceholder segments in p.
func (p OutputPath) PlaceholderCount() int {
	n := 0
	for _, s := range p {
		if s.Kind == SegmentPlaceholder {
			n++
		}
	}
	return n
}

// ToResponsePath converts p to a graphql.ResponsePath. ok is false if p still
// carries an unresolved placeholder.
func (p OutputPath) ToResponsePath() (path graphql.ResponsePath, ok bool) {
	for _, s := range p {
		switch s.Kind {
		case SegmentKey:
			path.AppendFieldName(s.Key)
		case SegmentIndex:
			path.AppendIndex(s.Index)
		default:
			return path, false
		}
	}
	return path, true
}

func (p OutputPath) String() string {
	out := ""
	for i, s := range p {
		if i > 0 {
			out += "."
		}
		out += s.String()
	}
	return out
}

// BatchPath addresses a value inside a combined deferred batch result: its
// first segment is always SegmentIndex naming the batch slot, and the
// remaining segments descend into the materialized value found there.
//
// Invariant: BatchPath.PlaceholderCount() (excluding the slot segment) equals
// the PlaceholderCount of the OutputPath it was filed against the path-expand
// engine with.
type BatchPath []Segment

// NewBatchPath builds a BatchPath rooted at the given batch slot.
func NewBatchPath(slot int, rest ...Segment) BatchPath {
	p := make(BatchPath, 0, len(rest)+1)
	p = append(p, Elem(slot))
	p = append(p, rest...)
	return p
}

// Slot returns the batch index this path was filed under.
func (p BatchPath) Slot() int {
	return p[0].Index
}

// Tail returns the segments following the batch slot.
func (p BatchPath) Tail() BatchPath {
	return p[1:]
}

// Append returns a new BatchPath with segs appended; the receiver is untouched.
func (p BatchPath) Append(segs ...Segment) BatchPath {
	out := make(BatchPath, len(p)+len(segs))
	copy(out, p)
	copy(out[len(p):], segs)
	return out
}

// PlaceholderCount returns the number of SegmentPlaceholder segments in the
// path, not counting the leading batch-slot segment.
func (p BatchPath) PlaceholderCount() int {
	n := 0
	for _, s := range p.Tail() {
		if s.Kind == SegmentPlaceholder {
			n++
		}
	}
	return n
}
