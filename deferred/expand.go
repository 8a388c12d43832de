package deferred

// ExpandedValue is one concrete (path, value) pair discovered while walking a
// materialized batch result down to the shape a deferred path describes.
// SegmentPlaceholder segments in the originating OutputPath are resolved to
// concrete indices by the time a value is emitted here.
type ExpandedValue struct {
	Path  OutputPath
	Value interface{}
}

// ExcludeFunc prunes a branch entirely; it is how abstract-type dispatch keeps
// a concrete type's materialized fields from leaking into a sibling
// candidate's composite expression. tail is the BatchPath remaining below the
// batch slot at the point of the decision.
type ExcludeFunc func(tail BatchPath, value interface{}) bool

// Expand walks batchResult (the slice returned by Backend.ResolveDeferred) at
// deferredPath down to the shape described by outputPath, emitting one
// ExpandedValue per concrete leaf reached. outputPath is the "hinting" path:
// its SegmentPlaceholder count must equal deferredPath's (excluding the
// leading batch-slot segment), and every placeholder in outputPath is
// resolved to the list index the walk discovers on the deferredPath side.
//
// deferredPath and outputPath describe two independent walks that only meet
// at placeholders: deferredPath's SegmentKey/SegmentIndex segments merely
// navigate the materialized batch result to locate a value and never change
// the emitted path, while outputPath is carried through unchanged except
// that each SegmentPlaceholder deferredPath fans out over resolves the next
// unresolved placeholder in outputPath to the discovered index.
//
// getErrorMessage decodes a per-value error annotation the backend may have
// embedded in the materialized data; when it returns a non-empty string the
// walk stops and reports an error at the path accumulated so far instead of
// descending further. exclude, if non-nil, prunes a branch outright (used by
// abstract-type dispatch to keep a concrete candidate's fields out of a
// sibling's composite). didParentError, if non-nil, is consulted the same way
// to implement the null-propagation pruning optimization: a branch whose
// output path already lies under a previously recorded error is dropped.
func Expand(
	batchResult []interface{},
	deferredPath BatchPath,
	outputPath OutputPath,
	exclude ExcludeFunc,
	didParentError func(path OutputPath) bool,
	getErrorMessage func(value interface{}) string,
) ([]ExpandedValue, *ExpandError) {

	if deferredPath.PlaceholderCount() != outputPath.PlaceholderCount() {
		panic("deferred: mismatched LIST_PLACEHOLDER counts between deferred path and output path")
	}

	slot := deferredPath.Slot()
	if slot < 0 || slot >= len(batchResult) {
		panic("deferred: batch path slot out of range")
	}

	return expandWalk(batchResult[slot], deferredPath.Tail(), outputPath, exclude, didParentError, getErrorMessage)
}

// ExpandError is a GraphQL-shaped error discovered mid-walk: an error
// annotation was found before the walk reached a leaf. Its Path is the output
// path accumulated up to (and including) the point of discovery.
type ExpandError struct {
	Path    OutputPath
	Message string
}

func (e *ExpandError) Error() string {
	return e.Message
}

// resolveFirstPlaceholder returns a copy of p with its first remaining
// SegmentPlaceholder segment replaced by Elem(index). The placeholder-count
// invariant checked in Expand guarantees one remains for every
// SegmentPlaceholder the walk still has to fan out over.
func resolveFirstPlaceholder(p OutputPath, index int) OutputPath {
	out := make(OutputPath, len(p))
	copy(out, p)
	for i, s := range out {
		if s.Kind == SegmentPlaceholder {
			out[i] = Elem(index)
			return out
		}
	}
	panic("deferred: no placeholder left to resolve")
}

// truncateBeforePlaceholder returns the prefix of p up to (not including) its
// first remaining SegmentPlaceholder segment, or p itself if none remains. A
// short-circuit (null, type mismatch, error, empty list) below that point
// means the branch a placeholder would have fanned out over doesn't exist,
// and neither does anything hinted to sit under it.
func truncateBeforePlaceholder(p OutputPath) OutputPath {
	for i, s := range p {
		if s.Kind == SegmentPlaceholder {
			return append(OutputPath(nil), p[:i]...)
		}
	}
	return p
}

func expandWalk(
	expected interface{},
	deferredTail BatchPath,
	resultPath OutputPath,
	exclude ExcludeFunc,
	didParentError func(path OutputPath) bool,
	getErrorMessage func(value interface{}) string,
) ([]ExpandedValue, *ExpandError) {

	if didParentError != nil && didParentError(resultPath) {
		return nil, nil
	}
	if exclude != nil && exclude(deferredTail, expected) {
		return nil, nil
	}
	if msg := getErrorMessage(expected); msg != "" {
		return nil, &ExpandError{Path: truncateBeforePlaceholder(resultPath), Message: msg}
	}
	if expected == nil {
		return []ExpandedValue{{Path: truncateBeforePlaceholder(resultPath), Value: nil}}, nil
	}

	if len(deferredTail) == 0 {
		return []ExpandedValue{{Path: resultPath, Value: expected}}, nil
	}

	head := deferredTail[0]
	switch head.Kind {
	case SegmentKey:
		m, ok := expected.(map[string]interface{})
		if !ok {
			return []ExpandedValue{{Path: truncateBeforePlaceholder(resultPath), Value: nil}}, nil
		}
		return expandWalk(m[head.Key], deferredTail[1:], resultPath, exclude, didParentError, getErrorMessage)

	case SegmentIndex:
		list, ok := expected.([]interface{})
		if !ok {
			return []ExpandedValue{{Path: truncateBeforePlaceholder(resultPath), Value: nil}}, nil
		}
		if head.Index < 0 || head.Index >= len(list) {
			return []ExpandedValue{{Path: truncateBeforePlaceholder(resultPath), Value: nil}}, nil
		}
		return expandWalk(list[head.Index], deferredTail[1:], resultPath, exclude, didParentError, getErrorMessage)

	default: // SegmentPlaceholder
		list, ok := expected.([]interface{})
		if !ok {
			return nil, &ExpandError{Path: truncateBeforePlaceholder(resultPath), Message: "deferred: expected an array at list placeholder"}
		}
		if len(list) == 0 {
			return []ExpandedValue{{Path: truncateBeforePlaceholder(resultPath), Value: []interface{}{}}}, nil
		}
		var out []ExpandedValue
		for i, elem := range list {
			branchPath := resolveFirstPlaceholder(resultPath, i)
			vals, expandErr := expandWalk(elem, deferredTail[1:], branchPath, exclude, didParentError, getErrorMessage)
			if expandErr != nil {
				return nil, expandErr
			}
			out = append(out, vals...)
		}
		return out, nil
	}
}
