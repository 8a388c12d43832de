/**
 * Copyright (c) 2018, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

// This file implements the cooperative, single-threaded scheduler that drives
// one operation to completion: five work queues plus a batch accumulator,
// drained in passes until every queue is empty. The design intentionally
// keeps every drain step synchronous (see DESIGN.md for why): it preserves
// field-node declaration order in the response tree for free, since queue
// items are always enqueued, and therefore completed, in selection order.
package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/deferexec/graphql/concurrent/future"
	"github.com/deferexec/graphql/deferred"
	"github.com/deferexec/graphql/graphql"
	"github.com/deferexec/graphql/graphql/ast"
	"github.com/deferexec/graphql/iterator"
)

// awaitFuture blocks the calling goroutine until f resolves, bridging the
// Rust-style poll/wake Future design (concurrent/future) to the scheduler's
// synchronous drain loop. It is the only place this executor ever blocks on
// a future.Future; dataloader-backed resolvers and any other ordinary async
// value flow through here.
func awaitFuture(f future.Future) (interface{}, error) {
	woken := make(chan struct{}, 1)
	waker := future.WakerFunc(func() error {
		select {
		case woken <- struct{}{}:
		default:
		}
		return nil
	})

	for {
		result, err := f.Poll(waker)
		if err != nil {
			return nil, err
		}
		if result != future.PollResultPending {
			return result, nil
		}
		<-woken
	}
}

// excludeFunc prunes a branch the path-expand engine would otherwise walk
// into; abstract-type dispatch uses it to keep a concrete candidate's fields
// out of a sibling candidate's composite expression.
type excludeFunc func(tail deferred.BatchPath, value interface{}) bool

// deferralInfo is attached to a field living under a deferred ancestor. path
// locates this field's own eventual materialized value in the combined batch
// result; set installs a resolved value into whatever composite expression
// slot the backend allocated for this field.
type deferralInfo struct {
	set  func(interface{})
	path deferred.BatchPath
}

type fieldToResolve struct {
	outputPath       deferred.OutputPath
	parentType       graphql.Object
	node             *selectionNode
	sourceValue      interface{}
	deferral         *deferralInfo
	overrideResolver graphql.FieldResolver
	shouldExclude    excludeFunc
}

type fieldToDiscriminate struct {
	node          *selectionNode
	fieldType     graphql.Type
	resolvedValue interface{}
	parentType    graphql.Object
	outputPath    deferred.OutputPath
	deferral      *deferralInfo
	shouldExclude excludeFunc
}

type fieldToValidate struct {
	node          *selectionNode
	fieldType     graphql.Type
	value         interface{}
	parentType    graphql.Object
	outputPath    deferred.OutputPath
	shouldExclude excludeFunc
}

type fieldToRestage struct {
	node          *selectionNode
	parentType    graphql.Object
	outputPath    deferred.OutputPath
	deferredPath  deferred.BatchPath
	shouldExclude excludeFunc
}

type fieldToRevalidate struct {
	node          *selectionNode
	fieldType     graphql.Type
	parentType    graphql.Object
	outputPath    deferred.OutputPath
	deferredPath  deferred.BatchPath
	shouldExclude excludeFunc
}

// completedPiece is a (path, value) pair destined for the response tree, as
// described in the design's "Completed piece" entity. By the time a piece
// reaches this stage its value has already passed through validate (null
// checks, list checks, leaf serialization), or is a null or empty list that
// path expansion returned after a batch, so result assembly only needs to
// place it in the tree.
type completedPiece struct {
	path  deferred.OutputPath
	value interface{}
}

// scheduler owns the five queues and the batch accumulator for one
// execution. It is not safe for concurrent use; runRootFields creates one for
// all root fields together, and serialExecutor one per root field (see
// execute.go).
type scheduler struct {
	execCtx *ExecutionContext
	backend deferred.Backend

	resolverGetter      FieldResolverGetter
	typeResolverGetter  TypeResolverGetter
	serializerGetter    SerializerGetter
	resolveDeferredFunc ResolveDeferredFunc

	qResolve      []fieldToResolve
	qDiscriminate []fieldToDiscriminate
	qValidate     []fieldToValidate
	qRestage      []fieldToRestage
	qRevalidate   []fieldToRevalidate

	batch        []deferred.BatchEntry
	batchSetters []func(interface{})

	completed []completedPiece
	errors    graphql.Errors
}

func newScheduler(execCtx *ExecutionContext) *scheduler {
	mw := execCtx.middleware
	s := &scheduler{
		execCtx: execCtx,
		backend: execCtx.Backend(),
	}
	s.resolverGetter = composeFieldResolverGetter(defaultFieldResolverGetter(execCtx.Operation()), mw.FieldResolver)
	s.typeResolverGetter = composeTypeResolverGetter(defaultTypeResolverGetter(), mw.TypeResolver)
	s.serializerGetter = composeSerializerGetter(defaultSerializerGetter(), mw.Serializer)
	if s.backend != nil {
		s.resolveDeferredFunc = composeResolveDeferredFunc(s.backend.ResolveDeferred, mw.ResolveDeferred)
	}
	return s
}

func defaultFieldResolverGetter(op *PreparedOperation) FieldResolverGetter {
	return func(def graphql.Field) graphql.FieldResolver {
		if r := def.Resolver(); r != nil {
			return r
		}
		return op.DefaultFieldResolver()
	}
}

func defaultTypeResolverGetter() TypeResolverGetter {
	return func(t graphql.AbstractType) graphql.TypeResolver {
		return t.TypeResolver()
	}
}

func defaultSerializerGetter() SerializerGetter {
	return func(t graphql.LeafType) Serializer {
		return t.CoerceResultValue
	}
}

// seedRoot enqueues one FieldToResolve per top-level selected field of the
// operation's root type, rooted at sourceValue (ctx.RootValue() for a whole
// operation, or any single root field's own source for the serial-mutation
// runner that processes one root field at a time).
func (s *scheduler) seedRoot(fields []*flatField, sourceValue interface{}) {
	for _, f := range fields {
		s.qResolve = append(s.qResolve, fieldToResolve{
			outputPath: deferred.OutputPath{}.Append(deferred.Field(f.ResponseKey)),
			parentType: s.execCtx.Operation().RootType(),
			node: &selectionNode{
				fieldDef:   f.FieldDef,
				fieldNodes: f.FieldNodes,
				args:       f.Args,
			},
			sourceValue: sourceValue,
		})
	}
}

// run drives the outer loop (§4.1) to completion and returns the accumulated
// completed pieces and errors.
func (s *scheduler) run() ([]completedPiece, graphql.Errors) {
	for len(s.qResolve) > 0 || len(s.qDiscriminate) > 0 || len(s.qValidate) > 0 {
		for len(s.qResolve) > 0 || len(s.qDiscriminate) > 0 || len(s.qValidate) > 0 {
			s.drainResolve()
			s.drainDiscriminate()
			s.drainValidate()
			s.dispatchPendingDataLoaders()
		}

		if len(s.batch) > 0 {
			batch, setters := s.batch, s.batchSetters
			s.batch, s.batchSetters = nil, nil

			results, err := s.resolveDeferredBatch(batch)
			if err != nil {
				// A transport/protocol failure covers every outputPath filed in this
				// batch with one error.
				for _, entry := range batch {
					s.recordErrorAt(entry.OutputPath, "backend failed to resolve deferred values: %v", err)
				}
				_ = setters
			} else {
				s.drainRestage(results)
				s.drainRevalidate(results)
			}
		}
	}

	return s.completed, s.errors
}

// dispatchPendingDataLoaders fires any DataLoader batches that accumulated
// keys during the drain just finished. This is a distinct batch boundary from
// the deferred-backend batch (§4.2): ordinary resolvers loading through a
// DataLoader get their N+1-safe batching here, while deferred expressions
// still flow through the scheduler's own batch accumulator.
func (s *scheduler) dispatchPendingDataLoaders() {
	manager := s.execCtx.DataLoaderManager()
	if manager == nil || !manager.HasPendingDataLoaders() {
		return
	}
	for loader := range manager.GetAndResetPendingDataLoaders() {
		loader.Dispatch(s.execCtx.Context())
	}
}

func (s *scheduler) resolveDeferredBatch(batch []deferred.BatchEntry) ([]interface{}, error) {
	if s.resolveDeferredFunc == nil {
		return nil, errors.New("deferred: no backend configured to resolve deferred values")
	}
	args := deferred.ExecutionArgs{
		Context:        s.execCtx.Context(),
		AppContext:     s.execCtx.AppContext(),
		VariableValues: s.execCtx.VariableValues(),
	}
	return s.resolveDeferredFunc(batch, args)
}

//===------------------------------------------------------------------------------------------===//
// Resolve-drain
//===------------------------------------------------------------------------------------------===//

func (s *scheduler) drainResolve() {
	queue := s.qResolve
	s.qResolve = nil

	for _, t := range queue {
		s.resolveOne(t)
	}
}

func (s *scheduler) resolveOne(t fieldToResolve) {
	fieldNode := t.node.fieldNodes[0]
	fieldDef := t.node.fieldDef

	resolver := t.overrideResolver
	if resolver == nil {
		resolver = s.resolverGetter(fieldDef)
	}

	source := t.sourceValue
	if s.backend != nil && s.backend.IsDeferred(source) {
		source = s.backend.Wrap(source, func() (interface{}, error) {
			return nil, deferred.ErrNextStage
		})
	}

	info := &resolveInfo{
		executionCtx: s.execCtx,
		ctx:          s.execCtx.Context(),
		objectType:   t.parentType,
		node:         t.node,
		path:         t.outputPath,
	}

	value, err := resolver.Resolve(s.execCtx.Context(), source, info)
	if w, ok := value.(deferred.Wrapped); ok && s.backend != nil {
		value = s.backend.Unwrap(w)
	}

	// A resolver may return a future.Future for ordinary (non-deferred)
	// asynchronous work rather than a deferred expression. Block on it here:
	// the scheduler's only suspension points are specified (§5) as awaiting a
	// resolver's result, awaiting the batch, and awaiting a serializer, and
	// this is the first of those.
	if err == nil {
		if f, ok := value.(future.Future); ok {
			value, err = awaitFuture(f)
		}
	}

	if err != nil {
		if errors.Is(err, deferred.ErrNextStage) {
			if t.deferral == nil {
				s.recordErrorAt(t.outputPath, "resolver awaited an unmaterialized value with no deferred ancestor for field %q", fieldNode.ResponseKey())
				return
			}
			underlying := t.sourceValue
			if s.backend != nil && s.backend.IsWrapped(underlying) {
				underlying = s.backend.Unwrap(underlying.(deferred.Wrapped))
			}
			t.deferral.set(underlying)
			s.qRestage = append(s.qRestage, fieldToRestage{
				node:          t.node,
				parentType:    t.parentType,
				outputPath:    t.outputPath,
				deferredPath:  t.deferral.path,
				shouldExclude: t.shouldExclude,
			})
			return
		}

		s.recordFieldError(fieldNode, t.outputPath, err)
		return
	}

	s.qDiscriminate = append(s.qDiscriminate, fieldToDiscriminate{
		node:          t.node,
		fieldType:     fieldDef.Type(),
		resolvedValue: value,
		parentType:    t.parentType,
		outputPath:    t.outputPath,
		deferral:      t.deferral,
		shouldExclude: t.shouldExclude,
	})
}

//===------------------------------------------------------------------------------------------===//
// Discriminate-drain
//===------------------------------------------------------------------------------------------===//

func (s *scheduler) drainDiscriminate() {
	queue := s.qDiscriminate
	s.qDiscriminate = nil

	for _, t := range queue {
		s.discriminateOne(t)
	}
}

func (s *scheduler) discriminateOne(t fieldToDiscriminate) {
	isDeferred := s.backend != nil && s.backend.IsDeferred(t.resolvedValue)
	hasPlaceholder := t.outputPath.PlaceholderCount() > 0

	if !isDeferred && !hasPlaceholder {
		s.qValidate = append(s.qValidate, fieldToValidate{
			node:          t.node,
			fieldType:     t.fieldType,
			value:         t.resolvedValue,
			parentType:    t.parentType,
			outputPath:    t.outputPath,
			shouldExclude: t.shouldExclude,
		})
		return
	}

	var deferredPath deferred.BatchPath
	var setChild func(interface{})

	if t.deferral != nil {
		t.deferral.set(t.resolvedValue)
		deferredPath = t.deferral.path
		setChild = t.deferral.set
	} else {
		slot := len(s.batch)
		s.batch = append(s.batch, deferred.BatchEntry{Deferred: t.resolvedValue, OutputPath: t.outputPath})
		s.batchSetters = append(s.batchSetters, nil)
		localSlot := slot
		setChild = func(v interface{}) { s.batch[localSlot].Deferred = v }
		deferredPath = deferred.NewBatchPath(slot)
	}

	args := deferred.ExecutionArgs{
		Context:        s.execCtx.Context(),
		AppContext:     s.execCtx.AppContext(),
		VariableValues: s.execCtx.VariableValues(),
	}

	named := graphql.NamedTypeOf(t.fieldType)

	if graphql.IsLeafType(named) {
		s.qRevalidate = append(s.qRevalidate, fieldToRevalidate{
			node:          t.node,
			fieldType:     t.fieldType,
			parentType:    t.parentType,
			outputPath:    t.outputPath,
			deferredPath:  deferredPath,
			shouldExclude: t.shouldExclude,
		})
		return
	}

	if abstractType, ok := named.(graphql.AbstractType); ok {
		expander, ok := s.backend.(deferred.AbstractTypeExpander)
		if !ok {
			s.recordErrorAt(t.outputPath, "%v", deferred.ErrAbstractDispatchUnsupported)
			return
		}

		candidates, err := expander.ExpandAbstractType(
			s.execCtx.Operation().Schema(), t.outputPath, t.resolvedValue, abstractType,
			graphql.IsListType(t.fieldType), setChild, args)
		if err != nil {
			s.recordErrorAt(t.outputPath, "%v", err)
			return
		}

		for _, candidate := range candidates {
			selections, err := flattenSelectionSets(s.execCtx, t.node.childSelectionSets(), candidate.ConcreteType)
			if err != nil {
				s.recordErrorAt(t.outputPath, "%v", err)
				continue
			}

			concreteTypeName := candidate.ConcreteType.Name()
			exclude := func(tail deferred.BatchPath, value interface{}) bool {
				if m, ok := value.(map[string]interface{}); ok {
					if tn, ok := m["__typename"].(string); ok {
						return tn != concreteTypeName
					}
				}
				return false
			}

			for _, field := range selections {
				s.enqueueAbstractCandidateField(t, candidate, field, deferredPath, exclude)
			}
		}
		return
	}

	// Object type: expand children through the backend.
	objectType := named.(graphql.Object)
	selections, err := flattenSelectionSets(s.execCtx, t.node.childSelectionSets(), objectType)
	if err != nil {
		s.recordErrorAt(t.outputPath, "%v", err)
		return
	}

	childSelections := make([]deferred.ChildSelection, len(selections))
	for i, f := range selections {
		childSelections[i] = deferred.ChildSelection{
			ConcreteType: objectType,
			ResponseKey:  f.ResponseKey,
			FieldNodes:   f.FieldNodes,
			FieldDef:     f.FieldDef,
			Args:         f.Args,
		}
	}

	children, err := s.backend.ExpandChildren(t.outputPath, objectType, t.resolvedValue, childSelections, setChild, args)
	if err != nil {
		s.recordErrorAt(t.outputPath, "%v", err)
		return
	}

	bySelection := map[string]*flatField{}
	for _, f := range selections {
		bySelection[f.ResponseKey] = f
	}

	for _, child := range children {
		key := child.FieldNodes[0].ResponseKey()
		flat := bySelection[key]
		if flat == nil {
			continue
		}
		s.qResolve = append(s.qResolve, fieldToResolve{
			outputPath: t.outputPath.Append(child.PathSegments...),
			parentType: child.ConcreteType,
			node: &selectionNode{
				parent:     t.node,
				fieldDef:   child.FieldDef,
				fieldNodes: child.FieldNodes,
				args:       child.Args,
			},
			sourceValue: child.SourceValue,
			deferral: &deferralInfo{
				set:  child.SetData,
				path: deferredPath.Append(child.PathSegments...),
			},
			shouldExclude: t.shouldExclude,
		})
	}
}

// enqueueAbstractCandidateField enqueues one concrete-type candidate's field
// for resolution. __typename under abstract dispatch is resolved trivially
// from the candidate's own concrete type name rather than through the
// ordinary field-resolver getter.
func (s *scheduler) enqueueAbstractCandidateField(
	t fieldToDiscriminate,
	candidate deferred.ExpandedAbstractCandidate,
	field *flatField,
	deferredPath deferred.BatchPath,
	exclude excludeFunc) {

	combinedExclude := func(tail deferred.BatchPath, value interface{}) bool {
		if exclude(tail, value) {
			return true
		}
		if t.shouldExclude != nil {
			return t.shouldExclude(tail, value)
		}
		return false
	}

	segments := []deferred.Segment{deferred.Placeholder(), deferred.Field(field.ResponseKey)}
	if candidate.SuppressArrayHandling {
		segments = []deferred.Segment{deferred.Field(field.ResponseKey)}
	}

	task := fieldToResolve{
		outputPath: t.outputPath.Append(segments...),
		parentType: candidate.ConcreteType,
		node: &selectionNode{
			parent:     t.node,
			fieldDef:   field.FieldDef,
			fieldNodes: field.FieldNodes,
			args:       field.Args,
		},
		sourceValue: candidate.SourceValue,
		deferral: &deferralInfo{
			set:  candidate.SetDeferred,
			path: deferredPath.Append(segments...),
		},
		shouldExclude: combinedExclude,
	}
	if field.ResponseKey == graphql.TypenameMetaFieldName {
		task.overrideResolver = typenameResolver(candidate.ConcreteType.Name())
	}
	s.qResolve = append(s.qResolve, task)
}

// typenameResolver trivially resolves __typename under abstract dispatch to
// a fixed concrete type name, bypassing whatever resolver the meta-field
// definition itself carries.
func typenameResolver(name string) graphql.FieldResolver {
	return graphql.FieldResolverFunc(func(_ context.Context, _ interface{}, _ graphql.ResolveInfo) (interface{}, error) {
		return name, nil
	})
}

//===------------------------------------------------------------------------------------------===//
// Validate-drain
//===------------------------------------------------------------------------------------------===//

func (s *scheduler) drainValidate() {
	queue := s.qValidate
	s.qValidate = nil

	for _, t := range queue {
		s.validateOne(t)
	}
}

func (s *scheduler) validateOne(t fieldToValidate) {
	value := t.value
	fieldType := t.fieldType

	nonNull := false
	if nn, ok := fieldType.(graphql.NonNull); ok {
		nonNull = true
		fieldType = nn.InnerType()
	}

	if value == nil {
		if nonNull {
			s.recordErrorAt(t.outputPath, "Cannot return null for non-nullable field %q", t.node.fieldNodes[0].ResponseKey())
			return
		}
		s.completed = append(s.completed, completedPiece{path: t.outputPath, value: nil})
		return
	}

	if list, ok := fieldType.(graphql.List); ok {
		elems, err, ok := asList(value)
		if err != nil {
			s.recordErrorAt(t.outputPath, "%v", err)
			return
		}
		if !ok {
			s.recordErrorAt(t.outputPath, "Cannot return non-list value for list field %q", t.node.fieldNodes[0].ResponseKey())
			return
		}
		if len(elems) == 0 {
			s.completed = append(s.completed, completedPiece{path: t.outputPath, value: []interface{}{}})
			return
		}
		elemType := list.ElementType()
		for i, elem := range elems {
			s.qValidate = append(s.qValidate, fieldToValidate{
				node:          t.node,
				fieldType:     elemType,
				value:         elem,
				parentType:    t.parentType,
				outputPath:    t.outputPath.Append(deferred.Elem(i)),
				shouldExclude: t.shouldExclude,
			})
		}
		return
	}
	if _, _, ok := asList(value); ok && !graphql.IsCompositeType(fieldType) {
		s.recordErrorAt(t.outputPath, "Cannot return list value for non-list field %q", t.node.fieldNodes[0].ResponseKey())
		return
	}

	if graphql.IsLeafType(fieldType) {
		leaf := fieldType.(graphql.LeafType)
		serialize := s.serializerGetter(leaf)
		serialized, err := serialize(value)
		if err != nil {
			s.recordErrorAt(t.outputPath, "%v", err)
			return
		}
		s.completed = append(s.completed, completedPiece{path: t.outputPath, value: serialized})
		return
	}

	// Composite (object/interface/union): resolve the concrete object type.
	var objectType graphql.Object
	if obj, ok := fieldType.(graphql.Object); ok {
		objectType = obj
	} else if abstractType, ok := fieldType.(graphql.AbstractType); ok {
		typeResolver := s.typeResolverGetter(abstractType)
		info := &resolveInfo{executionCtx: s.execCtx, ctx: s.execCtx.Context(), objectType: t.parentType, node: t.node, path: t.outputPath}
		resolved, err := typeResolver.Resolve(s.execCtx.Context(), value, info)
		if err != nil || resolved == nil || *resolved == nil {
			s.recordErrorAt(t.outputPath, "Failed to resolve concrete type for field %q", t.node.fieldNodes[0].ResponseKey())
			return
		}
		objectType = *resolved
	} else {
		s.recordErrorAt(t.outputPath, "Unsupported composite type for field %q", t.node.fieldNodes[0].ResponseKey())
		return
	}

	selections, err := flattenSelectionSets(s.execCtx, t.node.childSelectionSets(), objectType)
	if err != nil {
		s.recordErrorAt(t.outputPath, "%v", err)
		return
	}

	for _, field := range selections {
		s.qResolve = append(s.qResolve, fieldToResolve{
			outputPath: t.outputPath.Append(deferred.Field(field.ResponseKey)),
			parentType: objectType,
			node: &selectionNode{
				parent:     t.node,
				fieldDef:   field.FieldDef,
				fieldNodes: field.FieldNodes,
				args:       field.Args,
			},
			sourceValue:   value,
			shouldExclude: t.shouldExclude,
		})
	}
}

// asList normalizes value into a response-ready slice. Besides a plain Go
// slice, a resolver may hand back an Iterable (iterable.go) — the same
// mechanism the teacher uses to let a field of List type stream its elements
// (e.g. off a cursor) rather than materialize a whole []interface{} up front.
func asList(value interface{}) ([]interface{}, error, bool) {
	if list, ok := value.([]interface{}); ok {
		return list, nil, true
	}
	if iterable, ok := value.(Iterable); ok {
		elems, err := drainIterable(iterable)
		return elems, err, true
	}
	return nil, nil, false
}

func drainIterable(iterable Iterable) ([]interface{}, error) {
	var elems []interface{}
	if sized, ok := iterable.(SizedIterable); ok {
		elems = make([]interface{}, 0, sized.Size())
	}
	it := iterable.Iterator()
	for {
		v, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
	return elems, nil
}

//===------------------------------------------------------------------------------------------===//
// Restage-drain / Revalidate-drain
//===------------------------------------------------------------------------------------------===//

func (s *scheduler) drainRestage(results []interface{}) {
	queue := s.qRestage
	s.qRestage = nil

	for _, t := range queue {
		hintPath := t.outputPath
		values, expandErr := deferred.Expand(results, t.deferredPath, hintPath, deferredExcludeAdapter(t.shouldExclude), nil, s.backend.GetErrorMessage)
		if expandErr != nil {
			s.recordErrorAt(expandErr.Path, "%s", expandErr.Message)
			continue
		}
		for _, v := range values {
			if v.Value == nil {
				s.completed = append(s.completed, completedPiece{path: v.Path, value: nil})
				continue
			}
			if len(v.Path) == len(hintPath) {
				// No further ancestor hops were discovered: v.Value is this field's own
				// terminal value, not a source to hand to a child resolver. Run it through
				// validate (null/list checks, leaf serialization) rather than completing it
				// raw, so NonNull and serialize still apply to a restaged value.
				s.qValidate = append(s.qValidate, fieldToValidate{
					node:          t.node,
					fieldType:     t.node.fieldDef.Type(),
					value:         v.Value,
					parentType:    t.parentType,
					outputPath:    v.Path,
					shouldExclude: t.shouldExclude,
				})
				continue
			}
			s.qResolve = append(s.qResolve, fieldToResolve{
				outputPath:    v.Path,
				parentType:    t.parentType,
				node:          t.node,
				sourceValue:   v.Value,
				shouldExclude: t.shouldExclude,
			})
		}
	}
}

func (s *scheduler) drainRevalidate(results []interface{}) {
	queue := s.qRevalidate
	s.qRevalidate = nil

	for _, t := range queue {
		hintPath := t.outputPath
		values, expandErr := deferred.Expand(results, t.deferredPath, hintPath, deferredExcludeAdapter(t.shouldExclude), nil, s.backend.GetErrorMessage)
		if expandErr != nil {
			s.recordErrorAt(expandErr.Path, "%s", expandErr.Message)
			continue
		}
		for _, v := range values {
			if len(v.Path) < len(hintPath) {
				// Expansion stopped short of this field (an empty list on the way
				// down): the value is final and is completed as-is.
				s.completed = append(s.completed, completedPiece{path: v.Path, value: v.Value})
				continue
			}
			s.qValidate = append(s.qValidate, fieldToValidate{
				node:       t.node,
				fieldType:  t.fieldType,
				value:      v.Value,
				parentType: t.parentType,
				outputPath: v.Path,
			})
		}
	}
}

func deferredExcludeAdapter(f excludeFunc) deferred.ExcludeFunc {
	if f == nil {
		return nil
	}
	return deferred.ExcludeFunc(f)
}

//===------------------------------------------------------------------------------------------===//
// Errors
//===------------------------------------------------------------------------------------------===//

func (s *scheduler) recordFieldError(fieldNode *ast.Field, path deferred.OutputPath, err error) {
	responsePath, _ := path.ToResponsePath()
	s.errors.Append(graphql.NewError(
		err.Error(),
		graphql.ErrKindExecution,
		responsePath,
		[]graphql.ErrorLocation{graphql.ErrorLocationOfASTNode(fieldNode)},
		err,
	))
}

func (s *scheduler) recordErrorAt(path deferred.OutputPath, format string, args ...interface{}) {
	responsePath, _ := path.ToResponsePath()
	s.errors.Append(graphql.NewError(fmt.Sprintf(format, args...), graphql.ErrKindExecution, responsePath))
}
