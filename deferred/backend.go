package deferred

import (
	"context"
	"errors"

	"github.com/deferexec/graphql/graphql"
	"github.com/deferexec/graphql/graphql/ast"
)

// ErrNextStage is the private sentinel a Wrapped value's Await returns to
// signal that the resolver wishes to inspect data that has not materialized
// yet. The scheduler recognizes it and restages the field instead of treating
// it as a resolver failure.
var ErrNextStage = errors.New("deferred: value not yet materialized, restage required")

// ErrAbstractDispatchUnsupported is returned by ExpandAbstractType (or
// surfaced by the scheduler when a backend implements no
// AbstractTypeExpander at all) when the backend cannot statically infer how
// to dispatch an abstract type without first materializing a batch. Per
// design, this is a hard error; there is no built-in fallback to per-element
// type-resolver dispatch.
var ErrAbstractDispatchUnsupported = errors.New("deferred: backend cannot expand abstract type without materialization")

// ExecutionArgs carries the request-scoped values a backend needs to build
// and submit expressions: the Go context for cancellation/deadlines, the
// application context handed to resolvers, and the coerced variable values
// for the operation.
type ExecutionArgs struct {
	Context        context.Context
	AppContext     interface{}
	VariableValues graphql.VariableValues
}

// Wrapped is a proxy over a deferred expression that a resolver receives in
// place of its parent's materialized value. Concrete backends give resolver
// authors a richer, backend-specific type (exposing chained property access
// such as a ".Field(name)" method) that also implements Wrapped; the executor
// itself only ever needs to unwrap it or await it.
type Wrapped interface {
	// Await triggers the restage mechanism: it returns ErrNextStage to signal
	// that the caller (a resolver) wants the materialized value, which is not
	// available until the enclosing batch resolves.
	Await() (interface{}, error)
}

// BatchEntry is one submission to resolveDeferred: a deferred expression
// together with the output path hint it was filed against.
type BatchEntry struct {
	Deferred   interface{}
	OutputPath OutputPath
}

// ChildSelection names one field selected against one concrete object type;
// it is what the scheduler supplies to ExpandChildren so the backend knows
// which sub-expressions to build without itself understanding fragments.
type ChildSelection struct {
	ConcreteType graphql.Object
	ResponseKey  string
	FieldNodes   []*ast.Field
	FieldDef     graphql.Field
	Args         graphql.ArgumentValues
}

// ExpandedChild is one child descriptor returned by ExpandChildren: a single
// selected field of a deferred object (or of every element of a deferred
// list), together with the callback the scheduler uses to report what value
// this child resolves to so the backend can fold it back into the parent's
// composite expression.
type ExpandedChild struct {
	ConcreteType graphql.Object
	FieldNodes   []*ast.Field
	FieldDef     graphql.Field
	Args         graphql.ArgumentValues

	// PathSegments are the segments appended between the parent outputPath and
	// this child, in order. A child of a deferred list carries a
	// SegmentPlaceholder for each unwrapped list layer.
	PathSegments []Segment

	// SourceValue is the value to thread as source into the child's
	// FieldToResolve (commonly a fresh Wrapped/deferred expression).
	SourceValue interface{}

	// SetData installs this child's eventually-resolved value into the
	// parent's composite expression.
	SetData func(value interface{})
}

// ExpandedAbstractCandidate is one concrete-type candidate returned by
// ExpandAbstractType for a deferred value whose static type is an interface
// or union.
type ExpandedAbstractCandidate struct {
	ConcreteType graphql.Object
	SourceValue  interface{}
	SetDeferred  func(value interface{})

	// SuppressArrayHandling, when true, tells the scheduler this candidate
	// already represents a single element (not a list) even though the
	// field's static type has list shape.
	SuppressArrayHandling bool
}

// Backend is the pluggable capability bundle a deferred-expression system
// implements. The executor never constructs or inspects a deferred
// expression's internals; every operation it needs is routed through here.
type Backend interface {
	// IsDeferred reports whether v is an opaque deferred expression owned by
	// this backend.
	IsDeferred(v interface{}) bool

	// IsWrapped reports whether v is a Wrapped proxy built by this backend.
	IsWrapped(v interface{}) bool

	// Wrap builds a proxy over source (a deferred expression) whose Await
	// calls getMaterial. By convention getMaterial returns ErrNextStage.
	Wrap(source interface{}, getMaterial func() (interface{}, error)) Wrapped

	// Unwrap recovers the underlying deferred expression from a Wrapped value.
	Unwrap(w Wrapped) interface{}

	// ResolveDeferred submits one combined query materializing every entry in
	// batch, returning one result per entry in the same order. A transport or
	// protocol failure is reported as a single error covering the whole batch.
	ResolveDeferred(batch []BatchEntry, args ExecutionArgs) ([]interface{}, error)

	// ExpandChildren produces one child descriptor per entry in selections for
	// an object (or list-of-objects) deferred parent.
	ExpandChildren(
		outputPath OutputPath,
		parentType graphql.Object,
		parentDeferred interface{},
		selections []ChildSelection,
		setParentDeferred func(interface{}),
		args ExecutionArgs,
	) ([]ExpandedChild, error)

	// GetErrorMessage decodes a per-value error annotation the backend may
	// have embedded in an otherwise-ordinary materialized result. An empty
	// string means value carries no error.
	GetErrorMessage(value interface{}) string
}

// AbstractTypeExpander is implemented by backends that can dispatch a
// deferred value whose static type is an interface or union without first
// materializing a batch. It is optional: a Backend that does not implement it
// causes the scheduler to fail abstract-type fields under deferred data with
// ErrAbstractDispatchUnsupported, per design (see ExpandAbstractType in the
// component design).
type AbstractTypeExpander interface {
	ExpandAbstractType(
		schema graphql.Schema,
		outputPath OutputPath,
		parentDeferred interface{},
		abstractType graphql.AbstractType,
		isListShape bool,
		setParentDeferred func(interface{}),
		args ExecutionArgs,
	) ([]ExpandedAbstractCandidate, error)
}
