package memory

import (
	"github.com/deferexec/graphql/deferred"
	"github.com/deferexec/graphql/graphql"
)

// Backend is a reference, in-process deferred.Backend. A single Backend
// evaluates every expression tree against one fixed root document, so
// resolveDeferred really does materialize a whole batch of otherwise
// independent expressions in a single call — the property the scheduler is
// built to exploit.
type Backend struct {
	root interface{}
}

var (
	_ deferred.Backend              = (*Backend)(nil)
	_ deferred.AbstractTypeExpander = (*Backend)(nil)
)

// New creates a Backend whose expressions are evaluated against root, a plain
// Go value (map[string]interface{}/[]interface{}/scalars) standing in for
// whatever data a real remote query engine would hold.
func New(root interface{}) *Backend {
	return &Backend{root: root}
}

// Root returns a deferred expression denoting the backend's entire document,
// the conventional starting point a resolver wraps to build further
// projections from.
func (b *Backend) Root() Expr {
	return RootExpr{}
}

// WrapExpr builds a *Wrapped over an arbitrary expression, for tests and
// resolvers that want to start from something other than Root().
func (b *Backend) WrapExpr(e Expr) *Wrapped {
	return &Wrapped{
		expr: e,
		getMaterial: func() (interface{}, error) {
			return nil, deferred.ErrNextStage
		},
	}
}

// IsDeferred implements deferred.Backend.
func (b *Backend) IsDeferred(v interface{}) bool {
	if _, ok := v.(*Wrapped); ok {
		return true
	}
	_, ok := v.(Expr)
	return ok
}

// IsWrapped implements deferred.Backend.
func (b *Backend) IsWrapped(v interface{}) bool {
	_, ok := v.(*Wrapped)
	return ok
}

// Wrap implements deferred.Backend.
func (b *Backend) Wrap(source interface{}, getMaterial func() (interface{}, error)) deferred.Wrapped {
	return &Wrapped{expr: exprOf(source), getMaterial: getMaterial}
}

// Unwrap implements deferred.Backend.
func (b *Backend) Unwrap(w deferred.Wrapped) interface{} {
	mw, ok := w.(*Wrapped)
	if !ok {
		return nil
	}
	return mw.expr
}

// ResolveDeferred implements deferred.Backend: it evaluates every batch
// entry's expression against the shared root document and returns the
// results in the same order.
func (b *Backend) ResolveDeferred(batch []deferred.BatchEntry, args deferred.ExecutionArgs) ([]interface{}, error) {
	results := make([]interface{}, len(batch))
	ctx := &evalCtx{root: b.root}
	for i, entry := range batch {
		v, err := exprOf(entry.Deferred).eval(ctx)
		if err != nil {
			return nil, err
		}
		results[i] = v
	}
	return results, nil
}

// ExpandChildren implements deferred.Backend for an object (or
// deferred-list-of-objects) parent: it allocates one Composite representing
// the object shape, installs it via setParentDeferred (wrapped in a
// MapComposite if the parent turns out to enumerate a list at eval time), and
// returns one ExpandedChild per requested selection projecting that field off
// the parent.
func (b *Backend) ExpandChildren(
	outputPath deferred.OutputPath,
	parentType graphql.Object,
	parentDeferred interface{},
	selections []deferred.ChildSelection,
	setParentDeferred func(interface{}),
	args deferred.ExecutionArgs,
) ([]deferred.ExpandedChild, error) {

	base := exprOf(parentDeferred)
	template := NewCompositeObject()

	// MapComposite degrades gracefully to a direct application when Base
	// evaluates to a single object rather than a list, so this installation
	// is correct whether or not the field above us had list shape.
	setParentDeferred(&MapComposite{Base: base, Template: template})

	elemBase := Expr(ElemRef{})
	children := make([]deferred.ExpandedChild, 0, len(selections))
	for _, sel := range selections {
		name := sel.ResponseKey
		childExpr := Project{Base: elemBase, Name: name}
		children = append(children, deferred.ExpandedChild{
			ConcreteType: sel.ConcreteType,
			FieldNodes:   sel.FieldNodes,
			FieldDef:     sel.FieldDef,
			Args:         sel.Args,
			PathSegments: []deferred.Segment{deferred.Placeholder(), deferred.Field(name)},
			SourceValue:  b.WrapExpr(childExpr),
			SetData: func(name string) func(interface{}) {
				return func(v interface{}) {
					template.SetField(name, toExpr(v))
				}
			}(name),
		})
	}
	return children, nil
}

// ExpandAbstractType implements deferred.AbstractTypeExpander: it installs a
// TypeDispatch in the parent's slot and returns one candidate per possible
// concrete type, each wired so that a subsequent ExpandChildren call (using
// candidate.SetDeferred as the setParentDeferred) folds that type's fields
// into the dispatch's per-type branch.
func (b *Backend) ExpandAbstractType(
	schema graphql.Schema,
	outputPath deferred.OutputPath,
	parentDeferred interface{},
	abstractType graphql.AbstractType,
	isListShape bool,
	setParentDeferred func(interface{}),
	args deferred.ExecutionArgs,
) ([]deferred.ExpandedAbstractCandidate, error) {

	dispatch := &TypeDispatch{Base: exprOf(parentDeferred), ByType: map[string]Expr{}}
	setParentDeferred(dispatch)

	possibleTypes := schema.PossibleTypes(abstractType)
	candidates := make([]deferred.ExpandedAbstractCandidate, 0, len(possibleTypes.Types()))
	for _, t := range possibleTypes.Types() {
		typeName := t.Name()
		candidates = append(candidates, deferred.ExpandedAbstractCandidate{
			ConcreteType: t,
			SourceValue:  b.WrapExpr(ElemRef{}),
			SetDeferred: func(typeName string) func(interface{}) {
				return func(v interface{}) {
					dispatch.ByType[typeName] = toExpr(v)
				}
			}(typeName),
		})
	}
	return candidates, nil
}

// GetErrorMessage implements deferred.Backend: a materialized value tagged
// with ErrValue (see expr.go) is how this backend embeds a per-field error
// annotation in an otherwise ordinary result, mirroring how a real remote
// system might report a partial failure inline rather than failing the whole
// batch.
func (b *Backend) GetErrorMessage(value interface{}) string {
	if ev, ok := value.(ErrValue); ok {
		return ev.Message
	}
	return ""
}

func exprOf(v interface{}) Expr {
	switch v := v.(type) {
	case *Wrapped:
		return v.expr
	case Expr:
		return v
	default:
		return Lit{Value: v}
	}
}

func toExpr(v interface{}) Expr {
	return exprOf(v)
}
