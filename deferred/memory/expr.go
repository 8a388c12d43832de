// Package memory is a reference implementation of deferred.Backend that
// represents a deferred expression as a small in-process expression tree and
// "resolves" a batch by evaluating every entry's tree against a root
// document in one pass — standing in for a real network round-trip to a
// remote query engine while still letting tests observe that exactly one
// call to ResolveDeferred happens per outer-loop batch.
package memory

// evalCtx carries both the backend's root document and, while evaluating
// inside a MapComposite or TypeDispatch, the current list element a template
// expression (built from ElemRef) should resolve against.
type evalCtx struct {
	root interface{}
	elem interface{}
	hasElem bool
}

// Expr is a node in a deferred expression tree. Every deferred value the
// backend hands out to resolvers is (transitively) a *Wrapped carrying one of
// these.
type Expr interface {
	eval(ctx *evalCtx) (interface{}, error)
}

// Lit is a literal value lifted into expression form (e.g. a constant a
// resolver bakes in while building a composed expression).
type Lit struct {
	Value interface{}
}

func (e Lit) eval(*evalCtx) (interface{}, error) {
	return e.Value, nil
}

// RootExpr evaluates to the backend's root document.
type RootExpr struct{}

func (RootExpr) eval(ctx *evalCtx) (interface{}, error) {
	return ctx.root, nil
}

// ElemRef evaluates to the current element inside a MapComposite/TypeDispatch
// template; outside of one it is a programmer error to evaluate it.
type ElemRef struct{}

func (ElemRef) eval(ctx *evalCtx) (interface{}, error) {
	if !ctx.hasElem {
		return nil, nil
	}
	return ctx.elem, nil
}

// Project evaluates Base and then indexes the named field of the resulting
// map. This is the expression a Wrapped's Field(name) synthesizes.
type Project struct {
	Base Expr
	Name string
}

func (e Project) eval(ctx *evalCtx) (interface{}, error) {
	base, err := e.Base.eval(ctx)
	if err != nil {
		return nil, err
	}
	return lookupField(base, e.Name), nil
}

// Index evaluates Base and then indexes the list result at Pos.
type Index struct {
	Base Expr
	Pos  int
}

func (e Index) eval(ctx *evalCtx) (interface{}, error) {
	base, err := e.Base.eval(ctx)
	if err != nil {
		return nil, err
	}
	list, ok := base.([]interface{})
	if !ok || e.Pos < 0 || e.Pos >= len(list) {
		return nil, nil
	}
	return list[e.Pos], nil
}

// Concat evaluates Parts in order and concatenates their string forms. It
// models the kind of expression-building operation resolver code performs
// once it has a materialized (or literal) operand in hand, e.g.
// backend.Concat(await v.name, " world").
type Concat struct {
	Parts []Expr
}

func (e Concat) eval(ctx *evalCtx) (interface{}, error) {
	out := ""
	for _, part := range e.Parts {
		v, err := part.eval(ctx)
		if err != nil {
			return nil, err
		}
		s, _ := v.(string)
		out += s
	}
	return out, nil
}

// Composite is a mutable, growing object expression. Entries are keyed by
// field name and installed via SetField, exactly the "owned builder" the
// design notes describe: setter closures capture a mutable reference into
// one of its slots, and submission freezes it into an immutable expression
// simply by evaluating it.
type Composite struct {
	fields map[string]Expr
}

// NewCompositeObject creates an empty object composite.
func NewCompositeObject() *Composite {
	return &Composite{fields: map[string]Expr{}}
}

// SetField installs (or replaces) the expression for a named child.
func (c *Composite) SetField(name string, e Expr) {
	if c.fields == nil {
		c.fields = map[string]Expr{}
	}
	c.fields[name] = e
}

func (c *Composite) eval(ctx *evalCtx) (interface{}, error) {
	out := map[string]interface{}{}
	for name, e := range c.fields {
		v, err := e.eval(ctx)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

// MapComposite evaluates Base to a list and applies Template (whose field
// expressions are written in terms of ElemRef) to every element, or, if Base
// evaluates to a single object (not a list), applies Template directly to it.
// It backs deferred object fields selected under a deferred list, e.g.
// `items { a b }` where `items` itself resolved to a deferred array.
type MapComposite struct {
	Base     Expr
	Template *Composite
}

func (e *MapComposite) eval(ctx *evalCtx) (interface{}, error) {
	base, err := e.Base.eval(ctx)
	if err != nil {
		return nil, err
	}
	if list, ok := base.([]interface{}); ok {
		out := make([]interface{}, len(list))
		for i, elem := range list {
			v, err := e.Template.eval(&evalCtx{root: ctx.root, elem: elem, hasElem: true})
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	return e.Template.eval(&evalCtx{root: ctx.root, elem: base, hasElem: true})
}

// TypeDispatch evaluates Base (a single value or a list of values, each
// expected to carry a "__typename" key) and, per element, merges in whatever
// fields the matching entry of ByType contributes. It is how the backend
// represents a deferred field of abstract (interface/union) type: each
// candidate concrete type gets its own Composite, written independently by
// the scheduler's abstract-dispatch machinery, and TypeDispatch folds them
// back together keyed by the materialized __typename.
type TypeDispatch struct {
	Base   Expr
	ByType map[string]Expr
}

func (e *TypeDispatch) eval(ctx *evalCtx) (interface{}, error) {
	base, err := e.Base.eval(ctx)
	if err != nil {
		return nil, err
	}
	if list, ok := base.([]interface{}); ok {
		out := make([]interface{}, len(list))
		for i, elem := range list {
			v, err := e.evalElem(ctx, elem)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	return e.evalElem(ctx, base)
}

func (e *TypeDispatch) evalElem(ctx *evalCtx, elem interface{}) (interface{}, error) {
	m, _ := elem.(map[string]interface{})
	typeName, _ := m["__typename"].(string)

	result := map[string]interface{}{"__typename": typeName}
	for k, v := range m {
		result[k] = v
	}

	if branch, ok := e.ByType[typeName]; ok {
		v, err := branch.eval(&evalCtx{root: ctx.root, elem: elem, hasElem: true})
		if err != nil {
			return nil, err
		}
		if vm, ok := v.(map[string]interface{}); ok {
			for k, val := range vm {
				result[k] = val
			}
		}
	}
	return result, nil
}

// ErrValue is a materialized value annotating a per-field failure the backend
// wants to report inline rather than fail the whole batch for. It is built as
// a literal ErrValue{Message: ...}; Backend.GetErrorMessage recognizes one.
type ErrValue struct {
	Message string
}

func (e ErrValue) eval(*evalCtx) (interface{}, error) {
	return e, nil
}

func lookupField(v interface{}, name string) interface{} {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	return m[name]
}
