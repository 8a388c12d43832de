package memory

import "github.com/deferexec/graphql/deferred"

// Wrapped is the concrete proxy type resolvers written against this backend
// receive in place of a deferred parent value. Resolver code calls Field to
// synthesize a child expression and Await when it needs the materialized
// value — exactly the two operations the design notes call for.
type Wrapped struct {
	expr       Expr
	getMaterial func() (interface{}, error)
}

var _ deferred.Wrapped = (*Wrapped)(nil)

// Field builds a new Wrapped over a property-projection of w's expression.
// It does not touch the network or the batch; it only grows the expression
// tree that will later be installed into the batch slot if the caller awaits.
func (w *Wrapped) Field(name string) *Wrapped {
	expr := Project{Base: w.expr, Name: name}
	return &Wrapped{
		expr: expr,
		getMaterial: func() (interface{}, error) {
			return nil, deferred.ErrNextStage
		},
	}
}

// Index builds a new Wrapped over an index projection of w's expression.
func (w *Wrapped) Index(i int) *Wrapped {
	expr := Index{Base: w.expr, Pos: i}
	return &Wrapped{
		expr: expr,
		getMaterial: func() (interface{}, error) {
			return nil, deferred.ErrNextStage
		},
	}
}

// Await invokes the proxy's getMaterial, per deferred.Wrapped. By convention
// that throws deferred.ErrNextStage so the scheduler restages the field
// instead of treating the result as a resolver failure.
func (w *Wrapped) Await() (interface{}, error) {
	return w.getMaterial()
}

// Expr returns the underlying expression tree, for use by Backend.Unwrap.
func (w *Wrapped) Expr() Expr {
	return w.expr
}

// FieldOf performs property access uniformly over either a *Wrapped (still
// deferred — returns a further-chained *Wrapped) or an already-materialized
// value (a plain map — returns the concrete child directly). Resolver code
// written against this backend uses FieldOf instead of a type switch so the
// same resolver body works whether or not its source has materialized yet.
func FieldOf(v interface{}, name string) interface{} {
	if w, ok := v.(*Wrapped); ok {
		return w.Field(name)
	}
	return lookupField(v, name)
}

// Await mirrors JavaScript's "await on a non-promise value is a no-op":
// awaiting a *Wrapped triggers deferred.ErrNextStage (handled by the
// scheduler as a restage); awaiting anything else just returns it unchanged.
func Await(v interface{}) (interface{}, error) {
	if w, ok := v.(*Wrapped); ok {
		return w.Await()
	}
	return v, nil
}
