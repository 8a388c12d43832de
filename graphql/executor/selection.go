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

package executor

import (
	"fmt"

	"github.com/deferexec/graphql/graphql"
	"github.com/deferexec/graphql/graphql/ast"
	values "github.com/deferexec/graphql/graphql/internal/value"
)

// flatField is one response key's worth of field selections flattened
// against a concrete object type: every *ast.Field in FieldNodes requested
// the same response key and, per the conflict check below, agrees on
// arguments and directives, so they may be treated as a single field whose
// sub-selection sets are merged together.
type flatField struct {
	ResponseKey string
	FieldDef    graphql.Field
	FieldNodes  []*ast.Field
	Args        graphql.ArgumentValues
}

// childSelectionSets returns every selection set a flat field contributes,
// for recursing one level deeper.
func (f *flatField) childSelectionSets() []ast.SelectionSet {
	sets := make([]ast.SelectionSet, 0, len(f.FieldNodes))
	for _, node := range f.FieldNodes {
		if node.SelectionSet != nil {
			sets = append(sets, node.SelectionSet)
		}
	}
	return sets
}

// flattenSelectionSets collects, deduplicates and merges the fields selected
// by selectionSets against concreteType, resolving fragment spreads and
// inline fragments along the way. It is the execution-time counterpart of
// query-time field collection: walk with a stack (not a recursive function)
// so that fields are produced in depth-first selection order per the
// ordering guarantee in the design.
//
// Two selections sharing a response key are merged only if their arguments
// and directives are structurally identical once source locations are
// stripped out — ast.Print never emits location info, so comparing printed
// forms is a faithful structural-equality check. A mismatch is a genuine
// query error, not a scheduler bug, so it is returned rather than panicked.
func flattenSelectionSets(ctx *ExecutionContext, selectionSets []ast.SelectionSet, concreteType graphql.Object) ([]*flatField, error) {
	visitedFragmentNames := map[string]bool{}
	byResponseKey := map[string]*flatField{}
	var ordered []*flatField

	type frame struct {
		set   ast.SelectionSet
		index int
	}

	stack := make([]frame, 0, len(selectionSets))
	// Stack is LIFO; push in reverse so selection sets are visited in the
	// order they were supplied.
	for i := len(selectionSets) - 1; i >= 0; i-- {
		stack = append(stack, frame{set: selectionSets[i]})
	}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		interrupted := false

		for top.index < len(top.set) && !interrupted {
			selection := top.set[top.index]
			top.index++
			if top.index >= len(top.set) {
				stack = stack[:len(stack)-1]
			}

			include, err := shouldIncludeSelection(ctx, selection)
			if err != nil {
				return nil, err
			}
			if !include {
				continue
			}

			switch sel := selection.(type) {
			case *ast.Field:
				key := sel.ResponseKey()
				existing := byResponseKey[key]
				if existing == nil {
					fieldDef := findFieldDef(ctx.Operation().Schema(), concreteType, sel.Name.Value())
					if fieldDef == nil {
						break
					}
					args, err := values.ArgumentValues(fieldDef, sel, ctx.VariableValues())
					if err != nil {
						return nil, err
					}
					field := &flatField{
						ResponseKey: key,
						FieldDef:    fieldDef,
						FieldNodes:  []*ast.Field{sel},
						Args:        args,
					}
					byResponseKey[key] = field
					ordered = append(ordered, field)
				} else {
					if err := requireIdenticalSelections(existing.FieldNodes[0], sel); err != nil {
						return nil, err
					}
					existing.FieldNodes = append(existing.FieldNodes, sel)
				}

			case *ast.InlineFragment:
				if sel.HasTypeCondition() && !doesTypeConditionSatisfy(ctx, sel.TypeCondition, concreteType) {
					break
				}
				stack = append(stack, frame{set: sel.SelectionSet})
				interrupted = true

			case *ast.FragmentSpread:
				name := sel.Name.Value()
				if visitedFragmentNames[name] {
					break
				}
				visitedFragmentNames[name] = true

				fragmentDef := ctx.Operation().FragmentDef(name)
				if fragmentDef == nil {
					break
				}
				if !doesTypeConditionSatisfy(ctx, fragmentDef.TypeCondition, concreteType) {
					break
				}
				stack = append(stack, frame{set: fragmentDef.SelectionSet})
				interrupted = true
			}
		}
	}

	return ordered, nil
}

// requireIdenticalSelections enforces the duplicate-response-key conflict
// rule: a and b must agree, structurally and ignoring source locations, on
// both arguments and directives.
func requireIdenticalSelections(a, b *ast.Field) error {
	if ast.Print(a.Arguments) != ast.Print(b.Arguments) || ast.Print(a.Directives) != ast.Print(b.Directives) {
		return fmt.Errorf(
			"fields %q conflict because they have differing arguments or directives",
			a.ResponseKey())
	}
	return nil
}

// shouldIncludeSelection evaluates @skip/@include for one selection node.
// @skip takes precedence over @include.
func shouldIncludeSelection(ctx *ExecutionContext, node ast.Selection) (bool, error) {
	skip, err := values.DirectiveValues(graphql.SkipDirective(), node.GetDirectives(), ctx.VariableValues())
	if err != nil {
		return false, err
	}
	if v, _ := skip.Get("if").(bool); v {
		return false, nil
	}

	include, err := values.DirectiveValues(graphql.IncludeDirective(), node.GetDirectives(), ctx.VariableValues())
	if err != nil {
		return false, err
	}
	if v := include.Get("if"); v != nil {
		if included, _ := v.(bool); !included {
			return false, nil
		}
	}

	return true, nil
}

// findFieldDef resolves a field definition against a concrete object type,
// special-casing the three introspection meta-fields the way the spec's
// ExecuteSelectionSet algorithm does.
func findFieldDef(schema graphql.Schema, parentType graphql.Object, fieldName string) graphql.Field {
	switch fieldName {
	case graphql.TypenameMetaFieldName:
		return graphql.TypenameMetaFieldDef()
	case graphql.SchemaMetaFieldName:
		if schema.Query() == parentType {
			return graphql.SchemaMetaFieldDef()
		}
	case graphql.TypeMetaFieldName:
		if schema.Query() == parentType {
			return graphql.TypeMetaFieldDef()
		}
	}
	return parentType.Fields()[fieldName]
}

// doesTypeConditionSatisfy reports whether t is (or transitively implements,
// or is a member of) the type named by typeCondition.
func doesTypeConditionSatisfy(ctx *ExecutionContext, typeCondition ast.NamedType, t graphql.Object) bool {
	schema := ctx.Operation().Schema()

	conditionalType := schema.TypeFromAST(typeCondition)
	if conditionalType == t {
		return true
	}

	if abstractType, ok := conditionalType.(graphql.AbstractType); ok {
		return schema.PossibleTypes(abstractType).Contains(t)
	}

	return false
}
