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
	"context"

	"github.com/deferexec/graphql/deferred"
	"github.com/deferexec/graphql/graphql"
	"github.com/deferexec/graphql/graphql/ast"
)

// selectionNode is one position in the tree of flattened field selections
// being resolved. It plays the role the teacher's ExecutionNode played, minus
// the memoized per-runtime-type children cache: this executor flattens
// selections on demand as the scheduler discovers each concrete type, rather
// than pre-building a static execution tree.
type selectionNode struct {
	parent     *selectionNode
	fieldDef   graphql.Field
	fieldNodes []*ast.Field
	args       graphql.ArgumentValues
}

// childSelectionSets returns every selection set this node's field nodes
// contribute, for recursing one level deeper. Mirrors flatField's method of
// the same name (selection.go); a selectionNode is a flatField's runtime
// counterpart once it has been attached to the resolution tree.
func (n *selectionNode) childSelectionSets() []ast.SelectionSet {
	sets := make([]ast.SelectionSet, 0, len(n.fieldNodes))
	for _, node := range n.fieldNodes {
		if node.SelectionSet != nil {
			sets = append(sets, node.SelectionSet)
		}
	}
	return sets
}

// fieldSelectionInfo adapts selectionNode to graphql.FieldSelectionInfo.
type fieldSelectionInfo struct {
	node *selectionNode
}

var _ graphql.FieldSelectionInfo = fieldSelectionInfo{}

func (info fieldSelectionInfo) Parent() graphql.FieldSelectionInfo {
	if info.node == nil || info.node.parent == nil {
		return nil
	}
	return fieldSelectionInfo{info.node.parent}
}

func (info fieldSelectionInfo) FieldDefinitions() []*ast.Field {
	if info.node == nil {
		return nil
	}
	return info.node.fieldNodes
}

func (info fieldSelectionInfo) Field() graphql.Field {
	if info.node == nil {
		return nil
	}
	return info.node.fieldDef
}

func (info fieldSelectionInfo) Args() graphql.ArgumentValues {
	if info.node == nil {
		return graphql.NoArgumentValues()
	}
	return info.node.args
}

// resolveInfo implements graphql.ResolveInfo. One is built per resolve-drain
// task immediately before invoking the field's resolver.
type resolveInfo struct {
	executionCtx *ExecutionContext
	ctx          context.Context
	objectType   graphql.Object
	node         *selectionNode
	path         deferred.OutputPath
}

var _ graphql.ResolveInfo = (*resolveInfo)(nil)

func (info *resolveInfo) Schema() graphql.Schema {
	return info.executionCtx.Operation().Schema()
}

func (info *resolveInfo) Document() ast.Document {
	return info.executionCtx.Operation().Document()
}

func (info *resolveInfo) Operation() *ast.OperationDefinition {
	return info.executionCtx.Operation().Definition()
}

func (info *resolveInfo) DataLoaderManager() graphql.DataLoaderManager {
	return info.executionCtx.DataLoaderManager()
}

func (info *resolveInfo) RootValue() interface{} {
	return info.executionCtx.RootValue()
}

func (info *resolveInfo) AppContext() interface{} {
	return info.executionCtx.AppContext()
}

func (info *resolveInfo) VariableValues() graphql.VariableValues {
	return info.executionCtx.VariableValues()
}

func (info *resolveInfo) ParentFieldSelection() graphql.FieldSelectionInfo {
	if info.node == nil || info.node.parent == nil {
		return nil
	}
	return fieldSelectionInfo{info.node.parent}
}

func (info *resolveInfo) Object() graphql.Object {
	return info.objectType
}

func (info *resolveInfo) FieldDefinitions() []*ast.Field {
	return info.node.fieldNodes
}

func (info *resolveInfo) Field() graphql.Field {
	return info.node.fieldDef
}

// Path returns the response path of the field being resolved. Segments that
// are still SegmentPlaceholder (the field lives under a deferred list whose
// length is not yet known) are omitted from the tail, since
// graphql.ResponsePath has no placeholder representation; resolvers that
// genuinely need list position should await the materialized parent instead
// of relying on Path() while still deferred.
func (info *resolveInfo) Path() graphql.ResponsePath {
	path, ok := info.path.ToResponsePath()
	if ok {
		return path
	}
	var out graphql.ResponsePath
	for _, seg := range info.path {
		switch seg.Kind {
		case deferred.SegmentKey:
			out.AppendFieldName(seg.Key)
		case deferred.SegmentIndex:
			out.AppendIndex(seg.Index)
		default:
			return out
		}
	}
	return out
}

func (info *resolveInfo) Args() graphql.ArgumentValues {
	return info.node.args
}
