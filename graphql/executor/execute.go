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

// This file wires the scheduler (scheduler.go) to the three ways
// PreparedOperation.Execute may be asked to run: blocking the caller's own
// goroutine, running every root field's scheduler serially (mutations), or
// handing the whole thing to a concurrent.Executor (queries with a runner
// supplied). It also implements result assembly (§4.7): folding the
// scheduler's completed pieces into the response tree and deduping errors.
package executor

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/deferexec/graphql/concurrent"
	"github.com/deferexec/graphql/deferred"
	"github.com/deferexec/graphql/graphql"
	"github.com/deferexec/graphql/graphql/ast"
	"github.com/deferexec/graphql/jsonwriter"
)

// ExecutionResult contains the result from running an operation: the
// assembled response tree (nil if no top-level data was ever accumulated)
// and any errors collected along the way.
type ExecutionResult struct {
	Data   interface{}
	Errors graphql.Errors
}

// MarshalJSON implements json.Marshaler via jsonwriter, matching the way the
// rest of this module encodes responses (see graphql.Error.MarshalJSON).
func (result ExecutionResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	stream := jsonwriter.NewStream(&buf)
	if err := result.MarshalJSONTo(stream); err != nil {
		return nil, err
	}
	if err := stream.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), stream.Error()
}

// MarshalJSONTo implements jsonwriter.ValueMarshaler.
//
// Per the spec's Response Format note, "errors" is written before "data"
// when present so that it is the first thing a reader sees.
func (result ExecutionResult) MarshalJSONTo(stream *jsonwriter.Stream) error {
	stream.WriteObjectStart()

	if result.Errors.HaveOccurred() {
		stream.WriteObjectField("errors")
		stream.WriteInterface(result.Errors.Errors)
		stream.WriteMore()
	}

	stream.WriteObjectField("data")
	if result.Data == nil {
		stream.WriteNil()
	} else {
		stream.WriteInterface(result.Data)
	}

	stream.WriteObjectEnd()
	return nil
}

// An executor runs a prepared operation's ExecutionContext to completion and
// reports the result on the returned channel exactly once.
type executor interface {
	Run(execCtx *ExecutionContext) <-chan ExecutionResult
}

//===------------------------------------------------------------------------------------------===//
// Blocking executor: no concurrent.Executor supplied, so Execute's caller is
// already willing to block its own goroutine until the whole operation (every
// batch round-trip included) completes.
//===------------------------------------------------------------------------------------------===//

type blockingExecutor struct{}

func newBlockingExecutor() executor {
	return blockingExecutor{}
}

func (blockingExecutor) Run(execCtx *ExecutionContext) <-chan ExecutionResult {
	out := make(chan ExecutionResult, 1)
	out <- runRootFields(execCtx, selectedRootFields(execCtx), execCtx.RootValue())
	return out
}

//===------------------------------------------------------------------------------------------===//
// Parallel executor: a concurrent.Executor was supplied for a query or
// subscription. Root fields have no ordering requirement between each other
// (§5 "Between concurrent resolvers there are no ordering guarantees"), so
// the whole operation runs as a single submitted task; one scheduler drains
// every root field in the same passes, so their deferred values share batches.
//===------------------------------------------------------------------------------------------===//

type parallelExecutor struct {
	runner concurrent.Executor
}

func newParallelExecutor(runner concurrent.Executor) executor {
	return parallelExecutor{runner: runner}
}

func (e parallelExecutor) Run(execCtx *ExecutionContext) <-chan ExecutionResult {
	out := make(chan ExecutionResult, 1)
	_, err := e.runner.Submit(concurrent.TaskFunc(func() (interface{}, error) {
		out <- runRootFields(execCtx, selectedRootFields(execCtx), execCtx.RootValue())
		return nil, nil
	}))
	if err != nil {
		out <- ExecutionResult{Errors: graphql.ErrorsOf(fmt.Errorf("failed to submit execution: %w", err))}
	}
	return out
}

//===------------------------------------------------------------------------------------------===//
// Serial executor: a mutation runs its root fields one at a time, each to
// full quiescence (including every deferred batch it triggers) before the
// next root field's resolver is even invoked, per the GraphQL spec's
// "Mutation" execution algorithm. A fresh scheduler per root field keeps each
// field's batches independent of its siblings'.
//===------------------------------------------------------------------------------------------===//

type serialExecutor struct {
	runner concurrent.Executor
}

func newSerialExecutor(runner concurrent.Executor) executor {
	return serialExecutor{runner: runner}
}

func (e serialExecutor) Run(execCtx *ExecutionContext) <-chan ExecutionResult {
	out := make(chan ExecutionResult, 1)
	_, err := e.runner.Submit(concurrent.TaskFunc(func() (interface{}, error) {
		fields := selectedRootFields(execCtx)

		var (
			completed []completedPiece
			errs      graphql.Errors
		)
		for _, field := range fields {
			s := newScheduler(execCtx)
			s.seedRoot([]*flatField{field}, execCtx.RootValue())
			pieces, fieldErrs := s.run()
			completed = append(completed, pieces...)
			errs.AppendErrors(fieldErrs)
		}

		out <- assembleResult(completed, errs)
		return nil, nil
	}))
	if err != nil {
		out <- ExecutionResult{Errors: graphql.ErrorsOf(fmt.Errorf("failed to submit execution: %w", err))}
	}
	return out
}

//===------------------------------------------------------------------------------------------===//
// Shared helpers
//===------------------------------------------------------------------------------------------===//

// selectedRootFields flattens the operation's top-level selection set
// against its root type.
func selectedRootFields(execCtx *ExecutionContext) []*flatField {
	op := execCtx.Operation()
	fields, err := flattenSelectionSets(execCtx, []ast.SelectionSet{op.Definition().SelectionSet}, op.RootType())
	if err != nil {
		// Top-level selection conflicts are a document-shape error the caller's
		// validator should have already rejected; surface it rather than panic.
		return nil
	}
	return fields
}

// runRootFields seeds one scheduler with every root field together and
// drives it to quiescence. Used for queries/subscriptions, where root fields
// carry no relative ordering requirement and may share batches.
func runRootFields(execCtx *ExecutionContext, fields []*flatField, rootValue interface{}) ExecutionResult {
	s := newScheduler(execCtx)
	s.seedRoot(fields, rootValue)
	pieces, errs := s.run()
	return assembleResult(pieces, errs)
}

// assembleResult implements §4.7 Result Assembly & Error Policy: fold
// completed pieces into a mutable tree in creation order, then dedupe errors
// by structural (JSON) fingerprint, preserving order of first appearance.
func assembleResult(pieces []completedPiece, errs graphql.Errors) ExecutionResult {
	var data interface{}
	hasData := len(pieces) > 0

	for _, piece := range pieces {
		data = setAtPath(data, piece.path, piece.value)
	}

	return ExecutionResult{
		Data:   dataOrNil(data, hasData),
		Errors: dedupeErrors(errs),
	}
}

func dataOrNil(data interface{}, hasData bool) interface{} {
	if !hasData {
		return nil
	}
	return data
}

// setAtPath returns node with value installed at path, creating intermediate
// containers (map[string]interface{} for key segments, []interface{} for
// index segments) as needed. List indices may exceed the current length;
// intervening positions are filled with nil. A segment kind that conflicts
// with the container already present at that position is a programmer
// invariant violation and panics, per §4.7.
func setAtPath(node interface{}, path deferred.OutputPath, value interface{}) interface{} {
	if len(path) == 0 {
		return value
	}

	seg := path[0]
	switch seg.Kind {
	case deferred.SegmentKey:
		m, ok := node.(map[string]interface{})
		if !ok {
			if node != nil {
				panic(fmt.Sprintf("deferred: result assembly conflict: expected object at %q, found %T", seg.Key, node))
			}
			m = map[string]interface{}{}
		}
		m[seg.Key] = setAtPath(m[seg.Key], path[1:], value)
		return m

	case deferred.SegmentIndex:
		list, ok := node.([]interface{})
		if !ok {
			if node != nil {
				panic(fmt.Sprintf("deferred: result assembly conflict: expected list at index %d, found %T", seg.Index, node))
			}
			list = nil
		}
		for len(list) <= seg.Index {
			list = append(list, nil)
		}
		list[seg.Index] = setAtPath(list[seg.Index], path[1:], value)
		return list

	default:
		panic("deferred: output path must not carry a placeholder at result-assembly time")
	}
}

// dedupeErrors drops any error whose JSON fingerprint already appeared
// earlier in errs, preserving the order of first appearance.
func dedupeErrors(errs graphql.Errors) graphql.Errors {
	if len(errs.Errors) < 2 {
		return errs
	}

	seen := make(map[string]bool, len(errs.Errors))
	var out graphql.Errors
	for _, e := range errs.Errors {
		fingerprint, err := json.Marshal(e)
		key := string(fingerprint)
		if err != nil {
			// Unable to fingerprint; keep the error rather than silently drop it.
			out.Append(e)
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out.Append(e)
	}
	return out
}
