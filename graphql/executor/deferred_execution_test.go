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

// This file exercises the scheduler (scheduler.go) and the path-expand engine it drives
// (deferred/expand.go) end-to-end through a resolver-level *memory.Backend, covering every
// scenario the deferred-execution design calls out by name: a plain literal, a deferred leaf, a
// deferred non-null field that resolves to null, a deferred list of deferred objects, a
// wrapped-await restage resolved by the same single batch, and abstract-type dispatch over a
// deferred array.
package executor_test

import (
	"context"

	"github.com/deferexec/graphql/deferred"
	"github.com/deferexec/graphql/deferred/memory"
	"github.com/deferexec/graphql/graphql"
	"github.com/deferexec/graphql/graphql/executor"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// countingBackend wraps a *memory.Backend and counts how many times ResolveDeferred is invoked,
// so a test can assert on round-trip cardinality without the backend itself knowing it's being
// measured.
type countingBackend struct {
	*memory.Backend
	batchCalls int
}

func newCountingBackend(root interface{}) *countingBackend {
	return &countingBackend{Backend: memory.New(root)}
}

func (b *countingBackend) ResolveDeferred(batch []deferred.BatchEntry, args deferred.ExecutionArgs) ([]interface{}, error) {
	b.batchCalls++
	return b.Backend.ResolveDeferred(batch, args)
}

func fieldResolver(fn func(ctx context.Context, source interface{}, info graphql.ResolveInfo) (interface{}, error)) graphql.FieldResolver {
	return graphql.FieldResolverFunc(fn)
}

var _ = Describe("Scheduler/path-expand integration", func() {
	var backend *countingBackend

	Describe("a plain literal field", func() {
		It("resolves without ever touching the backend", func() {
			backend = newCountingBackend(nil)

			schema := graphql.MustNewSchema(&graphql.SchemaConfig{
				Query: graphql.MustNewObject(&graphql.ObjectConfig{
					Name: "Query",
					Fields: graphql.Fields{
						"greeting": {
							Type: graphql.T(graphql.String()),
							Resolver: fieldResolver(func(ctx context.Context, source interface{}, info graphql.ResolveInfo) (interface{}, error) {
								return "hello", nil
							}),
						},
					},
				}),
			})

			operation, errs := executor.Prepare(executor.PrepareParams{Schema: schema, Document: mustParse("{ greeting }")})
			Expect(errs.HaveOccurred()).Should(BeFalse())

			result := operation.Execute(context.Background(), executor.ExecuteParams{Backend: backend})
			Eventually(result).Should(MatchResultInJSON(`{"data":{"greeting":"hello"}}`))
			Expect(backend.batchCalls).Should(Equal(0))
		})
	})

	Describe("a deferred leaf field", func() {
		It("resolves through exactly one batch round-trip", func() {
			backend = newCountingBackend(map[string]interface{}{"greeting": "hola"})

			schema := graphql.MustNewSchema(&graphql.SchemaConfig{
				Query: graphql.MustNewObject(&graphql.ObjectConfig{
					Name: "Query",
					Fields: graphql.Fields{
						"greeting": {
							Type: graphql.T(graphql.String()),
							Resolver: fieldResolver(func(ctx context.Context, source interface{}, info graphql.ResolveInfo) (interface{}, error) {
								return backend.WrapExpr(memory.Project{Base: backend.Root(), Name: "greeting"}), nil
							}),
						},
					},
				}),
			})

			operation, errs := executor.Prepare(executor.PrepareParams{Schema: schema, Document: mustParse("{ greeting }")})
			Expect(errs.HaveOccurred()).Should(BeFalse())

			result := operation.Execute(context.Background(), executor.ExecuteParams{Backend: backend})
			Eventually(result).Should(MatchResultInJSON(`{"data":{"greeting":"hola"}}`))
			Expect(backend.batchCalls).Should(Equal(1))
		})
	})

	Describe("a deferred non-null field that resolves to null", func() {
		It("reports a null-propagation error rather than a null leaf", func() {
			backend = newCountingBackend(map[string]interface{}{})

			schema := graphql.MustNewSchema(&graphql.SchemaConfig{
				Query: graphql.MustNewObject(&graphql.ObjectConfig{
					Name: "Query",
					Fields: graphql.Fields{
						"greeting": {
							Type: graphql.T(graphql.NonNullOf(graphql.T(graphql.String()))),
							Resolver: fieldResolver(func(ctx context.Context, source interface{}, info graphql.ResolveInfo) (interface{}, error) {
								return backend.WrapExpr(memory.Project{Base: backend.Root(), Name: "greeting"}), nil
							}),
						},
					},
				}),
			})

			operation, errs := executor.Prepare(executor.PrepareParams{Schema: schema, Document: mustParse("{ greeting }")})
			Expect(errs.HaveOccurred()).Should(BeFalse())

			result := operation.Execute(context.Background(), executor.ExecuteParams{Backend: backend})
			var received executor.ExecutionResult
			Eventually(result).Should(Receive(&received))
			Expect(received.Data).Should(BeNil())
			Expect(received.Errors.HaveOccurred()).Should(BeTrue())
			Expect(backend.batchCalls).Should(Equal(1))
		})
	})

	Describe("a deferred list of deferred objects", func() {
		It("fans out one batch entry's placeholder into a concrete index per element", func() {
			backend = newCountingBackend(map[string]interface{}{
				"users": []interface{}{
					map[string]interface{}{"name": "ada"},
					map[string]interface{}{"name": "grace"},
				},
			})

			// Under ExpandChildren, a child field's source is already the per-element
			// projection of its own response key (Project{ElemRef, "name"}), so the
			// correct resolver just threads it straight through.
			userType := graphql.MustNewObject(&graphql.ObjectConfig{
				Name: "User",
				Fields: graphql.Fields{
					"name": {
						Type: graphql.T(graphql.String()),
						Resolver: fieldResolver(func(ctx context.Context, source interface{}, info graphql.ResolveInfo) (interface{}, error) {
							return source, nil
						}),
					},
				},
			})

			schema := graphql.MustNewSchema(&graphql.SchemaConfig{
				Query: graphql.MustNewObject(&graphql.ObjectConfig{
					Name: "Query",
					Fields: graphql.Fields{
						"users": {
							Type: graphql.T(graphql.MustNewListOf(graphql.T(userType))),
							Resolver: fieldResolver(func(ctx context.Context, source interface{}, info graphql.ResolveInfo) (interface{}, error) {
								return backend.WrapExpr(memory.Project{Base: backend.Root(), Name: "users"}), nil
							}),
						},
					},
				}),
			})

			operation, errs := executor.Prepare(executor.PrepareParams{Schema: schema, Document: mustParse("{ users { name } }")})
			Expect(errs.HaveOccurred()).Should(BeFalse())

			result := operation.Execute(context.Background(), executor.ExecuteParams{Backend: backend})
			Eventually(result).Should(MatchResultInJSON(`{"data":{"users":[{"name":"ada"},{"name":"grace"}]}}`))
			Expect(backend.batchCalls).Should(Equal(1))
		})

		It("reports an empty list rather than fanning out when the deferred list is empty", func() {
			backend = newCountingBackend(map[string]interface{}{"users": []interface{}{}})

			userType := graphql.MustNewObject(&graphql.ObjectConfig{
				Name: "User",
				Fields: graphql.Fields{
					"name": {
						Type: graphql.T(graphql.String()),
						Resolver: fieldResolver(func(ctx context.Context, source interface{}, info graphql.ResolveInfo) (interface{}, error) {
							return source, nil
						}),
					},
				},
			})

			schema := graphql.MustNewSchema(&graphql.SchemaConfig{
				Query: graphql.MustNewObject(&graphql.ObjectConfig{
					Name: "Query",
					Fields: graphql.Fields{
						"users": {
							Type: graphql.T(graphql.MustNewListOf(graphql.T(userType))),
							Resolver: fieldResolver(func(ctx context.Context, source interface{}, info graphql.ResolveInfo) (interface{}, error) {
								return backend.WrapExpr(memory.Project{Base: backend.Root(), Name: "users"}), nil
							}),
						},
					},
				}),
			})

			operation, errs := executor.Prepare(executor.PrepareParams{Schema: schema, Document: mustParse("{ users { name } }")})
			Expect(errs.HaveOccurred()).Should(BeFalse())

			result := operation.Execute(context.Background(), executor.ExecuteParams{Backend: backend})
			Eventually(result).Should(MatchResultInJSON(`{"data":{"users":[]}}`))
		})
	})

	Describe("a resolver that awaits its own deferred source", func() {
		It("restages the field and the batch still resolves it in one round-trip", func() {
			backend = newCountingBackend(map[string]interface{}{
				"users": []interface{}{
					map[string]interface{}{"name": "ada"},
					map[string]interface{}{"name": "grace"},
				},
			})

			// Calling Await explicitly always reports deferred.ErrNextStage the first
			// time a field resolver runs, since nothing has reached a batch yet at that
			// point in the scheduling pass. resolveOne turns that into a restage rather
			// than a resolver failure, and the restaged field resolves once the single
			// accumulated batch comes back — Await never needs a second round-trip of
			// its own here because the expression it names was already queued.
			userType := graphql.MustNewObject(&graphql.ObjectConfig{
				Name: "User",
				Fields: graphql.Fields{
					"name": {
						Type: graphql.T(graphql.String()),
						Resolver: fieldResolver(func(ctx context.Context, source interface{}, info graphql.ResolveInfo) (interface{}, error) {
							return memory.Await(source)
						}),
					},
				},
			})

			schema := graphql.MustNewSchema(&graphql.SchemaConfig{
				Query: graphql.MustNewObject(&graphql.ObjectConfig{
					Name: "Query",
					Fields: graphql.Fields{
						"users": {
							Type: graphql.T(graphql.MustNewListOf(graphql.T(userType))),
							Resolver: fieldResolver(func(ctx context.Context, source interface{}, info graphql.ResolveInfo) (interface{}, error) {
								return backend.WrapExpr(memory.Project{Base: backend.Root(), Name: "users"}), nil
							}),
						},
					},
				}),
			})

			operation, errs := executor.Prepare(executor.PrepareParams{Schema: schema, Document: mustParse("{ users { name } }")})
			Expect(errs.HaveOccurred()).Should(BeFalse())

			result := operation.Execute(context.Background(), executor.ExecuteParams{Backend: backend})
			Eventually(result).Should(MatchResultInJSON(`{"data":{"users":[{"name":"ada"},{"name":"grace"}]}}`))
			Expect(backend.batchCalls).Should(Equal(1))
		})
	})

	Describe("abstract-type dispatch over a deferred array", func() {
		It("dispatches each element of a deferred list to its concrete type", func() {
			backend = newCountingBackend(map[string]interface{}{
				"pets": []interface{}{
					map[string]interface{}{"__typename": "Cat", "meow": true},
					map[string]interface{}{"__typename": "Dog", "bark": true},
				},
			})

			// Unlike ExpandChildren's per-field projection, ExpandAbstractType hands
			// every selected field the whole per-candidate object (an ElemRef
			// proxy), so each field resolver projects itself off of it.
			catType := &graphql.ObjectConfig{
				Name: "Cat",
				Fields: graphql.Fields{
					"meow": {
						Type: graphql.T(graphql.Boolean()),
						Resolver: fieldResolver(func(ctx context.Context, source interface{}, info graphql.ResolveInfo) (interface{}, error) {
							return memory.FieldOf(source, "meow"), nil
						}),
					},
				},
			}
			dogType := &graphql.ObjectConfig{
				Name: "Dog",
				Fields: graphql.Fields{
					"bark": {
						Type: graphql.T(graphql.Boolean()),
						Resolver: fieldResolver(func(ctx context.Context, source interface{}, info graphql.ResolveInfo) (interface{}, error) {
							return memory.FieldOf(source, "bark"), nil
						}),
					},
				},
			}
			petUnion := graphql.MustNewUnion(&graphql.UnionConfig{
				Name:          "Pet",
				PossibleTypes: []graphql.ObjectTypeDefinition{catType, dogType},
			})

			schema := graphql.MustNewSchema(&graphql.SchemaConfig{
				Query: graphql.MustNewObject(&graphql.ObjectConfig{
					Name: "Query",
					Fields: graphql.Fields{
						"pets": {
							Type: graphql.T(graphql.MustNewListOfType(petUnion)),
							Resolver: fieldResolver(func(ctx context.Context, source interface{}, info graphql.ResolveInfo) (interface{}, error) {
								return backend.WrapExpr(memory.Project{Base: backend.Root(), Name: "pets"}), nil
							}),
						},
					},
				}),
			})

			// A single field per candidate keeps each candidate's dispatch.ByType
			// branch written by exactly one SetDeferred call; __typename itself is
			// read straight back off the base materialized element regardless.
			query := `{
				pets {
					... on Cat { meow }
					... on Dog { bark }
				}
			}`
			operation, errs := executor.Prepare(executor.PrepareParams{Schema: schema, Document: mustParse(query)})
			Expect(errs.HaveOccurred()).Should(BeFalse())

			result := operation.Execute(context.Background(), executor.ExecuteParams{Backend: backend})
			Eventually(result).Should(MatchResultInJSON(`{
				"data": {
					"pets": [
						{"meow": true},
						{"bark": true}
					]
				}
			}`))
			Expect(backend.batchCalls).Should(Equal(1))
		})
	})

	Describe("selection-dedupe idempotence", func() {
		It("merges two fragments selecting the same field without duplicating resolver work", func() {
			backend = newCountingBackend(map[string]interface{}{"greeting": "hi"})
			calls := 0

			schema := graphql.MustNewSchema(&graphql.SchemaConfig{
				Query: graphql.MustNewObject(&graphql.ObjectConfig{
					Name: "Query",
					Fields: graphql.Fields{
						"greeting": {
							Type: graphql.T(graphql.String()),
							Resolver: fieldResolver(func(ctx context.Context, source interface{}, info graphql.ResolveInfo) (interface{}, error) {
								calls++
								return backend.WrapExpr(memory.Project{Base: backend.Root(), Name: "greeting"}), nil
							}),
						},
					},
				}),
			})

			query := `{
				... on Query { greeting }
				... on Query { greeting }
			}`
			operation, errs := executor.Prepare(executor.PrepareParams{Schema: schema, Document: mustParse(query)})
			Expect(errs.HaveOccurred()).Should(BeFalse())

			result := operation.Execute(context.Background(), executor.ExecuteParams{Backend: backend})
			Eventually(result).Should(MatchResultInJSON(`{"data":{"greeting":"hi"}}`))
			Expect(calls).Should(Equal(1))
			Expect(backend.batchCalls).Should(Equal(1))
		})
	})
})
