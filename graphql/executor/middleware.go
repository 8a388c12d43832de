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
	"github.com/deferexec/graphql/deferred"
	"github.com/deferexec/graphql/graphql"
)

// This file implements the four middleware injection points: the getter that
// picks a field's resolver, the getter that picks an abstract type's type
// resolver, the getter that picks a leaf's result serializer, and the call
// that resolves one batch of deferred values. Each point is a plain function
// type plus a "next -> next'" decorator type over it; composition is a
// right-fold, so the rightmost middleware in a slice wraps the base-case
// getter first and every middleware to its left wraps that result in turn.

// FieldResolverGetter returns the resolver to invoke for a field.
type FieldResolverGetter func(def graphql.Field) graphql.FieldResolver

// FieldResolverMiddleware decorates a FieldResolverGetter.
type FieldResolverMiddleware func(next FieldResolverGetter) FieldResolverGetter

// TypeResolverGetter returns the type resolver for resolving the concrete
// type of a value of abstract type t.
type TypeResolverGetter func(t graphql.AbstractType) graphql.TypeResolver

// TypeResolverMiddleware decorates a TypeResolverGetter.
type TypeResolverMiddleware func(next TypeResolverGetter) TypeResolverGetter

// Serializer coerces a materialized leaf value into its response
// representation; it is the same shape as graphql.LeafType.CoerceResultValue.
type Serializer func(value interface{}) (interface{}, error)

// SerializerGetter returns the serializer to apply to values of leaf type t.
type SerializerGetter func(t graphql.LeafType) Serializer

// SerializerMiddleware decorates a SerializerGetter.
type SerializerMiddleware func(next SerializerGetter) SerializerGetter

// ResolveDeferredFunc matches deferred.Backend.ResolveDeferred's signature:
// it submits one combined batch and returns one result per entry.
type ResolveDeferredFunc func(batch []deferred.BatchEntry, args deferred.ExecutionArgs) ([]interface{}, error)

// ResolveDeferredMiddleware decorates a ResolveDeferredFunc.
type ResolveDeferredMiddleware func(next ResolveDeferredFunc) ResolveDeferredFunc

// MiddlewareBundle groups the default middlewares an executor applies at
// each injection point. A nil bundle (or nil field within one) behaves as
// "no middleware at this point."
type MiddlewareBundle struct {
	FieldResolver    []FieldResolverMiddleware
	TypeResolver     []TypeResolverMiddleware
	Serializer       []SerializerMiddleware
	ResolveDeferred  []ResolveDeferredMiddleware
}

// merge returns the combined middleware bundle to use for one execution:
// per-call middlewares run outermost relative to the executor's defaults, so
// they are placed first in each composed slice.
func (b MiddlewareBundle) merge(perCall MiddlewareBundle) MiddlewareBundle {
	return MiddlewareBundle{
		FieldResolver:   append(append([]FieldResolverMiddleware{}, perCall.FieldResolver...), b.FieldResolver...),
		TypeResolver:    append(append([]TypeResolverMiddleware{}, perCall.TypeResolver...), b.TypeResolver...),
		Serializer:      append(append([]SerializerMiddleware{}, perCall.Serializer...), b.Serializer...),
		ResolveDeferred: append(append([]ResolveDeferredMiddleware{}, perCall.ResolveDeferred...), b.ResolveDeferred...),
	}
}

func composeFieldResolverGetter(base FieldResolverGetter, middlewares []FieldResolverMiddleware) FieldResolverGetter {
	getter := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		getter = middlewares[i](getter)
	}
	return getter
}

func composeTypeResolverGetter(base TypeResolverGetter, middlewares []TypeResolverMiddleware) TypeResolverGetter {
	getter := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		getter = middlewares[i](getter)
	}
	return getter
}

func composeSerializerGetter(base SerializerGetter, middlewares []SerializerMiddleware) SerializerGetter {
	getter := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		getter = middlewares[i](getter)
	}
	return getter
}

func composeResolveDeferredFunc(base ResolveDeferredFunc, middlewares []ResolveDeferredMiddleware) ResolveDeferredFunc {
	fn := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		fn = middlewares[i](fn)
	}
	return fn
}
