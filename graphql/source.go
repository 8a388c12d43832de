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

package graphql

import "github.com/deferexec/graphql/graphql/token"

// Source aliases token.Source so that the lexer, parser, and API consumers can all name GraphQL
// source text as graphql.Source without reaching into the token package directly. A token.Token
// keeps an internal back-pointer to the *token.Source it was lexed from, so this must stay a true
// alias rather than a wrapper type.
type Source = token.Source

// SourceConfig aliases token.SourceConfig.
type SourceConfig = token.SourceConfig

// SourceBody aliases token.SourceBody.
type SourceBody = token.SourceBody

// NewSource initializes a Source from config.
func NewSource(config *SourceConfig) *Source {
	return token.NewSource(config)
}
