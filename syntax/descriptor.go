// Copyright 2026 EngFlow Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package syntax holds the user-configured delimiter pairs that mark the
// boundaries of expression, block and comment constructs in a template
// source, and precomputes the longest-match-first search order the lexer
// needs to disambiguate overlapping delimiters (e.g. "{{" vs "{%").
package syntax

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/EngFlow/tmplkit/tmplerr"
)

// Construct identifies which of the three delimited constructs a delimiter
// pair belongs to.
type Construct int

const (
	ConstructExpr Construct = iota
	ConstructBlock
	ConstructComment
)

func (c Construct) String() string {
	switch c {
	case ConstructExpr:
		return "expression"
	case ConstructBlock:
		return "block"
	case ConstructComment:
		return "comment"
	default:
		return fmt.Sprintf("construct(%d)", int(c))
	}
}

// Delimiter is a pair of non-empty strings marking the open and close of a
// construct.
type Delimiter struct {
	Open, Close string
}

// BeginPattern is one entry of the precomputed, longest-match-first search
// table: at any source position, the lexer tries these in declared order
// and accepts the first whose Text matches, which resolves ambiguity
// between delimiters that share a prefix (like "{{" and "{%") and keeps
// tokenization linear. Grounded on the teacher's
// lexer.preprocessorDirectives table ("longer keywords listed first to
// ensure proper matching") and lexer.matchingResult.Less (earliest-
// starting, then longest, then lowest-priority wins).
type BeginPattern struct {
	Text      string
	Construct Construct
}

// Descriptor holds the three delimiter pairs and the precomputed
// begin-pattern search order. The zero Descriptor is not usable; build one
// with New or Default.
type Descriptor struct {
	expr, block, comment Delimiter
	begins               []BeginPattern
}

// Default returns the descriptor with the spec's default delimiters:
// "{{ }}" for expressions, "{% %}" for blocks, "{# #}" for comments.
func Default() Descriptor {
	return New().Expr("{{", "}}").Block("{%", "%}").Comment("{#", "#}")
}

// New returns an empty builder. Each of Expr/Block/Comment must be called
// before the descriptor is used by a lexer; an empty delimiter string at
// configuration time is a programmer error and panics immediately rather
// than surfacing as a render-time failure, per the spec's "fatal-config"
// error kind.
func New() Descriptor {
	return Descriptor{}
}

// Expr sets the expression delimiter pair, returning the descriptor for
// fluent chaining.
func (d Descriptor) Expr(open, close string) Descriptor {
	d.expr = requireNonEmpty(ConstructExpr, open, close)
	return d.rebuild()
}

// Block sets the block delimiter pair.
func (d Descriptor) Block(open, close string) Descriptor {
	d.block = requireNonEmpty(ConstructBlock, open, close)
	return d.rebuild()
}

// Comment sets the comment delimiter pair.
func (d Descriptor) Comment(open, close string) Descriptor {
	d.comment = requireNonEmpty(ConstructComment, open, close)
	return d.rebuild()
}

func requireNonEmpty(c Construct, open, close string) Delimiter {
	if open == "" || close == "" {
		tmplerr.Fatalf(tmplerr.EmptyDelimiter, "syntax: empty delimiter for %v construct", c)
	}
	return Delimiter{Open: open, Close: close}
}

// ExprDelim returns the configured expression delimiter pair.
func (d Descriptor) ExprDelim() Delimiter { return d.expr }

// BlockDelim returns the configured block delimiter pair.
func (d Descriptor) BlockDelim() Delimiter { return d.block }

// CommentDelim returns the configured comment delimiter pair.
func (d Descriptor) CommentDelim() Delimiter { return d.comment }

// EndDelim returns the closing delimiter text for the construct a begin
// pattern matched.
func (d Descriptor) EndDelim(c Construct) string {
	switch c {
	case ConstructExpr:
		return d.expr.Close
	case ConstructBlock:
		return d.block.Close
	case ConstructComment:
		return d.comment.Close
	default:
		panic(fmt.Sprintf("syntax: unknown construct %v", c))
	}
}

// BeginPatterns returns the precomputed begin-pattern search order: longest
// text first, ties broken by declaration order (expr, then block, then
// comment).
func (d Descriptor) BeginPatterns() []BeginPattern {
	return d.begins
}

// FindBegin scans data for the earliest-starting, longest begin-pattern
// match, per spec.md §4.1. It reports the matching pattern and the byte
// offset it starts at, or ok=false if none of the configured begin-patterns
// occur anywhere in data.
func (d Descriptor) FindBegin(data []byte) (pattern BeginPattern, offset int, ok bool) {
	bestOffset := -1
	for _, p := range d.begins {
		idx := bytes.Index(data, []byte(p.Text))
		if idx < 0 {
			continue
		}
		if bestOffset == -1 || idx < bestOffset {
			bestOffset = idx
			pattern = p
			ok = true
		}
		// Patterns are already sorted longest-first; among patterns that
		// start at the same earliest offset, the first one considered (the
		// longest) wins, so once bestOffset is set we only need a strictly
		// earlier match to overturn it.
	}
	return pattern, bestOffset, ok
}

func (d Descriptor) rebuild() Descriptor {
	begins := make([]BeginPattern, 0, 3)
	if d.expr.Open != "" {
		begins = append(begins, BeginPattern{Text: d.expr.Open, Construct: ConstructExpr})
	}
	if d.block.Open != "" {
		begins = append(begins, BeginPattern{Text: d.block.Open, Construct: ConstructBlock})
	}
	if d.comment.Open != "" {
		begins = append(begins, BeginPattern{Text: d.comment.Open, Construct: ConstructComment})
	}
	sort.SliceStable(begins, func(i, j int) bool {
		return len(begins[i].Text) > len(begins[j].Text)
	})
	d.begins = begins
	return d
}
