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

// Package parse builds an abstract syntax tree from a token stream via
// recursive descent, following the grammar of spec.md §4.3.
package parse

import (
	"github.com/EngFlow/tmplkit/source"
	"github.com/EngFlow/tmplkit/value"
)

// Node is one element of a template body: literal text, a printed
// expression, or a control construct.
type Node interface {
	Span() source.Span
}

// Raw is literal source text, emitted verbatim.
type Raw struct {
	SpanVal source.Span
	Text    string
}

func (n *Raw) Span() source.Span { return n.SpanVal }

// PathExpr is a dotted reference: a root variable name followed by zero or
// more key/index segments, some possibly reached via optional chaining.
type PathExpr struct {
	Root     string
	RootSpan source.Span
	Segments []value.Segment
	SpanVal  source.Span
}

func (p *PathExpr) Span() source.Span { return p.SpanVal }

// Arg is one argument to a filter: either a literal value or a path
// resolved at render time.
type Arg struct {
	Literal  *value.Value
	Path     *PathExpr
	SpanVal  source.Span
}

func (a Arg) Span() source.Span { return a.SpanVal }

// FilterCall is one "| name(:args)?" pipeline stage.
type FilterCall struct {
	Name     string
	NameSpan source.Span
	Args     []Arg
	SpanVal  source.Span
}

func (f FilterCall) Span() source.Span { return f.SpanVal }

// Expr is a path followed by a filter pipeline: "path (| filter)*". Used
// both as a standalone printed expression and as the condition/iterable/
// with-override sub-expression of control constructs.
type Expr struct {
	Path    *PathExpr
	Filters []FilterCall
	SpanVal source.Span
}

func (e *Expr) Span() source.Span { return e.SpanVal }

// ExprStmt is a "{{ expr }}" construct: print the expression's value.
type ExprStmt struct {
	Expr    *Expr
	SpanVal source.Span
}

func (n *ExprStmt) Span() source.Span { return n.SpanVal }

// IfBranch is one condition/body pair of an If statement. Cond is nil for
// the trailing else branch.
type IfBranch struct {
	Cond *Expr
	Body []Node
}

// If is a desugared if/elif*/else?/endif construct: every elif is lowered
// into a nested If occupying the else slot of its parent, so the renderer
// and compiler only ever see a single two-branch shape.
type If struct {
	Branches []IfBranch // len 1 (if) or 2 (if, else); a desugared elif lives in Branches[1].Body
	SpanVal  source.Span
}

func (n *If) Span() source.Span { return n.SpanVal }

// For is a "for x in expr" or "for k, x in expr" loop.
type For struct {
	VarA, VarB string // VarB == "" for the one-variable form
	Iter       *Expr
	Body       []Node
	SpanVal    source.Span
}

func (n *For) Span() source.Span { return n.SpanVal }

// Include is an "include "name" (with expr)?" construct. The referenced
// program is resolved at render time, not here, so forward references and
// mutual inclusion are allowed.
type Include struct {
	TemplateName string
	With         *Expr // nil if no "with" clause
	SpanVal      source.Span
}

func (n *Include) Span() source.Span { return n.SpanVal }
