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

package compile

import (
	"fmt"

	"github.com/EngFlow/tmplkit/parse"
	"github.com/EngFlow/tmplkit/tmplerr"
)

// maxExprInstructions and maxBlockNesting are the compiler's own resource
// bounds (spec.md §4.4): a backstop against pathological inputs growing the
// instruction vector, independent of (and in addition to) the parser's own
// nesting and filter-chain-length guards.
const (
	maxExprInstructions = 128
	maxBlockNesting     = 64
)

// Compile lowers a parsed template body into a Program. template and src
// are carried through for error reporting.
func Compile(template, src string, nodes []parse.Node) (*Program, error) {
	c := &compiler{template: template, src: src}
	if err := c.compileNodes(nodes, 0); err != nil {
		return nil, err
	}
	prog := &Program{Name: template, Source: src, Instructions: c.prog}
	if err := verify(prog); err != nil {
		return nil, err
	}
	return prog, nil
}

type compiler struct {
	template string
	src      string
	prog     []Instruction
}

func (c *compiler) emit(instr Instruction) int {
	idx := len(c.prog)
	c.prog = append(c.prog, instr)
	return idx
}

func (c *compiler) here() int { return len(c.prog) }

func (c *compiler) errorf(kind tmplerr.Kind, n parse.Node, format string, args ...any) error {
	return tmplerr.New(kind, c.template, c.src, n.Span(), fmt.Sprintf(format, args...))
}

func (c *compiler) compileNodes(nodes []parse.Node, depth int) error {
	if depth > maxBlockNesting {
		if len(nodes) > 0 {
			return c.errorf(tmplerr.NestingTooDeep, nodes[0], "block nesting exceeds maximum of %d", maxBlockNesting)
		}
	}
	for _, n := range nodes {
		if err := c.compileNode(n, depth); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) compileNode(n parse.Node, depth int) error {
	switch node := n.(type) {
	case *parse.Raw:
		c.emit(Instruction{Op: OpEmitRaw, Span: node.SpanVal, Raw: node.Text})
		return nil

	case *parse.ExprStmt:
		return c.compileExprStmt(node)

	case *parse.If:
		return c.compileIf(node, depth)

	case *parse.For:
		return c.compileFor(node, depth)

	case *parse.Include:
		return c.compileInclude(node)

	default:
		tmplerr.Fatalf(tmplerr.NestingTooDeep, "compile: unhandled node type %T", n)
		return nil
	}
}

// compileValueExpr compiles a path followed by its full filter chain
// (every entry applied as a filter), leaving exactly one Value on the
// stack. Used for if-conditions, for-iterables and include-with
// expressions, where the pipeline's terminal entry is never eligible to be
// a formatter (that ambiguity only applies to a directly printed
// expression; see compileExprStmt).
func (c *compiler) compileValueExpr(e *parse.Expr) error {
	start := c.here()
	c.emit(Instruction{Op: OpPushValue, Span: e.Path.Span(), Path: e.Path})
	for _, f := range e.Filters {
		if err := c.compileArgs(f.Args); err != nil {
			return err
		}
		c.emit(Instruction{Op: OpApplyFilter, Span: f.Span(), Name: f.Name, Argc: len(f.Args)})
	}
	if c.here()-start > maxExprInstructions {
		return c.errorf(tmplerr.NestingTooDeep, e, "expression exceeds maximum instruction count of %d", maxExprInstructions)
	}
	return nil
}

func (c *compiler) compileArgs(args []parse.Arg) error {
	for _, arg := range args {
		if arg.Literal != nil {
			c.emit(Instruction{Op: OpPushLiteral, Span: arg.Span(), Literal: *arg.Literal})
		} else {
			c.emit(Instruction{Op: OpPushValue, Span: arg.Span(), Path: arg.Path})
		}
	}
	return nil
}

// compileExprStmt compiles a printed "{{ expr }}" construct. Every filter
// but the last is applied unconditionally (and must resolve as a filter at
// render time); the last is left for EMIT_EXPR to resolve dynamically as
// either a formatter or a filter.
func (c *compiler) compileExprStmt(n *parse.ExprStmt) error {
	e := n.Expr
	start := c.here()
	c.emit(Instruction{Op: OpPushValue, Span: e.Path.Span(), Path: e.Path})

	nonTerminal := e.Filters
	var terminal *parse.FilterCall
	if len(e.Filters) > 0 {
		nonTerminal = e.Filters[:len(e.Filters)-1]
		terminal = &e.Filters[len(e.Filters)-1]
	}
	for _, f := range nonTerminal {
		if err := c.compileArgs(f.Args); err != nil {
			return err
		}
		c.emit(Instruction{Op: OpApplyFilter, Span: f.Span(), Name: f.Name, Argc: len(f.Args)})
	}

	instr := Instruction{Op: OpEmitExpr, Span: n.SpanVal}
	if terminal != nil {
		if err := c.compileArgs(terminal.Args); err != nil {
			return err
		}
		instr.TerminalName = terminal.Name
		instr.TerminalArgc = len(terminal.Args)
	}
	c.emit(instr)

	if c.here()-start > maxExprInstructions {
		return c.errorf(tmplerr.NestingTooDeep, n, "expression exceeds maximum instruction count of %d", maxExprInstructions)
	}
	return nil
}

func (c *compiler) compileIf(n *parse.If, depth int) error {
	if err := c.compileValueExpr(n.Branches[0].Cond); err != nil {
		return err
	}
	c.emit(Instruction{Op: OpTestTruthy, Span: n.SpanVal})
	jumpElse := c.emit(Instruction{Op: OpJumpIfFalse, Span: n.SpanVal})

	if err := c.compileNodes(n.Branches[0].Body, depth+1); err != nil {
		return err
	}

	if len(n.Branches) > 1 {
		jumpEnd := c.emit(Instruction{Op: OpJump, Span: n.SpanVal})
		c.prog[jumpElse].Target = c.here()
		if err := c.compileNodes(n.Branches[1].Body, depth+1); err != nil {
			return err
		}
		c.prog[jumpEnd].Target = c.here()
	} else {
		c.prog[jumpElse].Target = c.here()
	}
	return nil
}

func (c *compiler) compileFor(n *parse.For, depth int) error {
	// FOR_BEGIN always resolves its iterable from the Path operand
	// directly (no filters). When the grammar's "in expr" carries a
	// filter chain, it is applied first via PUSH_VALUE/APPLY_FILTER, and
	// FOR_BEGIN's path is a synthetic root that the renderer resolves by
	// popping the value-stack top instead of a variable lookup, so
	// FOR_BEGIN's own resolution logic stays a single plain path lookup
	// either way.
	iterPath := n.Iter.Path
	if len(n.Iter.Filters) > 0 {
		if err := c.compileValueExpr(n.Iter); err != nil {
			return err
		}
		iterPath = &parse.PathExpr{Root: ForIterSyntheticRoot, SpanVal: n.Iter.Path.Span()}
	}

	beginIdx := c.emit(Instruction{
		Op: OpForBegin, Span: n.SpanVal,
		Path: iterPath, VarA: n.VarA, VarB: n.VarB,
	})

	bodyStart := c.here()
	if err := c.compileNodes(n.Body, depth+1); err != nil {
		return err
	}
	nextIdx := c.emit(Instruction{Op: OpForNext, Span: n.SpanVal, Target: bodyStart})

	end := c.here()
	c.prog[beginIdx].Target = end
	c.prog[nextIdx].Target2 = end
	return nil
}

// ForIterSyntheticRoot is the root name FOR_BEGIN recognizes as "pop the
// already-computed iterable off the value stack" rather than a scope
// lookup, used when the for-statement's iterable carries a filter chain.
// The render package special-cases this exact root when resolving a
// FOR_BEGIN path operand.
const ForIterSyntheticRoot = "\x00for-iter"

func (c *compiler) compileInclude(n *parse.Include) error {
	if n.With != nil {
		if err := c.compileValueExpr(n.With); err != nil {
			return err
		}
	}
	c.emit(Instruction{Op: OpInclude, Span: n.SpanVal, Name: n.TemplateName, HasWith: n.With != nil})
	return nil
}

// verify checks the compiled program's invariant that every jump
// instruction addresses a valid index (0..=len, where len denotes
// "program end"). A violation indicates a compiler bug, not a malformed
// template, so it is fatal rather than reported.
func verify(p *Program) error {
	n := len(p.Instructions)
	valid := func(target int) bool { return target >= 0 && target <= n }
	for i, instr := range p.Instructions {
		switch instr.Op {
		case OpJump, OpJumpIfFalse:
			if !valid(instr.Target) {
				tmplerr.Fatalf(tmplerr.NestingTooDeep, "compile: instruction %d (%s) has out-of-range jump target %d", i, instr.Op, instr.Target)
			}
		case OpForBegin:
			if !valid(instr.Target) {
				tmplerr.Fatalf(tmplerr.NestingTooDeep, "compile: instruction %d (%s) has out-of-range target %d", i, instr.Op, instr.Target)
			}
		case OpForNext:
			if !valid(instr.Target) || !valid(instr.Target2) {
				tmplerr.Fatalf(tmplerr.NestingTooDeep, "compile: instruction %d (%s) has out-of-range target", i, instr.Op)
			}
		}
	}
	return nil
}
