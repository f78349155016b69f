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

package parse

import (
	"fmt"
	"strconv"

	"github.com/EngFlow/tmplkit/internal/collections"
	"github.com/EngFlow/tmplkit/lex"
	"github.com/EngFlow/tmplkit/source"
	"github.com/EngFlow/tmplkit/syntax"
	"github.com/EngFlow/tmplkit/tmplerr"
	"github.com/EngFlow/tmplkit/value"
)

// maxNestingDepth and maxFilterChainLen are the resource bounds of
// spec.md §5: they stop a pathological input (deeply nested if/for, or an
// absurdly long filter pipeline) from growing the AST and, downstream, the
// compiled instruction vector without limit.
const (
	maxNestingDepth   = 64
	maxFilterChainLen = 32
)

var blockTerminators = map[string]bool{"elif": true, "else": true, "endif": true, "endfor": true}

// Parse lexes and parses src into a template body. template is the name
// used in reported errors.
func Parse(template, src string, desc syntax.Descriptor, unicodeIdents bool) ([]Node, error) {
	toks, err := collectTokens(template, src, desc, unicodeIdents)
	if err != nil {
		return nil, err
	}
	p := &parser{template: template, src: src, toks: toks}
	nodes, err := p.parseBody(0)
	if err != nil {
		return nil, err
	}
	if !p.atEOF() {
		tok := p.peek()
		if tok.Type == lex.TokenBeginBlock && p.pos+1 < len(p.toks) && blockTerminators[p.toks[p.pos+1].Text] {
			return nil, p.errorf(tmplerr.UnbalancedBlock, tok.Span, "%q without matching opening construct", p.toks[p.pos+1].Text)
		}
		return nil, p.errorf(tmplerr.UnexpectedToken, tok.Span, "unexpected %s", describe(tok))
	}
	return nodes, nil
}

func collectTokens(template, src string, desc syntax.Descriptor, unicodeIdents bool) ([]lex.Token, error) {
	lx := lex.New(template, src, desc, unicodeIdents)
	var toks []lex.Token
	for {
		tok, err := lx.NextToken()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Type == lex.TokenEOF {
			return toks, nil
		}
	}
}

type parser struct {
	template string
	src      string
	toks     []lex.Token
	pos      int
}

func (p *parser) peek() lex.Token { return p.toks[p.pos] }

func (p *parser) next() lex.Token {
	tok := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) atEOF() bool { return p.peek().Type == lex.TokenEOF }

func (p *parser) expect(typ lex.TokenType) (lex.Token, error) {
	tok := p.peek()
	if tok.Type != typ {
		return lex.Token{}, p.errorf(tmplerr.UnexpectedToken, tok.Span, "expected %s, found %s", typ, describe(tok))
	}
	return p.next(), nil
}

func (p *parser) expectKeyword(text string) (lex.Token, error) {
	tok := p.peek()
	if tok.Type != lex.TokenKeyword || tok.Text != text {
		return lex.Token{}, p.errorf(tmplerr.UnexpectedToken, tok.Span, "expected %q, found %s", text, describe(tok))
	}
	return p.next(), nil
}

func describe(tok lex.Token) string {
	if tok.Type == lex.TokenEOF {
		return "end of template"
	}
	return fmt.Sprintf("%s %q", tok.Type, tok.Text)
}

func (p *parser) errorf(kind tmplerr.Kind, span source.Span, format string, args ...any) error {
	return tmplerr.New(kind, p.template, p.src, span, fmt.Sprintf(format, args...))
}

// parseBody parses nodes until EOF or a block-terminator keyword
// (elif/else/endif/endfor) is seen one token ahead, in which case it
// returns without consuming the terminator so the caller (parseIfTail /
// parseFor) can match it.
func (p *parser) parseBody(depth int) ([]Node, error) {
	var nodes []Node
	for {
		tok := p.peek()
		switch tok.Type {
		case lex.TokenEOF:
			return nodes, nil

		case lex.TokenRaw:
			p.next()
			if tok.Text != "" {
				nodes = append(nodes, &Raw{SpanVal: tok.Span, Text: tok.Text})
			}

		case lex.TokenBeginComment:
			p.next()
			if _, err := p.expect(lex.TokenEndComment); err != nil {
				return nil, err
			}

		case lex.TokenBeginExpr:
			node, err := p.parseExprStmt()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)

		case lex.TokenBeginBlock:
			if p.pos+1 < len(p.toks) && blockTerminators[p.toks[p.pos+1].Text] {
				return nodes, nil
			}
			node, err := p.parseBlockConstruct(depth)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)

		default:
			return nil, p.errorf(tmplerr.UnexpectedToken, tok.Span, "unexpected %s", describe(tok))
		}
	}
}

func (p *parser) parseExprStmt() (*ExprStmt, error) {
	begin, err := p.expect(lex.TokenBeginExpr)
	if err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	end, err := p.expect(lex.TokenEndExpr)
	if err != nil {
		return nil, err
	}
	return &ExprStmt{Expr: expr, SpanVal: begin.Span.Join(end.Span)}, nil
}

func (p *parser) parseBlockConstruct(depth int) (Node, error) {
	begin, err := p.expect(lex.TokenBeginBlock)
	if err != nil {
		return nil, err
	}
	kw := p.peek()
	switch kw.Text {
	case "if":
		return p.parseIf(begin.Span, depth)
	case "for":
		return p.parseFor(begin.Span, depth)
	case "include":
		return p.parseInclude(begin.Span)
	default:
		return nil, p.errorf(tmplerr.UnknownKeywordInContext, kw.Span, "unexpected %s inside block", describe(kw))
	}
}

func (p *parser) checkDepth(depth int, span source.Span) error {
	if depth+1 > maxNestingDepth {
		return p.errorf(tmplerr.NestingTooDeep, span, "block nesting exceeds maximum of %d", maxNestingDepth)
	}
	return nil
}

func (p *parser) parseIf(beginSpan source.Span, depth int) (*If, error) {
	if err := p.checkDepth(depth, beginSpan); err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("if"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lex.TokenEndBlock); err != nil {
		return nil, err
	}
	body, err := p.parseBody(depth + 1)
	if err != nil {
		return nil, err
	}
	node := &If{SpanVal: beginSpan, Branches: []IfBranch{{Cond: cond, Body: body}}}
	return p.parseIfTail(node, depth)
}

// parseIfTail parses the remainder of an if/elif*/else?/endif sequence.
// elif is desugared here: it becomes a nested *If stored as the sole node
// of the parent's else-branch body, per spec.md §4.3.
func (p *parser) parseIfTail(node *If, depth int) (*If, error) {
	begin, err := p.expect(lex.TokenBeginBlock)
	if err != nil {
		return nil, err
	}
	kw := p.peek()
	switch kw.Text {
	case "elif":
		p.next()
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lex.TokenEndBlock); err != nil {
			return nil, err
		}
		body, err := p.parseBody(depth + 1)
		if err != nil {
			return nil, err
		}
		nested := &If{SpanVal: begin.Span, Branches: []IfBranch{{Cond: cond, Body: body}}}
		nested, err = p.parseIfTail(nested, depth)
		if err != nil {
			return nil, err
		}
		node.Branches = append(node.Branches, IfBranch{Cond: nil, Body: []Node{nested}})
		node.SpanVal = node.SpanVal.Join(nested.SpanVal)
		return node, nil

	case "else":
		p.next()
		if _, err := p.expect(lex.TokenEndBlock); err != nil {
			return nil, err
		}
		body, err := p.parseBody(depth + 1)
		if err != nil {
			return nil, err
		}
		node.Branches = append(node.Branches, IfBranch{Cond: nil, Body: body})
		endSpan, err := p.consumeClosing("endif")
		if err != nil {
			return nil, err
		}
		node.SpanVal = node.SpanVal.Join(endSpan)
		return node, nil

	case "endif":
		p.next()
		end, err := p.expect(lex.TokenEndBlock)
		if err != nil {
			return nil, err
		}
		node.SpanVal = node.SpanVal.Join(end.Span)
		return node, nil

	default:
		return nil, p.errorf(tmplerr.UnbalancedBlock, kw.Span, "expected \"elif\", \"else\" or \"endif\", found %s", describe(kw))
	}
}

// consumeClosing expects "{% <keyword> %}" and returns its span.
func (p *parser) consumeClosing(keyword string) (source.Span, error) {
	if _, err := p.expect(lex.TokenBeginBlock); err != nil {
		return source.Span{}, err
	}
	if _, err := p.expectKeyword(keyword); err != nil {
		return source.Span{}, err
	}
	end, err := p.expect(lex.TokenEndBlock)
	if err != nil {
		return source.Span{}, err
	}
	return end.Span, nil
}

func (p *parser) parseFor(beginSpan source.Span, depth int) (*For, error) {
	if err := p.checkDepth(depth, beginSpan); err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("for"); err != nil {
		return nil, err
	}
	varA, err := p.expectIdentText()
	if err != nil {
		return nil, err
	}
	var varB string
	if p.peek().Type == lex.TokenComma {
		p.next()
		varB, err = p.expectIdentText()
		if err != nil {
			return nil, err
		}
		if dup := collections.FindDuplicates([]string{varA, varB}); len(dup) > 0 {
			return nil, p.errorf(tmplerr.DuplicateLoopVariable, beginSpan, "duplicate loop variable %q", dup[0])
		}
	}
	if _, err := p.expectKeyword("in"); err != nil {
		return nil, err
	}
	iter, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lex.TokenEndBlock); err != nil {
		return nil, err
	}
	body, err := p.parseBody(depth + 1)
	if err != nil {
		return nil, err
	}
	endSpan, err := p.consumeClosing("endfor")
	if err != nil {
		return nil, err
	}
	return &For{VarA: varA, VarB: varB, Iter: iter, Body: body, SpanVal: beginSpan.Join(endSpan)}, nil
}

func (p *parser) parseInclude(beginSpan source.Span) (*Include, error) {
	if _, err := p.expectKeyword("include"); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(lex.TokenString)
	if err != nil {
		return nil, err
	}
	var with *Expr
	if p.peek().Type == lex.TokenKeyword && p.peek().Text == "with" {
		p.next()
		with, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	end, err := p.expect(lex.TokenEndBlock)
	if err != nil {
		return nil, err
	}
	return &Include{TemplateName: nameTok.Value, With: with, SpanVal: beginSpan.Join(end.Span)}, nil
}

func (p *parser) expectIdentText() (string, error) {
	tok, err := p.expect(lex.TokenIdent)
	if err != nil {
		return "", err
	}
	return tok.Text, nil
}

// parseExpr parses "path ( '|' ident filter_args? )*".
func (p *parser) parseExpr() (*Expr, error) {
	path, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	expr := &Expr{Path: path, SpanVal: path.Span()}
	for p.peek().Type == lex.TokenPipe {
		p.next()
		nameTok, err := p.expect(lex.TokenIdent)
		if err != nil {
			return nil, err
		}
		fc := FilterCall{Name: nameTok.Text, NameSpan: nameTok.Span, SpanVal: nameTok.Span}
		if p.peek().Type == lex.TokenColon {
			p.next()
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			fc.Args = args
			fc.SpanVal = fc.SpanVal.Join(args[len(args)-1].Span())
		}
		if len(expr.Filters)+1 > maxFilterChainLen {
			return nil, p.errorf(tmplerr.NestingTooDeep, fc.SpanVal, "filter chain exceeds maximum length of %d", maxFilterChainLen)
		}
		expr.Filters = append(expr.Filters, fc)
		expr.SpanVal = expr.SpanVal.Join(fc.SpanVal)
	}
	return expr, nil
}

func (p *parser) parseArgs() ([]Arg, error) {
	arg, err := p.parseArg()
	if err != nil {
		return nil, err
	}
	args := []Arg{arg}
	for p.peek().Type == lex.TokenComma {
		p.next()
		arg, err := p.parseArg()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return args, nil
}

func (p *parser) parseArg() (Arg, error) {
	tok := p.peek()
	switch tok.Type {
	case lex.TokenInteger:
		p.next()
		n, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return Arg{}, p.errorf(tmplerr.InvalidNumber, tok.Span, "invalid integer literal %q", tok.Text)
		}
		v := value.Int(n)
		return Arg{Literal: &v, SpanVal: tok.Span}, nil

	case lex.TokenFloat:
		p.next()
		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return Arg{}, p.errorf(tmplerr.InvalidNumber, tok.Span, "invalid float literal %q", tok.Text)
		}
		v := value.Float(f)
		return Arg{Literal: &v, SpanVal: tok.Span}, nil

	case lex.TokenString:
		p.next()
		v := value.String(tok.Value)
		return Arg{Literal: &v, SpanVal: tok.Span}, nil

	case lex.TokenKeyword:
		switch tok.Text {
		case "true":
			p.next()
			v := value.Bool(true)
			return Arg{Literal: &v, SpanVal: tok.Span}, nil
		case "false":
			p.next()
			v := value.Bool(false)
			return Arg{Literal: &v, SpanVal: tok.Span}, nil
		}
		return Arg{}, p.errorf(tmplerr.UnexpectedToken, tok.Span, "expected literal or path, found %s", describe(tok))

	case lex.TokenIdent:
		path, err := p.parsePath()
		if err != nil {
			return Arg{}, err
		}
		return Arg{Path: path, SpanVal: path.Span()}, nil

	default:
		return Arg{}, p.errorf(tmplerr.UnexpectedToken, tok.Span, "expected literal or path, found %s", describe(tok))
	}
}

// parsePath parses "ident ( ('.' | '?.') (ident | integer) )*".
func (p *parser) parsePath() (*PathExpr, error) {
	root, err := p.expect(lex.TokenIdent)
	if err != nil {
		return nil, err
	}
	path := &PathExpr{Root: root.Text, RootSpan: root.Span, SpanVal: root.Span}
	for p.peek().Type == lex.TokenDot || p.peek().Type == lex.TokenOptDot {
		optional := p.peek().Type == lex.TokenOptDot
		p.next()
		segTok := p.peek()
		var seg value.Segment
		switch segTok.Type {
		case lex.TokenIdent:
			p.next()
			if optional {
				seg = value.KeyOptional(segTok.Text)
			} else {
				seg = value.Key(segTok.Text)
			}
		case lex.TokenInteger:
			p.next()
			n, err := strconv.Atoi(segTok.Text)
			if err != nil {
				return nil, p.errorf(tmplerr.InvalidNumber, segTok.Span, "invalid integer path segment %q", segTok.Text)
			}
			if optional {
				seg = value.IndexOptional(n)
			} else {
				seg = value.Index(n)
			}
		default:
			return nil, p.errorf(tmplerr.UnexpectedToken, segTok.Span, "expected identifier or integer after '.', found %s", describe(segTok))
		}
		path.Segments = append(path.Segments, seg)
		path.SpanVal = path.SpanVal.Join(segTok.Span)
	}
	return path, nil
}
