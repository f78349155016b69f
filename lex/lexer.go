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

package lex

import (
	"fmt"
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/EngFlow/tmplkit/source"
	"github.com/EngFlow/tmplkit/syntax"
	"github.com/EngFlow/tmplkit/tmplerr"
)

type lexerState int

const (
	stateRaw lexerState = iota
	stateConstruct        // inside an expr or block construct, tokenizing content
	stateComment          // inside a comment construct, skipping to its close
)

// Lexer is a state-sensitive tokenizer: Raw state scans literal text for the
// next begin-pattern, Construct state tokenizes expression/block interiors,
// and Comment state discards everything up to the matching close delimiter.
// Grounded on the teacher's lexer.Lexer: a mutable cursor over the
// remaining input, a consume helper that advances it, and a NextToken /
// AllTokens pair (the latter an iter.Seq, per the teacher's AllTokens).
type Lexer struct {
	template string // template name, for error reporting only
	src      string // full source, for span slicing and error context
	data     []byte // remaining unconsumed bytes
	offset   int    // byte offset of data[0] within src

	desc          syntax.Descriptor
	unicodeIdents bool

	state     lexerState
	construct syntax.Construct // valid when state != stateRaw

	// insidePath is the lexer's "inside-path" sub-state: true immediately
	// after an identifier or a "."/"?." token, cleared after any other
	// token. It forbids a numeric literal from consuming a fractional part,
	// so "a.123.b" lexes as ident, dot, integer, dot, ident instead of
	// ident, dot, float.
	insidePath bool
}

// New returns a lexer over src using the given syntax descriptor.
// unicodeIdents enables Unicode letters (by general category) in
// identifiers; when false, identifiers are ASCII-only.
func New(template, src string, desc syntax.Descriptor, unicodeIdents bool) *Lexer {
	return &Lexer{
		template:      template,
		src:           src,
		data:          []byte(src),
		desc:          desc,
		unicodeIdents: unicodeIdents,
	}
}

// AllTokens iterates every token of the source, including the trailing EOF,
// stopping early if the consumer's loop breaks or if a lexical error occurs.
// On a lexical error iteration simply ends; the error itself is not
// reported through the iterator (NextToken returns it).
func (lx *Lexer) AllTokens() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for {
			tok, err := lx.NextToken()
			if err != nil {
				return
			}
			if !yield(tok) {
				return
			}
			if tok.Type == TokenEOF {
				return
			}
		}
	}
}

// NextToken returns the next token, or a *tmplerr.Error of syntactic kind on
// a lexical error.
func (lx *Lexer) NextToken() (Token, error) {
	switch lx.state {
	case stateRaw:
		return lx.nextRaw()
	case stateComment:
		return lx.nextCommentEnd()
	default:
		return lx.nextInConstruct()
	}
}

func (lx *Lexer) nextRaw() (Token, error) {
	if len(lx.data) == 0 {
		return lx.consume(0, TokenEOF, ""), nil
	}
	pattern, at, ok := lx.desc.FindBegin(lx.data)
	if !ok {
		return lx.consume(len(lx.data), TokenRaw, string(lx.data)), nil
	}
	if at > 0 {
		return lx.consume(at, TokenRaw, string(lx.data[:at])), nil
	}
	tok := lx.consume(len(pattern.Text), beginTokenType(pattern.Construct), pattern.Text)
	if pattern.Construct == syntax.ConstructComment {
		lx.state = stateComment
	} else {
		lx.state = stateConstruct
		lx.construct = pattern.Construct
	}
	lx.insidePath = false
	return tok, nil
}

func (lx *Lexer) nextCommentEnd() (Token, error) {
	closeDelim := lx.desc.EndDelim(syntax.ConstructComment)
	idx := strings.Index(string(lx.data), closeDelim)
	if idx < 0 {
		return Token{}, lx.errorf(tmplerr.UnclosedDelimiter, source.Span{Start: lx.offset, End: lx.offset},
			"unclosed comment: expected %q before end of template", closeDelim)
	}
	tok := lx.consume(idx+len(closeDelim), TokenEndComment, string(lx.data[:idx+len(closeDelim)]))
	lx.state = stateRaw
	return tok, nil
}

func beginTokenType(c syntax.Construct) TokenType {
	switch c {
	case syntax.ConstructExpr:
		return TokenBeginExpr
	case syntax.ConstructBlock:
		return TokenBeginBlock
	default:
		return TokenBeginComment
	}
}

func (lx *Lexer) endTokenType() TokenType {
	if lx.construct == syntax.ConstructExpr {
		return TokenEndExpr
	}
	return TokenEndBlock
}

func (lx *Lexer) nextInConstruct() (Token, error) {
	lx.skipWhitespace()
	if len(lx.data) == 0 {
		return Token{}, lx.errorf(tmplerr.UnclosedDelimiter, source.Span{Start: lx.offset, End: lx.offset},
			"unclosed %s: expected %q before end of template", lx.construct, lx.desc.EndDelim(lx.construct))
	}

	closeDelim := lx.desc.EndDelim(lx.construct)
	if strings.HasPrefix(string(lx.data), closeDelim) {
		tok := lx.consume(len(closeDelim), lx.endTokenType(), closeDelim)
		lx.state = stateRaw
		lx.insidePath = false
		return tok, nil
	}

	b := lx.data[0]
	var tok Token
	var err error
	switch {
	case b == '.':
		tok = lx.consume(1, TokenDot, ".")
	case b == '?' && len(lx.data) > 1 && lx.data[1] == '.':
		tok = lx.consume(2, TokenOptDot, "?.")
	case b == '|':
		tok = lx.consume(1, TokenPipe, "|")
	case b == ':':
		tok = lx.consume(1, TokenColon, ":")
	case b == ',':
		tok = lx.consume(1, TokenComma, ",")
	case b == '"':
		tok, err = lx.lexString()
	case b >= '0' && b <= '9':
		tok = lx.lexNumber()
	case lx.isIdentStart(rune(b)) || b >= utf8.RuneSelf:
		tok, err = lx.lexIdentOrKeyword()
	default:
		err = lx.errorf(tmplerr.UnexpectedToken, source.Span{Start: lx.offset, End: lx.offset + 1},
			"unexpected character %q", string(rune(b)))
	}
	if err != nil {
		return Token{}, err
	}

	lx.insidePath = tok.Type == TokenIdent || tok.Type == TokenDot || tok.Type == TokenOptDot
	return tok, nil
}

func (lx *Lexer) skipWhitespace() {
	i := 0
	for i < len(lx.data) {
		switch lx.data[i] {
		case ' ', '\t', '\r', '\n':
			i++
		default:
			lx.advance(i)
			return
		}
	}
	lx.advance(i)
}

// lexIdentOrKeyword scans an identifier and classifies it as TokenKeyword if
// it is one of the reserved words, TokenIdent otherwise.
func (lx *Lexer) lexIdentOrKeyword() (Token, error) {
	s := string(lx.data)
	n := 0
	first := true
	for n < len(s) {
		r, size := utf8.DecodeRuneInString(s[n:])
		ok := false
		if first {
			ok = lx.isIdentStart(r)
		} else {
			ok = lx.isIdentContinue(r)
		}
		if !ok {
			break
		}
		n += size
		first = false
	}
	if n == 0 {
		return Token{}, lx.errorf(tmplerr.UnexpectedToken, source.Span{Start: lx.offset, End: lx.offset + 1},
			"unexpected character %q", string(rune(lx.data[0])))
	}
	text := s[:n]
	if Keywords[text] {
		return lx.consume(n, TokenKeyword, text), nil
	}
	return lx.consume(n, TokenIdent, text), nil
}

func (lx *Lexer) isIdentStart(r rune) bool {
	if r == '_' {
		return true
	}
	if lx.unicodeIdents {
		return unicode.IsLetter(r)
	}
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func (lx *Lexer) isIdentContinue(r rune) bool {
	if r == '_' {
		return true
	}
	if r >= '0' && r <= '9' {
		return true
	}
	if lx.unicodeIdents {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// lexNumber scans a numeric literal. Inside a path sub-state, it consumes
// digits only — never a fractional part or exponent — so a dotted integer
// path segment is never mistaken for a float's fraction. Outside a path, it
// accepts an optional fractional part and exponent, per spec.md §4.2.
func (lx *Lexer) lexNumber() Token {
	s := lx.data
	n := 0
	for n < len(s) && isDigit(s[n]) {
		n++
	}
	isFloat := false
	if !lx.insidePath && n < len(s) && s[n] == '.' && n+1 < len(s) && isDigit(s[n+1]) {
		isFloat = true
		n++
		for n < len(s) && isDigit(s[n]) {
			n++
		}
	}
	if !lx.insidePath && n < len(s) && (s[n] == 'e' || s[n] == 'E') {
		save := n
		m := n + 1
		if m < len(s) && (s[m] == '+' || s[m] == '-') {
			m++
		}
		if m < len(s) && isDigit(s[m]) {
			for m < len(s) && isDigit(s[m]) {
				m++
			}
			isFloat = true
			n = m
		} else {
			n = save
		}
	}
	typ := TokenInteger
	if isFloat {
		typ = TokenFloat
	}
	text := string(s[:n])
	return lx.consume(n, typ, text)
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// lexString scans a double-quoted string literal with backslash escapes for
// \\, \", \n, \r, \t, decoding it into Token.Value.
func (lx *Lexer) lexString() (Token, error) {
	s := lx.data
	var out strings.Builder
	i := 1 // skip opening quote
	for i < len(s) {
		switch s[i] {
		case '"':
			tok := lx.consume(i+1, TokenString, string(s[:i+1]))
			tok.Value = out.String()
			return tok, nil
		case '\\':
			if i+1 >= len(s) {
				return Token{}, lx.errorf(tmplerr.InvalidEscape, source.Span{Start: lx.offset + i, End: lx.offset + i + 1},
					"unterminated escape sequence")
			}
			switch s[i+1] {
			case '\\':
				out.WriteByte('\\')
			case '"':
				out.WriteByte('"')
			case 'n':
				out.WriteByte('\n')
			case 'r':
				out.WriteByte('\r')
			case 't':
				out.WriteByte('\t')
			default:
				return Token{}, lx.errorf(tmplerr.InvalidEscape, source.Span{Start: lx.offset + i, End: lx.offset + i + 2},
					"invalid escape sequence %q", string(s[i:i+2]))
			}
			i += 2
		case '\n':
			return Token{}, lx.errorf(tmplerr.UnclosedDelimiter, source.Span{Start: lx.offset, End: lx.offset + i},
				"unterminated string literal")
		default:
			out.WriteByte(s[i])
			i++
		}
	}
	return Token{}, lx.errorf(tmplerr.UnclosedDelimiter, source.Span{Start: lx.offset, End: lx.offset + len(s)},
		"unterminated string literal")
}

// consume advances the lexer by n bytes from the current offset and returns
// a Token of the given type covering the consumed span. text, when
// non-empty, is both the Token.Text and (absent a more specific Value set
// by the caller) the Token.Value.
func (lx *Lexer) consume(n int, typ TokenType, text string) Token {
	start := lx.offset
	lx.advance(n)
	return Token{
		Type:  typ,
		Span:  source.Span{Start: start, End: lx.offset},
		Text:  text,
		Value: text,
	}
}

func (lx *Lexer) advance(n int) {
	lx.data = lx.data[n:]
	lx.offset += n
}

func (lx *Lexer) errorf(kind tmplerr.Kind, span source.Span, format string, args ...any) error {
	return tmplerr.New(kind, lx.template, lx.src, span, fmt.Sprintf(format, args...))
}
