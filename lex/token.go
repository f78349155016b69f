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

// Package lex implements a state-sensitive tokenizer for the template
// language: it distinguishes literal source text from expression/block
// interiors, and disambiguates numeric literals from path segments inside
// dotted paths.
package lex

import (
	"fmt"

	"github.com/EngFlow/tmplkit/source"
)

// TokenType identifies the lexical category of a Token.
type TokenType int

const (
	// Literal source text outside of any expression/block/comment
	// construct.
	TokenRaw TokenType = iota

	// Construct delimiters.
	TokenBeginExpr
	TokenEndExpr
	TokenBeginBlock
	TokenEndBlock
	TokenBeginComment
	TokenEndComment

	// Block-interior punctuation.
	TokenDot
	TokenOptDot // "?."
	TokenPipe
	TokenColon
	TokenComma

	// Literals and names.
	TokenIdent
	TokenKeyword
	TokenInteger
	TokenFloat
	TokenString

	TokenEOF
)

func (t TokenType) String() string {
	switch t {
	case TokenRaw:
		return "raw"
	case TokenBeginExpr:
		return "begin-expr"
	case TokenEndExpr:
		return "end-expr"
	case TokenBeginBlock:
		return "begin-block"
	case TokenEndBlock:
		return "end-block"
	case TokenBeginComment:
		return "begin-comment"
	case TokenEndComment:
		return "end-comment"
	case TokenDot:
		return "."
	case TokenOptDot:
		return "?."
	case TokenPipe:
		return "|"
	case TokenColon:
		return ":"
	case TokenComma:
		return ","
	case TokenIdent:
		return "identifier"
	case TokenKeyword:
		return "keyword"
	case TokenInteger:
		return "integer"
	case TokenFloat:
		return "float"
	case TokenString:
		return "string"
	case TokenEOF:
		return "EOF"
	default:
		return fmt.Sprintf("token(%d)", int(t))
	}
}

// Keywords recognized in Block state. Every other identifier-shaped token is
// a TokenIdent.
var Keywords = map[string]bool{
	"if": true, "elif": true, "else": true, "endif": true,
	"for": true, "in": true, "endfor": true,
	"include": true, "with": true,
	"true": true, "false": true,
}

// Token is a single lexeme with its source span.
type Token struct {
	Type  TokenType
	Span  source.Span
	Text  string // raw source text covered by Span
	Value string // decoded payload: unescaped contents for string literals, otherwise the same as Text
}

// Cursor reports the line/column of the start of t within src.
func (t Token) Cursor(src string) source.Cursor {
	return source.CursorAt(src, t.Span.Start)
}
