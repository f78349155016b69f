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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EngFlow/tmplkit/syntax"
	"github.com/EngFlow/tmplkit/tmplerr"
)

func tokenize(t *testing.T, src string) []Token {
	t.Helper()
	lx := New("t", src, syntax.Default(), false)
	var toks []Token
	for {
		tok, err := lx.NextToken()
		require.NoError(t, err)
		if tok.Type == TokenEOF {
			return toks
		}
		toks = append(toks, tok)
	}
}

func types(toks []Token) []TokenType {
	out := make([]TokenType, len(toks))
	for i, tok := range toks {
		out[i] = tok.Type
	}
	return out
}

func TestRawTextOnly(t *testing.T) {
	toks := tokenize(t, "hello world")
	require.Len(t, toks, 1)
	assert.Equal(t, TokenRaw, toks[0].Type)
	assert.Equal(t, "hello world", toks[0].Text)
}

func TestExprRoundTrip(t *testing.T) {
	toks := tokenize(t, "a {{ x }} b")
	assert.Equal(t, []TokenType{TokenRaw, TokenBeginExpr, TokenIdent, TokenEndExpr, TokenRaw}, types(toks))
	assert.Equal(t, "x", toks[2].Text)
}

func TestEmptyRawBetweenAdjacentConstructs(t *testing.T) {
	toks := tokenize(t, "{{ a }}{{ b }}")
	assert.Equal(t, []TokenType{
		TokenBeginExpr, TokenIdent, TokenEndExpr,
		TokenBeginExpr, TokenIdent, TokenEndExpr,
	}, types(toks))
}

func TestCommentDiscardsBody(t *testing.T) {
	toks := tokenize(t, "x {# this is ignored {{ }} #} y")
	require.Len(t, toks, 4)
	assert.Equal(t, []TokenType{TokenRaw, TokenBeginComment, TokenEndComment, TokenRaw}, types(toks))
}

func TestKeywordsVsIdentifiers(t *testing.T) {
	toks := tokenize(t, "{% if true %}{% endif %}")
	assert.Equal(t, []TokenType{
		TokenBeginBlock, TokenKeyword, TokenKeyword, TokenEndBlock,
		TokenBeginBlock, TokenKeyword, TokenEndBlock,
	}, types(toks))
}

func TestPunctuation(t *testing.T) {
	toks := tokenize(t, "{{ a.b?.c | f:1,2 }}")
	assert.Equal(t, []TokenType{
		TokenBeginExpr,
		TokenIdent, TokenDot, TokenIdent, TokenOptDot, TokenIdent,
		TokenPipe, TokenIdent, TokenColon, TokenInteger, TokenComma, TokenInteger,
		TokenEndExpr,
	}, types(toks))
}

func TestNumberVsPathDisambiguation(t *testing.T) {
	toks := tokenize(t, "{{ lorem.123.ipsum }}")
	assert.Equal(t, []TokenType{
		TokenBeginExpr, TokenIdent, TokenDot, TokenInteger, TokenDot, TokenIdent, TokenEndExpr,
	}, types(toks))
	assert.Equal(t, "123", toks[3].Text)
}

func TestFloatOutsidePath(t *testing.T) {
	toks := tokenize(t, "{{ 3.14 }}")
	require.Len(t, toks, 3)
	assert.Equal(t, TokenFloat, toks[1].Type)
	assert.Equal(t, "3.14", toks[1].Text)
}

func TestFloatWithExponent(t *testing.T) {
	toks := tokenize(t, "{{ 6.02e23 }}")
	require.Len(t, toks, 3)
	assert.Equal(t, TokenFloat, toks[1].Type)
	assert.Equal(t, "6.02e23", toks[1].Text)
}

func TestIntegerWithTrailingNonDigit(t *testing.T) {
	toks := tokenize(t, "{{ 42 }}")
	require.Len(t, toks, 3)
	assert.Equal(t, TokenInteger, toks[1].Type)
	assert.Equal(t, "42", toks[1].Text)
}

func TestStringEscapes(t *testing.T) {
	toks := tokenize(t, `{{ "a\nb\t\"c\"\\d" }}`)
	require.Len(t, toks, 3)
	require.Equal(t, TokenString, toks[1].Type)
	assert.Equal(t, "a\nb\t\"c\"\\d", toks[1].Value)
}

func TestUnclosedExprIsError(t *testing.T) {
	lx := New("t", "{{ a", syntax.Default(), false)
	var lastErr error
	for {
		tok, err := lx.NextToken()
		if err != nil {
			lastErr = err
			break
		}
		if tok.Type == TokenEOF {
			break
		}
	}
	require.Error(t, lastErr)
	kind, ok := tmplerr.KindOf(lastErr)
	require.True(t, ok)
	assert.Equal(t, tmplerr.UnclosedDelimiter, kind)
}

func TestUnclosedCommentIsError(t *testing.T) {
	lx := New("t", "{# never closes", syntax.Default(), false)
	_, err := lx.NextToken() // BeginComment
	require.NoError(t, err)
	_, err = lx.NextToken()
	require.Error(t, err)
	kind, ok := tmplerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, tmplerr.UnclosedDelimiter, kind)
}

func TestUnterminatedStringIsError(t *testing.T) {
	lx := New("t", `{{ "abc`, syntax.Default(), false)
	_, err := lx.NextToken() // BeginExpr
	require.NoError(t, err)
	_, err = lx.NextToken()
	require.Error(t, err)
	kind, ok := tmplerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, tmplerr.UnclosedDelimiter, kind)
}

func TestInvalidEscapeIsError(t *testing.T) {
	toks, err := tokenizeErr(`{{ "\q" }}`)
	require.Error(t, err)
	kind, ok := tmplerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, tmplerr.InvalidEscape, kind)
	_ = toks
}

func TestUnexpectedCharacterIsError(t *testing.T) {
	_, err := tokenizeErr("{{ @ }}")
	require.Error(t, err)
	kind, ok := tmplerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, tmplerr.UnexpectedToken, kind)
}

func tokenizeErr(src string) ([]Token, error) {
	lx := New("t", src, syntax.Default(), false)
	var toks []Token
	for {
		tok, err := lx.NextToken()
		if err != nil {
			return toks, err
		}
		if tok.Type == TokenEOF {
			return toks, nil
		}
		toks = append(toks, tok)
	}
}

func TestUnicodeIdentifiers(t *testing.T) {
	lx := New("t", "{{ café }}", syntax.Default(), true)
	_, err := lx.NextToken() // BeginExpr
	require.NoError(t, err)
	tok, err := lx.NextToken()
	require.NoError(t, err)
	assert.Equal(t, TokenIdent, tok.Type)
	assert.Equal(t, "café", tok.Text)
}

func TestAsciiIdentifiersRejectNonAscii(t *testing.T) {
	_, err := tokenizeErr("{{ café }}")
	require.Error(t, err)
}

func TestAllTokensStopsAtEOF(t *testing.T) {
	lx := New("t", "x {{ y }}", syntax.Default(), false)
	var toks []Token
	for tok := range lx.AllTokens() {
		toks = append(toks, tok)
	}
	require.Len(t, toks, 5)
	assert.Equal(t, TokenEOF, toks[len(toks)-1].Type)
}
