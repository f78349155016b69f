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

// Package tmplerr implements the engine's single reported-error type: every
// fallible operation in lexing, parsing, compiling and rendering returns an
// *Error carrying the template name, the offending span, and a Kind drawn
// from this package, plus a multi-line "pretty" rendering for diagnostics.
//
// Fatal configuration mistakes (an empty delimiter, an internal compiler
// invariant violation) are not reported errors: they panic with a
// *FatalError instead, per the spec's fatal-vs-reported split.
package tmplerr

import (
	"errors"
	"fmt"

	"github.com/EngFlow/tmplkit/source"
)

// Kind classifies why an operation failed. Kinds are grouped into bands —
// syntactic, semantic-compile, render, and fatal-config — following the
// same banner-comment grouping the teacher uses for its TokenType constants.
type Kind int

const (
	// --- syntactic (lexer/parser) ---
	UnexpectedToken Kind = iota
	UnclosedDelimiter
	InvalidEscape
	InvalidNumber
	UnknownKeywordInContext

	// --- semantic-compile (parser/compiler) ---
	DuplicateLoopVariable
	UnbalancedBlock
	NestingTooDeep

	// --- render ---
	NotFound
	OutOfRange
	CannotIndex
	NotIterable
	WrongFilterArity
	WrongFilterType
	FormatterNotFound
	FilterNotFound
	TemplateNotFound
	MaxIncludeDepth
	IOError

	// --- fatal-config (never returned; see FatalError) ---
	EmptyDelimiter
)

func (k Kind) String() string {
	switch k {
	case UnexpectedToken:
		return "unexpected-token"
	case UnclosedDelimiter:
		return "unclosed-delimiter"
	case InvalidEscape:
		return "invalid-escape"
	case InvalidNumber:
		return "invalid-number"
	case UnknownKeywordInContext:
		return "unknown-keyword-in-context"
	case DuplicateLoopVariable:
		return "duplicate-loop-variable"
	case UnbalancedBlock:
		return "unbalanced-block"
	case NestingTooDeep:
		return "nesting-too-deep"
	case NotFound:
		return "not-found"
	case OutOfRange:
		return "out-of-range"
	case CannotIndex:
		return "cannot-index"
	case NotIterable:
		return "not-iterable"
	case WrongFilterArity:
		return "wrong-filter-arity"
	case WrongFilterType:
		return "wrong-filter-type"
	case FormatterNotFound:
		return "formatter-not-found"
	case FilterNotFound:
		return "filter-not-found"
	case TemplateNotFound:
		return "template-not-found"
	case MaxIncludeDepth:
		return "max-include-depth"
	case IOError:
		return "io-error"
	case EmptyDelimiter:
		return "empty-delimiter"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// AnonymousTemplate is used as the template name for errors from sources
// compiled without a registered name (e.g. Engine.Compile).
const AnonymousTemplate = "anonymous"

// Error is the engine's single reported-error type. It is a value, not a
// throw: renderers and compilers return *Error like any other error, and
// the caller decides whether to propagate, log, or pretty-print it.
type Error struct {
	Template string
	Kind     Kind
	Span     source.Span
	Source   string
	Message  string
	// Wrapped holds an underlying error (e.g. a filter's own error, or an
	// io.Writer failure) for errors.Unwrap/errors.Is/errors.As.
	Wrapped error
}

// New constructs a reported error.
func New(kind Kind, template, src string, span source.Span, message string) *Error {
	return &Error{Kind: kind, Template: template, Source: src, Span: span, Message: message}
}

// Wrap constructs a reported error that carries an underlying cause.
func Wrap(kind Kind, template, src string, span source.Span, message string, cause error) *Error {
	return &Error{Kind: kind, Template: template, Source: src, Span: span, Message: message, Wrapped: cause}
}

// Error renders the concise, single-line form: "<template>:<line>:<col>: <kind>: <message>".
func (e *Error) Error() string {
	cur := source.CursorAt(e.Source, e.Span.Start)
	template := e.Template
	if template == "" {
		template = AnonymousTemplate
	}
	return fmt.Sprintf("%s:%s: %s: %s", template, cur, e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Wrapped }

// Pretty renders the multi-line form: the concise message, followed by the
// offending source line and a caret underline.
func (e *Error) Pretty() string {
	line, caret := source.Context(e.Source, e.Span)
	return fmt.Sprintf("%s\n%s\n%s", e.Error(), line, caret)
}

// KindOf extracts the Kind from err, if err is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// FatalError is panicked, never returned, for configuration mistakes the
// spec calls out as "programmer error" (e.g. an empty delimiter) and for
// internal invariant violations (e.g. a compiled jump target out of
// range) that indicate a bug in the engine itself rather than a malformed
// template.
type FatalError struct {
	Kind    Kind
	Message string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Fatalf panics with a *FatalError built from the given kind and message.
func Fatalf(kind Kind, format string, args ...any) {
	panic(&FatalError{Kind: kind, Message: fmt.Sprintf(format, args...)})
}
