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

// Package tmplkit is the engine's external surface: a named-template
// registry plus the filter/formatter registries that the render package's
// VM consults at render time. Everything a caller needs — registering
// templates and functions, then rendering one — is reached through an
// *Engine and the *TemplateHandle it hands back.
package tmplkit

import (
	"github.com/EngFlow/tmplkit/compile"
	"github.com/EngFlow/tmplkit/render"
	"github.com/EngFlow/tmplkit/syntax"
	"github.com/EngFlow/tmplkit/value"
)

// defaultMaxIncludeDepth matches spec.md §5's stated default.
const defaultMaxIncludeDepth = 64

// CallableKind distinguishes what a registered name currently refers to.
// Filters and formatters share one namespace (spec.md §9: "a name-to-
// callable map whose value element is itself a two-variant sum"), so
// registering a name under one kind silently shadows a prior registration
// under the other.
type CallableKind int

const (
	// CallableNone means the name has no registration — the zero value,
	// so a lookup miss and "nothing was replaced" are the same value.
	CallableNone CallableKind = iota
	CallableFilter
	CallableFormatter
)

func (k CallableKind) String() string {
	switch k {
	case CallableFilter:
		return "filter"
	case CallableFormatter:
		return "formatter"
	default:
		return "none"
	}
}

type callable struct {
	kind      CallableKind
	filter    render.Filter
	formatter render.Formatter
}

// Engine owns the syntax descriptor, the named-template store, and the
// filter/formatter registries. Registration methods require exclusive
// access (spec.md §5); Engine itself performs no internal locking, mirroring
// the teacher's configuration objects, which are likewise single-writer.
type Engine struct {
	syntax           syntax.Descriptor
	templates        map[string]*compile.Program
	callables        map[string]callable
	defaultFormatter render.Formatter
	maxIncludeDepth  int
}

// New returns an Engine using the default "{{ }}" / "{% %}" / "{# #}"
// syntax, with the built-in `id` filter and default formatter installed.
func New() *Engine {
	return WithSyntax(syntax.Default())
}

// WithSyntax returns an Engine using a caller-supplied delimiter set.
func WithSyntax(desc syntax.Descriptor) *Engine {
	e := &Engine{
		syntax:           desc,
		templates:        make(map[string]*compile.Program),
		callables:        make(map[string]callable),
		defaultFormatter: render.DefaultFormatter,
		maxIncludeDepth:  defaultMaxIncludeDepth,
	}
	e.AddFilter("id", func(v value.Value, _ []value.Value) (value.Value, error) { return v, nil })
	return e
}
