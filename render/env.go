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

// Package render implements the stack-machine VM that executes a compiled
// Program against a context Value, per spec.md §4.5.
package render

import (
	"io"

	"github.com/EngFlow/tmplkit/compile"
	"github.com/EngFlow/tmplkit/value"
)

// Filter is a named n-ary transformation: a mandatory receiver Value plus
// 0..N positional arguments, producing a Value or a typed failure.
type Filter func(receiver value.Value, args []value.Value) (value.Value, error)

// Formatter writes a Value's textual representation to w.
type Formatter func(w io.Writer, v value.Value) error

// Sink is the render output destination.
type Sink = io.Writer

// Env is the render-time view of an engine's registries: the set of
// compiled templates, filters, formatters and configuration the VM
// consults while executing a Program. The engine package constructs one of
// these per render from its live registration maps; callers must hold
// those maps stable for the render's duration (spec.md §5's "registration
// requires exclusive access").
type Env struct {
	Templates        map[string]*compile.Program
	Filters          map[string]Filter
	Formatters       map[string]Formatter
	DefaultFormatter Formatter
	MaxIncludeDepth  int
}

func (e *Env) lookupFilter(name string) (Filter, bool) {
	f, ok := e.Filters[name]
	return f, ok
}

func (e *Env) lookupFormatter(name string) (Formatter, bool) {
	f, ok := e.Formatters[name]
	return f, ok
}

func (e *Env) lookupTemplate(name string) (*compile.Program, bool) {
	p, ok := e.Templates[name]
	return p, ok
}

// Root is the context a render starts from: either an eager Value or a
// lazy per-name resolver (spec.md §4.5.3/§9's "lazy root").
type Root struct {
	eager    value.Value
	hasEager bool
	resolver func(name string) (value.Value, bool)
}

// FromValue builds an eager Root wrapping v.
func FromValue(v value.Value) Root { return Root{eager: v, hasEager: true} }

// FromResolver builds a lazy Root: resolve is called at most once per
// distinct top-level name referenced during the render.
func FromResolver(resolve func(name string) (value.Value, bool)) Root {
	return Root{resolver: resolve}
}

func (r Root) newFrame() frame {
	if r.hasEager {
		return &eagerFrame{v: r.eager}
	}
	return &lazyFrame{resolver: r.resolver}
}
