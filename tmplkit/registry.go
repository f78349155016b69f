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

package tmplkit

import (
	"github.com/EngFlow/tmplkit/compile"
	"github.com/EngFlow/tmplkit/parse"
	"github.com/EngFlow/tmplkit/render"
	"github.com/EngFlow/tmplkit/tmplerr"
)

// AddTemplate parses and compiles source under name, replacing any prior
// program registered under that name. include targets are resolved at
// render time, not here (spec.md §4.3), so this never validates that a
// template's include statements name something registered.
func (e *Engine) AddTemplate(name, source string) error {
	nodes, err := parse.Parse(name, source, e.syntax, false)
	if err != nil {
		return err
	}
	prog, err := compile.Compile(name, source, nodes)
	if err != nil {
		return err
	}
	e.templates[name] = prog
	return nil
}

// RemoveTemplate deletes name's registration, returning its compiled
// program and whether one existed.
func (e *Engine) RemoveTemplate(name string) (*compile.Program, bool) {
	prog, ok := e.templates[name]
	if ok {
		delete(e.templates, name)
	}
	return prog, ok
}

// Template looks up a registered template by name without rendering it.
func (e *Engine) Template(name string) (*TemplateHandle, bool) {
	prog, ok := e.templates[name]
	if !ok {
		return nil, false
	}
	return &TemplateHandle{engine: e, prog: prog}, true
}

// Compile parses and compiles source as an anonymous, unregistered
// template: it can be rendered through the returned handle but is never
// reachable from another template's `include`.
func (e *Engine) Compile(source string) (*TemplateHandle, error) {
	nodes, err := parse.Parse(tmplerr.AnonymousTemplate, source, e.syntax, false)
	if err != nil {
		return nil, err
	}
	prog, err := compile.Compile(tmplerr.AnonymousTemplate, source, nodes)
	if err != nil {
		return nil, err
	}
	return &TemplateHandle{engine: e, prog: prog}, nil
}

// AddFilter registers fn as the filter bound to name, returning whatever
// CallableKind name was previously bound to (CallableNone if it was
// unbound or being registered for the first time).
func (e *Engine) AddFilter(name string, fn render.Filter) CallableKind {
	prior := e.callables[name].kind
	e.callables[name] = callable{kind: CallableFilter, filter: fn}
	return prior
}

// AddFormatter registers fn as the formatter bound to name, returning the
// prior CallableKind (see AddFilter).
func (e *Engine) AddFormatter(name string, fn render.Formatter) CallableKind {
	prior := e.callables[name].kind
	e.callables[name] = callable{kind: CallableFormatter, formatter: fn}
	return prior
}

// RemoveFunction unregisters name regardless of whether it was a filter or
// a formatter, returning its prior CallableKind.
func (e *Engine) RemoveFunction(name string) CallableKind {
	prior := e.callables[name].kind
	delete(e.callables, name)
	return prior
}

// SetDefaultFormatter replaces the formatter EMIT_EXPR falls back to when
// an expression's pipeline does not end in a registered formatter: it
// formats the bare value, or the result of a terminal filter.
func (e *Engine) SetDefaultFormatter(fn render.Formatter) {
	e.defaultFormatter = fn
}

// SetMaxIncludeDepth replaces the engine's include-recursion bound.
func (e *Engine) SetMaxIncludeDepth(n int) {
	e.maxIncludeDepth = n
}

// env snapshots the registries render.Render needs for one render call.
// Filters and formatters are copied into fresh per-kind maps; the templates
// map is shared, not copied — callers must not mutate the engine
// concurrently with a render, per spec.md §5.
func (e *Engine) env() *render.Env {
	filters := make(map[string]render.Filter, len(e.callables))
	formatters := make(map[string]render.Formatter, len(e.callables))
	for name, c := range e.callables {
		switch c.kind {
		case CallableFilter:
			filters[name] = c.filter
		case CallableFormatter:
			formatters[name] = c.formatter
		}
	}
	return &render.Env{
		Templates:        e.templates,
		Filters:          filters,
		Formatters:       formatters,
		DefaultFormatter: e.defaultFormatter,
		MaxIncludeDepth:  e.maxIncludeDepth,
	}
}
