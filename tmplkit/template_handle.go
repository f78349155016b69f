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
	"io"
	"strings"

	"github.com/EngFlow/tmplkit/compile"
	"github.com/EngFlow/tmplkit/render"
	"github.com/EngFlow/tmplkit/value"
)

// TemplateHandle is a compiled template bound to the Engine that owns its
// filter/formatter/include registries. Renders observe those registries as
// of the call, not as of compilation (spec.md §4.3: includes resolve by
// name at render time).
type TemplateHandle struct {
	engine *Engine
	prog   *compile.Program
}

// Render executes the template against context, a map-shaped root, and
// returns the rendered text.
func (h *TemplateHandle) Render(context *value.OrderedMap) (string, error) {
	var sb strings.Builder
	if err := h.RenderToWriter(&sb, context); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// RenderToWriter is Render, writing to w instead of building a string.
func (h *TemplateHandle) RenderToWriter(w io.Writer, context *value.OrderedMap) error {
	root := value.Map(context)
	return render.Render(h.engine.env(), h.prog, render.FromValue(root), w)
}

// RenderFrom executes the template against an arbitrary root Value. Most
// callers bind a Map via Render; RenderFrom is for embedders whose context
// isn't naturally an OrderedMap (spec.md §6's "value.Value is the engine's
// only context boundary").
func (h *TemplateHandle) RenderFrom(root value.Value) (string, error) {
	var sb strings.Builder
	if err := render.Render(h.engine.env(), h.prog, render.FromValue(root), &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// RenderFromFn executes the template against a lazy root: resolve is
// called at most once per distinct top-level name the template actually
// references, deferring costly context construction (spec.md §9's "lazy
// root").
func (h *TemplateHandle) RenderFromFn(resolve func(name string) (value.Value, bool), w io.Writer) error {
	return render.Render(h.engine.env(), h.prog, render.FromResolver(resolve), w)
}
