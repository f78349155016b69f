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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EngFlow/tmplkit/value"
)

func TestNewInstallsBuiltinIdFilter(t *testing.T) {
	e := New()
	require.NoError(t, e.AddTemplate("t", "{{ name | id }}"))
	h, ok := e.Template("t")
	require.True(t, ok)
	out, err := h.Render(value.MapOf(value.KV{Key: "name", Value: value.String("Ada")}))
	require.NoError(t, err)
	assert.Equal(t, "Ada", out)
}

func TestAddTemplateReplacesPriorRegistration(t *testing.T) {
	e := New()
	require.NoError(t, e.AddTemplate("t", "one"))
	require.NoError(t, e.AddTemplate("t", "two"))
	h, ok := e.Template("t")
	require.True(t, ok)
	out, err := h.Render(value.NewOrderedMap())
	require.NoError(t, err)
	assert.Equal(t, "two", out)
}

func TestRemoveTemplate(t *testing.T) {
	e := New()
	require.NoError(t, e.AddTemplate("t", "x"))
	prog, ok := e.RemoveTemplate("t")
	assert.True(t, ok)
	assert.NotNil(t, prog)
	_, ok = e.Template("t")
	assert.False(t, ok)
	_, ok = e.RemoveTemplate("t")
	assert.False(t, ok)
}

func TestAddFilterReturnsPriorKind(t *testing.T) {
	e := New()
	upper := func(v value.Value, _ []value.Value) (value.Value, error) {
		return value.String(strings.ToUpper(v.String())), nil
	}
	prior := e.AddFilter("shout", upper)
	assert.Equal(t, CallableNone, prior)

	prior = e.AddFormatter("shout", func(w io.Writer, v value.Value) error {
		_, err := w.Write([]byte(v.String()))
		return err
	})
	assert.Equal(t, CallableFilter, prior)

	prior = e.RemoveFunction("shout")
	assert.Equal(t, CallableFormatter, prior)

	prior = e.RemoveFunction("shout")
	assert.Equal(t, CallableNone, prior)
}

func TestAddFilterShadowsPriorFormatterOfSameName(t *testing.T) {
	e := New()
	require.NoError(t, e.AddTemplate("t", "{{ x | dup }}"))
	e.AddFormatter("dup", func(w io.Writer, v value.Value) error { return nil })
	e.AddFilter("dup", func(v value.Value, _ []value.Value) (value.Value, error) {
		return value.String(v.String() + v.String()), nil
	})
	h, _ := e.Template("t")
	out, err := h.Render(value.MapOf(value.KV{Key: "x", Value: value.String("ab")}))
	require.NoError(t, err)
	assert.Equal(t, "abab", out)
}

func TestCompileAnonymousTemplate(t *testing.T) {
	e := New()
	h, err := e.Compile("Hello {{ who }}")
	require.NoError(t, err)
	out, err := h.Render(value.MapOf(value.KV{Key: "who", Value: value.String("World")}))
	require.NoError(t, err)
	assert.Equal(t, "Hello World", out)
}

func TestCompileErrorPropagatesFromParse(t *testing.T) {
	e := New()
	_, err := e.Compile("{{ unterminated")
	assert.Error(t, err)
}

func TestRenderFromAcceptsRawValueRoot(t *testing.T) {
	e := New()
	h, err := e.Compile("{{ name | id }}")
	require.NoError(t, err)
	root := value.Map(value.MapOf(value.KV{Key: "name", Value: value.String("direct")}))
	out, err := h.RenderFrom(root)
	require.NoError(t, err)
	assert.Equal(t, "direct", out)
}

func TestRenderFromFnCallsResolverLazily(t *testing.T) {
	e := New()
	h, err := e.Compile("{{ a }}")
	require.NoError(t, err)
	calls := map[string]int{}
	var sb strings.Builder
	err = h.RenderFromFn(func(name string) (value.Value, bool) {
		calls[name]++
		if name == "a" {
			return value.String("resolved"), true
		}
		return value.Value{}, false
	}, &sb)
	require.NoError(t, err)
	assert.Equal(t, "resolved", sb.String())
	assert.Equal(t, 1, calls["a"])
}

func TestSetMaxIncludeDepthEnforced(t *testing.T) {
	e := New()
	e.SetMaxIncludeDepth(1)
	require.NoError(t, e.AddTemplate("a", "{% include \"b\" %}"))
	require.NoError(t, e.AddTemplate("b", "{% include \"a\" %}"))
	h, ok := e.Template("a")
	require.True(t, ok)
	_, err := h.Render(value.NewOrderedMap())
	assert.Error(t, err)
}

func TestSetDefaultFormatter(t *testing.T) {
	e := New()
	e.SetDefaultFormatter(func(w io.Writer, v value.Value) error {
		_, err := w.Write([]byte("<" + v.String() + ">"))
		return err
	})
	require.NoError(t, e.AddTemplate("t", "{{ x }}"))
	h, _ := e.Template("t")
	out, err := h.Render(value.MapOf(value.KV{Key: "x", Value: value.String("v")}))
	require.NoError(t, err)
	assert.Equal(t, "<v>", out)
}

func TestCallableKindString(t *testing.T) {
	assert.Equal(t, "none", CallableNone.String())
	assert.Equal(t, "filter", CallableFilter.String())
	assert.Equal(t, "formatter", CallableFormatter.String())
}
