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

package structpb_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gstructpb "google.golang.org/protobuf/types/known/structpb"

	"github.com/EngFlow/tmplkit/adapt"
	adaptstructpb "github.com/EngFlow/tmplkit/adapt/structpb"
	"github.com/EngFlow/tmplkit/value"
)

func TestWalkScalars(t *testing.T) {
	assert.Equal(t, value.None(), adapt.Walk(adaptstructpb.Wrap(gstructpb.NewNullValue())))
	assert.Equal(t, value.Bool(true), adapt.Walk(adaptstructpb.Wrap(gstructpb.NewBoolValue(true))))
	assert.Equal(t, value.String("hi"), adapt.Walk(adaptstructpb.Wrap(gstructpb.NewStringValue("hi"))))
}

func TestWalkNarrowsExactIntegers(t *testing.T) {
	got := adapt.Walk(adaptstructpb.Wrap(gstructpb.NewNumberValue(42)))
	assert.Equal(t, value.Int(42), got)
}

func TestWalkKeepsFractionalAsFloat(t *testing.T) {
	got := adapt.Walk(adaptstructpb.Wrap(gstructpb.NewNumberValue(1.5)))
	assert.Equal(t, value.Float(1.5), got)
}

func TestWalkList(t *testing.T) {
	lv, err := gstructpb.NewList([]any{"a", "b", float64(3)})
	require.NoError(t, err)
	got := adapt.Walk(adaptstructpb.Wrap(gstructpb.NewListValue(lv)))
	list, ok := got.AsList()
	require.True(t, ok)
	require.Len(t, list, 3)
	assert.Equal(t, value.String("a"), list[0])
	assert.Equal(t, value.String("b"), list[1])
	assert.Equal(t, value.Int(3), list[2])
}

func TestWalkStructSortsKeysDeterministically(t *testing.T) {
	s, err := gstructpb.NewStruct(map[string]any{
		"z": "last",
		"a": "first",
		"m": "middle",
	})
	require.NoError(t, err)
	got := adapt.Walk(adaptstructpb.WrapStruct(s))
	m, ok := got.AsMap()
	require.True(t, ok)
	assert.Equal(t, []string{"a", "m", "z"}, m.Keys())
}

func TestWalkNestedStructAndList(t *testing.T) {
	s, err := gstructpb.NewStruct(map[string]any{
		"name": "Ada",
		"tags": []any{"x", "y"},
		"nested": map[string]any{
			"ok": true,
		},
	})
	require.NoError(t, err)
	got := adapt.Walk(adaptstructpb.WrapStruct(s))
	m, ok := got.AsMap()
	require.True(t, ok)

	name, ok := m.Get("name")
	require.True(t, ok)
	assert.Equal(t, value.String("Ada"), name)

	tags, ok := m.Get("tags")
	require.True(t, ok)
	tagList, ok := tags.AsList()
	require.True(t, ok)
	assert.Equal(t, []value.Value{value.String("x"), value.String("y")}, tagList)

	nested, ok := m.Get("nested")
	require.True(t, ok)
	nestedMap, ok := nested.AsMap()
	require.True(t, ok)
	okVal, ok := nestedMap.Get("ok")
	require.True(t, ok)
	assert.Equal(t, value.Bool(true), okVal)
}
