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

package yamlnode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/EngFlow/tmplkit/adapt"
	"github.com/EngFlow/tmplkit/adapt/yamlnode"
	"github.com/EngFlow/tmplkit/value"
)

func parseDoc(t *testing.T, src string) *yaml.Node {
	t.Helper()
	var n yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &n))
	return &n
}

func TestWalkScalars(t *testing.T) {
	doc := parseDoc(t, "true")
	assert.Equal(t, value.Bool(true), adapt.Walk(yamlnode.Wrap(doc)))

	doc = parseDoc(t, "123")
	assert.Equal(t, value.Int(123), adapt.Walk(yamlnode.Wrap(doc)))

	doc = parseDoc(t, "1.5")
	assert.Equal(t, value.Float(1.5), adapt.Walk(yamlnode.Wrap(doc)))

	doc = parseDoc(t, "null")
	assert.Equal(t, value.None(), adapt.Walk(yamlnode.Wrap(doc)))

	doc = parseDoc(t, `"hello"`)
	assert.Equal(t, value.String("hello"), adapt.Walk(yamlnode.Wrap(doc)))
}

func TestWalkPreservesMappingKeyOrder(t *testing.T) {
	doc := parseDoc(t, "z: 1\na: 2\nm: 3\n")
	got := adapt.Walk(yamlnode.Wrap(doc))
	m, ok := got.AsMap()
	require.True(t, ok)
	assert.Equal(t, []string{"z", "a", "m"}, m.Keys())
}

func TestWalkNestedSequenceAndMapping(t *testing.T) {
	doc := parseDoc(t, "name: Ada\ntags:\n  - x\n  - y\nnested:\n  ok: true\n")
	got := adapt.Walk(yamlnode.Wrap(doc))
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

func TestWalkResolvesAliases(t *testing.T) {
	doc := parseDoc(t, "base: &b 1\nalias: *b\n")
	got := adapt.Walk(yamlnode.Wrap(doc))
	m, ok := got.AsMap()
	require.True(t, ok)
	alias, ok := m.Get("alias")
	require.True(t, ok)
	assert.Equal(t, value.Int(1), alias)
}
