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

package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruthy(t *testing.T) {
	testCases := []struct {
		name     string
		v        Value
		expected bool
	}{
		{name: "none", v: None(), expected: false},
		{name: "bool true", v: Bool(true), expected: true},
		{name: "bool false", v: Bool(false), expected: false},
		{name: "int zero", v: Int(0), expected: false},
		{name: "int nonzero", v: Int(-1), expected: true},
		{name: "float zero", v: Float(0), expected: false},
		{name: "float negative zero", v: Float(math.Copysign(0, -1)), expected: false},
		{name: "float NaN", v: Float(math.NaN()), expected: true},
		{name: "float nonzero", v: Float(0.1), expected: true},
		{name: "empty string", v: String(""), expected: false},
		{name: "nonempty string", v: String("x"), expected: true},
		{name: "empty list", v: List(nil), expected: false},
		{name: "nonempty list", v: List([]Value{Int(1)}), expected: true},
		{name: "empty map", v: Map(NewOrderedMap()), expected: false},
		{name: "nonempty map", v: Map(MapOf(KV{"a", Int(1)})), expected: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Truthy(tc.v))
		})
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Int(1), Int(1)))
	assert.False(t, Equal(Int(1), Int(2)))
	assert.False(t, Equal(Int(1), Float(1)))
	assert.True(t, Equal(String("a"), String("a")))
	assert.True(t, Equal(List([]Value{Int(1), Int(2)}), List([]Value{Int(1), Int(2)})))
	assert.False(t, Equal(List([]Value{Int(1)}), List([]Value{Int(1), Int(2)})))
	assert.True(t, Equal(Map(MapOf(KV{"a", Int(1)})), Map(MapOf(KV{"a", Int(1)}))))
	assert.False(t, Equal(Map(MapOf(KV{"a", Int(1)})), Map(MapOf(KV{"a", Int(2)}))))
}

func TestFloatFormatting(t *testing.T) {
	testCases := []struct {
		f        float64
		expected string
	}{
		{f: 0.1, expected: "0.1"},
		{f: 1e20, expected: "1e+20"},
		{f: 2.0, expected: "2"},
		{f: math.Copysign(0, -1), expected: "-0"},
		{f: math.NaN(), expected: "NaN"},
		{f: math.Inf(1), expected: "inf"},
		{f: math.Inf(-1), expected: "-inf"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, Float(tc.f).String())
	}
}

func TestOrderedMapIterationOrder(t *testing.T) {
	m := NewOrderedMap()
	m.Set("b", Int(2))
	m.Set("a", Int(1))
	m.Set("c", Int(3))
	m.Set("a", Int(10)) // replace, should keep position

	assert.Equal(t, []string{"b", "a", "c"}, m.Keys())
	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, Int(10), v)

	var seen []string
	for k := range m.All() {
		seen = append(seen, k)
	}
	assert.Equal(t, []string{"b", "a", "c"}, seen)
}
