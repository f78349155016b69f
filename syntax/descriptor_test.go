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

package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBeginPatternsLongestFirst(t *testing.T) {
	d := Default()
	patterns := d.BeginPatterns()
	require.Len(t, patterns, 3)
	for i := 1; i < len(patterns); i++ {
		assert.GreaterOrEqual(t, len(patterns[i-1].Text), len(patterns[i].Text))
	}
}

func TestFindBeginPrefersLongestAtSamePosition(t *testing.T) {
	// "{{" (expr) and "{%" (block) share the "{" prefix; a custom syntax
	// where block opens with "{{!" must win over a plain "{{" at the same
	// starting offset.
	d := New().Expr("{{", "}}").Block("{{!", "!}}").Comment("{#", "#}")
	p, offset, ok := d.FindBegin([]byte("x {{! y }}"))
	require.True(t, ok)
	assert.Equal(t, 2, offset)
	assert.Equal(t, ConstructBlock, p.Construct)
}

func TestFindBeginPrefersEarliestStart(t *testing.T) {
	d := Default()
	p, offset, ok := d.FindBegin([]byte("a {% b %} {{ c }}")) // block starts earlier
	require.True(t, ok)
	assert.Equal(t, 2, offset)
	assert.Equal(t, ConstructBlock, p.Construct)
}

func TestFindBeginNoMatch(t *testing.T) {
	d := Default()
	_, _, ok := d.FindBegin([]byte("no delimiters here"))
	assert.False(t, ok)
}

func TestEmptyDelimiterPanics(t *testing.T) {
	assert.Panics(t, func() {
		New().Expr("", "}}")
	})
	assert.Panics(t, func() {
		New().Block("{%", "")
	})
}

func TestCustomSyntax(t *testing.T) {
	d := New().Expr("<?", "?>").Block("{%", "%}").Comment("{#", "#}")
	assert.Equal(t, Delimiter{Open: "<?", Close: "?>"}, d.ExprDelim())
	assert.Equal(t, "?>", d.EndDelim(ConstructExpr))
}
