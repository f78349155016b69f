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

package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContext(t *testing.T) {
	src := "Hello {{ bogus }}!"
	line, caret := Context(src, Span{Start: 9, End: 14})
	assert.Equal(t, src, line)
	assert.Equal(t, "         ^^^^^", caret)
}

func TestContextWideRunes(t *testing.T) {
	src := "全角 {{ x }}"
	// The two wide characters count as 2 display columns each, plus the
	// ascii space before "{{", for a 5-column-wide caret prefix.
	start := len("全角 ")
	_, caret := Context(src, Span{Start: start, End: start + 2})
	assert.Equal(t, "     ^^", caret)
}
