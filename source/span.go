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

// Package source provides byte-range references into template sources and
// line/column recovery for diagnostics.
package source

import "fmt"

// Span is a half-open byte range [Start, End) within a template's source
// text. Spans are attached to tokens, AST nodes and compiled instructions so
// that errors can point back at the exact source fragment that caused them.
type Span struct {
	Start, End int
}

// Cursor is a 1-based line/column position, natural for humans and for
// editor integrations.
type Cursor struct {
	Line, Column int
}

// CursorInit is the position at the beginning of a source.
var CursorInit = Cursor{Line: 1, Column: 1}

func (c Cursor) String() string {
	return fmt.Sprintf("%d:%d", c.Line, c.Column)
}

// Len reports the number of bytes the span covers.
func (s Span) Len() int { return s.End - s.Start }

// Slice returns the substring of src covered by s.
func (s Span) Slice(src string) string {
	return src[s.Start:s.End]
}

// Join returns the smallest span covering both s and other.
func (s Span) Join(other Span) Span {
	start, end := s.Start, s.End
	if other.Start < start {
		start = other.Start
	}
	if other.End > end {
		end = other.End
	}
	return Span{Start: start, End: end}
}

// CursorAt returns the line/column position of the given byte offset within
// src, counting runes (not bytes) for the column, matching the convention
// editors use for display columns.
func CursorAt(src string, offset int) Cursor {
	if offset > len(src) {
		offset = len(src)
	}
	cur := CursorInit
	lineStart := 0
	for i := 0; i < offset; i++ {
		if src[i] == '\n' {
			cur.Line++
			lineStart = i + 1
		}
	}
	cur.Column = 1 + runeCount(src[lineStart:offset])
	return cur
}

func runeCount(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}
