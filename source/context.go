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
	"strings"

	"golang.org/x/text/width"
)

// Context renders the source line containing span.Start, followed by a
// caret-underline line pointing at the span. displayWidth accounts for
// East-Asian wide/fullwidth runes occupying two terminal columns; all other
// runes (including ones x/text/width has no opinion on) count as one.
func Context(src string, span Span) (lineText string, caretLine string) {
	lineStart := strings.LastIndexByte(src[:min(span.Start, len(src))], '\n') + 1
	lineEnd := len(src)
	if idx := strings.IndexByte(src[span.Start:], '\n'); idx >= 0 {
		lineEnd = span.Start + idx
	}
	lineText = src[lineStart:lineEnd]

	prefixWidth := displayWidth(src[lineStart:span.Start])
	caretWidth := displayWidth(src[span.Start:min(span.End, lineEnd)])
	if caretWidth < 1 {
		caretWidth = 1
	}
	caretLine = strings.Repeat(" ", prefixWidth) + strings.Repeat("^", caretWidth)
	return lineText, caretLine
}

// displayWidth estimates the number of terminal columns s occupies, widening
// East-Asian Wide and Fullwidth runes to 2 columns.
func displayWidth(s string) int {
	total := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			total += 2
		default:
			total++
		}
	}
	return total
}
