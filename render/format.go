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

package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/EngFlow/tmplkit/value"
)

// notFormattableError marks DefaultFormatter's list/map rejection so
// callers can tell it apart from a genuine io.Writer failure, which
// otherwise looks like any other error returned from this function.
type notFormattableError struct {
	kind value.Kind
}

func (e *notFormattableError) Error() string {
	return fmt.Sprintf("value of kind %s is not formattable", e.kind)
}

// DefaultFormatter implements spec.md §4.5.5's default formatter: none as
// empty, bool as true/false, numbers in natural decimal form, strings
// verbatim, and a typed failure for list/map (there is no natural textual
// form for a compound value).
func DefaultFormatter(w io.Writer, v value.Value) error {
	switch v.Kind() {
	case value.KindNone:
		return nil
	case value.KindBool:
		b, _ := v.AsBool()
		_, err := io.WriteString(w, strconv.FormatBool(b))
		return err
	case value.KindInt:
		i, _ := v.AsInt()
		_, err := io.WriteString(w, strconv.FormatInt(i, 10))
		return err
	case value.KindFloat:
		_, err := io.WriteString(w, v.String())
		return err
	case value.KindString:
		s, _ := v.AsString()
		_, err := io.WriteString(w, s)
		return err
	default:
		return &notFormattableError{kind: v.Kind()}
	}
}
