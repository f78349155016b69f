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
	"errors"

	"github.com/EngFlow/tmplkit/source"
	"github.com/EngFlow/tmplkit/tmplerr"
	"github.com/EngFlow/tmplkit/value"
)

// classifyResolveError maps a value.Resolve failure onto a reported error
// kind and message. value.Resolve lives in a package with no notion of
// tmplerr (it has no template/span context of its own), so the
// translation happens here at the render boundary.
func classifyResolveError(err error) (tmplerr.Kind, string) {
	var rerr *value.ResolveError
	if errors.As(err, &rerr) {
		switch rerr.Reason {
		case "not found":
			return tmplerr.NotFound, rerr.Error()
		case "out of range":
			return tmplerr.OutOfRange, rerr.Error()
		default:
			return tmplerr.CannotIndex, rerr.Error()
		}
	}
	return tmplerr.NotFound, err.Error()
}

// wrapDefaultFormatterError classifies a DefaultFormatter failure: its
// typed rejection of a list/map value is a wrong-filter-type (the value's
// kind doesn't support textual conversion, not a sink failure), while
// anything else is a genuine io.Writer error.
func wrapDefaultFormatterError(template, src string, span source.Span, err error) error {
	var notFormattable *notFormattableError
	if errors.As(err, &notFormattable) {
		return tmplerr.New(tmplerr.WrongFilterType, template, src, span, err.Error())
	}
	return tmplerr.New(tmplerr.IOError, template, src, span, err.Error())
}

// wrapFilterError wraps a filter or formatter's returned error with the
// callable's name and invocation span (spec.md §7). If the callable
// already returned a *tmplerr.Error (e.g. via its own typed-access
// helpers), its Kind is preserved; otherwise the error is reported as
// wrong-filter-type, the closest existing kind for "this callable's
// implementation rejected its input" with no more specific category.
func wrapFilterError(template, src string, span source.Span, name string, err error) error {
	kind := tmplerr.WrongFilterType
	if existing, ok := tmplerr.KindOf(err); ok {
		kind = existing
	}
	return tmplerr.Wrap(kind, template, src, span, "filter/formatter "+name+" failed", err)
}
