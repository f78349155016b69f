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

// Package structpb adapts google.golang.org/protobuf/types/known/structpb
// values into value.Value via adapt.Visitor, for callers whose context
// arrives as a decoded google.protobuf.Struct (e.g. read off the wire or
// out of a JSON-to-struct conversion).
package structpb

import (
	"sort"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/EngFlow/tmplkit/adapt"
	"github.com/EngFlow/tmplkit/value"
)

// Visitor wraps a *structpb.Value so it implements adapt.Visitor.
type Visitor struct {
	v *structpb.Value
}

// Wrap returns an adapt.Visitor over v.
func Wrap(v *structpb.Value) adapt.Visitor { return Visitor{v: v} }

// WrapStruct is a convenience for the common case of an object-shaped
// root: it wraps s as a structpb.Value holding a StructValue.
func WrapStruct(s *structpb.Struct) adapt.Visitor {
	return Wrap(structpb.NewStructValue(s))
}

// Kind reports the shape of the wrapped structpb.Value. structpb's own
// Kind union (NullValue, NumberValue, StringValue, BoolValue, StructValue,
// ListValue) maps directly onto adapt's three shapes.
func (w Visitor) Kind() adapt.Kind {
	switch w.v.GetKind().(type) {
	case *structpb.Value_StructValue:
		return adapt.KindMap
	case *structpb.Value_ListValue:
		return adapt.KindList
	default:
		return adapt.KindScalar
	}
}

// Scalar converts a null/number/string/bool structpb.Value. structpb has
// no int/float distinction — NumberValue is a float64 — so a number is
// narrowed to value.Int only when it round-trips through float64 exactly,
// a deliberate adapter-level choice (structpb can't represent "this came
// from an integer field" any other way) rather than always widening to
// value.Float.
func (w Visitor) Scalar() value.Value {
	switch k := w.v.GetKind().(type) {
	case nil, *structpb.Value_NullValue:
		return value.None()
	case *structpb.Value_BoolValue:
		return value.Bool(k.BoolValue)
	case *structpb.Value_StringValue:
		return value.String(k.StringValue)
	case *structpb.Value_NumberValue:
		f := k.NumberValue
		if i := int64(f); float64(i) == f {
			return value.Int(i)
		}
		return value.Float(f)
	default:
		return value.None()
	}
}

// List returns the wrapped ListValue's elements in their stored order.
func (w Visitor) List() []adapt.Visitor {
	elems := w.v.GetListValue().GetValues()
	out := make([]adapt.Visitor, len(elems))
	for i, e := range elems {
		out[i] = Wrap(e)
	}
	return out
}

// Entries returns the wrapped Struct's fields sorted by key: proto map
// fields carry no iteration order of their own, so sorting is the only
// way to make repeated conversions of the same Struct deterministic.
func (w Visitor) Entries() []adapt.MapEntry {
	fields := w.v.GetStructValue().GetFields()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]adapt.MapEntry, len(keys))
	for i, k := range keys {
		out[i] = adapt.MapEntry{Key: k, Value: Wrap(fields[k])}
	}
	return out
}
