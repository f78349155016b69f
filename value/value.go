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

// Package value implements the tagged value model that template contexts
// and expressions operate on: a recursive sum of none/bool/int/float/string/
// list/map variants, plus structural equality, truthiness and path
// resolution over it.
package value

import (
	"fmt"
	"math"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBool:
		return "bool"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a tagged, recursive variant. It is a struct rather than an
// interface: the spec calls for a closed sum of variants, not an open,
// inheritance-style hierarchy, so scope lookup and filters switch on Kind
// instead of type-asserting an interface.
type Value struct {
	kind Kind
	payload any
}

// None returns the none value.
func None() Value { return Value{kind: KindNone} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, payload: b} }

// Int wraps a 64-bit signed integer.
func Int(i int64) Value { return Value{kind: KindInt, payload: i} }

// Float wraps a 64-bit IEEE-754 float.
func Float(f float64) Value { return Value{kind: KindFloat, payload: f} }

// String wraps UTF-8 text.
func String(s string) Value { return Value{kind: KindString, payload: s} }

// List wraps an ordered sequence of Values. The slice is retained, not
// copied; callers should not mutate it afterwards.
func List(items []Value) Value { return Value{kind: KindList, payload: items} }

// Map wraps an insertion-order-preserving map.
func Map(m *OrderedMap) Value { return Value{kind: KindMap, payload: m} }

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// AsBool returns the boolean payload, if v is a bool.
func (v Value) AsBool() (bool, bool) {
	b, ok := v.payload.(bool)
	return b, ok
}

// AsInt returns the integer payload, if v is an integer.
func (v Value) AsInt() (int64, bool) {
	i, ok := v.payload.(int64)
	return i, ok
}

// AsFloat returns the float payload, if v is a float.
func (v Value) AsFloat() (float64, bool) {
	f, ok := v.payload.(float64)
	return f, ok
}

// AsString returns the string payload, if v is a string.
func (v Value) AsString() (string, bool) {
	s, ok := v.payload.(string)
	return s, ok
}

// AsList returns the list payload, if v is a list.
func (v Value) AsList() ([]Value, bool) {
	l, ok := v.payload.([]Value)
	return l, ok
}

// AsMap returns the map payload, if v is a map.
func (v Value) AsMap() (*OrderedMap, bool) {
	m, ok := v.payload.(*OrderedMap)
	return m, ok
}

// Truthy implements the spec's truthiness rule, total over every Kind: it
// never panics and never fails, so conditionals and the for-loop empty-skip
// can always project a Value onto a bool.
func Truthy(v Value) bool {
	switch v.kind {
	case KindNone:
		return false
	case KindBool:
		b, _ := v.AsBool()
		return b
	case KindInt:
		i, _ := v.AsInt()
		return i != 0
	case KindFloat:
		f, _ := v.AsFloat()
		if math.IsNaN(f) {
			return true
		}
		return f != 0
	case KindString:
		s, _ := v.AsString()
		return s != ""
	case KindList:
		l, _ := v.AsList()
		return len(l) != 0
	case KindMap:
		m, _ := v.AsMap()
		return m.Len() != 0
	default:
		return false
	}
}

// Equal reports whether a and b are structurally equal.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNone:
		return true
	case KindBool:
		av, _ := a.AsBool()
		bv, _ := b.AsBool()
		return av == bv
	case KindInt:
		av, _ := a.AsInt()
		bv, _ := b.AsInt()
		return av == bv
	case KindFloat:
		av, _ := a.AsFloat()
		bv, _ := b.AsFloat()
		return av == bv
	case KindString:
		av, _ := a.AsString()
		bv, _ := b.AsString()
		return av == bv
	case KindList:
		av, _ := a.AsList()
		bv, _ := b.AsList()
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case KindMap:
		am, _ := a.AsMap()
		bm, _ := b.AsMap()
		if am.Len() != bm.Len() {
			return false
		}
		for _, key := range am.Keys() {
			av, ok := am.Get(key)
			if !ok {
				return false
			}
			bv, ok := bm.Get(key)
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders v for debugging and fmt.Stringer-compatible contexts.
// Scalars other than none render as the default formatter writes them;
// unlike the default formatter, none renders as "none" and lists and maps
// render in a bracketed debug form instead of failing.
func (v Value) String() string {
	switch v.kind {
	case KindNone:
		return "none"
	case KindBool:
		b, _ := v.AsBool()
		return fmt.Sprintf("%t", b)
	case KindInt:
		i, _ := v.AsInt()
		return fmt.Sprintf("%d", i)
	case KindFloat:
		f, _ := v.AsFloat()
		return formatFloat(f)
	case KindString:
		s, _ := v.AsString()
		return s
	case KindList:
		l, _ := v.AsList()
		return fmt.Sprintf("%v", l)
	case KindMap:
		m, _ := v.AsMap()
		return m.String()
	default:
		return ""
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	default:
		return fmtFloatShortest(f)
	}
}
