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

// Package adapt converts a foreign serialization tree into a value.Value
// without the value package needing to know that tree's concrete type.
// A caller implements Visitor over its own node type (a structpb.Value, a
// yaml.Node, anything shaped like a scalar/list/ordered-map tree) and
// passes it to Walk.
package adapt

import "github.com/EngFlow/tmplkit/value"

// Kind identifies which of the three shapes a Visitor node has. Unlike
// value.Kind, it does not distinguish among scalar types — that
// distinction is the Visitor implementation's job, surfaced through the
// value.Value its Scalar method returns.
type Kind int

const (
	// KindScalar nodes return their value directly.
	KindScalar Kind = iota
	// KindList nodes expose an ordered sequence of child Visitors.
	KindList
	// KindMap nodes expose an ordered sequence of key/Visitor pairs.
	KindMap
)

// Visitor is one node of a foreign tree being converted. Only the method
// matching Kind() is ever called by Walk.
type Visitor interface {
	// Kind reports which of Scalar, List, or Entries this node supports.
	Kind() Kind
	// Scalar returns this node's value.Value directly. Called only when
	// Kind() == KindScalar.
	Scalar() value.Value
	// List returns this node's children in order. Called only when
	// Kind() == KindList.
	List() []Visitor
	// Entries returns this node's key/value pairs in the tree's own
	// iteration order. Called only when Kind() == KindMap.
	Entries() []MapEntry
}

// MapEntry is one key/Visitor pair from a KindMap node.
type MapEntry struct {
	Key   string
	Value Visitor
}

// Walk converts v and its descendants into a value.Value, recursively
// converting List elements and Map entries while preserving map order
// into a value.OrderedMap.
func Walk(v Visitor) value.Value {
	switch v.Kind() {
	case KindList:
		children := v.List()
		items := make([]value.Value, len(children))
		for i, c := range children {
			items[i] = Walk(c)
		}
		return value.List(items)
	case KindMap:
		m := value.NewOrderedMap()
		for _, e := range v.Entries() {
			m.Set(e.Key, Walk(e.Value))
		}
		return value.Map(m)
	default:
		return v.Scalar()
	}
}
