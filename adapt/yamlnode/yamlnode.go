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

// Package yamlnode adapts gopkg.in/yaml.v3 *yaml.Node trees into
// value.Value via adapt.Visitor, for callers whose context arrives as a
// parsed YAML document rather than Go structs.
package yamlnode

import (
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/EngFlow/tmplkit/adapt"
	"github.com/EngFlow/tmplkit/value"
)

// Visitor wraps a *yaml.Node so it implements adapt.Visitor.
type Visitor struct {
	n *yaml.Node
}

// Wrap returns an adapt.Visitor over n. A yaml.DocumentNode is unwrapped
// to its single child automatically, so callers can pass either the node
// returned by yaml.Node.Decode's target or the document root itself.
func Wrap(n *yaml.Node) adapt.Visitor {
	if n.Kind == yaml.DocumentNode && len(n.Content) == 1 {
		n = n.Content[0]
	}
	return Visitor{n: n}
}

// Kind reports the shape of the wrapped node. Alias nodes are resolved
// to whatever they point at before classifying.
func (w Visitor) Kind() adapt.Kind {
	n := resolveAlias(w.n)
	switch n.Kind {
	case yaml.MappingNode:
		return adapt.KindMap
	case yaml.SequenceNode:
		return adapt.KindList
	default:
		return adapt.KindScalar
	}
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// Scalar converts a yaml.ScalarNode by its resolved tag
// (!!null/!!bool/!!int/!!float/!!str and their merge/binary variants fall
// through to string). Untagged scalars (Tag == "") are resolved the same
// way yaml.v3's own Decode would via ShortTag, so "true"/"123" parse as
// bool/int even when the document omitted an explicit tag.
func (w Visitor) Scalar() value.Value {
	n := resolveAlias(w.n)
	tag := n.ShortTag()
	switch tag {
	case "!!null":
		return value.None()
	case "!!bool":
		if b, err := strconv.ParseBool(n.Value); err == nil {
			return value.Bool(b)
		}
	case "!!int":
		if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
			return value.Int(i)
		}
	case "!!float":
		if f, err := strconv.ParseFloat(n.Value, 64); err == nil {
			return value.Float(f)
		}
	}
	return value.String(n.Value)
}

// List returns a SequenceNode's elements in document order.
func (w Visitor) List() []adapt.Visitor {
	n := resolveAlias(w.n)
	out := make([]adapt.Visitor, len(n.Content))
	for i, c := range n.Content {
		out[i] = Wrap(c)
	}
	return out
}

// Entries returns a MappingNode's key/value pairs in document order.
// yaml.v3 stores a mapping's Content as a flat [key0, val0, key1, val1,
// ...] slice; map keys that aren't plain scalars (a YAML feature this
// adapter doesn't support) are rendered via their scalar Value verbatim.
func (w Visitor) Entries() []adapt.MapEntry {
	n := resolveAlias(w.n)
	out := make([]adapt.MapEntry, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode := resolveAlias(n.Content[i])
		out = append(out, adapt.MapEntry{Key: keyNode.Value, Value: Wrap(n.Content[i+1])})
	}
	return out
}
