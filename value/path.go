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

package value

import (
	"fmt"
	"strconv"
)

// Segment is one step of a Path: either a string key (map lookup) or a
// non-negative integer index (list lookup).
type Segment struct {
	isIndex bool
	key     string
	index   int
	// optional marks a "?." segment: if the prior resolution step yielded
	// none, the remaining path resolves to none without error.
	optional bool
}

// Key builds a string-key segment.
func Key(k string) Segment { return Segment{key: k} }

// KeyOptional builds a string-key segment reached via optional chaining.
func KeyOptional(k string) Segment { return Segment{key: k, optional: true} }

// Index builds an integer-index segment.
func Index(i int) Segment { return Segment{isIndex: true, index: i} }

// IndexOptional builds an integer-index segment reached via optional
// chaining.
func IndexOptional(i int) Segment { return Segment{isIndex: true, index: i, optional: true} }

func (s Segment) String() string {
	if s.isIndex {
		return strconv.Itoa(s.index)
	}
	return s.key
}

// Path is a non-empty ordered sequence of Segments navigating a Value.
type Path []Segment

func (p Path) String() string {
	s := ""
	for i, seg := range p {
		if i > 0 {
			s += "."
		}
		s += seg.String()
	}
	return s
}

// ResolveError describes why Resolve failed to navigate a Path.
type ResolveError struct {
	Path    Path
	AtIndex int
	Reason  string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path[:e.AtIndex+1], e.Reason)
}

// Resolve navigates root along path, per the spec's resolution rules:
//
//   - a map segment looks up its string key, or fails "not found"; an
//     integer Segment against a map is looked up as its decimal string form
//   - a list segment looks up its integer index, or fails "out of range";
//     a string-key segment against a list always fails "cannot index list
//     by name"
//   - any segment against a scalar or none fails "cannot index a <kind>"
//   - a segment marked optional that is reached while the current value is
//     none resolves the remainder of the path to none without error
func Resolve(root Value, path Path) (Value, error) {
	current := root
	shortCircuited := false
	for i, seg := range path {
		if shortCircuited {
			continue
		}
		if seg.optional && current.Kind() == KindNone {
			shortCircuited = true
			continue
		}
		next, err := resolveSegment(current, seg)
		if err != nil {
			return Value{}, &ResolveError{Path: path, AtIndex: i, Reason: err.Error()}
		}
		current = next
	}
	if shortCircuited {
		return None(), nil
	}
	return current, nil
}

func resolveSegment(current Value, seg Segment) (Value, error) {
	switch current.Kind() {
	case KindMap:
		m, _ := current.AsMap()
		key := seg.key
		if seg.isIndex {
			key = strconv.Itoa(seg.index)
		}
		v, ok := m.Get(key)
		if !ok {
			return Value{}, fmt.Errorf("not found")
		}
		return v, nil

	case KindList:
		l, _ := current.AsList()
		if !seg.isIndex {
			return Value{}, fmt.Errorf("cannot index list by name")
		}
		if seg.index < 0 || seg.index >= len(l) {
			return Value{}, fmt.Errorf("out of range")
		}
		return l[seg.index], nil

	default:
		return Value{}, fmt.Errorf("cannot index a %s", current.Kind())
	}
}
