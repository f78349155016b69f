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

	"github.com/EngFlow/tmplkit/value"
)

// frame is one element of the scope stack: a root frame, a for-loop frame,
// or an include frame. lookup resolves a top-level identifier's Value;
// false means "not bound in this frame", leaving the search to continue
// outward.
type frame interface {
	lookup(name string) (value.Value, bool)
}

// scopeStack searches its frames innermost to outermost, per spec.md
// §4.5.3.
type scopeStack struct {
	frames []frame
}

func (s *scopeStack) push(f frame) { s.frames = append(s.frames, f) }

func (s *scopeStack) pop() { s.frames = s.frames[:len(s.frames)-1] }

func (s *scopeStack) lookup(name string) (value.Value, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := s.frames[i].lookup(name); ok {
			return v, true
		}
	}
	return value.Value{}, false
}

// eagerFrame wraps a single Value acting as the context root (or a
// `with`-provided include override): a top-level identifier resolves as a
// key lookup into the Value, which must be a map to bind anything.
type eagerFrame struct {
	v value.Value
}

func (f *eagerFrame) lookup(name string) (value.Value, bool) {
	m, ok := f.v.AsMap()
	if !ok {
		return value.Value{}, false
	}
	return m.Get(name)
}

// lazyFrame implements spec.md §4.5.3/§9's "lazy root": the caller supplies
// a resolver callback instead of an eager Value, and each name's first
// resolution within a render is memoized so a repeated reference to the
// same name invokes the resolver only once.
type lazyFrame struct {
	resolver func(name string) (value.Value, bool)
	memo     map[string]value.Value
}

func (f *lazyFrame) lookup(name string) (value.Value, bool) {
	if v, ok := f.memo[name]; ok {
		return v, true
	}
	v, ok := f.resolver(name)
	if !ok {
		return value.Value{}, false
	}
	if f.memo == nil {
		f.memo = make(map[string]value.Value)
	}
	f.memo[name] = v
	return v, true
}

// includeFrame binds an optional `with`-provided override of the context
// root for the duration of one INCLUDE's sub-render. When no override was
// given, it contributes no bindings and exists purely to mark the include
// boundary (depth bookkeeping happens alongside it in the VM, not here).
type includeFrame struct {
	override value.Value
	hasOverride bool
}

func (f *includeFrame) lookup(name string) (value.Value, bool) {
	if !f.hasOverride {
		return value.Value{}, false
	}
	m, ok := f.override.AsMap()
	if !ok {
		return value.Value{}, false
	}
	return m.Get(name)
}

// forIterState is both the scope frame for a running for-loop's bound
// variables and the iteration cursor FOR_NEXT advances. keys is nil for
// list/string iteration (the two-variable form binds the zero-based
// index instead); it holds one value.String per entry for map iteration
// (the two-variable form binds the map key).
type forIterState struct {
	varA, varB string
	elems      []value.Value
	keys       []value.Value
	idx        int
}

func (s *forIterState) lookup(name string) (value.Value, bool) {
	switch name {
	case s.varA:
		if s.varB == "" {
			return s.elems[s.idx], true
		}
		if s.keys != nil {
			return s.keys[s.idx], true
		}
		return value.Int(int64(s.idx)), true
	case s.varB:
		if s.varB == "" {
			return value.Value{}, false
		}
		return s.elems[s.idx], true
	default:
		return value.Value{}, false
	}
}

func (s *forIterState) exhausted() bool { return s.idx >= len(s.elems) }

// buildForIterState implements the for-loop iterability rules of
// spec.md §4.5.4: None and an empty list/map/string skip the loop body
// silently (ok=false, err=nil); a non-empty list/map/string produces a
// cursor; any other kind is a render error regardless of truthiness.
func buildForIterState(v value.Value, varA, varB string) (state *forIterState, ok bool, err error) {
	switch v.Kind() {
	case value.KindNone:
		return nil, false, nil

	case value.KindList:
		elems, _ := v.AsList()
		if len(elems) == 0 {
			return nil, false, nil
		}
		return &forIterState{varA: varA, varB: varB, elems: elems}, true, nil

	case value.KindMap:
		m, _ := v.AsMap()
		if m.Len() == 0 {
			return nil, false, nil
		}
		keys := m.Keys()
		elems := make([]value.Value, len(keys))
		keyVals := make([]value.Value, len(keys))
		for i, k := range keys {
			ev, _ := m.Get(k)
			elems[i] = ev
			keyVals[i] = value.String(k)
		}
		return &forIterState{varA: varA, varB: varB, elems: elems, keys: keyVals}, true, nil

	case value.KindString:
		s, _ := v.AsString()
		var elems []value.Value
		for _, r := range s {
			elems = append(elems, value.String(string(r)))
		}
		if len(elems) == 0 {
			return nil, false, nil
		}
		return &forIterState{varA: varA, varB: varB, elems: elems}, true, nil

	default:
		return nil, false, fmt.Errorf("value of kind %s is not iterable", v.Kind())
	}
}
