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

	"github.com/EngFlow/tmplkit/compile"
	"github.com/EngFlow/tmplkit/parse"
	"github.com/EngFlow/tmplkit/source"
	"github.com/EngFlow/tmplkit/tmplerr"
	"github.com/EngFlow/tmplkit/value"
)

// Render executes prog against root, writing output to w. Rendering stops
// at the first error, per spec.md §4.6/§7.
func Render(env *Env, prog *compile.Program, root Root, w io.Writer) error {
	rt := &runtime{env: env}
	rt.scope.push(root.newFrame())
	return rt.run(prog, w, 0)
}

// runtime holds the state shared across one top-level render and all of
// its INCLUDE sub-renders: the registries (env) and the scope stack, which
// include and for-loop frames push onto and pop from as execution nests.
type runtime struct {
	env   *Env
	scope scopeStack
}

func (rt *runtime) run(prog *compile.Program, w io.Writer, includeDepth int) error {
	f := &execFrame{rt: rt, template: prog.Name, src: prog.Source, w: w}
	return f.exec(prog, includeDepth)
}

// execFrame is the per-Program execution context: its own value stack,
// for-loop cursor stack and instruction pointer. Each INCLUDE sub-render
// gets a fresh execFrame (via runtime.run), so nested programs never share
// operand stacks, per spec.md §4.5.1's stack-machine model.
type execFrame struct {
	rt       *runtime
	template string
	src      string
	w        io.Writer

	values []value.Value
	forStk []*forIterState
}

func (f *execFrame) push(v value.Value) { f.values = append(f.values, v) }

func (f *execFrame) pop() value.Value {
	n := len(f.values)
	if n == 0 {
		tmplerr.Fatalf(tmplerr.NestingTooDeep, "render: value stack underflow")
	}
	v := f.values[n-1]
	f.values = f.values[:n-1]
	return v
}

func (f *execFrame) popN(n int) []value.Value {
	out := make([]value.Value, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = f.pop()
	}
	return out
}

func (f *execFrame) exec(prog *compile.Program, includeDepth int) error {
	pc := 0
	instrs := prog.Instructions
	for pc < len(instrs) {
		instr := instrs[pc]
		switch instr.Op {
		case compile.OpEmitRaw:
			if _, err := io.WriteString(f.w, instr.Raw); err != nil {
				return tmplerr.New(tmplerr.IOError, f.template, f.src, instr.Span, err.Error())
			}
			pc++

		case compile.OpPushValue:
			v, err := f.resolvePath(instr.Path)
			if err != nil {
				return err
			}
			f.push(v)
			pc++

		case compile.OpPushLiteral:
			f.push(instr.Literal)
			pc++

		case compile.OpApplyFilter:
			args := f.popN(instr.Argc)
			receiver := f.pop()
			result, err := f.applyFilter(instr.Name, receiver, args, instr.Span)
			if err != nil {
				return err
			}
			f.push(result)
			pc++

		case compile.OpTestTruthy:
			v := f.pop()
			f.push(value.Bool(value.Truthy(v)))
			pc++

		case compile.OpJumpIfFalse:
			v := f.pop()
			b, _ := v.AsBool()
			if !b {
				pc = instr.Target
			} else {
				pc++
			}

		case compile.OpJump:
			pc = instr.Target

		case compile.OpForBegin:
			v, err := f.resolvePath(instr.Path)
			if err != nil {
				return err
			}
			state, ok, err := buildForIterState(v, instr.VarA, instr.VarB)
			if err != nil {
				return tmplerr.New(tmplerr.NotIterable, f.template, f.src, instr.Span, err.Error())
			}
			if !ok {
				pc = instr.Target
				continue
			}
			f.forStk = append(f.forStk, state)
			f.rt.scope.push(state)
			pc++

		case compile.OpForNext:
			top := f.forStk[len(f.forStk)-1]
			top.idx++
			if top.exhausted() {
				f.forStk = f.forStk[:len(f.forStk)-1]
				f.rt.scope.pop()
				pc = instr.Target2
			} else {
				pc = instr.Target
			}

		case compile.OpInclude:
			if err := f.execInclude(instr, includeDepth); err != nil {
				return err
			}
			pc++

		case compile.OpEmitExpr:
			if err := f.execEmitExpr(instr); err != nil {
				return err
			}
			pc++

		case compile.OpPopScope:
			f.rt.scope.pop()
			pc++

		default:
			tmplerr.Fatalf(tmplerr.NestingTooDeep, "render: unhandled opcode %s", instr.Op)
		}
	}
	return nil
}

func (f *execFrame) resolvePath(p *parse.PathExpr) (value.Value, error) {
	var root value.Value
	if p.Root == compile.ForIterSyntheticRoot {
		root = f.pop()
	} else {
		v, ok := f.rt.scope.lookup(p.Root)
		if !ok {
			return value.Value{}, tmplerr.New(tmplerr.NotFound, f.template, f.src, p.RootSpan,
				fmt.Sprintf("undefined name %q", p.Root))
		}
		root = v
	}
	if len(p.Segments) == 0 {
		return root, nil
	}
	result, err := value.Resolve(root, value.Path(p.Segments))
	if err != nil {
		kind, reason := classifyResolveError(err)
		return value.Value{}, tmplerr.New(kind, f.template, f.src, p.SpanVal, reason)
	}
	return result, nil
}

func (f *execFrame) applyFilter(name string, receiver value.Value, args []value.Value, span source.Span) (value.Value, error) {
	fn, ok := f.rt.env.lookupFilter(name)
	if !ok {
		return value.Value{}, tmplerr.New(tmplerr.FilterNotFound, f.template, f.src, span,
			fmt.Sprintf("no filter registered for %q", name))
	}
	result, err := fn(receiver, args)
	if err != nil {
		return value.Value{}, wrapFilterError(f.template, f.src, span, name, err)
	}
	return result, nil
}

func (f *execFrame) execEmitExpr(instr compile.Instruction) error {
	if instr.TerminalName == "" {
		receiver := f.pop()
		if err := f.rt.env.DefaultFormatter(f.w, receiver); err != nil {
			return wrapDefaultFormatterError(f.template, f.src, instr.Span, err)
		}
		return nil
	}

	if fmtFn, ok := f.rt.env.lookupFormatter(instr.TerminalName); ok {
		if instr.TerminalArgc != 0 {
			return tmplerr.New(tmplerr.WrongFilterArity, f.template, f.src, instr.Span,
				fmt.Sprintf("formatter %q takes no arguments", instr.TerminalName))
		}
		receiver := f.pop()
		if err := fmtFn(f.w, receiver); err != nil {
			return wrapFilterError(f.template, f.src, instr.Span, instr.TerminalName, err)
		}
		return nil
	}

	if filterFn, ok := f.rt.env.lookupFilter(instr.TerminalName); ok {
		args := f.popN(instr.TerminalArgc)
		receiver := f.pop()
		result, err := filterFn(receiver, args)
		if err != nil {
			return wrapFilterError(f.template, f.src, instr.Span, instr.TerminalName, err)
		}
		if err := f.rt.env.DefaultFormatter(f.w, result); err != nil {
			return wrapDefaultFormatterError(f.template, f.src, instr.Span, err)
		}
		return nil
	}

	return tmplerr.New(tmplerr.FilterNotFound, f.template, f.src, instr.Span,
		fmt.Sprintf("%q is neither a registered filter nor a registered formatter", instr.TerminalName))
}

func (f *execFrame) execInclude(instr compile.Instruction, includeDepth int) error {
	var override value.Value
	hasOverride := instr.HasWith
	if hasOverride {
		override = f.pop()
	}
	prog, ok := f.rt.env.lookupTemplate(instr.Name)
	if !ok {
		return tmplerr.New(tmplerr.TemplateNotFound, f.template, f.src, instr.Span,
			fmt.Sprintf("no template registered with name %q", instr.Name))
	}
	if includeDepth+1 > f.rt.env.MaxIncludeDepth {
		return tmplerr.New(tmplerr.MaxIncludeDepth, f.template, f.src, instr.Span,
			fmt.Sprintf("include depth exceeds maximum of %d", f.rt.env.MaxIncludeDepth))
	}
	f.rt.scope.push(&includeFrame{override: override, hasOverride: hasOverride})
	err := f.rt.run(prog, f.w, includeDepth+1)
	f.rt.scope.pop()
	return err
}
