package uniform

import (
	"fmt"
	"io"
	"iter"
)

type entry struct {
	Declaration

	tree    Node
	routine *Routine
	slot    int
}

// Program evaluates compiled declarations. A program is not safe for
// concurrent use.
type Program struct {
	entries []entry
	slots   []Value
	index   map[string]int
	table   *Table
	state   *State
	machine Machine
}

// Update recomputes every declaration in declaration order and then starts a
// new frame of the stateful builtins.
func (p *Program) Update() {
	for _, e := range p.entries {
		p.slots[e.slot] = p.machine.Run(e.routine)
	}

	p.state.Update()
}

// Reset clears the state of the stateful builtins and the computed values.
func (p *Program) Reset() {
	p.state.Reset()

	for _, e := range p.entries {
		p.slots[e.slot] = Zero(e.Type)
	}
}

// Get returns the current value of the named uniform.
func (p *Program) Get(name string) (Value, bool) {
	get, ok := p.Accessor(name)
	if !ok {
		return Value{}, false
	}

	return get(), true
}

// Accessor returns a function reading the current value of the named uniform.
// Variables have no accessor.
func (p *Program) Accessor(name string) (func() Value, bool) {
	slot, ok := p.index[name]
	if !ok || p.entries[slot].Kind != KindUniform {
		return nil, false
	}

	return func() Value { return p.slots[slot] }, true
}

// Uniforms yields the uniform declarations in declaration order.
func (p *Program) Uniforms() iter.Seq[Declaration] {
	return func(yield func(Declaration) bool) {
		for _, e := range p.entries {
			if e.Kind == KindUniform && !yield(e.Declaration) {
				return
			}
		}
	}
}

// Declarations yields every compiled declaration in declaration order.
func (p *Program) Declarations() iter.Seq[Declaration] {
	return func(yield func(Declaration) bool) {
		for _, e := range p.entries {
			if !yield(e.Declaration) {
				return
			}
		}
	}
}

// Len returns the number of compiled declarations.
func (p *Program) Len() int { return len(p.entries) }

// Registry returns the declarations of p as zero-argument functions reading
// their current values.
func (p *Program) Registry() Registry { return p.table }

// Tree returns the optimized tree of the named declaration.
func (p *Program) Tree(name string) (Node, bool) {
	slot, ok := p.index[name]
	if !ok {
		return nil, false
	}

	return p.entries[slot].tree, true
}

// Disassemble writes the optimized tree and the instructions of each
// declaration.
func (p *Program) Disassemble(w io.Writer) error {
	for _, e := range p.entries {
		_, err := fmt.Fprintf(w, "%s %s %s = %s\n", e.Kind, e.Type, e.Name, e.tree)
		if err != nil {
			return err
		}

		if err := Disassemble(w, e.routine.Code); err != nil {
			return err
		}
	}

	return nil
}
