package uniform

import (
	"log/slog"
)

// Routine is an assembled instruction sequence computing one value.
type Routine struct {
	Code   []Instr
	Locals int
}

// Assemble removes labels from code and replaces jump label numbers with
// instruction indices.
func Assemble(code []Instr, locals int) (*Routine, error) {
	pcs := make(map[int]int)
	pc := 0

	for _, in := range code {
		if in.Code == OpLabel {
			pcs[in.Arg] = pc

			continue
		}

		pc++
	}

	out := make([]Instr, 0, pc)

	for _, in := range code {
		if in.Code == OpLabel {
			continue
		}

		if in.isJump() {
			to, ok := pcs[in.Arg]
			if !ok {
				return nil, ErrCodegen.With(
					slog.String("reason", "undefined label"),
					slog.Int("label", in.Arg),
				)
			}

			in.Arg = to
		}

		out = append(out, in)
	}

	return &Routine{Code: out, Locals: locals}, nil
}

// Machine holds the operand stack and local slots reused across routine runs.
// A machine must not be shared between goroutines.
type Machine struct {
	stack  []Value
	locals []Value
}

// Run executes r and returns the value it leaves on the stack.
func (m *Machine) Run(r *Routine) Value {
	stack := m.stack[:0]

	if len(m.locals) < r.Locals {
		m.locals = make([]Value, r.Locals)
	}

	locals := m.locals

	for pc := 0; pc < len(r.Code); pc++ {
		in := &r.Code[pc]

		switch in.Code {
		case OpConst:
			stack = append(stack, in.Value)

		case OpLoad:
			stack = append(stack, locals[in.Arg])

		case OpStore:
			top := len(stack) - 1
			locals[in.Arg] = stack[top]
			stack = stack[:top]

		case OpCall:
			base := len(stack) - len(in.Func.Params)
			v := in.Func.Impl(stack[base:])
			stack = append(stack[:base], v)

		case OpCast:
			top := len(stack) - 1
			stack[top], _ = stack[top].Cast(in.To)

		case OpMath:
			top := len(stack) - 1
			stack[top-1], _ = arith(in.Op, stack[top-1], stack[top])
			stack = stack[:top]

		case OpNeg:
			top := len(stack) - 1
			stack[top] = negate(stack[top])

		case OpGoto:
			pc = in.Arg - 1

		case OpJumpIf:
			top := len(stack) - 1
			v := stack[top]
			stack = stack[:top]

			if v.Bool() == in.Cond {
				pc = in.Arg - 1
			}

		case OpJumpCmp:
			top := len(stack) - 1
			a, b := stack[top-1], stack[top]
			stack = stack[:top-1]

			if compare(in.Op, a, b) == in.Cond {
				pc = in.Arg - 1
			}
		}
	}

	m.stack = stack

	if len(stack) == 0 {
		return Value{}
	}

	return stack[len(stack)-1]
}
