package uniform

import "slices"

// OptimizeJumps removes redundant unconditional jumps from code until none of
// its rewrites apply:
//
//   - a goto immediately followed by its own target label is removed;
//   - "goto A; A: goto B" drops the label and the second goto, and every jump
//     to A is redirected to B;
//   - the second of two adjacent gotos is removed.
//
// Conditional jumps are kept because they consume stack operands.
func OptimizeJumps(code []Instr) []Instr {
	code = slices.Clone(code)

	for changed := true; changed; {
		changed = false

		for i := 0; i < len(code); {
			if peephole(&code, i) {
				changed = true

				continue
			}

			i++
		}
	}

	return code
}

// peephole applies the first matching rewrite at code[i] and reports whether
// one applied.
func peephole(code *[]Instr, i int) bool {
	c := *code

	if c[i].Code != OpGoto || i+1 >= len(c) {
		return false
	}

	next := c[i+1]

	switch next.Code {
	case OpLabel:
		if next.Arg == c[i].Arg {
			*code = slices.Delete(c, i, i+1)

			return true
		}

		if i+2 < len(c) && c[i+2].Code == OpGoto && c[i+2].Arg != next.Arg {
			from, to := next.Arg, c[i+2].Arg
			c = slices.Delete(c, i+1, i+3)

			for j := range c {
				if c[j].isJump() && c[j].Arg == from {
					c[j].Arg = to
				}
			}

			*code = c

			return true
		}

	case OpGoto:
		*code = slices.Delete(c, i+1, i+2)

		return true
	}

	return false
}
