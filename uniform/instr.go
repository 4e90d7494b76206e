package uniform

import (
	"fmt"
	"io"
	"strconv"

	"github.com/ardnew/shadervar/lang"
)

// Opcode identifies a stack machine instruction.
type Opcode uint8

// Instruction opcodes. Label is a pseudo-instruction marking a jump target;
// it is removed by assembly.
const (
	OpLabel   Opcode = iota
	OpConst          // push Value
	OpLoad           // push local Arg
	OpStore          // pop into local Arg
	OpCall           // replace the arguments on top of the stack with Func's result
	OpCast           // convert the top of the stack to To
	OpMath           // pop b, a; push a Op b
	OpNeg            // negate the top of the stack
	OpGoto           // jump to Arg
	OpJumpIf         // pop v; jump to Arg if v equals Cond
	OpJumpCmp        // pop b, a; jump to Arg if (a Op b) equals Cond
)

var opcodeNames = [...]string{
	OpLabel:   "label",
	OpConst:   "const",
	OpLoad:    "load",
	OpStore:   "store",
	OpCall:    "call",
	OpCast:    "cast",
	OpMath:    "math",
	OpNeg:     "neg",
	OpGoto:    "goto",
	OpJumpIf:  "jumpif",
	OpJumpCmp: "jumpcmp",
}

func (o Opcode) String() string {
	if int(o) < len(opcodeNames) {
		return opcodeNames[o]
	}

	return "op(" + strconv.Itoa(int(o)) + ")"
}

// Instr is one stack machine instruction. Before assembly, Arg of a label or
// jump is a label number; afterwards it is an instruction index.
type Instr struct {
	Code  Opcode
	Arg   int
	Op    lang.Operator
	Cond  bool
	To    Type
	Value Value
	Func  *Function
}

// isJump reports whether in transfers control to the instruction named by Arg.
func (in Instr) isJump() bool {
	return in.Code == OpGoto || in.Code == OpJumpIf || in.Code == OpJumpCmp
}

func (in Instr) String() string {
	switch in.Code {
	case OpLabel:
		return "L" + strconv.Itoa(in.Arg) + ":"
	case OpConst:
		return "\tconst " + in.Value.String()
	case OpLoad, OpStore:
		return "\t" + in.Code.String() + " " + strconv.Itoa(in.Arg)
	case OpCall:
		return "\tcall " + in.Func.Signature()
	case OpCast:
		return "\tcast " + in.To.String()
	case OpMath:
		return "\t" + in.Op.String()
	case OpNeg:
		return "\tneg"
	case OpGoto:
		return "\tgoto " + strconv.Itoa(in.Arg)
	case OpJumpIf:
		return "\tif " + strconv.FormatBool(in.Cond) + " goto " + strconv.Itoa(in.Arg)
	case OpJumpCmp:
		return fmt.Sprintf("\tif %s is %t goto %d", in.Op, in.Cond, in.Arg)
	}

	return "\t" + in.Code.String()
}

// Disassemble writes one instruction per line.
func Disassemble(w io.Writer, code []Instr) error {
	for pc, in := range code {
		prefix := ""
		if in.Code != OpLabel {
			prefix = fmt.Sprintf("%4d", pc)
		}

		if _, err := fmt.Fprintln(w, prefix+in.String()); err != nil {
			return err
		}
	}

	return nil
}
