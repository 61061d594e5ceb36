package regir

import (
	"fmt"
	"strings"

	"github.com/sable-lang/sable/pkg/value"
)

// Instr is a single fixed-width register instruction. Field meaning
// depends on the opcode: Dst is usually the destination register, but
// jump instructions store their resolved instruction index there, and
// store instructions put the global slot there instead.
type Instr struct {
	Op   RegOp
	Dst  uint8
	Src1 uint8
	Src2 uint8
}

// RegisterChunk is the register-machine counterpart of a bytecode chunk:
// a list of fixed-width instructions plus the constant pool they index.
type RegisterChunk struct {
	Code      []Instr
	Constants []value.Value
}

// NewRegisterChunk returns an empty register chunk.
func NewRegisterChunk() *RegisterChunk {
	return &RegisterChunk{
		Code:      make([]Instr, 0, 64),
		Constants: make([]value.Value, 0, 8),
	}
}

// Write appends an instruction and returns its index.
func (rc *RegisterChunk) Write(in Instr) int {
	rc.Code = append(rc.Code, in)
	return len(rc.Code) - 1
}

// AddConstant interns a value in the pool and returns its index. Equal
// values share an index: constant operands are a single byte wide, so
// de-duplication buys real headroom before the pool overflows.
func (rc *RegisterChunk) AddConstant(v value.Value) int {
	for i, existing := range rc.Constants {
		if existing.Equals(v) {
			return i
		}
	}
	rc.Constants = append(rc.Constants, v)
	return len(rc.Constants) - 1
}

// Len returns the number of instructions.
func (rc *RegisterChunk) Len() int {
	return len(rc.Code)
}

// ConstantCount returns the number of pooled constants.
func (rc *RegisterChunk) ConstantCount() int {
	return len(rc.Constants)
}

// Disassemble renders a human-readable listing of the chunk.
func (rc *RegisterChunk) Disassemble() string {
	var sb strings.Builder

	if len(rc.Constants) > 0 {
		sb.WriteString("constants:\n")
		for i, v := range rc.Constants {
			sb.WriteString(fmt.Sprintf("  k%-3d %s\n", i, v))
		}
	}

	sb.WriteString("code:\n")
	for i, in := range rc.Code {
		sb.WriteString(fmt.Sprintf("  %04d  %s\n", i, rc.formatInstr(in)))
	}
	return sb.String()
}

func (rc *RegisterChunk) formatInstr(in Instr) string {
	switch in.Op {
	case RopNop, RopReturn, RopPop, RopPrint:
		if in.Op == RopNop {
			return in.Op.String()
		}
		return fmt.Sprintf("%s r%d", in.Op, in.Dst)

	case RopLoadConst:
		return fmt.Sprintf("%s r%d, k%d", in.Op, in.Dst, in.Src1)

	case RopMove, RopNegate, RopNot:
		return fmt.Sprintf("%s r%d, r%d", in.Op, in.Dst, in.Src1)

	case RopJump:
		return fmt.Sprintf("%s -> %04d", in.Op, in.Dst)

	case RopJumpIfFalse, RopJumpIfTrue:
		return fmt.Sprintf("%s r%d -> %04d", in.Op, in.Src1, in.Dst)

	case RopLoadGlobal:
		return fmt.Sprintf("%s r%d, g%d", in.Op, in.Dst, in.Src1)

	case RopStoreGlobal:
		return fmt.Sprintf("%s g%d, r%d", in.Op, in.Dst, in.Src1)

	case RopCall:
		return fmt.Sprintf("%s r%d, f%d, argc=%d", in.Op, in.Dst, in.Src1, in.Src2)

	case RopMakeArray:
		return fmt.Sprintf("%s r%d, n=%d", in.Op, in.Dst, in.Src1)

	default:
		return fmt.Sprintf("%s r%d, r%d, r%d", in.Op, in.Dst, in.Src1, in.Src2)
	}
}
