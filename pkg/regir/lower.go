// Package regir lowers stack bytecode into a register-machine form.
//
// The pass simulates the stack machine at compile time: a virtual stack
// tracks which register holds each stack slot, and every stack operation
// becomes an explicit three-address instruction. Registers are allocated
// monotonically and never reused, which keeps the pass a single forward
// walk at the cost of a hard budget on program size.
//
// Jumps are resolved in two phases. The forward walk emits jump
// instructions with an unresolved target and records a patch entry;
// once every source offset has a known instruction index, the patch
// phase rewrites each jump's target in place.
package regir

import (
	"errors"
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/sable-lang/sable/pkg/bytecode"
	"github.com/sable-lang/sable/pkg/value"
)

// RegisterCount is the size of the virtual register file.
const RegisterCount = 256

var (
	// ErrRegisterBudget reports that lowering ran out of registers.
	// The source chunk is valid; it is just too large for this pass.
	ErrRegisterBudget = errors.New("regir: register budget exhausted")

	// ErrBadJumpTarget reports a jump whose resolved destination does
	// not map to an instruction in the lowered chunk.
	ErrBadJumpTarget = errors.New("regir: jump target out of range")

	// ErrConstantBudget reports that the lowered chunk needs more
	// constants than a one-byte operand can address.
	ErrConstantBudget = errors.New("regir: constant pool exceeds 256 entries")
)

var log = commonlog.GetLogger("sable.regir")

type patch struct {
	instr  int // index of the emitted jump instruction
	target int // byte offset in the source chunk
}

type lowerer struct {
	src *bytecode.Chunk
	out *RegisterChunk

	stack   []uint8
	nextReg int

	// offsetMap[srcOffset] = index of the first lowered instruction for
	// the source instruction starting there. One extra slot maps the
	// end-of-chunk offset, so a jump past the last instruction resolves.
	offsetMap []int
	patches   []patch
}

// Lower translates a stack bytecode chunk into register form. The input
// chunk is not modified. Errors are reported for resource exhaustion and
// unresolvable jumps; structurally unknown opcodes are lowered to a NOP
// rather than rejected.
func Lower(src *bytecode.Chunk) (*RegisterChunk, error) {
	l := &lowerer{
		src:       src,
		out:       NewRegisterChunk(),
		stack:     make([]uint8, 0, 16),
		offsetMap: make([]int, src.Len()+1),
	}

	if err := l.emit(); err != nil {
		return nil, err
	}
	if err := l.patchJumps(); err != nil {
		return nil, err
	}

	log.Debugf("lowered %d bytecode bytes to %d instructions (%d registers, %d jumps)",
		src.Len(), l.out.Len(), l.nextReg, len(l.patches))
	return l.out, nil
}

func (l *lowerer) allocReg() (uint8, error) {
	if l.nextReg >= RegisterCount {
		return 0, ErrRegisterBudget
	}
	r := uint8(l.nextReg)
	l.nextReg++
	return r, nil
}

func (l *lowerer) push(r uint8) {
	l.stack = append(l.stack, r)
}

func (l *lowerer) pop() (uint8, bool) {
	if len(l.stack) == 0 {
		return 0, false
	}
	r := l.stack[len(l.stack)-1]
	l.stack = l.stack[:len(l.stack)-1]
	return r, true
}

func (l *lowerer) peek() (uint8, bool) {
	if len(l.stack) == 0 {
		return 0, false
	}
	return l.stack[len(l.stack)-1], true
}

func (l *lowerer) addConstant(v value.Value) (uint8, error) {
	idx := l.out.AddConstant(v)
	if idx > 0xFF {
		return 0, ErrConstantBudget
	}
	return uint8(idx), nil
}

// loadConstant materializes a value into a fresh register and pushes it.
func (l *lowerer) loadConstant(v value.Value) error {
	idx, err := l.addConstant(v)
	if err != nil {
		return err
	}
	dst, err := l.allocReg()
	if err != nil {
		return err
	}
	l.out.Write(Instr{Op: RopLoadConst, Dst: dst, Src1: idx})
	l.push(dst)
	return nil
}

func (l *lowerer) emit() error {
	offset := 0
	for offset < l.src.Len() {
		l.offsetMap[offset] = l.out.Len()

		op := bytecode.Opcode(l.src.Code[offset])
		advance, err := l.emitOne(op, offset)
		if err != nil {
			return err
		}
		offset += advance
	}
	l.offsetMap[l.src.Len()] = l.out.Len()
	return nil
}

// emitOne lowers the instruction at offset and returns how many source
// bytes it consumed.
func (l *lowerer) emitOne(op bytecode.Opcode, offset int) (int, error) {
	switch op {
	case bytecode.OpNop:
		l.out.Write(Instr{Op: RopNop})
		return 1, nil

	case bytecode.OpConstant:
		return 2, l.loadConstant(l.src.ConstantAt(offset))

	case bytecode.OpConstantLong:
		idx := int(l.src.OperandByte(offset))<<16 |
			int(l.src.OperandByte(offset+1))<<8 |
			int(l.src.OperandByte(offset+2))
		return 4, l.loadConstant(l.src.Constants[idx])

	case bytecode.OpNil:
		return 1, l.loadConstant(value.Nil())
	case bytecode.OpTrue:
		return 1, l.loadConstant(value.NewBool(true))
	case bytecode.OpFalse:
		return 1, l.loadConstant(value.NewBool(false))

	case bytecode.OpAdd, bytecode.OpSubtract, bytecode.OpMultiply,
		bytecode.OpDivide, bytecode.OpModulo, bytecode.OpConcat,
		bytecode.OpAnd, bytecode.OpOr:
		// The first operand's register doubles as the destination: the
		// stack slot it occupied is exactly the slot the result lands in.
		if b, ok := l.pop(); ok {
			if a, ok := l.pop(); ok {
				l.out.Write(Instr{Op: arithOp(op), Dst: a, Src1: a, Src2: b})
				l.push(a)
			}
		}
		return 1, nil

	case bytecode.OpEqual, bytecode.OpNotEqual, bytecode.OpLess,
		bytecode.OpLessEqual, bytecode.OpGreater, bytecode.OpGreaterEqual:
		// Comparisons change the value's type, so they get a fresh
		// register instead of clobbering a numeric operand.
		if b, ok := l.pop(); ok {
			if a, ok := l.pop(); ok {
				dst, err := l.allocReg()
				if err != nil {
					return 0, err
				}
				l.out.Write(Instr{Op: compareOp(op), Dst: dst, Src1: a, Src2: b})
				l.push(dst)
			}
		}
		return 1, nil

	case bytecode.OpNegate:
		if a, ok := l.pop(); ok {
			l.out.Write(Instr{Op: RopNegate, Dst: a, Src1: a})
			l.push(a)
		}
		return 1, nil

	case bytecode.OpNot:
		if a, ok := l.pop(); ok {
			l.out.Write(Instr{Op: RopNot, Dst: a, Src1: a})
			l.push(a)
		}
		return 1, nil

	case bytecode.OpPop:
		if r, ok := l.pop(); ok {
			l.out.Write(Instr{Op: RopPop, Dst: r})
		}
		return 1, nil

	case bytecode.OpJump:
		delta := l.readDelta(offset)
		idx := l.out.Write(Instr{Op: RopJump})
		l.patches = append(l.patches, patch{instr: idx, target: offset + 3 + delta})
		return 3, nil

	case bytecode.OpJumpIfFalse, bytecode.OpJumpIfTrue:
		// The condition stays on the stack: the stack machine's
		// conditional jumps read the top without consuming it.
		cond, ok := l.peek()
		if !ok {
			return 3, nil
		}
		rop := RopJumpIfFalse
		if op == bytecode.OpJumpIfTrue {
			rop = RopJumpIfTrue
		}
		delta := l.readDelta(offset)
		idx := l.out.Write(Instr{Op: rop, Src1: cond})
		l.patches = append(l.patches, patch{instr: idx, target: offset + 3 + delta})
		return 3, nil

	case bytecode.OpLoop:
		delta := l.readDelta(offset)
		idx := l.out.Write(Instr{Op: RopJump})
		l.patches = append(l.patches, patch{instr: idx, target: offset + 3 - delta})
		return 3, nil

	case bytecode.OpDefineGlobal:
		slot := l.src.OperandByte(offset)
		if r, ok := l.pop(); ok {
			l.out.Write(Instr{Op: RopStoreGlobal, Dst: slot, Src1: r})
		}
		return 2, nil

	case bytecode.OpSetGlobal:
		// Assignment is an expression: the value stays on the stack.
		slot := l.src.OperandByte(offset)
		if r, ok := l.peek(); ok {
			l.out.Write(Instr{Op: RopStoreGlobal, Dst: slot, Src1: r})
		}
		return 2, nil

	case bytecode.OpGetGlobal:
		slot := l.src.OperandByte(offset)
		dst, err := l.allocReg()
		if err != nil {
			return 0, err
		}
		l.out.Write(Instr{Op: RopLoadGlobal, Dst: dst, Src1: slot})
		l.push(dst)
		return 2, nil

	case bytecode.OpCall:
		fn := l.src.OperandByte(offset)
		argc := l.src.OperandByte(offset + 1)
		for i := 0; i < int(argc); i++ {
			if _, ok := l.pop(); !ok {
				break
			}
		}
		dst, err := l.allocReg()
		if err != nil {
			return 0, err
		}
		l.out.Write(Instr{Op: RopCall, Dst: dst, Src1: fn, Src2: argc})
		l.push(dst)
		return 3, nil

	case bytecode.OpReturn:
		var r uint8
		if top, ok := l.pop(); ok {
			r = top
		}
		l.out.Write(Instr{Op: RopReturn, Dst: r})
		return 1, nil

	case bytecode.OpPrint:
		if r, ok := l.pop(); ok {
			l.out.Write(Instr{Op: RopPrint, Dst: r})
		}
		return 1, nil

	case bytecode.OpMakeArray:
		count := l.src.OperandByte(offset)
		for i := 0; i < int(count); i++ {
			if _, ok := l.pop(); !ok {
				break
			}
		}
		dst, err := l.allocReg()
		if err != nil {
			return 0, err
		}
		l.out.Write(Instr{Op: RopMakeArray, Dst: dst, Src1: count})
		l.push(dst)
		return 2, nil

	case bytecode.OpArrayGet:
		if idx, ok := l.pop(); ok {
			if arr, ok := l.pop(); ok {
				dst, err := l.allocReg()
				if err != nil {
					return 0, err
				}
				l.out.Write(Instr{Op: RopArrayGet, Dst: dst, Src1: arr, Src2: idx})
				l.push(dst)
			}
		}
		return 1, nil

	case bytecode.OpArraySet:
		if val, ok := l.pop(); ok {
			if idx, ok := l.pop(); ok {
				if arr, ok := l.pop(); ok {
					l.out.Write(Instr{Op: RopArraySet, Dst: arr, Src1: idx, Src2: val})
				}
			}
		}
		return 1, nil

	default:
		// Unknown opcodes become a NOP and advance one byte, so a
		// partially corrupt chunk still lowers to something inspectable.
		log.Debugf("unknown opcode 0x%02X at offset %d, lowering to NOP", byte(op), offset)
		l.out.Write(Instr{Op: RopNop})
		return 1, nil
	}
}

func (l *lowerer) readDelta(offset int) int {
	return int(l.src.OperandByte(offset))<<8 | int(l.src.OperandByte(offset+1))
}

// patchJumps resolves every recorded jump target from a source byte
// offset to a lowered instruction index.
func (l *lowerer) patchJumps() error {
	for _, p := range l.patches {
		if p.target < 0 || p.target > l.src.Len() {
			return fmt.Errorf("%w: source offset %d (chunk is %d bytes)",
				ErrBadJumpTarget, p.target, l.src.Len())
		}
		resolved := l.offsetMap[p.target]
		if resolved > 0xFF {
			return fmt.Errorf("%w: instruction index %d does not fit an operand byte",
				ErrBadJumpTarget, resolved)
		}
		l.out.Code[p.instr].Dst = uint8(resolved)
	}
	return nil
}

func arithOp(op bytecode.Opcode) RegOp {
	switch op {
	case bytecode.OpAdd:
		return RopAdd
	case bytecode.OpSubtract:
		return RopSubtract
	case bytecode.OpMultiply:
		return RopMultiply
	case bytecode.OpDivide:
		return RopDivide
	case bytecode.OpModulo:
		return RopModulo
	case bytecode.OpConcat:
		return RopConcat
	case bytecode.OpAnd:
		return RopAnd
	default:
		return RopOr
	}
}

func compareOp(op bytecode.Opcode) RegOp {
	switch op {
	case bytecode.OpEqual:
		return RopEqual
	case bytecode.OpNotEqual:
		return RopNotEqual
	case bytecode.OpLess:
		return RopLess
	case bytecode.OpLessEqual:
		return RopLessEqual
	case bytecode.OpGreater:
		return RopGreater
	default:
		return RopGreaterEqual
	}
}
