package regir

import "fmt"

// RegOp identifies a register-machine operation. Unlike the stack
// bytecode's variable-length encoding, every register instruction is a
// fixed four-byte quadruple, so opcodes here carry no operand-length
// metadata.
type RegOp uint8

const (
	RopNop RegOp = iota
	RopMove
	RopLoadConst
	RopPop

	RopAdd
	RopSubtract
	RopMultiply
	RopDivide
	RopModulo
	RopNegate
	RopConcat

	RopEqual
	RopNotEqual
	RopLess
	RopLessEqual
	RopGreater
	RopGreaterEqual

	RopNot
	RopAnd
	RopOr

	RopJump
	RopJumpIfFalse
	RopJumpIfTrue

	RopLoadGlobal
	RopStoreGlobal

	RopCall
	RopReturn
	RopPrint

	RopMakeArray
	RopArrayGet
	RopArraySet
)

var regOpNames = map[RegOp]string{
	RopNop:          "NOP",
	RopMove:         "MOVE",
	RopLoadConst:    "LOAD_CONST",
	RopPop:          "POP",
	RopAdd:          "ADD",
	RopSubtract:     "SUBTRACT",
	RopMultiply:     "MULTIPLY",
	RopDivide:       "DIVIDE",
	RopModulo:       "MODULO",
	RopNegate:       "NEGATE",
	RopConcat:       "CONCAT",
	RopEqual:        "EQUAL",
	RopNotEqual:     "NOT_EQUAL",
	RopLess:         "LESS",
	RopLessEqual:    "LESS_EQUAL",
	RopGreater:      "GREATER",
	RopGreaterEqual: "GREATER_EQUAL",
	RopNot:          "NOT",
	RopAnd:          "AND",
	RopOr:           "OR",
	RopJump:         "JUMP",
	RopJumpIfFalse:  "JUMP_IF_FALSE",
	RopJumpIfTrue:   "JUMP_IF_TRUE",
	RopLoadGlobal:   "LOAD_GLOBAL",
	RopStoreGlobal:  "STORE_GLOBAL",
	RopCall:         "CALL",
	RopReturn:       "RETURN",
	RopPrint:        "PRINT",
	RopMakeArray:    "MAKE_ARRAY",
	RopArrayGet:     "ARRAY_GET",
	RopArraySet:     "ARRAY_SET",
}

func (op RegOp) String() string {
	if name, ok := regOpNames[op]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(0x%02X)", uint8(op))
}

// IsJump returns true for opcodes whose Dst field holds an instruction
// index rather than a register.
func (op RegOp) IsJump() bool {
	return op == RopJump || op == RopJumpIfFalse || op == RopJumpIfTrue
}
