package bytecode

import "fmt"

// Opcode represents a stack-machine bytecode instruction.
// Opcodes are organized into ranges by category for easy identification.
type Opcode byte

const (
	// ========================================================================
	// Stack manipulation (0x00-0x0F)
	// ========================================================================

	OpNop Opcode = 0x00 // No operation
	OpPop Opcode = 0x01 // Pop top of stack

	// ========================================================================
	// Constants (0x10-0x1F)
	// ========================================================================

	OpConstant     Opcode = 0x10 // Push constant: OpConstant <index:u8>
	OpConstantLong Opcode = 0x11 // Push constant: OpConstantLong <index:u24 big-endian>
	OpNil          Opcode = 0x12 // Push nil
	OpTrue         Opcode = 0x13 // Push true
	OpFalse        Opcode = 0x14 // Push false

	// ========================================================================
	// Arithmetic (0x20-0x2F)
	// ========================================================================

	OpAdd      Opcode = 0x20 // Pop two, push sum
	OpSubtract Opcode = 0x21 // Pop two, push difference (a - b where b is TOS)
	OpMultiply Opcode = 0x22 // Pop two, push product
	OpDivide   Opcode = 0x23 // Pop two, push quotient
	OpModulo   Opcode = 0x24 // Pop two, push remainder
	OpNegate   Opcode = 0x25 // Negate top of stack in place

	// ========================================================================
	// Comparison (0x30-0x37)
	// ========================================================================

	OpEqual        Opcode = 0x30 // Pop two, push bool
	OpNotEqual     Opcode = 0x31 // Pop two, push bool
	OpLess         Opcode = 0x32 // Pop two, push bool
	OpLessEqual    Opcode = 0x33 // Pop two, push bool
	OpGreater      Opcode = 0x34 // Pop two, push bool
	OpGreaterEqual Opcode = 0x35 // Pop two, push bool

	// ========================================================================
	// Logical (0x38-0x3F)
	// ========================================================================

	OpNot Opcode = 0x38 // Logical NOT of top of stack
	OpAnd Opcode = 0x39 // Pop two, push conjunction
	OpOr  Opcode = 0x3A // Pop two, push disjunction

	// ========================================================================
	// Strings (0x40-0x4F)
	// ========================================================================

	OpConcat Opcode = 0x40 // Pop two strings, push concatenation

	// ========================================================================
	// Control flow (0x50-0x5F)
	// ========================================================================

	OpJump        Opcode = 0x50 // Jump forward: OpJump <delta:u16>
	OpJumpIfFalse Opcode = 0x51 // Jump forward if TOS falsy: <delta:u16>
	OpJumpIfTrue  Opcode = 0x52 // Jump forward if TOS truthy: <delta:u16>
	OpLoop        Opcode = 0x53 // Jump backward: OpLoop <delta:u16>

	// ========================================================================
	// Globals (0x60-0x6F)
	// ========================================================================

	OpDefineGlobal Opcode = 0x60 // Pop and define global: <slot:u8>
	OpGetGlobal    Opcode = 0x61 // Push global: <slot:u8>
	OpSetGlobal    Opcode = 0x62 // Store TOS to global without popping: <slot:u8>

	// ========================================================================
	// Functions (0x70-0x7F)
	// ========================================================================

	OpCall   Opcode = 0x70 // Call function: OpCall <func:u8> <argc:u8>
	OpReturn Opcode = 0x71 // Pop and return top of stack

	// ========================================================================
	// Arrays (0x80-0x8F)
	// ========================================================================

	OpMakeArray Opcode = 0x80 // Pop <count:u8> elements, push array
	OpArrayGet  Opcode = 0x81 // Pop index and array, push element
	OpArraySet  Opcode = 0x82 // Pop value, index, array

	// ========================================================================
	// I/O (0x90-0x9F)
	// ========================================================================

	OpPrint Opcode = 0x90 // Pop and print top of stack
)

// OpcodeInfo provides metadata about each opcode for decoding and validation.
type OpcodeInfo struct {
	Name       string // Human-readable name
	StackPop   int    // How many values popped from stack (-1 = variable)
	StackPush  int    // How many values pushed to stack
	OperandLen int    // Number of operand bytes following the opcode
}

// opcodeInfoTable maps opcodes to their metadata.
var opcodeInfoTable = map[Opcode]OpcodeInfo{
	OpNop: {"NOP", 0, 0, 0},
	OpPop: {"POP", 1, 0, 0},

	OpConstant:     {"CONSTANT", 0, 1, 1},
	OpConstantLong: {"CONSTANT_LONG", 0, 1, 3},
	OpNil:          {"NIL", 0, 1, 0},
	OpTrue:         {"TRUE", 0, 1, 0},
	OpFalse:        {"FALSE", 0, 1, 0},

	OpAdd:      {"ADD", 2, 1, 0},
	OpSubtract: {"SUBTRACT", 2, 1, 0},
	OpMultiply: {"MULTIPLY", 2, 1, 0},
	OpDivide:   {"DIVIDE", 2, 1, 0},
	OpModulo:   {"MODULO", 2, 1, 0},
	OpNegate:   {"NEGATE", 1, 1, 0},

	OpEqual:        {"EQUAL", 2, 1, 0},
	OpNotEqual:     {"NOT_EQUAL", 2, 1, 0},
	OpLess:         {"LESS", 2, 1, 0},
	OpLessEqual:    {"LESS_EQUAL", 2, 1, 0},
	OpGreater:      {"GREATER", 2, 1, 0},
	OpGreaterEqual: {"GREATER_EQUAL", 2, 1, 0},

	OpNot: {"NOT", 1, 1, 0},
	OpAnd: {"AND", 2, 1, 0},
	OpOr:  {"OR", 2, 1, 0},

	OpConcat: {"CONCAT", 2, 1, 0},

	OpJump:        {"JUMP", 0, 0, 2},
	OpJumpIfFalse: {"JUMP_IF_FALSE", 0, 0, 2},
	OpJumpIfTrue:  {"JUMP_IF_TRUE", 0, 0, 2},
	OpLoop:        {"LOOP", 0, 0, 2},

	OpDefineGlobal: {"DEFINE_GLOBAL", 1, 0, 1},
	OpGetGlobal:    {"GET_GLOBAL", 0, 1, 1},
	OpSetGlobal:    {"SET_GLOBAL", 0, 0, 1},

	OpCall:   {"CALL", -1, 1, 2},
	OpReturn: {"RETURN", 1, 0, 0},

	OpMakeArray: {"MAKE_ARRAY", -1, 1, 1},
	OpArrayGet:  {"ARRAY_GET", 2, 1, 0},
	OpArraySet:  {"ARRAY_SET", 3, 0, 0},

	OpPrint: {"PRINT", 1, 0, 0},
}

// GetOpcodeInfo returns metadata for an opcode.
// Returns a zero OpcodeInfo with name "UNKNOWN" if the opcode is not recognized.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))}
}

// String returns the human-readable name of an opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// OperandLen returns the number of operand bytes for this opcode.
func (op Opcode) OperandLen() int {
	return GetOpcodeInfo(op).OperandLen
}

// InstructionLen returns the total length of an instruction (1 + operand bytes).
func (op Opcode) InstructionLen() int {
	return 1 + op.OperandLen()
}

// IsJump returns true if this opcode is a jump instruction.
func (op Opcode) IsJump() bool {
	return op >= OpJump && op <= OpLoop
}

// Defined returns true if this opcode has an entry in the metadata table.
func (op Opcode) Defined() bool {
	_, ok := opcodeInfoTable[op]
	return ok
}

// AllOpcodes returns a slice of all defined opcodes.
// Useful for testing that all opcodes have metadata.
func AllOpcodes() []Opcode {
	opcodes := make([]Opcode, 0, len(opcodeInfoTable))
	for op := range opcodeInfoTable {
		opcodes = append(opcodes, op)
	}
	return opcodes
}

// OpcodeCount returns the number of defined opcodes.
func OpcodeCount() int {
	return len(opcodeInfoTable)
}
