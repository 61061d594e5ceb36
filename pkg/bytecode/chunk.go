package bytecode

import (
	"fmt"

	"github.com/sable-lang/sable/pkg/value"
)

// shortConstantMax is the number of constant-pool indices addressable by the
// one-byte OpConstant form. Indices at or above it require OpConstantLong.
const shortConstantMax = 256

// PositionRun maps a run of consecutive instruction bytes to one source
// position. The position table is run-length encoded: Run counts how many
// bytes share the same (Line, Column).
type PositionRun struct {
	Line   int `cbor:"l"`
	Column int `cbor:"c"`
	Run    int `cbor:"r"`
}

// Chunk is a stack-machine program image: instruction bytes, a run-length
// encoded source-position table, and a constant pool. A chunk is built by
// exactly one compiler invocation and is not safe for concurrent use.
type Chunk struct {
	Code      []byte
	Constants []value.Value
	Positions []PositionRun
}

// NewChunk creates a new empty chunk.
func NewChunk() *Chunk {
	return &Chunk{
		Code:      make([]byte, 0, 64),
		Constants: make([]value.Value, 0, 8),
	}
}

// Write appends a single instruction byte and records its source position.
// Consecutive bytes at the same position extend the current run instead of
// appending a new one.
func (c *Chunk) Write(b byte, line, column int) {
	c.Code = append(c.Code, b)

	if n := len(c.Positions); n > 0 {
		last := &c.Positions[n-1]
		if last.Line == line && last.Column == column {
			last.Run++
			return
		}
	}
	c.Positions = append(c.Positions, PositionRun{Line: line, Column: column, Run: 1})
}

// WriteOp appends an opcode byte. Convenience wrapper over Write.
func (c *Chunk) WriteOp(op Opcode, line, column int) {
	c.Write(byte(op), line, column)
}

// AddConstant appends a value to the constant pool and returns its index.
// The pool is append-only; every call yields a fresh index.
func (c *Chunk) AddConstant(v value.Value) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// WriteConstant adds the value to the constant pool and emits a load for it,
// choosing the one-byte form for indices below 256 and the three-byte
// big-endian long form otherwise. The 256-item threshold and byte order are
// part of the wire contract with the rest of the toolchain.
func (c *Chunk) WriteConstant(v value.Value, line, column int) int {
	index := c.AddConstant(v)

	if index < shortConstantMax {
		c.WriteOp(OpConstant, line, column)
		c.Write(byte(index), line, column)
	} else {
		c.WriteOp(OpConstantLong, line, column)
		c.Write(byte(index>>16), line, column)
		c.Write(byte(index>>8), line, column)
		c.Write(byte(index), line, column)
	}
	return index
}

// Len returns the number of instruction bytes in the chunk.
func (c *Chunk) Len() int {
	return len(c.Code)
}

// ConstantCount returns the number of constants in the pool.
func (c *Chunk) ConstantCount() int {
	return len(c.Constants)
}

// Line returns the source line for the instruction byte at offset, walking
// the cumulative run lengths. Returns -1 when the offset is past the end of
// the recorded positions; a missing position only degrades diagnostics.
func (c *Chunk) Line(offset int) int {
	if offset < 0 {
		return -1
	}
	end := 0
	for _, run := range c.Positions {
		end += run.Run
		if offset < end {
			return run.Line
		}
	}
	return -1
}

// Column returns the source column for the instruction byte at offset.
// Returns 1 when the offset is out of range.
func (c *Chunk) Column(offset int) int {
	if offset < 0 {
		return 1
	}
	end := 0
	for _, run := range c.Positions {
		end += run.Run
		if offset < end {
			return run.Column
		}
	}
	return 1
}

// OperandByte returns the byte immediately following the instruction at
/// offset. Panics when offset is outside [0, Len-1): an out-of-range operand
// read means the program image is corrupt, which is a code-generation bug,
// not a user error.
func (c *Chunk) OperandByte(offset int) byte {
	if offset < 0 || offset >= len(c.Code)-1 {
		panic(fmt.Sprintf("bytecode: invalid operand access at offset %d (code length %d)", offset, len(c.Code)))
	}
	return c.Code[offset+1]
}

// ConstantAt reads the operand byte at offset as a constant-pool index and
// returns the referenced value. Panics on an out-of-bounds index — same
// rationale as OperandByte.
func (c *Chunk) ConstantAt(offset int) value.Value {
	index := int(c.OperandByte(offset))
	if index >= len(c.Constants) {
		panic(fmt.Sprintf("bytecode: invalid constant index %d (pool size %d)", index, len(c.Constants)))
	}
	return c.Constants[index]
}

// CurrentOffset returns the offset one past the last written byte.
func (c *Chunk) CurrentOffset() int {
	return len(c.Code)
}

// WriteJump emits a jump instruction with a placeholder offset.
// Returns the offset of the placeholder bytes for later patching.
func (c *Chunk) WriteJump(op Opcode, line, column int) int {
	c.WriteOp(op, line, column)
	placeholder := len(c.Code)
	c.Write(0xFF, line, column)
	c.Write(0xFF, line, column)
	return placeholder
}

// PatchJump patches a forward jump's placeholder to target the current
// offset. The delta is relative to the byte after the two operand bytes.
func (c *Chunk) PatchJump(placeholder int) {
	jumpFrom := placeholder + 2
	delta := len(c.Code) - jumpFrom

	c.Code[placeholder] = byte(delta >> 8)
	c.Code[placeholder+1] = byte(delta)
}

// WriteLoop emits a backward jump to loopStart.
func (c *Chunk) WriteLoop(loopStart, line, column int) {
	c.WriteOp(OpLoop, line, column)
	delta := len(c.Code) + 2 - loopStart

	c.Write(byte(delta>>8), line, column)
	c.Write(byte(delta), line, column)
}
