package bytecode

import (
	"testing"

	"github.com/sable-lang/sable/pkg/value"
)

func TestNewChunk(t *testing.T) {
	c := NewChunk()

	if c.Code == nil {
		t.Error("Code is nil")
	}
	if c.Constants == nil {
		t.Error("Constants is nil")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestChunkWrite(t *testing.T) {
	c := NewChunk()

	c.WriteOp(OpNop, 1, 1)
	c.WriteOp(OpReturn, 1, 1)

	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if Opcode(c.Code[0]) != OpNop {
		t.Errorf("Code[0] = 0x%02X, want OpNop", c.Code[0])
	}
	if Opcode(c.Code[1]) != OpReturn {
		t.Errorf("Code[1] = 0x%02X, want OpReturn", c.Code[1])
	}
}

func TestChunkAddConstant(t *testing.T) {
	c := NewChunk()

	idx0 := c.AddConstant(value.NewI32(1))
	if idx0 != 0 {
		t.Errorf("First constant index = %d, want 0", idx0)
	}

	idx1 := c.AddConstant(value.NewString("hello"))
	if idx1 != 1 {
		t.Errorf("Second constant index = %d, want 1", idx1)
	}

	// The pool is append-only: a repeated value still gets a fresh index.
	idx2 := c.AddConstant(value.NewI32(1))
	if idx2 != 2 {
		t.Errorf("Repeated constant index = %d, want 2", idx2)
	}

	if c.ConstantCount() != 3 {
		t.Errorf("ConstantCount() = %d, want 3", c.ConstantCount())
	}
}

func TestChunkWriteConstantShortForm(t *testing.T) {
	c := NewChunk()

	idx := c.WriteConstant(value.NewF64(2.5), 3, 7)

	if idx != 0 {
		t.Errorf("index = %d, want 0", idx)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (opcode + one operand byte)", c.Len())
	}
	if Opcode(c.Code[0]) != OpConstant {
		t.Errorf("Code[0] = 0x%02X, want OpConstant", c.Code[0])
	}
	if c.Code[1] != 0 {
		t.Errorf("Code[1] = %d, want 0", c.Code[1])
	}
}

func TestChunkConstantAddressingThreshold(t *testing.T) {
	c := NewChunk()

	// Fill indices 0-254 so the next two writes land on 255 and 256.
	for i := 0; i < 255; i++ {
		c.AddConstant(value.NewI32(int32(i)))
	}

	off255 := c.CurrentOffset()
	idx := c.WriteConstant(value.NewI32(255), 1, 1)
	if idx != 255 {
		t.Fatalf("index = %d, want 255", idx)
	}
	if Opcode(c.Code[off255]) != OpConstant {
		t.Errorf("index 255 emitted 0x%02X, want the short form", c.Code[off255])
	}
	if c.Code[off255+1] != 0xFF {
		t.Errorf("short operand = 0x%02X, want 0xFF", c.Code[off255+1])
	}

	off256 := c.CurrentOffset()
	idx = c.WriteConstant(value.NewI32(256), 1, 1)
	if idx != 256 {
		t.Fatalf("index = %d, want 256", idx)
	}
	if Opcode(c.Code[off256]) != OpConstantLong {
		t.Errorf("index 256 emitted 0x%02X, want the long form", c.Code[off256])
	}
	// 256 as 3 big-endian bytes.
	if c.Code[off256+1] != 0x00 || c.Code[off256+2] != 0x01 || c.Code[off256+3] != 0x00 {
		t.Errorf("long operand = %02X,%02X,%02X, want 00,01,00",
			c.Code[off256+1], c.Code[off256+2], c.Code[off256+3])
	}
}

func TestChunkPositionRunLengthInvariant(t *testing.T) {
	c := NewChunk()

	// Mixed positions, including repeats that should merge into runs.
	positions := []struct{ line, col int }{
		{1, 1}, {1, 1}, {1, 5}, {2, 1}, {2, 1}, {2, 1}, {3, 9},
	}
	for _, p := range positions {
		c.WriteOp(OpNop, p.line, p.col)
	}

	total := 0
	for _, run := range c.Positions {
		total += run.Run
	}
	if total != c.Len() {
		t.Errorf("sum of run lengths = %d, want %d", total, c.Len())
	}
	if len(c.Positions) != 4 {
		t.Errorf("run count = %d, want 4 (identical positions merged)", len(c.Positions))
	}
}

func TestChunkLineColumnLookup(t *testing.T) {
	c := NewChunk()
	c.WriteOp(OpNop, 10, 2)  // offset 0
	c.WriteOp(OpNop, 10, 2)  // offset 1
	c.WriteOp(OpNop, 12, 8)  // offset 2
	c.WriteOp(OpNop, 13, 1)  // offset 3

	tests := []struct {
		offset int
		line   int
		column int
	}{
		{0, 10, 2},
		{1, 10, 2},
		{2, 12, 8},
		{3, 13, 1},
	}
	for _, tt := range tests {
		if got := c.Line(tt.offset); got != tt.line {
			t.Errorf("Line(%d) = %d, want %d", tt.offset, got, tt.line)
		}
		if got := c.Column(tt.offset); got != tt.column {
			t.Errorf("Column(%d) = %d, want %d", tt.offset, got, tt.column)
		}
	}
}

func TestChunkPositionLookupOutOfRange(t *testing.T) {
	c := NewChunk()
	c.WriteOp(OpNop, 5, 3)

	// Out-of-range lookups are soft: sentinels, not panics.
	for _, offset := range []int{-1, 99} {
		if got := c.Line(offset); got != -1 {
			t.Errorf("Line(%d) = %d, want -1", offset, got)
		}
		if got := c.Column(offset); got != 1 {
			t.Errorf("Column(%d) = %d, want 1", offset, got)
		}
	}
}

func TestChunkOperandByte(t *testing.T) {
	c := NewChunk()
	c.WriteOp(OpConstant, 1, 1)
	c.Write(7, 1, 1)

	if got := c.OperandByte(0); got != 7 {
		t.Errorf("OperandByte(0) = %d, want 7", got)
	}
}

func TestChunkOperandBytePanics(t *testing.T) {
	c := NewChunk()
	c.WriteOp(OpNop, 1, 1)

	for _, offset := range []int{-1, 0, 5} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("OperandByte(%d) did not panic", offset)
				}
			}()
			c.OperandByte(offset)
		}()
	}
}

func TestChunkConstantAt(t *testing.T) {
	c := NewChunk()
	c.WriteConstant(value.NewString("x"), 1, 1)

	got := c.ConstantAt(0)
	if !got.Equals(value.NewString("x")) {
		t.Errorf("ConstantAt(0) = %s, want %q", got, "x")
	}
}

func TestChunkConstantAtPanicsOnBadIndex(t *testing.T) {
	c := NewChunk()
	c.WriteOp(OpConstant, 1, 1)
	c.Write(9, 1, 1) // pool is empty, index 9 is corrupt

	defer func() {
		if recover() == nil {
			t.Error("ConstantAt with out-of-pool index did not panic")
		}
	}()
	c.ConstantAt(0)
}

func TestChunkJumpPatch(t *testing.T) {
	c := NewChunk()

	c.WriteOp(OpTrue, 1, 1)                       // offset 0
	placeholder := c.WriteJump(OpJumpIfFalse, 1, 1) // offsets 1-3, placeholder at 2

	c.WriteOp(OpNil, 1, 1) // offset 4
	c.WriteOp(OpPop, 1, 1) // offset 5

	c.PatchJump(placeholder) // target is offset 6

	c.WriteOp(OpReturn, 1, 1) // offset 6

	// jumpFrom = placeholder + 2 = 4, target = 6, delta = 2
	delta := int(c.Code[placeholder])<<8 | int(c.Code[placeholder+1])
	if delta != 2 {
		t.Errorf("jump delta = %d, want 2", delta)
	}
}

func TestChunkWriteLoop(t *testing.T) {
	c := NewChunk()

	loopStart := c.CurrentOffset()
	c.WriteOp(OpNil, 1, 1)
	c.WriteOp(OpPop, 1, 1)

	c.WriteLoop(loopStart, 2, 1)

	// The loop instruction starts at offset 2; the byte after its operands
	// is offset 5, so the backward delta is 5.
	operand := c.Len() - 2
	delta := int(c.Code[operand])<<8 | int(c.Code[operand+1])
	if delta != 5 {
		t.Errorf("loop delta = %d, want 5", delta)
	}
	if Opcode(c.Code[2]) != OpLoop {
		t.Errorf("Code[2] = 0x%02X, want OpLoop", c.Code[2])
	}
}
