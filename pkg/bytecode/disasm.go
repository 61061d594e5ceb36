package bytecode

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Disassemble returns a human-readable bytecode listing for the chunk.
func (c *Chunk) Disassemble() string {
	return c.DisassembleWithName("")
}

// DisassembleWithName returns a human-readable bytecode listing with a name header.
func (c *Chunk) DisassembleWithName(name string) string {
	var sb strings.Builder

	if name != "" {
		sb.WriteString(fmt.Sprintf("; === %s ===\n", name))
	}

	if len(c.Constants) > 0 {
		sb.WriteString("; Constants:\n")
		for i, v := range c.Constants {
			display := v.String()
			if len(display) > 40 {
				display = display[:37] + "..."
			}
			sb.WriteString(fmt.Sprintf(";   [%3d] %s\n", i, display))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("; Code:\n")
	offset := 0
	for offset < len(c.Code) {
		text, instrLen := c.disassembleInstruction(offset)
		if line := c.Line(offset); line > 0 {
			sb.WriteString(fmt.Sprintf("%04X  %-30s ; line %d:%d\n", offset, text, line, c.Column(offset)))
		} else {
			sb.WriteString(fmt.Sprintf("%04X  %s\n", offset, text))
		}
		offset += instrLen
	}

	return sb.String()
}

// disassembleInstruction disassembles a single instruction at the given offset.
// Returns the formatted string and the instruction length.
func (c *Chunk) disassembleInstruction(offset int) (string, int) {
	if offset >= len(c.Code) {
		return "<end of code>", 0
	}

	op := Opcode(c.Code[offset])
	info := GetOpcodeInfo(op)

	switch op {
	case OpConstant:
		idx := int(c.readByte(offset + 1))
		return fmt.Sprintf("CONSTANT %d ; %s", idx, c.constantName(idx)), 2

	case OpConstantLong:
		idx := int(c.readByte(offset+1))<<16 | int(c.readByte(offset+2))<<8 | int(c.readByte(offset+3))
		return fmt.Sprintf("CONSTANT_LONG %d ; %s", idx, c.constantName(idx)), 4

	case OpJump, OpJumpIfFalse, OpJumpIfTrue:
		delta := int(c.readUint16(offset + 1))
		target := offset + 3 + delta
		return fmt.Sprintf("%s +%d (-> %04X)", info.Name, delta, target), 3

	case OpLoop:
		delta := int(c.readUint16(offset + 1))
		target := offset + 3 - delta
		return fmt.Sprintf("LOOP -%d (-> %04X)", delta, target), 3

	case OpDefineGlobal, OpGetGlobal, OpSetGlobal:
		slot := c.readByte(offset + 1)
		return fmt.Sprintf("%s %d", info.Name, slot), 2

	case OpCall:
		fn := c.readByte(offset + 1)
		argc := c.readByte(offset + 2)
		return fmt.Sprintf("CALL %d argc=%d", fn, argc), 3

	case OpMakeArray:
		count := c.readByte(offset + 1)
		return fmt.Sprintf("MAKE_ARRAY %d", count), 2

	default:
		instrLen := 1 + info.OperandLen
		if info.OperandLen == 0 {
			return info.Name, instrLen
		}
		operands := make([]string, 0, info.OperandLen)
		for i := 0; i < info.OperandLen; i++ {
			if offset+1+i < len(c.Code) {
				operands = append(operands, fmt.Sprintf("0x%02X", c.Code[offset+1+i]))
			}
		}
		return fmt.Sprintf("%s %s", info.Name, strings.Join(operands, " ")), instrLen
	}
}

// DisassembleInstruction returns a human-readable representation of a single instruction.
func (c *Chunk) DisassembleInstruction(offset int) string {
	text, _ := c.disassembleInstruction(offset)
	return text
}

// DisassembleToLines returns the disassembly as a slice of lines.
func (c *Chunk) DisassembleToLines() []string {
	var lines []string
	offset := 0
	for offset < len(c.Code) {
		text, instrLen := c.disassembleInstruction(offset)
		lines = append(lines, fmt.Sprintf("%04X  %s", offset, text))
		offset += instrLen
	}
	return lines
}

// InstructionCount returns the number of instructions in the chunk.
// Note: This iterates through all code, so it's O(n).
func (c *Chunk) InstructionCount() int {
	count := 0
	offset := 0
	for offset < len(c.Code) {
		op := Opcode(c.Code[offset])
		offset += op.InstructionLen()
		count++
	}
	return count
}

func (c *Chunk) constantName(idx int) string {
	if idx >= len(c.Constants) {
		return "<out of range>"
	}
	display := c.Constants[idx].String()
	if len(display) > 20 {
		display = display[:17] + "..."
	}
	return display
}

// readByte reads a code byte, returning 0 past the end.
func (c *Chunk) readByte(offset int) byte {
	if offset >= len(c.Code) {
		return 0
	}
	return c.Code[offset]
}

// readUint16 reads a big-endian uint16 from the code at the given offset.
func (c *Chunk) readUint16(offset int) uint16 {
	if offset+1 >= len(c.Code) {
		return 0
	}
	return binary.BigEndian.Uint16(c.Code[offset:])
}
