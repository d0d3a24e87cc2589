// Package disassemble decodes opcode bytes into Instruction records and
// formats them as fixed-column text, reading from the same opcode.Table
// the cpu package dispatches from so the two always agree on instruction
// length.
package disassemble

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sixtyfour/c64core/memory"
	"github.com/sixtyfour/c64core/opcode"
)

// ErrShortBuffer is returned by DecodeBytes when buf does not contain
// enough bytes to satisfy the decoded instruction's addressing mode.
var ErrShortBuffer = errors.New("disassemble: buffer too short for instruction")

// Instruction is the decoded record for one instruction: its address, raw
// bytes (opcode plus operand bytes, 1-3 total), and the opcode.Table entry
// that described it.
type Instruction struct {
	Address uint16
	Bytes   []uint8
	opcode.Entry
}

// InstructionSize returns the instruction's length in bytes, derived from
// its addressing mode.
func InstructionSize(insn Instruction) int {
	return insn.Mode.Size()
}

// Decode reads 1-3 bytes starting at addr from mem and returns the
// decoded Instruction. Memory is a flat, unbounded 64KiB space so this
// never fails; an undocumented opcode decodes as the table's illegal
// placeholder entry ("???", 1 byte).
func Decode(mem memory.Memory, addr uint16) Instruction {
	op := mem.Read(addr)
	entry := opcode.Table[op]
	size := entry.Mode.Size()
	bs := make([]uint8, size)
	bs[0] = op
	for i := 1; i < size; i++ {
		bs[i] = mem.Read(addr + uint16(i))
	}
	return Instruction{Address: addr, Bytes: bs, Entry: entry}
}

// DecodeBytes decodes a single instruction from a raw byte slice rather
// than a live Memory, for callers disassembling a standalone buffer (e.g.
// the payload of a .prg file). addr is the address the first byte is
// assumed to occupy, used to resolve relative branch targets.
func DecodeBytes(buf []byte, addr uint16) (Instruction, error) {
	if len(buf) == 0 {
		return Instruction{}, ErrShortBuffer
	}
	entry := opcode.Table[buf[0]]
	size := entry.Mode.Size()
	if len(buf) < size {
		return Instruction{}, ErrShortBuffer
	}
	bs := make([]uint8, size)
	copy(bs, buf[:size])
	return Instruction{Address: addr, Bytes: bs, Entry: entry}, nil
}

func operandSyntax(insn Instruction) string {
	hh := func(i int) uint8 { return insn.Bytes[i] }
	switch insn.Mode {
	case opcode.Implied:
		return ""
	case opcode.Accumulator:
		return "A"
	case opcode.Immediate:
		return fmt.Sprintf("#$%02X", hh(1))
	case opcode.ZeroPage:
		return fmt.Sprintf("$%02X", hh(1))
	case opcode.ZeroPageX:
		return fmt.Sprintf("$%02X,X", hh(1))
	case opcode.ZeroPageY:
		return fmt.Sprintf("$%02X,Y", hh(1))
	case opcode.Absolute:
		return fmt.Sprintf("$%02X%02X", hh(2), hh(1))
	case opcode.AbsoluteX:
		return fmt.Sprintf("$%02X%02X,X", hh(2), hh(1))
	case opcode.AbsoluteY:
		return fmt.Sprintf("$%02X%02X,Y", hh(2), hh(1))
	case opcode.Indirect:
		return fmt.Sprintf("($%02X%02X)", hh(2), hh(1))
	case opcode.IndexedIndirectX:
		return fmt.Sprintf("($%02X,X)", hh(1))
	case opcode.IndirectIndexedY:
		return fmt.Sprintf("($%02X),Y", hh(1))
	case opcode.Relative:
		target := uint16(int32(insn.Address) + 2 + int32(int8(hh(1))))
		return fmt.Sprintf("$%04X", target)
	default:
		return ""
	}
}

// formatBytes renders an instruction's raw bytes as space-separated
// uppercase hex pairs, right-padded to an 8-character-wide column (wide
// enough for the 3-byte case with its two separating spaces).
func formatBytes(bs []uint8) string {
	var sb strings.Builder
	for i, b := range bs {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", b)
	}
	for sb.Len() < 8 {
		sb.WriteByte(' ')
	}
	return sb.String()
}

// DisassembleInsn formats insn as "PPPP:  BB BB BB  MNEMONIC OPERAND".
func DisassembleInsn(insn Instruction) string {
	operand := operandSyntax(insn)
	mnemonic := insn.Mnemonic
	if operand == "" {
		return fmt.Sprintf("%04X:  %s  %s", insn.Address, formatBytes(insn.Bytes), mnemonic)
	}
	return fmt.Sprintf("%04X:  %s  %s %s", insn.Address, formatBytes(insn.Bytes), mnemonic, operand)
}

// DisassembleCodeLine writes the formatted line for insn into sb.
func DisassembleCodeLine(sb *strings.Builder, insn Instruction) {
	sb.WriteString(DisassembleInsn(insn))
}

// DisassembleForward decodes and formats count consecutive instructions
// starting at pcStart, advancing by each instruction's own size.
func DisassembleForward(mem memory.Memory, pcStart uint16, count int) []string {
	lines := make([]string, 0, count)
	pc := pcStart
	for i := 0; i < count; i++ {
		insn := Decode(mem, pc)
		lines = append(lines, DisassembleInsn(insn))
		pc += uint16(InstructionSize(insn))
	}
	return lines
}
