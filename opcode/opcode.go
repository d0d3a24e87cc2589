// Package opcode holds the single 256-entry table describing every 6502
// opcode's mnemonic, addressing mode, instruction group, and base cycle
// cost. Both cpu and disassemble read from this table so the two always
// agree on instruction length and cost, per the shared-opcode-table
// requirement.
package opcode

// Mode is a 6502 addressing mode.
type Mode int

const (
	Implied Mode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndexedIndirectX // (zp,X)
	IndirectIndexedY // (zp),Y
	Relative
)

// Size returns the instruction length in bytes (including the opcode
// byte) implied by a mode.
func (m Mode) Size() int {
	switch m {
	case Implied, Accumulator:
		return 1
	case Absolute, AbsoluteX, AbsoluteY, Indirect:
		return 3
	default:
		return 2
	}
}

// Group classifies an instruction for the Instruction record.
type Group int

const (
	GroupBranch Group = iota
	GroupLoadStore
	GroupControl
	GroupMath
	GroupLogic
	GroupCompare
	GroupShift
	GroupStack
	GroupTransfer
)

// OperandID is a bitset over the possible operand identities.
type OperandID uint8

const (
	IDNone OperandID = 0
	IDA    OperandID = 1 << 0
	IDX    OperandID = 1 << 1
	IDY    OperandID = 1 << 2
	IDSP   OperandID = 1 << 3
	IDMem  OperandID = 1 << 4
	IDConst OperandID = 1 << 5
)

// OperandType classifies how an operand is resolved.
type OperandType int

const (
	TypeNone OperandType = iota
	TypeRegister
	TypeMemory
	TypeImmediate
)

// OperandSize is the width of an operand value.
type OperandSize int

const (
	SizeNone OperandSize = iota
	SizeByte
	SizeWord
)

// Access is a 2-bit read/write classification.
type Access int

const (
	AccessNone Access = iota
	AccessRead
	AccessWrite
	AccessReadWrite
)

// Operand describes one operand slot of an Instruction.
type Operand struct {
	ID     OperandID
	Type   OperandType
	Size   OperandSize
	Access Access
}

// Entry is one row of the opcode table.
type Entry struct {
	Opcode   uint8
	Mnemonic string
	Mode     Mode
	Group    Group
	Cycles   int // base cost before any page-cross/branch penalty
	// PageCross is true when this entry's addressing mode pays +1 cycle on
	// crossing a page boundary (read-class absolute,X / absolute,Y /
	// (zp),Y instructions only; write-class instructions of the same
	// modes already carry the extra cycle in Cycles and never add more).
	PageCross bool
	Legal     bool
	Operand1  Operand
	Operand2  Operand
}

// Table is the full 256-entry opcode table, indexed by opcode byte.
var Table [256]Entry

type row struct {
	op       uint8
	mnemonic string
	mode     Mode
	cycles   int
	pageCross bool
}

// legal lists every documented 6502 opcode. Grouped by mnemonic for
// readability; values are the standard, widely documented 6502 timings.
var legal = []row{
	// ADC
	{0x69, "ADC", Immediate, 2, false}, {0x65, "ADC", ZeroPage, 3, false},
	{0x75, "ADC", ZeroPageX, 4, false}, {0x6D, "ADC", Absolute, 4, false},
	{0x7D, "ADC", AbsoluteX, 4, true}, {0x79, "ADC", AbsoluteY, 4, true},
	{0x61, "ADC", IndexedIndirectX, 6, false}, {0x71, "ADC", IndirectIndexedY, 5, true},
	// AND
	{0x29, "AND", Immediate, 2, false}, {0x25, "AND", ZeroPage, 3, false},
	{0x35, "AND", ZeroPageX, 4, false}, {0x2D, "AND", Absolute, 4, false},
	{0x3D, "AND", AbsoluteX, 4, true}, {0x39, "AND", AbsoluteY, 4, true},
	{0x21, "AND", IndexedIndirectX, 6, false}, {0x31, "AND", IndirectIndexedY, 5, true},
	// ASL
	{0x0A, "ASL", Accumulator, 2, false}, {0x06, "ASL", ZeroPage, 5, false},
	{0x16, "ASL", ZeroPageX, 6, false}, {0x0E, "ASL", Absolute, 6, false},
	{0x1E, "ASL", AbsoluteX, 7, false},
	// Branches
	{0x90, "BCC", Relative, 2, false}, {0xB0, "BCS", Relative, 2, false},
	{0xF0, "BEQ", Relative, 2, false}, {0x30, "BMI", Relative, 2, false},
	{0xD0, "BNE", Relative, 2, false}, {0x10, "BPL", Relative, 2, false},
	{0x50, "BVC", Relative, 2, false}, {0x70, "BVS", Relative, 2, false},
	// BIT
	{0x24, "BIT", ZeroPage, 3, false}, {0x2C, "BIT", Absolute, 4, false},
	// BRK
	{0x00, "BRK", Implied, 7, false},
	// Flag ops
	{0x18, "CLC", Implied, 2, false}, {0xD8, "CLD", Implied, 2, false},
	{0x58, "CLI", Implied, 2, false}, {0xB8, "CLV", Implied, 2, false},
	{0x38, "SEC", Implied, 2, false}, {0xF8, "SED", Implied, 2, false},
	{0x78, "SEI", Implied, 2, false},
	// CMP
	{0xC9, "CMP", Immediate, 2, false}, {0xC5, "CMP", ZeroPage, 3, false},
	{0xD5, "CMP", ZeroPageX, 4, false}, {0xCD, "CMP", Absolute, 4, false},
	{0xDD, "CMP", AbsoluteX, 4, true}, {0xD9, "CMP", AbsoluteY, 4, true},
	{0xC1, "CMP", IndexedIndirectX, 6, false}, {0xD1, "CMP", IndirectIndexedY, 5, true},
	// CPX / CPY
	{0xE0, "CPX", Immediate, 2, false}, {0xE4, "CPX", ZeroPage, 3, false}, {0xEC, "CPX", Absolute, 4, false},
	{0xC0, "CPY", Immediate, 2, false}, {0xC4, "CPY", ZeroPage, 3, false}, {0xCC, "CPY", Absolute, 4, false},
	// DEC / DEX / DEY
	{0xC6, "DEC", ZeroPage, 5, false}, {0xD6, "DEC", ZeroPageX, 6, false},
	{0xCE, "DEC", Absolute, 6, false}, {0xDE, "DEC", AbsoluteX, 7, false},
	{0xCA, "DEX", Implied, 2, false}, {0x88, "DEY", Implied, 2, false},
	// EOR
	{0x49, "EOR", Immediate, 2, false}, {0x45, "EOR", ZeroPage, 3, false},
	{0x55, "EOR", ZeroPageX, 4, false}, {0x4D, "EOR", Absolute, 4, false},
	{0x5D, "EOR", AbsoluteX, 4, true}, {0x59, "EOR", AbsoluteY, 4, true},
	{0x41, "EOR", IndexedIndirectX, 6, false}, {0x51, "EOR", IndirectIndexedY, 5, true},
	// INC / INX / INY
	{0xE6, "INC", ZeroPage, 5, false}, {0xF6, "INC", ZeroPageX, 6, false},
	{0xEE, "INC", Absolute, 6, false}, {0xFE, "INC", AbsoluteX, 7, false},
	{0xE8, "INX", Implied, 2, false}, {0xC8, "INY", Implied, 2, false},
	// JMP / JSR
	{0x4C, "JMP", Absolute, 3, false}, {0x6C, "JMP", Indirect, 5, false},
	{0x20, "JSR", Absolute, 6, false},
	// LDA / LDX / LDY
	{0xA9, "LDA", Immediate, 2, false}, {0xA5, "LDA", ZeroPage, 3, false},
	{0xB5, "LDA", ZeroPageX, 4, false}, {0xAD, "LDA", Absolute, 4, false},
	{0xBD, "LDA", AbsoluteX, 4, true}, {0xB9, "LDA", AbsoluteY, 4, true},
	{0xA1, "LDA", IndexedIndirectX, 6, false}, {0xB1, "LDA", IndirectIndexedY, 5, true},
	{0xA2, "LDX", Immediate, 2, false}, {0xA6, "LDX", ZeroPage, 3, false},
	{0xB6, "LDX", ZeroPageY, 4, false}, {0xAE, "LDX", Absolute, 4, false},
	{0xBE, "LDX", AbsoluteY, 4, true},
	{0xA0, "LDY", Immediate, 2, false}, {0xA4, "LDY", ZeroPage, 3, false},
	{0xB4, "LDY", ZeroPageX, 4, false}, {0xAC, "LDY", Absolute, 4, false},
	{0xBC, "LDY", AbsoluteX, 4, true},
	// LSR
	{0x4A, "LSR", Accumulator, 2, false}, {0x46, "LSR", ZeroPage, 5, false},
	{0x56, "LSR", ZeroPageX, 6, false}, {0x4E, "LSR", Absolute, 6, false},
	{0x5E, "LSR", AbsoluteX, 7, false},
	// NOP
	{0xEA, "NOP", Implied, 2, false},
	// ORA
	{0x09, "ORA", Immediate, 2, false}, {0x05, "ORA", ZeroPage, 3, false},
	{0x15, "ORA", ZeroPageX, 4, false}, {0x0D, "ORA", Absolute, 4, false},
	{0x1D, "ORA", AbsoluteX, 4, true}, {0x19, "ORA", AbsoluteY, 4, true},
	{0x01, "ORA", IndexedIndirectX, 6, false}, {0x11, "ORA", IndirectIndexedY, 5, true},
	// Stack
	{0x48, "PHA", Implied, 3, false}, {0x08, "PHP", Implied, 3, false},
	{0x68, "PLA", Implied, 4, false}, {0x28, "PLP", Implied, 4, false},
	// ROL / ROR
	{0x2A, "ROL", Accumulator, 2, false}, {0x26, "ROL", ZeroPage, 5, false},
	{0x36, "ROL", ZeroPageX, 6, false}, {0x2E, "ROL", Absolute, 6, false},
	{0x3E, "ROL", AbsoluteX, 7, false},
	{0x6A, "ROR", Accumulator, 2, false}, {0x66, "ROR", ZeroPage, 5, false},
	{0x76, "ROR", ZeroPageX, 6, false}, {0x6E, "ROR", Absolute, 6, false},
	{0x7E, "ROR", AbsoluteX, 7, false},
	// RTI / RTS
	{0x40, "RTI", Implied, 6, false}, {0x60, "RTS", Implied, 6, false},
	// SBC
	{0xE9, "SBC", Immediate, 2, false}, {0xE5, "SBC", ZeroPage, 3, false},
	{0xF5, "SBC", ZeroPageX, 4, false}, {0xED, "SBC", Absolute, 4, false},
	{0xFD, "SBC", AbsoluteX, 4, true}, {0xF9, "SBC", AbsoluteY, 4, true},
	{0xE1, "SBC", IndexedIndirectX, 6, false}, {0xF1, "SBC", IndirectIndexedY, 5, true},
	// STA / STX / STY
	{0x85, "STA", ZeroPage, 3, false}, {0x95, "STA", ZeroPageX, 4, false},
	{0x8D, "STA", Absolute, 4, false}, {0x9D, "STA", AbsoluteX, 5, false},
	{0x99, "STA", AbsoluteY, 5, false}, {0x81, "STA", IndexedIndirectX, 6, false},
	{0x91, "STA", IndirectIndexedY, 6, false},
	{0x86, "STX", ZeroPage, 3, false}, {0x96, "STX", ZeroPageY, 4, false}, {0x8E, "STX", Absolute, 4, false},
	{0x84, "STY", ZeroPage, 3, false}, {0x94, "STY", ZeroPageX, 4, false}, {0x8C, "STY", Absolute, 4, false},
	// Register transfers
	{0xAA, "TAX", Implied, 2, false}, {0xA8, "TAY", Implied, 2, false},
	{0xBA, "TSX", Implied, 2, false}, {0x8A, "TXA", Implied, 2, false},
	{0x9A, "TXS", Implied, 2, false}, {0x98, "TYA", Implied, 2, false},
}

// groupOf classifies a documented mnemonic into an instruction group.
func groupOf(mnemonic string) Group {
	switch mnemonic {
	case "BCC", "BCS", "BEQ", "BMI", "BNE", "BPL", "BVC", "BVS":
		return GroupBranch
	case "LDA", "LDX", "LDY", "STA", "STX", "STY":
		return GroupLoadStore
	case "JMP", "JSR", "RTS", "RTI", "BRK", "NOP":
		return GroupControl
	case "ADC", "SBC", "INC", "DEC", "INX", "INY", "DEX", "DEY":
		return GroupMath
	case "AND", "ORA", "EOR", "BIT":
		return GroupLogic
	case "CMP", "CPX", "CPY":
		return GroupCompare
	case "ASL", "LSR", "ROL", "ROR":
		return GroupShift
	case "PHA", "PLA", "PHP", "PLP":
		return GroupStack
	default: // TAX/TAY/TXA/TYA/TSX/TXS and flag ops (CLC/SEC/...)
		return GroupTransfer
	}
}

// operandsOf derives the two operand descriptors for an entry. This is a
// simplification: it captures the dominant read/write shape per group
// rather than hand-annotating every one of the 151 documented opcodes.
func operandsOf(mnemonic string, mode Mode, group Group) (Operand, Operand) {
	mem := Operand{ID: IDMem, Type: TypeMemory, Size: SizeByte, Access: AccessRead}
	if mode == Immediate {
		mem = Operand{ID: IDConst, Type: TypeImmediate, Size: SizeByte, Access: AccessRead}
	}
	none := Operand{}

	switch group {
	case GroupLoadStore:
		switch mnemonic {
		case "LDA":
			return Operand{IDA, TypeRegister, SizeByte, AccessWrite}, mem
		case "LDX":
			return Operand{IDX, TypeRegister, SizeByte, AccessWrite}, mem
		case "LDY":
			return Operand{IDY, TypeRegister, SizeByte, AccessWrite}, mem
		case "STA":
			return Operand{IDMem, TypeMemory, SizeByte, AccessWrite}, Operand{IDA, TypeRegister, SizeByte, AccessRead}
		case "STX":
			return Operand{IDMem, TypeMemory, SizeByte, AccessWrite}, Operand{IDX, TypeRegister, SizeByte, AccessRead}
		default: // STY
			return Operand{IDMem, TypeMemory, SizeByte, AccessWrite}, Operand{IDY, TypeRegister, SizeByte, AccessRead}
		}
	case GroupMath:
		switch mnemonic {
		case "ADC", "SBC":
			return Operand{IDA, TypeRegister, SizeByte, AccessReadWrite}, mem
		case "INC", "DEC":
			return Operand{IDMem, TypeMemory, SizeByte, AccessReadWrite}, none
		case "INX", "DEX":
			return Operand{IDX, TypeRegister, SizeByte, AccessReadWrite}, none
		default: // INY, DEY
			return Operand{IDY, TypeRegister, SizeByte, AccessReadWrite}, none
		}
	case GroupLogic:
		if mnemonic == "BIT" {
			return Operand{IDA, TypeRegister, SizeByte, AccessRead}, mem
		}
		return Operand{IDA, TypeRegister, SizeByte, AccessReadWrite}, mem
	case GroupCompare:
		reg := IDA
		if mnemonic == "CPX" {
			reg = IDX
		} else if mnemonic == "CPY" {
			reg = IDY
		}
		return Operand{reg, TypeRegister, SizeByte, AccessRead}, mem
	case GroupShift:
		if mode == Accumulator {
			return Operand{IDA, TypeRegister, SizeByte, AccessReadWrite}, none
		}
		return Operand{IDMem, TypeMemory, SizeByte, AccessReadWrite}, none
	case GroupStack:
		switch mnemonic {
		case "PHA":
			return Operand{IDA, TypeRegister, SizeByte, AccessRead}, none
		case "PLA":
			return Operand{IDA, TypeRegister, SizeByte, AccessWrite}, none
		default: // PHP/PLP: status pushed/pulled alongside SP movement
			return Operand{IDSP, TypeRegister, SizeByte, AccessReadWrite}, none
		}
	case GroupBranch:
		return Operand{IDConst, TypeImmediate, SizeByte, AccessRead}, none
	case GroupControl:
		switch mnemonic {
		case "JMP", "JSR":
			return Operand{IDMem, TypeMemory, SizeWord, AccessRead}, none
		default:
			return none, none
		}
	default: // GroupTransfer: register moves and flag ops
		switch mnemonic {
		case "TAX":
			return Operand{IDX, TypeRegister, SizeByte, AccessWrite}, Operand{IDA, TypeRegister, SizeByte, AccessRead}
		case "TAY":
			return Operand{IDY, TypeRegister, SizeByte, AccessWrite}, Operand{IDA, TypeRegister, SizeByte, AccessRead}
		case "TXA":
			return Operand{IDA, TypeRegister, SizeByte, AccessWrite}, Operand{IDX, TypeRegister, SizeByte, AccessRead}
		case "TYA":
			return Operand{IDA, TypeRegister, SizeByte, AccessWrite}, Operand{IDY, TypeRegister, SizeByte, AccessRead}
		case "TSX":
			return Operand{IDX, TypeRegister, SizeByte, AccessWrite}, Operand{IDSP, TypeRegister, SizeByte, AccessRead}
		case "TXS":
			return Operand{IDSP, TypeRegister, SizeByte, AccessWrite}, Operand{IDX, TypeRegister, SizeByte, AccessRead}
		default: // flag ops: CLC/SEC/CLI/SEI/CLD/SED/CLV
			return none, none
		}
	}
}

func init() {
	for i := range Table {
		Table[i] = Entry{
			Opcode:   uint8(i),
			Mnemonic: "???",
			Mode:     Implied,
			Group:    GroupControl,
			Cycles:   2,
			Legal:    false,
		}
	}
	for _, r := range legal {
		g := groupOf(r.mnemonic)
		op1, op2 := operandsOf(r.mnemonic, r.mode, g)
		Table[r.op] = Entry{
			Opcode:    r.op,
			Mnemonic:  r.mnemonic,
			Mode:      r.mode,
			Group:     g,
			Cycles:    r.cycles,
			PageCross: r.pageCross,
			Legal:     true,
			Operand1:  op1,
			Operand2:  op2,
		}
	}
}
