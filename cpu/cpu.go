// Package cpu implements the MOS 6510 instruction interpreter: registers,
// status flags, cycle accounting, and the full documented opcode dispatch,
// with memory writes intercepted for the SID register window and cycle
// charges forwarded to the VIC each step.
package cpu

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"

	"github.com/sixtyfour/c64core/memory"
	"github.com/sixtyfour/c64core/opcode"
	"github.com/sixtyfour/c64core/sid"
	"github.com/sixtyfour/c64core/vic"
)

// Status flag bit masks. Layout is N V 1 B D I Z C (MSB to LSB).
const (
	P_NEGATIVE  = uint8(0x80)
	P_OVERFLOW  = uint8(0x40)
	P_S1        = uint8(0x20) // Always 1.
	P_B         = uint8(0x10) // Only meaningful while pushed onto the stack.
	P_DECIMAL   = uint8(0x08)
	P_INTERRUPT = uint8(0x04)
	P_ZERO      = uint8(0x02)
	P_CARRY     = uint8(0x01)
)

const (
	NMI_VECTOR   = uint16(0xFFFA)
	RESET_VECTOR = uint16(0xFFFC)
	IRQ_VECTOR   = uint16(0xFFFE)
)

// rtsOpcode is the opcode byte for RTS, used by Run/Call to detect the sentinel
// return.
const rtsOpcode = uint8(0x60)

// InvalidCPUState represents a programming error reaching the CPU in a
// state it should never observe (e.g. a caller passing an invalid frame
// count).
type InvalidCPUState struct {
	Reason string
}

// Error implements the error interface.
func (e InvalidCPUState) Error() string {
	return fmt.Sprintf("invalid CPU state: %s", e.Reason)
}

// Flags is the structured decomposition of the packed status byte. P is
// the source of truth; Flags() derives this on demand so the two can never
// drift out of sync.
type Flags struct {
	N, V, B, D, I, Z, C bool
}

// Chip is the 6510 interpreter. It owns no Memory, VIC, or SID instance;
// it holds non-owning references supplied at Init so a Machine stays the
// sole owner of all four.
type Chip struct {
	A, X, Y uint8
	S       uint8
	P       uint8
	PC      uint16

	OpcodeLast uint8

	CyclesExecuted   uint64
	CyclesLastStep   int
	CyclesSinceVsync uint64
	CyclesSinceHsync uint64

	SidRegWritten    bool
	SidRegChanged    bool
	ExtSidRegWritten bool
	ExtSidRegChanged bool

	mem     memory.Memory
	vic     *vic.VIC
	sidChip *sid.SID
	sidBase uint16

	debug bool
	log   *charmlog.Logger
}

// Def configures a new Chip. Mem is required; Vic and Sid are optional —
// a Chip with neither behaves as a bare interpreter (RunFrames then
// returns an error; SID interception is simply skipped).
type Def struct {
	Mem     memory.Memory
	Vic     *vic.VIC
	Sid     *sid.SID
	SidBase uint16
	Debug   bool
	Logger  *charmlog.Logger
}

// Init constructs a Chip in post-reset state.
func Init(def *Def) (*Chip, error) {
	if def.Mem == nil {
		return nil, InvalidCPUState{"Init: no memory supplied"}
	}
	l := def.Logger
	if l == nil {
		l = charmlog.NewWithOptions(os.Stderr, charmlog.Options{Prefix: "cpu"})
	}
	base := def.SidBase
	if base == 0 {
		base = sid.DefaultBase
	}
	p := &Chip{
		mem:     def.Mem,
		vic:     def.Vic,
		sidChip: def.Sid,
		sidBase: base,
		debug:   def.Debug,
		log:     l,
	}
	p.Reset()
	return p, nil
}

// SetDebug toggles human-readable per-event logging.
func (p *Chip) SetDebug(d bool) { p.debug = d }

// Flags derives the structured flag view from the packed status byte.
func (p *Chip) Flags() Flags {
	return Flags{
		N: p.P&P_NEGATIVE != 0,
		V: p.P&P_OVERFLOW != 0,
		B: p.P&P_B != 0,
		D: p.P&P_DECIMAL != 0,
		I: p.P&P_INTERRUPT != 0,
		Z: p.P&P_ZERO != 0,
		C: p.P&P_CARRY != 0,
	}
}

func (p *Chip) zeroCheck(v uint8) {
	if v == 0 {
		p.P |= P_ZERO
	} else {
		p.P &^= P_ZERO
	}
}

func (p *Chip) negativeCheck(v uint8) {
	if v&0x80 != 0 {
		p.P |= P_NEGATIVE
	} else {
		p.P &^= P_NEGATIVE
	}
}

func (p *Chip) carryCheck(set bool) {
	if set {
		p.P |= P_CARRY
	} else {
		p.P &^= P_CARRY
	}
}

func (p *Chip) overflowCheck(set bool) {
	if set {
		p.P |= P_OVERFLOW
	} else {
		p.P &^= P_OVERFLOW
	}
}

// Reset clears registers and flags to the documented post-reset state
// (status $24, sp $FF, A=X=Y=0, cycle counters 0) and loads pc from the
// reset vector. Memory is left untouched.
func (p *Chip) Reset() {
	p.A, p.X, p.Y = 0, 0, 0
	p.S = 0xFF
	p.P = P_S1 | P_INTERRUPT
	p.CyclesExecuted = 0
	p.CyclesLastStep = 0
	p.CyclesSinceVsync = 0
	p.CyclesSinceHsync = 0
	p.SidRegWritten, p.SidRegChanged = false, false
	p.PC = p.ReadWord(RESET_VECTOR)
}

// HardReset clears memory to all zero, then performs a normal Reset.
func (p *Chip) HardReset() {
	p.mem.Clear()
	p.Reset()
}

// ReadByte reads a byte directly from memory. Reads have no side effects:
// the SID window simply returns the last-written byte.
func (p *Chip) ReadByte(addr uint16) uint8 {
	return p.mem.Read(addr)
}

// ReadWord performs a non-wrapping little-endian 16-bit read.
func (p *Chip) ReadWord(addr uint16) uint16 {
	return memory.ReadWord(p.mem, addr)
}

// ReadWordZP performs a zero-page-wrapping little-endian 16-bit read.
func (p *Chip) ReadWordZP(addr uint8) uint16 {
	return memory.ReadWordZP(p.mem, addr)
}

// WriteByte writes through to memory and, when addr falls in the SID
// register window, also routes the write to the SID and updates the
// per-step and sticky observation flags.
func (p *Chip) WriteByte(addr uint16, val uint8) {
	p.mem.Write(addr, val)
	if p.sidChip == nil {
		return
	}
	if addr < p.sidBase || addr >= p.sidBase+sid.NumRegisters {
		return
	}
	idx := uint8(addr - p.sidBase)
	changed := p.sidChip.WriteRegister(idx, val)
	p.SidRegWritten = true
	p.ExtSidRegWritten = true
	if changed {
		p.SidRegChanged = true
		p.ExtSidRegChanged = true
	}
}

// WriteWord writes a little-endian 16-bit value across addr and addr+1,
// through the same SID-intercepting path as WriteByte.
func (p *Chip) WriteWord(addr uint16, val uint16) {
	p.WriteByte(addr, uint8(val&0xFF))
	p.WriteByte(addr+1, uint8(val>>8))
}

func (p *Chip) pushStack(val uint8) {
	p.mem.Write(0x0100+uint16(p.S), val)
	p.S--
}

func (p *Chip) popStack() uint8 {
	p.S++
	return p.mem.Read(0x0100 + uint16(p.S))
}

// resolved is the outcome of evaluating an addressing mode: an effective
// address (when the mode is memory-based), the byte at that address (or
// the immediate/relative operand byte), and whether an indexed address
// crossed a page boundary.
type resolved struct {
	addr        uint16
	value       uint8
	pageCrossed bool
	accumulator bool
}

func (p *Chip) resolveOperand(mode opcode.Mode) resolved {
	switch mode {
	case opcode.Implied:
		return resolved{}
	case opcode.Accumulator:
		return resolved{accumulator: true, value: p.A}
	case opcode.Immediate:
		v := p.ReadByte(p.PC)
		p.PC++
		return resolved{value: v}
	case opcode.ZeroPage:
		a := uint16(p.ReadByte(p.PC))
		p.PC++
		return resolved{addr: a, value: p.ReadByte(a)}
	case opcode.ZeroPageX:
		zp := p.ReadByte(p.PC)
		p.PC++
		a := uint16(zp + p.X)
		return resolved{addr: a, value: p.ReadByte(a)}
	case opcode.ZeroPageY:
		zp := p.ReadByte(p.PC)
		p.PC++
		a := uint16(zp + p.Y)
		return resolved{addr: a, value: p.ReadByte(a)}
	case opcode.Absolute:
		a := p.ReadWord(p.PC)
		p.PC += 2
		return resolved{addr: a, value: p.ReadByte(a)}
	case opcode.AbsoluteX:
		base := p.ReadWord(p.PC)
		p.PC += 2
		a := base + uint16(p.X)
		return resolved{addr: a, value: p.ReadByte(a), pageCrossed: (base & 0xFF00) != (a & 0xFF00)}
	case opcode.AbsoluteY:
		base := p.ReadWord(p.PC)
		p.PC += 2
		a := base + uint16(p.Y)
		return resolved{addr: a, value: p.ReadByte(a), pageCrossed: (base & 0xFF00) != (a & 0xFF00)}
	case opcode.IndexedIndirectX:
		zp := p.ReadByte(p.PC)
		p.PC++
		ptr := zp + p.X
		a := p.ReadWordZP(ptr)
		return resolved{addr: a, value: p.ReadByte(a)}
	case opcode.IndirectIndexedY:
		zp := p.ReadByte(p.PC)
		p.PC++
		base := p.ReadWordZP(zp)
		a := base + uint16(p.Y)
		return resolved{addr: a, value: p.ReadByte(a), pageCrossed: (base & 0xFF00) != (a & 0xFF00)}
	case opcode.Indirect:
		// JMP ($xxxx). Reproduces the classic page-boundary bug: when the
		// pointer's low byte is 0xFF, the high byte is fetched from
		// $xx00 rather than $(xx+1)00.
		ptr := p.ReadWord(p.PC)
		p.PC += 2
		lo := p.ReadByte(ptr)
		hiAddr := ptr + 1
		if ptr&0xFF == 0xFF {
			hiAddr = ptr & 0xFF00
		}
		hi := p.ReadByte(hiAddr)
		return resolved{addr: uint16(hi)<<8 | uint16(lo)}
	case opcode.Relative:
		off := p.ReadByte(p.PC)
		p.PC++
		return resolved{value: off}
	default:
		return resolved{}
	}
}

func (p *Chip) branch(taken bool, offset uint8) int {
	if !taken {
		return 0
	}
	target := uint16(int32(p.PC) + int32(int8(offset)))
	extra := 1
	if (target & 0xFF00) != (p.PC & 0xFF00) {
		extra++
	}
	p.PC = target
	return extra
}

func (p *Chip) compare(reg uint8, v uint8) {
	result := reg - v
	p.carryCheck(reg >= v)
	p.zeroCheck(result)
	p.negativeCheck(result)
}

// iADC implements ADC and (via one's-complementing v) SBC. Decimal mode is
// accepted without faulting but not modeled: flags are always computed on
// the binary result, per the documented best-effort simplification.
func (p *Chip) iADC(v uint8) {
	carry := uint16(0)
	if p.P&P_CARRY != 0 {
		carry = 1
	}
	sum := uint16(p.A) + uint16(v) + carry
	result := uint8(sum)
	p.carryCheck(sum > 0xFF)
	p.overflowCheck((p.A^result)&(v^result)&0x80 != 0)
	p.A = result
	p.zeroCheck(p.A)
	p.negativeCheck(p.A)
}

func (p *Chip) shiftResult(res resolved, result uint8) {
	if res.accumulator {
		p.A = result
	} else {
		p.WriteByte(res.addr, result)
	}
	p.zeroCheck(result)
	p.negativeCheck(result)
}

func (p *Chip) iASL(res resolved) {
	carry := res.value&0x80 != 0
	result := res.value << 1
	p.carryCheck(carry)
	p.shiftResult(res, result)
}

func (p *Chip) iLSR(res resolved) {
	carry := res.value&0x01 != 0
	result := res.value >> 1
	p.carryCheck(carry)
	p.shiftResult(res, result)
}

func (p *Chip) iROL(res resolved) {
	carryIn := uint8(0)
	if p.P&P_CARRY != 0 {
		carryIn = 1
	}
	carryOut := res.value&0x80 != 0
	result := (res.value << 1) | carryIn
	p.carryCheck(carryOut)
	p.shiftResult(res, result)
}

func (p *Chip) iROR(res resolved) {
	carryIn := uint8(0)
	if p.P&P_CARRY != 0 {
		carryIn = 0x80
	}
	carryOut := res.value&0x01 != 0
	result := (res.value >> 1) | carryIn
	p.carryCheck(carryOut)
	p.shiftResult(res, result)
}

func (p *Chip) iBIT(v uint8) {
	if p.A&v == 0 {
		p.P |= P_ZERO
	} else {
		p.P &^= P_ZERO
	}
	p.negativeCheck(v)
	p.overflowCheck(v&0x40 != 0)
}

func (p *Chip) iJSR(target uint16) {
	ret := p.PC - 1
	p.pushStack(uint8(ret >> 8))
	p.pushStack(uint8(ret & 0xFF))
	p.PC = target
}

func (p *Chip) iRTS() {
	lo := p.popStack()
	hi := p.popStack()
	p.PC = (uint16(hi)<<8 | uint16(lo)) + 1
}

func (p *Chip) iRTI() {
	val := p.popStack()
	p.P = (val &^ P_B) | P_S1
	lo := p.popStack()
	hi := p.popStack()
	p.PC = uint16(hi)<<8 | uint16(lo)
}

// iBRK skips the conventional signature byte, pushes the return address
// and status (with B set), disables interrupts, and loads pc from the IRQ
// vector.
func (p *Chip) iBRK() {
	p.PC++
	ret := p.PC
	p.pushStack(uint8(ret >> 8))
	p.pushStack(uint8(ret & 0xFF))
	p.pushStack(p.P | P_S1 | P_B)
	p.P |= P_INTERRUPT
	p.PC = p.ReadWord(IRQ_VECTOR)
}

func (p *Chip) iPLP() {
	val := p.popStack()
	curB := p.P & P_B
	p.P = (val &^ P_B) | P_S1 | curB
}

// execute dispatches the decoded instruction and returns any additional
// cycles beyond the table's base cost (only branches ever add any, via
// p.branch).
func (p *Chip) execute(entry opcode.Entry, res resolved) int {
	extra := 0
	switch entry.Mnemonic {
	case "ADC":
		p.iADC(res.value)
	case "AND":
		p.A &= res.value
		p.zeroCheck(p.A)
		p.negativeCheck(p.A)
	case "ASL":
		p.iASL(res)
	case "BCC":
		extra = p.branch(p.P&P_CARRY == 0, res.value)
	case "BCS":
		extra = p.branch(p.P&P_CARRY != 0, res.value)
	case "BEQ":
		extra = p.branch(p.P&P_ZERO != 0, res.value)
	case "BMI":
		extra = p.branch(p.P&P_NEGATIVE != 0, res.value)
	case "BNE":
		extra = p.branch(p.P&P_ZERO == 0, res.value)
	case "BPL":
		extra = p.branch(p.P&P_NEGATIVE == 0, res.value)
	case "BVC":
		extra = p.branch(p.P&P_OVERFLOW == 0, res.value)
	case "BVS":
		extra = p.branch(p.P&P_OVERFLOW != 0, res.value)
	case "BIT":
		p.iBIT(res.value)
	case "BRK":
		p.iBRK()
	case "CLC":
		p.P &^= P_CARRY
	case "CLD":
		p.P &^= P_DECIMAL
	case "CLI":
		p.P &^= P_INTERRUPT
	case "CLV":
		p.P &^= P_OVERFLOW
	case "SEC":
		p.P |= P_CARRY
	case "SED":
		p.P |= P_DECIMAL
	case "SEI":
		p.P |= P_INTERRUPT
	case "CMP":
		p.compare(p.A, res.value)
	case "CPX":
		p.compare(p.X, res.value)
	case "CPY":
		p.compare(p.Y, res.value)
	case "DEC":
		v := res.value - 1
		p.WriteByte(res.addr, v)
		p.zeroCheck(v)
		p.negativeCheck(v)
	case "DEX":
		p.X--
		p.zeroCheck(p.X)
		p.negativeCheck(p.X)
	case "DEY":
		p.Y--
		p.zeroCheck(p.Y)
		p.negativeCheck(p.Y)
	case "EOR":
		p.A ^= res.value
		p.zeroCheck(p.A)
		p.negativeCheck(p.A)
	case "INC":
		v := res.value + 1
		p.WriteByte(res.addr, v)
		p.zeroCheck(v)
		p.negativeCheck(v)
	case "INX":
		p.X++
		p.zeroCheck(p.X)
		p.negativeCheck(p.X)
	case "INY":
		p.Y++
		p.zeroCheck(p.Y)
		p.negativeCheck(p.Y)
	case "JMP":
		p.PC = res.addr
	case "JSR":
		p.iJSR(res.addr)
	case "LDA":
		p.A = res.value
		p.zeroCheck(p.A)
		p.negativeCheck(p.A)
	case "LDX":
		p.X = res.value
		p.zeroCheck(p.X)
		p.negativeCheck(p.X)
	case "LDY":
		p.Y = res.value
		p.zeroCheck(p.Y)
		p.negativeCheck(p.Y)
	case "LSR":
		p.iLSR(res)
	case "NOP":
		// Nothing.
	case "ORA":
		p.A |= res.value
		p.zeroCheck(p.A)
		p.negativeCheck(p.A)
	case "PHA":
		p.pushStack(p.A)
	case "PHP":
		p.pushStack(p.P | P_S1 | P_B)
	case "PLA":
		p.A = p.popStack()
		p.zeroCheck(p.A)
		p.negativeCheck(p.A)
	case "PLP":
		p.iPLP()
	case "ROL":
		p.iROL(res)
	case "ROR":
		p.iROR(res)
	case "RTI":
		p.iRTI()
	case "RTS":
		p.iRTS()
	case "SBC":
		p.iADC(^res.value)
	case "STA":
		p.WriteByte(res.addr, p.A)
	case "STX":
		p.WriteByte(res.addr, p.X)
	case "STY":
		p.WriteByte(res.addr, p.Y)
	case "TAX":
		p.X = p.A
		p.zeroCheck(p.X)
		p.negativeCheck(p.X)
	case "TAY":
		p.Y = p.A
		p.zeroCheck(p.Y)
		p.negativeCheck(p.Y)
	case "TSX":
		p.X = p.S
		p.zeroCheck(p.X)
		p.negativeCheck(p.X)
	case "TXA":
		p.A = p.X
		p.zeroCheck(p.A)
		p.negativeCheck(p.A)
	case "TXS":
		p.S = p.X
	case "TYA":
		p.A = p.Y
		p.zeroCheck(p.A)
		p.negativeCheck(p.A)
	default:
		// Undocumented opcode: documented NOP-equivalent, no side effects
		// beyond the base 2-cycle cost already charged from the table.
		if p.debug {
			p.log.Debug("illegal opcode treated as NOP", "opcode", fmt.Sprintf("0x%02X", p.OpcodeLast))
		}
	}
	return extra
}

// RunStep decodes and executes a single instruction at pc, returning the
// number of cycles charged (table cost plus any addressing/branch penalty
// plus any VIC bad-line penalty).
func (p *Chip) RunStep() (int, error) {
	p.SidRegWritten = false
	p.SidRegChanged = false

	op := p.ReadByte(p.PC)
	p.OpcodeLast = op
	entry := opcode.Table[op]
	p.PC++

	res := p.resolveOperand(entry.Mode)

	cycles := entry.Cycles
	if entry.PageCross && res.pageCrossed {
		cycles++
	}
	cycles += p.execute(entry, res)

	if p.vic != nil {
		badLine, hsync, vsync := p.vic.Tick(cycles)
		cycles += badLine
		if vsync {
			p.CyclesSinceVsync = 0
		} else {
			p.CyclesSinceVsync += uint64(cycles)
		}
		if hsync {
			p.CyclesSinceHsync = 0
		} else {
			p.CyclesSinceHsync += uint64(cycles)
		}
	} else {
		p.CyclesSinceVsync += uint64(cycles)
		p.CyclesSinceHsync += uint64(cycles)
	}

	p.CyclesLastStep = cycles
	p.CyclesExecuted += uint64(cycles)
	return cycles, nil
}

// RunCtx loops calling RunStep until an RTS pops the stack pointer back to
// (or past) the sentinel established at entry, or ctx is canceled. See
// DESIGN.md for why a snapshot-sp sentinel was chosen over a fixed return
// address.
func (p *Chip) RunCtx(ctx context.Context) error {
	sentinelSP := p.S
	p.pushStack(0x00)
	p.pushStack(0x00)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := p.RunStep(); err != nil {
			return err
		}
		if p.OpcodeLast == rtsOpcode && int8(p.S-sentinelSP) >= 0 {
			if p.debug {
				p.log.Debug("RTS EXIT")
			}
			return nil
		}
	}
}

// Run loops calling RunStep until an RTS returns to the sentinel pushed at
// entry.
func (p *Chip) Run() error {
	return p.RunCtx(context.Background())
}

// Call sets pc to addr and runs until the sentinel RTS, equivalent to
// calling a subroutine and waiting for it to return.
func (p *Chip) Call(addr uint16) error {
	p.PC = addr
	return p.Run()
}

// RunFrames runs until n vsyncs have been observed by the VIC, returning
// the number of frames actually run (always n on success).
func (p *Chip) RunFrames(n int) (int, error) {
	if n <= 0 {
		return 0, InvalidCPUState{fmt.Sprintf("RunFrames: n must be positive, got %d", n)}
	}
	if p.vic == nil {
		return 0, InvalidCPUState{"RunFrames: no VIC configured"}
	}
	start := p.vic.FrameCount()
	target := start + n
	for p.vic.FrameCount() < target {
		if _, err := p.RunStep(); err != nil {
			return p.vic.FrameCount() - start, err
		}
	}
	return p.vic.FrameCount() - start, nil
}
