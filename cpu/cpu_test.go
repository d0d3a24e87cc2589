package cpu

import (
	"context"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/sixtyfour/c64core/memory"
)

func newChip(t *testing.T) (*Chip, memory.Memory) {
	t.Helper()
	mem := memory.New()
	memory.WriteWord(mem, RESET_VECTOR, 0x0800)
	memory.WriteWord(mem, IRQ_VECTOR, 0x0900)
	memory.WriteWord(mem, NMI_VECTOR, 0x0A00)
	c, err := Init(&Def{Mem: mem})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return c, mem
}

func TestResetState(t *testing.T) {
	c, _ := newChip(t)
	if c.A != 0 || c.X != 0 || c.Y != 0 {
		t.Errorf("registers not zeroed after Reset: %s", spew.Sdump(c))
	}
	if c.S != 0xFF {
		t.Errorf("S = %#x, want 0xFF", c.S)
	}
	if c.P != 0x24 {
		t.Errorf("P = %#x, want 0x24", c.P)
	}
	if c.PC != 0x0800 {
		t.Errorf("PC = %#x, want 0x0800", c.PC)
	}
	if c.P&P_S1 == 0 {
		t.Error("bit 5 not set in status")
	}
}

func TestHardReset(t *testing.T) {
	c, mem := newChip(t)
	mem.Write(0x1234, 0xAB)
	c.HardReset()
	if got := mem.Read(0x1234); got != 0 {
		t.Errorf("memory not cleared by HardReset, got %#x", got)
	}
	// HardReset wipes the vectors it just wrote too, so PC resets to 0.
	if c.PC != 0 {
		t.Errorf("PC after HardReset = %#x, want 0", c.PC)
	}
}

func TestLoadFlags(t *testing.T) {
	c, mem := newChip(t)
	mem.Write(0x0800, 0xA9) // LDA #$00
	mem.Write(0x0801, 0x00)
	if _, err := c.RunStep(); err != nil {
		t.Fatalf("RunStep: %v", err)
	}
	if !c.Flags().Z {
		t.Error("Z not set after LDA #$00")
	}
	if c.Flags().N {
		t.Error("N incorrectly set after LDA #$00")
	}

	mem.Write(0x0802, 0xA9) // LDA #$80
	mem.Write(0x0803, 0x80)
	if _, err := c.RunStep(); err != nil {
		t.Fatalf("RunStep: %v", err)
	}
	if !c.Flags().N {
		t.Error("N not set after LDA #$80")
	}
}

func TestZeroPageXWrap(t *testing.T) {
	c, mem := newChip(t)
	c.X = 0x01
	mem.Write(0x0000, 0xAA)
	mem.Write(0x0800, 0xB5) // LDA $FF,X
	mem.Write(0x0801, 0xFF)
	if _, err := c.RunStep(); err != nil {
		t.Fatalf("RunStep: %v", err)
	}
	if c.A != 0xAA {
		t.Errorf("A = %#x, want 0xAA (zero page X should wrap to $00)", c.A)
	}
}

func TestAbsoluteXPageCrossCycles(t *testing.T) {
	c, mem := newChip(t)
	c.X = 0x01
	mem.Write(0x0900, 0x42)
	mem.Write(0x0800, 0xBD) // LDA $08FF,X -> crosses into $0900
	mem.Write(0x0801, 0xFF)
	mem.Write(0x0802, 0x08)
	cycles, err := c.RunStep()
	if err != nil {
		t.Fatalf("RunStep: %v", err)
	}
	if cycles != 5 {
		t.Errorf("cycles = %d, want 5 (4 base + 1 page cross)", cycles)
	}
	if c.A != 0x42 {
		t.Errorf("A = %#x, want 0x42", c.A)
	}
}

func TestJMPIndirectPageBug(t *testing.T) {
	c, mem := newChip(t)
	mem.Write(0x02FF, 0x00)
	mem.Write(0x0300, 0x12) // would be the "correct" high byte, must not be used
	mem.Write(0x0200, 0x34) // actual high byte source: $0200, not $0300
	mem.Write(0x0800, 0x6C) // JMP ($02FF)
	mem.Write(0x0801, 0xFF)
	mem.Write(0x0802, 0x02)
	if _, err := c.RunStep(); err != nil {
		t.Fatalf("RunStep: %v", err)
	}
	if c.PC != 0x3400 {
		t.Errorf("PC = %#x, want 0x3400 (page-boundary bug not reproduced)", c.PC)
	}
}

func TestStackWrap(t *testing.T) {
	c, _ := newChip(t)
	c.S = 0x00
	c.pushStack(0xAB)
	if c.S != 0xFF {
		t.Errorf("S = %#x, want 0xFF after push wraps past $00", c.S)
	}
	if v := c.popStack(); v != 0xAB {
		t.Errorf("popStack = %#x, want 0xAB", v)
	}
}

func TestBranchCycles(t *testing.T) {
	c, mem := newChip(t)
	mem.Write(0x0800, 0xD0) // BNE +2, not taken (force Z)
	mem.Write(0x0801, 0x02)
	c.P |= P_ZERO
	cycles, err := c.RunStep()
	if err != nil {
		t.Fatalf("RunStep: %v", err)
	}
	if cycles != 2 {
		t.Errorf("not-taken branch cycles = %d, want 2", cycles)
	}

	c2, mem2 := newChip(t)
	mem2.Write(0x0800, 0xD0) // BNE +2, taken (Z clear)
	mem2.Write(0x0801, 0x02)
	cycles2, err := c2.RunStep()
	if err != nil {
		t.Fatalf("RunStep: %v", err)
	}
	if cycles2 != 3 {
		t.Errorf("taken branch cycles = %d, want 3", cycles2)
	}
}

func TestPHPSetsB(t *testing.T) {
	c, mem := newChip(t)
	mem.Write(0x0800, 0x08) // PHP
	if _, err := c.RunStep(); err != nil {
		t.Fatalf("RunStep: %v", err)
	}
	pushed := mem.Read(0x01FF)
	if pushed&P_B == 0 {
		t.Error("PHP did not set B in the pushed byte")
	}
	if pushed&P_S1 == 0 {
		t.Error("PHP did not set bit5 in the pushed byte")
	}
}

func TestPLPPreservesCurrentB(t *testing.T) {
	c, mem := newChip(t)
	c.P |= P_B
	c.pushStack(0x00) // pulled value has B clear, bit5 clear
	mem.Write(0x0800, 0x28) // PLP
	if _, err := c.RunStep(); err != nil {
		t.Fatalf("RunStep: %v", err)
	}
	if c.P&P_B == 0 {
		t.Error("PLP should keep the CPU's own B bit, not the pulled one")
	}
	if c.P&P_S1 == 0 {
		t.Error("PLP must force bit5 = 1 regardless of the pulled byte")
	}
}

func TestBRKAndRTI(t *testing.T) {
	c, mem := newChip(t)
	mem.Write(0x0800, 0x00) // BRK
	if _, err := c.RunStep(); err != nil {
		t.Fatalf("RunStep: %v", err)
	}
	if c.PC != 0x0900 {
		t.Errorf("PC after BRK = %#x, want IRQ vector 0x0900", c.PC)
	}
	if c.P&P_INTERRUPT == 0 {
		t.Error("BRK should set the interrupt-disable flag")
	}

	mem.Write(0x0900, 0x40) // RTI
	if _, err := c.RunStep(); err != nil {
		t.Fatalf("RunStep: %v", err)
	}
	if c.PC != 0x0802 {
		t.Errorf("PC after RTI = %#x, want 0x0802 (return address, no +1)", c.PC)
	}
}

func TestJSRRTS(t *testing.T) {
	c, mem := newChip(t)
	mem.Write(0x0800, 0x20) // JSR $0900
	mem.Write(0x0801, 0x00)
	mem.Write(0x0802, 0x09)
	mem.Write(0x0900, 0x60) // RTS
	if _, err := c.RunStep(); err != nil {
		t.Fatalf("JSR RunStep: %v", err)
	}
	if c.PC != 0x0900 {
		t.Errorf("PC after JSR = %#x, want 0x0900", c.PC)
	}
	if _, err := c.RunStep(); err != nil {
		t.Fatalf("RTS RunStep: %v", err)
	}
	if c.PC != 0x0803 {
		t.Errorf("PC after RTS = %#x, want 0x0803", c.PC)
	}
}

func TestRunSentinel(t *testing.T) {
	c, mem := newChip(t)
	mem.Write(0x0800, 0xA9) // LDA #$01
	mem.Write(0x0801, 0x01)
	mem.Write(0x0802, 0x60) // RTS
	if err := c.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if c.A != 0x01 {
		t.Errorf("A = %#x, want 0x01", c.A)
	}
}

func TestCallAddr(t *testing.T) {
	c, mem := newChip(t)
	mem.Write(0x1000, 0xA9) // LDA #$7F
	mem.Write(0x1001, 0x7F)
	mem.Write(0x1002, 0x60) // RTS
	if err := c.Call(0x1000); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if c.A != 0x7F {
		t.Errorf("A = %#x, want 0x7F", c.A)
	}
}

func TestRunCtxCancel(t *testing.T) {
	c, mem := newChip(t)
	// Infinite loop, no RTS: JMP $0800.
	mem.Write(0x0800, 0x4C)
	mem.Write(0x0801, 0x00)
	mem.Write(0x0802, 0x08)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.RunCtx(ctx); err == nil {
		t.Error("RunCtx with a canceled context should return an error")
	}
}

func TestIllegalOpcodeIsNOPLike(t *testing.T) {
	c, mem := newChip(t)
	mem.Write(0x0800, 0x02) // undocumented opcode
	cycles, err := c.RunStep()
	if err != nil {
		t.Fatalf("RunStep: %v", err)
	}
	if cycles != 2 {
		t.Errorf("illegal opcode cycles = %d, want 2", cycles)
	}
	if c.PC != 0x0801 {
		t.Errorf("PC = %#x, want 0x0801 (illegal opcodes are 1 byte)", c.PC)
	}
}

func TestADCOverflowFlag(t *testing.T) {
	c, mem := newChip(t)
	c.A = 0x7F
	mem.Write(0x0800, 0x69) // ADC #$01
	mem.Write(0x0801, 0x01)
	if _, err := c.RunStep(); err != nil {
		t.Fatalf("RunStep: %v", err)
	}
	if !c.Flags().V {
		t.Error("V not set on signed overflow $7F+$01")
	}
	if c.A != 0x80 {
		t.Errorf("A = %#x, want 0x80", c.A)
	}
}

func TestSBCBorrow(t *testing.T) {
	c, mem := newChip(t)
	c.A = 0x00
	c.P |= P_CARRY // carry set means no borrow going in
	mem.Write(0x0800, 0xE9) // SBC #$01
	mem.Write(0x0801, 0x01)
	if _, err := c.RunStep(); err != nil {
		t.Fatalf("RunStep: %v", err)
	}
	if c.A != 0xFF {
		t.Errorf("A = %#x, want 0xFF", c.A)
	}
	if c.Flags().C {
		t.Error("C should be clear indicating a borrow occurred")
	}
}
