// Package memory implements the flat 64KiB byte array shared by the CPU,
// VIC and disassembler. Unlike a full system emulator there's no banking
// here: one bank, the whole address space, zero-initialized.
package memory

// Memory is the flat 65,536 byte address space. Addresses wrap modulo 2^16
// at the type level since addr is a uint16.
type Memory interface {
	// Read returns the byte stored at addr.
	Read(addr uint16) uint8
	// Write stores val at addr.
	Write(addr uint16, val uint8)
	// Clear zeroes every byte.
	Clear()
}

// ram is the sole implementation of Memory: a plain array, no parent chain,
// no databus shadowing, no randomized power-on.
type ram struct {
	mem [65536]uint8
}

// New returns a zero-initialized 64KiB Memory.
func New() Memory {
	return &ram{}
}

// Read implements Memory.
func (r *ram) Read(addr uint16) uint8 {
	return r.mem[addr]
}

// Write implements Memory.
func (r *ram) Write(addr uint16, val uint8) {
	r.mem[addr] = val
}

// Clear implements Memory.
func (r *ram) Clear() {
	for i := range r.mem {
		r.mem[i] = 0
	}
}

// ReadWord performs a little-endian 16-bit read from addr and addr+1. It
// does not wrap within a page.
func ReadWord(m Memory, addr uint16) uint16 {
	lo := m.Read(addr)
	hi := m.Read(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// ReadWordZP performs a little-endian 16-bit read where the high byte comes
// from (addr+1)&0xFF, wrapping within zero page. This mirrors the 6502's
// zero-page-indirect addressing behavior (e.g. LDA ($FF,X) with X=0).
func ReadWordZP(m Memory, addr uint8) uint16 {
	lo := m.Read(uint16(addr))
	hi := m.Read(uint16(addr + 1))
	return uint16(hi)<<8 | uint16(lo)
}

// WriteWord performs a little-endian 16-bit write to addr and addr+1 (no
// page wrap).
func WriteWord(m Memory, addr uint16, val uint16) {
	m.Write(addr, uint8(val&0xFF))
	m.Write(addr+1, uint8(val>>8))
}
