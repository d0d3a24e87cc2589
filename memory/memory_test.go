package memory

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func TestNewIsZeroed(t *testing.T) {
	m := New()
	for _, addr := range []uint16{0x0000, 0x0100, 0x8000, 0xFFFF} {
		if got := m.Read(addr); got != 0 {
			t.Errorf("Read(%#04x) = %#02x, want 0: %s", addr, got, spew.Sdump(m))
		}
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	m := New()
	m.Write(0x1234, 0xAB)
	if got := m.Read(0x1234); got != 0xAB {
		t.Errorf("Read(0x1234) = %#02x, want 0xAB: %s", got, spew.Sdump(m))
	}
}

func TestClearZeroesEverything(t *testing.T) {
	m := New()
	m.Write(0x0000, 0xFF)
	m.Write(0x7FFF, 0xFF)
	m.Write(0xFFFF, 0xFF)
	m.Clear()
	for _, addr := range []uint16{0x0000, 0x7FFF, 0xFFFF} {
		if got := m.Read(addr); got != 0 {
			t.Errorf("after Clear, Read(%#04x) = %#02x, want 0", addr, got)
		}
	}
}

func TestWriteWordReadWordRoundTrip(t *testing.T) {
	m := New()
	WriteWord(m, 0x2000, 0xBEEF)
	if got := ReadWord(m, 0x2000); got != 0xBEEF {
		t.Errorf("ReadWord(0x2000) = %#04x, want 0xBEEF", got)
	}
	if lo, hi := m.Read(0x2000), m.Read(0x2001); lo != 0xEF || hi != 0xBE {
		t.Errorf("WriteWord bytes = %#02x %#02x, want EF BE (little-endian)", lo, hi)
	}
}

func TestReadWordDoesNotWrapAtPageBoundary(t *testing.T) {
	m := New()
	// addr = 0x20FF: ReadWord must read the high byte from 0x2100, not wrap
	// within the page the way ReadWordZP does.
	m.Write(0x20FF, 0x34)
	m.Write(0x2100, 0x12)
	if got := ReadWord(m, 0x20FF); got != 0x1234 {
		t.Errorf("ReadWord(0x20FF) = %#04x, want 0x1234", got)
	}
}

func TestReadWordZPWrapsWithinZeroPage(t *testing.T) {
	m := New()
	// addr = 0xFF: high byte must come from (0xFF+1)&0xFF == 0x00, not 0x0100.
	m.Write(0x00FF, 0x34)
	m.Write(0x0000, 0x12)
	m.Write(0x0100, 0xAA) // decoy: must not be read
	if got := ReadWordZP(m, 0xFF); got != 0x1234 {
		t.Errorf("ReadWordZP(0xFF) = %#04x, want 0x1234 (zero-page wrap)", got)
	}
}

func TestReadWordZPNoWrapMidPage(t *testing.T) {
	m := New()
	m.Write(0x0010, 0x78)
	m.Write(0x0011, 0x56)
	if got := ReadWordZP(m, 0x10); got != 0x5678 {
		t.Errorf("ReadWordZP(0x10) = %#04x, want 0x5678", got)
	}
}
