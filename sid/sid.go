// Package sid implements a passive observer for the SID's 25-byte register
// window. It performs no audio synthesis; it records writes and detects
// value changes so a downstream consumer (or a test) can react to them.
package sid

import (
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
)

// NumRegisters is the width of the SID register window.
const NumRegisters = 25

// DefaultBase is the conventional C64 SID base address.
const DefaultBase = 0xD400

// SID is a 25-byte register file plus per-write and per-change metadata.
// It holds no reference to Memory or the CPU; the CPU's write path calls
// into it directly when a write falls in its address window.
type SID struct {
	base uint16

	registers [NumRegisters]uint8

	regWritten    uint8
	regWrittenVal uint8

	hasLastWriteCycle bool
	lastWriteCycle    uint64

	changedValid   bool
	regChangedIdx  uint8
	regChangedFrom uint8
	regChangedTo   uint8

	extRegWritten bool
	extRegChanged bool

	debug bool
	log   *charmlog.Logger
}

// Def configures a new SID.
type Def struct {
	// Base is the SID's base address, typically 0xD400.
	Base   uint16
	Debug  bool
	Logger *charmlog.Logger
}

// Init returns a powered-on SID.
func Init(def *Def) *SID {
	l := def.Logger
	if l == nil {
		l = charmlog.NewWithOptions(os.Stderr, charmlog.Options{Prefix: "sid"})
	}
	base := def.Base
	if base == 0 {
		base = DefaultBase
	}
	s := &SID{base: base, debug: def.Debug, log: l}
	s.PowerOn()
	return s
}

// PowerOn zeroes every register and all observation state.
func (s *SID) PowerOn() {
	for i := range s.registers {
		s.registers[i] = 0
	}
	s.regWritten, s.regWrittenVal = 0, 0
	s.hasLastWriteCycle = false
	s.lastWriteCycle = 0
	s.changedValid = false
	s.regChangedIdx, s.regChangedFrom, s.regChangedTo = 0, 0, 0
	s.extRegWritten = false
	s.extRegChanged = false
}

// SetDebug toggles human-readable per-write logging.
func (s *SID) SetDebug(d bool) { s.debug = d }

// Base returns the configured base address.
func (s *SID) Base() uint16 { return s.base }

// WriteRegister records a write to the register at index and returns
// whether the stored value actually changed.
func (s *SID) WriteRegister(index uint8, val uint8) bool {
	return s.write(index, val, 0, false)
}

// WriteRegisterCycle is the cycle-aware form: it additionally records the
// cycle the write occurred on.
func (s *SID) WriteRegisterCycle(index uint8, val uint8, cycle uint64) bool {
	return s.write(index, val, cycle, true)
}

func (s *SID) write(index uint8, val uint8, cycle uint64, cycleAware bool) bool {
	if index >= NumRegisters {
		return false
	}
	s.regWritten = index
	s.regWrittenVal = val
	s.extRegWritten = true

	old := s.registers[index]
	changed := old != val
	s.changedValid = changed
	if changed {
		s.regChangedIdx = index
		s.regChangedFrom = old
		s.regChangedTo = val
		s.extRegChanged = true
	}
	s.registers[index] = val

	if cycleAware {
		s.lastWriteCycle = cycle
		s.hasLastWriteCycle = true
	}
	if s.debug {
		s.PrintRegisters()
	}
	return changed
}

// GetRegisters returns a copy of the 25 register bytes.
func (s *SID) GetRegisters() [NumRegisters]uint8 {
	return s.registers
}

// LastWritten returns the index and value of the most recent write.
func (s *SID) LastWritten() (index uint8, val uint8) {
	return s.regWritten, s.regWrittenVal
}

// LastChanged returns the index/from/to of the most recent write that
// actually changed a register's value, and whether one has happened since
// the last write.
func (s *SID) LastChanged() (index uint8, from uint8, to uint8, ok bool) {
	return s.regChangedIdx, s.regChangedFrom, s.regChangedTo, s.changedValid
}

// LastWriteCycle returns the cycle recorded by the most recent
// WriteRegisterCycle call, if any write has used that form.
func (s *SID) LastWriteCycle() (uint64, bool) {
	return s.lastWriteCycle, s.hasLastWriteCycle
}

// ExtRegWritten is the sticky mirror of "a register was written"; the core
// never clears it, the host does via ClearExtRegWritten.
func (s *SID) ExtRegWritten() bool { return s.extRegWritten }

// ExtRegChanged is the sticky mirror of "a register's value changed".
func (s *SID) ExtRegChanged() bool { return s.extRegChanged }

// ClearExtRegWritten clears the sticky write latch.
func (s *SID) ClearExtRegWritten() { s.extRegWritten = false }

// ClearExtRegChanged clears the sticky change latch.
func (s *SID) ClearExtRegChanged() { s.extRegChanged = false }

// PrintRegisters emits the most recent write as a human-readable line when
// debug logging is enabled.
func (s *SID) PrintRegisters() {
	if !s.debug {
		return
	}
	s.log.Debug("sid register write",
		"index", s.regWritten,
		"value", fmt.Sprintf("0x%02X", s.regWrittenVal),
	)
}

// The SID interprets none of its own register semantics beyond storage and
// change detection; the helpers below are pure decodes of the well-known
// register layout for a downstream consumer (e.g. an audio synthesizer or
// a tracing tool) and carry no state of their own.

// Waveform decodes a voice's control register (register 4, 11, or 18).
type Waveform struct {
	Gate, Sync, RingMod, Test                    bool
	Triangle, Sawtooth, Pulse, Noise             bool
}

// DecodeWaveform decodes a voice control byte.
func DecodeWaveform(control uint8) Waveform {
	return Waveform{
		Gate:     control&0x01 != 0,
		Sync:     control&0x02 != 0,
		RingMod:  control&0x04 != 0,
		Test:     control&0x08 != 0,
		Triangle: control&0x10 != 0,
		Sawtooth: control&0x20 != 0,
		Pulse:    control&0x40 != 0,
		Noise:    control&0x80 != 0,
	}
}

// ADSR decodes a voice's attack/decay and sustain/release register pair.
type ADSR struct {
	Attack, Decay, Sustain, Release uint8
}

// DecodeADSR decodes the attack/decay register and sustain/release
// register of a voice into their four 4-bit fields.
func DecodeADSR(attackDecay uint8, sustainRelease uint8) ADSR {
	return ADSR{
		Attack:  attackDecay >> 4,
		Decay:   attackDecay & 0x0F,
		Sustain: sustainRelease >> 4,
		Release: sustainRelease & 0x0F,
	}
}

// Volume decodes the mode/volume register (register 24, $D418).
type Volume struct {
	Level                             uint8
	LowPass, BandPass, HighPass       bool
	Voice3Off                         bool
}

// DecodeVolume decodes the mode/volume register.
func DecodeVolume(modeVol uint8) Volume {
	return Volume{
		Level:     modeVol & 0x0F,
		LowPass:   modeVol&0x10 != 0,
		BandPass:  modeVol&0x20 != 0,
		HighPass:  modeVol&0x40 != 0,
		Voice3Off: modeVol&0x80 != 0,
	}
}
