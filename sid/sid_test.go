package sid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRecordsLastWritten(t *testing.T) {
	s := Init(&Def{})
	changed := s.WriteRegister(4, 0x11)
	assert.True(t, changed, "first write to a zeroed register always changes it")
	idx, val := s.LastWritten()
	assert.EqualValues(t, 4, idx)
	assert.EqualValues(t, 0x11, val)
}

func TestWriteSameValueDoesNotReportChange(t *testing.T) {
	s := Init(&Def{})
	s.WriteRegister(4, 0x11)
	changed := s.WriteRegister(4, 0x11)
	assert.False(t, changed, "rewriting the same value should not report a change")
}

func TestLastChangedReportsFromTo(t *testing.T) {
	s := Init(&Def{})
	s.WriteRegister(24, 0x0F)
	s.WriteRegister(24, 0x1F)
	idx, from, to, ok := s.LastChanged()
	require.True(t, ok)
	assert.EqualValues(t, 24, idx)
	assert.EqualValues(t, 0x0F, from)
	assert.EqualValues(t, 0x1F, to)
}

func TestExtLatchesAreStickyUntilCleared(t *testing.T) {
	s := Init(&Def{})
	s.WriteRegister(0, 0x42)
	assert.True(t, s.ExtRegWritten())
	assert.True(t, s.ExtRegChanged())

	s.ClearExtRegWritten()
	s.ClearExtRegChanged()
	assert.False(t, s.ExtRegWritten())
	assert.False(t, s.ExtRegChanged())

	// A later write re-latches them without any further host action.
	s.WriteRegister(1, 0x01)
	assert.True(t, s.ExtRegWritten())
}

func TestWriteRegisterCycleRecordsCycle(t *testing.T) {
	s := Init(&Def{})
	s.WriteRegisterCycle(5, 0x10, 123456)
	cycle, ok := s.LastWriteCycle()
	require.True(t, ok)
	assert.EqualValues(t, 123456, cycle)
}

func TestOutOfRangeIndexIgnored(t *testing.T) {
	s := Init(&Def{})
	changed := s.WriteRegister(NumRegisters, 0xFF)
	assert.False(t, changed)
	assert.False(t, s.ExtRegWritten())
}

func TestDecodeWaveform(t *testing.T) {
	w := DecodeWaveform(0x41) // gate + pulse
	assert.True(t, w.Gate)
	assert.True(t, w.Pulse)
	assert.False(t, w.Noise)
}

func TestDecodeADSR(t *testing.T) {
	a := DecodeADSR(0x3A, 0x0F)
	assert.EqualValues(t, 0x3, a.Attack)
	assert.EqualValues(t, 0xA, a.Decay)
	assert.EqualValues(t, 0x0, a.Sustain)
	assert.EqualValues(t, 0xF, a.Release)
}

func TestDecodeVolume(t *testing.T) {
	v := DecodeVolume(0x8F) // voice3off + full volume
	assert.EqualValues(t, 0xF, v.Level)
	assert.True(t, v.Voice3Off)
	assert.False(t, v.LowPass)
}

func TestPowerOnClearsState(t *testing.T) {
	s := Init(&Def{})
	s.WriteRegister(2, 0x55)
	s.PowerOn()
	regs := s.GetRegisters()
	for i, r := range regs {
		assert.EqualValuesf(t, 0, r, "register %d not cleared by PowerOn", i)
	}
	assert.False(t, s.ExtRegWritten())
}
