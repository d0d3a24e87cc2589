package machine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sixtyfour/c64core/cpu"
	"github.com/sixtyfour/c64core/vic"
)

func TestInitWiresComponents(t *testing.T) {
	m, err := Init(&Def{Model: vic.PAL})
	require.NoError(t, err)
	assert.NotNil(t, m.Mem)
	assert.NotNil(t, m.CPU)
	assert.NotNil(t, m.VIC)
	assert.NotNil(t, m.SID)
}

func TestSIDWriteObservedThroughCPU(t *testing.T) {
	m, err := Init(&Def{Model: vic.PAL})
	require.NoError(t, err)

	// STA $D400 with A=0x0F after LDA #$0F, terminated by RTS.
	start := uint16(0x0800)
	m.Mem.Write(start, 0xA9) // LDA #$0F
	m.Mem.Write(start+1, 0x0F)
	m.Mem.Write(start+2, 0x8D) // STA $D400
	m.Mem.Write(start+3, 0x00)
	m.Mem.Write(start+4, 0xD4)
	m.Mem.Write(start+5, 0x60) // RTS

	require.NoError(t, m.Call(start))
	assert.True(t, m.CPU.ExtSidRegWritten)
	regs := m.SID.GetRegisters()
	assert.EqualValues(t, 0x0F, regs[0])
}

func TestRunFramesCountsVsyncs(t *testing.T) {
	m, err := Init(&Def{Model: vic.PAL})
	require.NoError(t, err)

	start := uint16(0x0800)
	// NOP forever.
	for i := uint16(0); i < 16; i++ {
		m.Mem.Write(start+i, 0xEA)
	}
	m.Mem.Write(start+16, 0x4C) // JMP back to start
	m.Mem.Write(start+17, uint8(start&0xFF))
	m.Mem.Write(start+18, uint8(start>>8))
	m.CPU.PC = start

	ran, err := m.RunFrames(2)
	require.NoError(t, err)
	assert.Equal(t, 2, ran)
}

func TestInvalidFrameCountRejected(t *testing.T) {
	m, err := Init(&Def{Model: vic.PAL})
	require.NoError(t, err)
	_, err = m.RunFrames(0)
	var invalid cpu.InvalidCPUState
	require.ErrorAs(t, err, &invalid)
}
