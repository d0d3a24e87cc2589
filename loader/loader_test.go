package loader

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sixtyfour/c64core/memory"
)

func TestLoadPlacesBytesAtHeaderAddress(t *testing.T) {
	mem := memory.New()
	data := []byte{0x01, 0x08, 0xAA, 0xBB, 0xCC}
	addr, err := Load(mem, data, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 0x0801, addr)
	assert.EqualValues(t, 0xAA, mem.Read(0x0801))
	assert.EqualValues(t, 0xBB, mem.Read(0x0802))
	assert.EqualValues(t, 0xCC, mem.Read(0x0803))
}

func TestLoadShortHeader(t *testing.T) {
	mem := memory.New()
	_, err := Load(mem, []byte{0x01}, nil)
	assert.ErrorIs(t, err, ErrShortHeader)
}

func TestLoadSetsPC(t *testing.T) {
	mem := memory.New()
	var pc uint16 = 0xFFFF
	data := []byte{0x00, 0x10, 0x42}
	_, err := Load(mem, data, &Options{SetPC: true, PC: &pc})
	require.NoError(t, err)
	assert.EqualValues(t, 0x1000, pc)
}

func TestLoadOverflowTruncatesAndReports(t *testing.T) {
	mem := memory.New()
	payload := make([]byte, 10)
	for i := range payload {
		payload[i] = 0xFF
	}
	data := append([]byte{0xFC, 0xFF}, payload...) // load at 0xFFFC, only 4 bytes fit
	addr, err := Load(mem, data, nil)
	assert.EqualValues(t, 0xFFFC, addr)
	var overflow *ErrOverflow
	require.True(t, errors.As(err, &overflow))
	assert.Equal(t, 6, overflow.Dropped)
	// The bytes that did fit should still be written.
	assert.EqualValues(t, 0xFF, mem.Read(0xFFFF))
}
