// Package loader reads Commodore 64 .prg files: a two-byte little-endian
// load address followed by the raw bytes to place there.
package loader

import (
	"errors"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"

	"github.com/sixtyfour/c64core/memory"
)

// ErrShortHeader is returned when a .prg's contents are too short to hold
// the two-byte load address header.
var ErrShortHeader = errors.New("loader: file shorter than the 2-byte load-address header")

// ErrOverflow wraps the case where a .prg's payload would write past the
// end of the 64KiB address space. The write is truncated rather than
// failing outright; Dropped reports how many trailing bytes were
// discarded.
type ErrOverflow struct {
	Addr    uint16
	Length  int
	Dropped int
}

// Error implements the error interface.
func (e *ErrOverflow) Error() string {
	return fmt.Sprintf("loader: %d bytes at $%04X overflow 64KiB, dropped %d trailing bytes", e.Length, e.Addr, e.Dropped)
}

// Options configures Load.
type Options struct {
	// SetPC, when true, assigns *PC to the load address after loading.
	SetPC  bool
	PC     *uint16
	Debug  bool
	Logger *charmlog.Logger
}

func logger(opts *Options) *charmlog.Logger {
	if opts != nil && opts.Logger != nil {
		return opts.Logger
	}
	return charmlog.NewWithOptions(os.Stderr, charmlog.Options{Prefix: "loader"})
}

func debugOn(opts *Options) bool {
	return opts != nil && opts.Debug
}

// Load parses a .prg's two-byte header, writes the remainder into mem
// starting at the load address, and returns that address. If the payload
// would overflow the 64KiB address space it is truncated and an
// *ErrOverflow is returned alongside the (still valid) load address.
func Load(mem memory.Memory, data []byte, opts *Options) (uint16, error) {
	if len(data) < 2 {
		return 0, ErrShortHeader
	}
	addr := uint16(data[0]) | uint16(data[1])<<8
	payload := data[2:]

	log := logger(opts)
	debug := debugOn(opts)

	maxLen := int(65536 - uint32(addr))
	var overflowErr error
	if len(payload) > maxLen {
		dropped := len(payload) - maxLen
		if debug {
			log.Debug("payload overflows address space, truncating",
				"addr", fmt.Sprintf("0x%04X", addr), "length", len(payload), "dropped", dropped)
		}
		overflowErr = &ErrOverflow{Addr: addr, Length: len(payload), Dropped: dropped}
		payload = payload[:maxLen]
	}

	for i, b := range payload {
		mem.Write(addr+uint16(i), b)
	}

	if opts != nil && opts.SetPC && opts.PC != nil {
		*opts.PC = addr
	}

	if debug {
		log.Debug("loaded prg", "addr", fmt.Sprintf("0x%04X", addr), "length", len(payload))
	}

	return addr, overflowErr
}

// LoadFile reads path from disk and loads it via Load. File-not-found and
// other OS errors are returned as-is (wrapped *os.PathError), distinct
// from the .prg-format errors Load itself can return.
func LoadFile(mem memory.Memory, path string, opts *Options) (uint16, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return Load(mem, data, opts)
}
