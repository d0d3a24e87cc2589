// Package machine is the owning container: it holds the sole instances of
// Memory, CPU, VIC and SID and wires them together at construction, so
// that exactly one piece of code is responsible for their lifetimes.
package machine

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"

	"github.com/sixtyfour/c64core/cpu"
	"github.com/sixtyfour/c64core/memory"
	"github.com/sixtyfour/c64core/sid"
	"github.com/sixtyfour/c64core/vic"
)

// ConstructionError wraps a failure to initialize one of the Machine's
// owned components.
type ConstructionError struct {
	Component string
	Err       error
}

// Error implements the error interface.
func (e *ConstructionError) Error() string {
	return fmt.Sprintf("machine: can't initialize %s: %v", e.Component, e.Err)
}

// Unwrap supports errors.Is/errors.As against the wrapped cause.
func (e *ConstructionError) Unwrap() error { return e.Err }

// Machine owns the four core components and presents the CPU as the sole
// execution driver; VIC and SID are reachable for direct inspection (e.g.
// reading SID register state between steps).
type Machine struct {
	Mem memory.Memory
	CPU *cpu.Chip
	VIC *vic.VIC
	SID *sid.SID
}

// Def configures a new Machine.
type Def struct {
	Model   vic.Model
	SidBase uint16
	Debug   bool
	Logger  *charmlog.Logger
}

// Init constructs a Machine: memory first, then the VIC against it and the
// SID, then the CPU wired to all three. Order matters because the CPU's
// construction needs non-owning references to its siblings.
func Init(def *Def) (*Machine, error) {
	l := def.Logger
	if l == nil {
		l = charmlog.NewWithOptions(os.Stderr, charmlog.Options{Prefix: "machine"})
	}

	mem := memory.New()

	v := vic.Init(&vic.Def{
		Model:  def.Model,
		Mem:    mem,
		Debug:  def.Debug,
		Logger: l.WithPrefix("vic"),
	})

	s := sid.Init(&sid.Def{
		Base:   def.SidBase,
		Debug:  def.Debug,
		Logger: l.WithPrefix("sid"),
	})

	c, err := cpu.Init(&cpu.Def{
		Mem:     mem,
		Vic:     v,
		Sid:     s,
		SidBase: def.SidBase,
		Debug:   def.Debug,
		Logger:  l.WithPrefix("cpu"),
	})
	if err != nil {
		return nil, &ConstructionError{Component: "cpu", Err: err}
	}

	return &Machine{Mem: mem, CPU: c, VIC: v, SID: s}, nil
}

// Run runs the CPU from its current pc until the sentinel RTS.
func (m *Machine) Run() error {
	return m.CPU.Run()
}

// RunCtx is the context-aware form of Run.
func (m *Machine) RunCtx(ctx context.Context) error {
	return m.CPU.RunCtx(ctx)
}

// Call runs a subroutine at addr to completion.
func (m *Machine) Call(addr uint16) error {
	return m.CPU.Call(addr)
}

// RunFrames runs until n vsyncs have been observed.
func (m *Machine) RunFrames(n int) (int, error) {
	return m.CPU.RunFrames(n)
}
