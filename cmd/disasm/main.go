// Command disasm lists a .prg's BASIC stub (when loaded at $0801) followed
// by a disassembly of the next 64 instructions. It is an
// illustrative host built on the loader, c64basic and disassemble
// packages; it is not part of the core contract.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	charmlog "github.com/charmbracelet/log"

	"github.com/sixtyfour/c64core/c64basic"
	"github.com/sixtyfour/c64core/disassemble"
	"github.com/sixtyfour/c64core/loader"
	"github.com/sixtyfour/c64core/memory"
)

// config holds optional defaults loaded from a TOML file via --config, so
// a user doesn't have to repeat common flags on every invocation.
type config struct {
	Debug bool `toml:"debug"`
}

var (
	prg        = flag.String("prg", "", "path to the .prg file to disassemble")
	configPath = flag.String("config", "", "optional TOML file of default flag values")
	debugFlag  = flag.Bool("debug-loader", false, "emit debug logging from the loader")
)

func main() {
	flag.Parse()
	if *prg == "" {
		fmt.Fprintln(os.Stderr, "usage: disasm --prg <path> [--config <path>]")
		os.Exit(1)
	}

	log := charmlog.NewWithOptions(os.Stderr, charmlog.Options{Prefix: "disasm"})

	cfg := config{}
	if *configPath != "" {
		if _, err := toml.DecodeFile(*configPath, &cfg); err != nil {
			log.Fatal("can't read config", "path", *configPath, "err", err)
		}
	}
	debug := *debugFlag || cfg.Debug

	data, err := os.ReadFile(*prg)
	if err != nil {
		log.Fatal("can't read prg", "path", *prg, "err", err)
	}

	mem := memory.New()
	addr, err := loader.Load(mem, data, &loader.Options{Debug: debug, Logger: log})
	if err != nil {
		log.Warn("load reported an error", "err", err)
	}
	fmt.Printf("Load address: $%04X\n", addr)

	pc := addr
	if addr == 0x0801 {
		for {
			line, newPC, err := c64basic.List(pc, mem)
			if newPC == 0x0000 {
				pc += 2
				break
			}
			fmt.Printf("%04X %s\n", pc, line)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			pc = newPC
		}
	}

	for i := 0; i < 64; i++ {
		insn := disassemble.Decode(mem, pc)
		fmt.Println(disassemble.DisassembleInsn(insn))
		pc += uint16(disassemble.InstructionSize(insn))
	}
}
