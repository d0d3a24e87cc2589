// Command loadprg loads a .prg into a fresh machine, sets pc to the load
// address, and runs it to RTS, printing the SID register state and cycle
// counts observed along the way. Illustrative host, not part of the core
// contract.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	charmlog "github.com/charmbracelet/log"

	"github.com/sixtyfour/c64core/loader"
	"github.com/sixtyfour/c64core/machine"
	"github.com/sixtyfour/c64core/vic"
)

type config struct {
	Debug bool   `toml:"debug"`
	Model string `toml:"model"`
}

var (
	prg        = flag.String("prg", "", "path to the .prg file to load and run")
	configPath = flag.String("config", "", "optional TOML file of default flag values")
	debugFlag  = flag.Bool("debug-cpu", false, "emit debug logging from the machine's components")
	ntscFlag   = flag.Bool("ntsc", false, "use NTSC raster timing instead of PAL")
)

func main() {
	flag.Parse()
	if *prg == "" {
		fmt.Fprintln(os.Stderr, "usage: loadprg --prg <path> [--config <path>] [--ntsc]")
		os.Exit(1)
	}

	log := charmlog.NewWithOptions(os.Stderr, charmlog.Options{Prefix: "loadprg"})

	cfg := config{}
	if *configPath != "" {
		if _, err := toml.DecodeFile(*configPath, &cfg); err != nil {
			log.Fatal("can't read config", "path", *configPath, "err", err)
		}
	}
	debug := *debugFlag || cfg.Debug
	model := vic.PAL
	if *ntscFlag || cfg.Model == "ntsc" {
		model = vic.NTSC
	}

	m, err := machine.Init(&machine.Def{Model: model, Debug: debug, Logger: log})
	if err != nil {
		log.Fatal("can't initialize machine", "err", err)
	}

	data, err := os.ReadFile(*prg)
	if err != nil {
		log.Fatal("can't read prg", "path", *prg, "err", err)
	}

	var startPC uint16
	addr, err := loader.Load(m.Mem, data, &loader.Options{SetPC: true, PC: &startPC, Debug: debug, Logger: log})
	if err != nil {
		log.Warn("load reported an error", "err", err)
	}
	fmt.Printf("Loaded at $%04X\n", addr)

	if err := m.Call(startPC); err != nil {
		log.Fatal("run failed", "err", err)
	}

	fmt.Printf("Cycles executed: %d\n", m.CPU.CyclesExecuted)
	fmt.Printf("SID registers: %v\n", m.SID.GetRegisters())
}
