// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/rv32/cpu"
	"github.com/ezrec/rv32/internal"
	"github.com/ezrec/rv32/io"
)

const (
	STEP_LIMIT = 1 << 20 // Default maximum steps for Run.
)

var _emulator_defines = map[string]string{
	"STEP_LIMIT": fmt.Sprintf("%v", STEP_LIMIT),
}

// Emulator state. CPU + program listing + optional raw image.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.
	Rom      *io.Rom      // Raw image mapped at the CPU start address, if set.
}

// NewEmulator creates a new emulator with 'size' bytes of memory, starting
// execution at 'start'.
func NewEmulator(size uint32, start uint32) (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(size, start),
		Program: &cpu.Program{Origin: start},
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Reset clears the CPU, maps the image and program, then initializes the PC.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	emu.Cpu.Reset()

	if emu.Rom != nil {
		err = emu.Rom.MapInto(emu.Cpu, emu.Cpu.Start)
		if err != nil {
			return
		}
	}

	if emu.Program != nil {
		bins := emu.Program.Binary()
		if len(bins) != 0 {
			err = emu.Cpu.MapWords(emu.Program.Origin, bins)
			if err != nil {
				return
			}
		}
	}

	emu.Cpu.Init()

	return
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	if emu.Program == nil {
		return 0
	}

	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single step of the emulator. An environment call
// completes the program.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
	}()

	err = emu.Cpu.Step()
	if errors.Is(err, cpu.ErrEnvironmentCall) {
		err = nil
		done = true
		if emu.Verbose {
			log.Printf("emulator: done after %d ticks", emu.Cpu.Ticks)
		}
	}

	return
}

// Run ticks the emulator until done, an error, or 'limit' ticks.
// A limit of zero uses STEP_LIMIT.
func (emu *Emulator) Run(limit int) (done bool, err error) {
	if limit <= 0 {
		limit = STEP_LIMIT
	}

	for range limit {
		done, err = emu.Tick()
		if done || err != nil {
			return
		}
	}

	err = &ErrRuntime{LineNo: emu.LineNo(), Err: ErrStepLimit}
	return
}
