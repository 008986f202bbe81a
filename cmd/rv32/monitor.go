package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/ezrec/rv32/emulator"
)

const (
	MONITOR_PROMPT  = "rv32> "
	MONITOR_HISTORY = "rv32_history.txt"
	DUMP_WIDTH      = 16 // Bytes per memory dump line.
)

// Monitor executes interactive commands against an emulator.
type Monitor struct {
	Emulator *emulator.Emulator
	Output   io.Writer
}

// number parses a decimal or prefixed (0x, 0o, 0b) unsigned value.
func number(word string) (value uint32, err error) {
	value64, err := strconv.ParseUint(word, 0, 32)
	if err != nil {
		err = errors.Join(ErrCommandArgument, err)
		return
	}

	value = uint32(value64)
	return
}

// Execute runs a single command line.
func (mon *Monitor) Execute(line string) (quit bool, err error) {
	emu := mon.Emulator
	out := mon.Output

	words := strings.Fields(line)
	if len(words) == 0 {
		return
	}

	switch words[0] {
	case "quit", "exit":
		quit = true
	case "reset":
		if len(words) != 1 {
			err = ErrCommandArgument
			return
		}
		err = emu.Reset()
	case "regs":
		if len(words) != 1 {
			err = ErrCommandArgument
			return
		}
		fmt.Fprint(out, emu.Cpu.String())
	case "step":
		count := uint32(1)
		switch len(words) {
		case 1:
		case 2:
			count, err = number(words[1])
			if err != nil {
				return
			}
		default:
			err = ErrCommandArgument
			return
		}
		for range count {
			var done bool
			done, err = emu.Tick()
			if err != nil {
				return
			}
			if done {
				fmt.Fprintf(out, "done after %d ticks\n", emu.Ticks())
				return
			}
		}
		fmt.Fprintf(out, "pc: %08x line: %d\n", emu.Cpu.Pc, emu.LineNo())
	case "mem":
		var addr uint32
		length := uint32(DUMP_WIDTH)
		switch len(words) {
		case 3:
			length, err = number(words[2])
			if err != nil {
				return
			}
			fallthrough
		case 2:
			addr, err = number(words[1])
			if err != nil {
				return
			}
		default:
			err = ErrCommandArgument
			return
		}
		err = mon.dump(addr, length)
	default:
		err = ErrCommandUnknown
	}

	return
}

// dump writes a hex dump of 'length' bytes of memory at 'addr'.
func (mon *Monitor) dump(addr uint32, length uint32) (err error) {
	var text string
	for n := range length {
		if n%DUMP_WIDTH == 0 {
			if n != 0 {
				text += "\n"
			}
			text += fmt.Sprintf("%08x:", addr+n)
		}
		var value byte
		value, err = mon.Emulator.Cpu.Load8(addr + n)
		if err != nil {
			break
		}
		text += fmt.Sprintf(" %02x", value)
	}
	if len(text) != 0 {
		text += "\n"
	}

	fmt.Fprint(mon.Output, text)
	return
}

// runMonitor runs the interactive shell until quit or end of input.
func runMonitor(emu *emulator.Emulator) (err error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      MONITOR_PROMPT,
		HistoryFile: filepath.Join(os.TempDir(), MONITOR_HISTORY),
	})
	if err != nil {
		return
	}
	defer rl.Close()

	mon := &Monitor{Emulator: emu, Output: rl.Stdout()}

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				break
			}
			continue
		}
		if err != nil {
			break
		}

		quit, err := mon.Execute(line)
		if err != nil {
			fmt.Fprintf(mon.Output, "error: %v\n", err)
		}
		if quit {
			break
		}
	}

	return nil
}
