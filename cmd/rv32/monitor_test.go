package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/rv32/cpu"
	"github.com/ezrec/rv32/emulator"
)

func newMonitor(t *testing.T, program []string) (mon *Monitor, out *bytes.Buffer) {
	emu := emulator.NewEmulator(cpu.DEFAULT_MEMORY_SIZE, cpu.DEFAULT_START)

	asm := &cpu.Assembler{Origin: emu.Cpu.Start}
	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(t, err)
	emu.Program = prog
	assert.NoError(t, emu.Reset())

	out = &bytes.Buffer{}
	mon = &Monitor{Emulator: emu, Output: out}
	return
}

func TestMonitorStep(t *testing.T) {
	assert := assert.New(t)

	mon, out := newMonitor(t, []string{
		"li a0, 1",
		"li a1, 2",
		"add a2, a0, a1",
		"ecall",
	})

	quit, err := mon.Execute("step")
	assert.NoError(err)
	assert.False(quit)
	assert.Equal("pc: 00000010 line: 2\n", out.String())

	out.Reset()
	_, err = mon.Execute("step 2")
	assert.NoError(err)
	assert.Equal("pc: 00000018 line: 4\n", out.String())
	assert.Equal(uint32(3), mon.Emulator.Cpu.Register[12])

	out.Reset()
	_, err = mon.Execute("step 5")
	assert.NoError(err)
	assert.Equal("done after 4 ticks\n", out.String())

	_, err = mon.Execute("step x")
	assert.ErrorIs(err, ErrCommandArgument)

	_, err = mon.Execute("step 1 2")
	assert.ErrorIs(err, ErrCommandArgument)
}

func TestMonitorRegs(t *testing.T) {
	assert := assert.New(t)

	mon, out := newMonitor(t, []string{"li ra, 0x123", "ecall"})

	_, err := mon.Execute("step")
	assert.NoError(err)

	out.Reset()
	_, err = mon.Execute("regs")
	assert.NoError(err)
	assert.Equal(mon.Emulator.Cpu.String(), out.String())
	assert.Contains(out.String(), "   ra: 0000_0123")

	_, err = mon.Execute("regs all")
	assert.ErrorIs(err, ErrCommandArgument)
}

func TestMonitorMem(t *testing.T) {
	assert := assert.New(t)

	mon, out := newMonitor(t, []string{"nop", "ecall"})

	_, err := mon.Execute("mem 0xc 8")
	assert.NoError(err)
	assert.Equal("0000000c: 13 00 00 00 73 00 00 00\n", out.String())

	out.Reset()
	_, err = mon.Execute("mem 0")
	assert.NoError(err)
	assert.Equal("00000000: 00 00 00 00 00 00 00 00 00 00 00 00 13 00 00 00\n", out.String())

	out.Reset()
	_, err = mon.Execute("mem 0 20")
	assert.NoError(err)
	assert.Equal("00000000: 00 00 00 00 00 00 00 00 00 00 00 00 13 00 00 00\n"+
		"00000010: 73 00 00 00\n", out.String())

	out.Reset()
	_, err = mon.Execute("mem 0x1fe 4")
	assert.Error(err)
	assert.Equal("000001fe: 00 00\n", out.String())

	_, err = mon.Execute("mem")
	assert.ErrorIs(err, ErrCommandArgument)

	_, err = mon.Execute("mem zz")
	assert.ErrorIs(err, ErrCommandArgument)
}

func TestMonitorReset(t *testing.T) {
	assert := assert.New(t)

	mon, _ := newMonitor(t, []string{"li a0, 7", "ecall"})

	_, err := mon.Execute("step")
	assert.NoError(err)
	assert.Equal(uint32(7), mon.Emulator.Cpu.Register[10])

	_, err = mon.Execute("reset")
	assert.NoError(err)
	assert.Equal(uint32(0), mon.Emulator.Cpu.Register[10])
	assert.Equal(uint32(cpu.DEFAULT_START), mon.Emulator.Cpu.Pc)
	assert.Equal(0, mon.Emulator.Ticks())
}

func TestMonitorQuit(t *testing.T) {
	assert := assert.New(t)

	mon, _ := newMonitor(t, []string{"ecall"})

	quit, err := mon.Execute("")
	assert.NoError(err)
	assert.False(quit)

	quit, err = mon.Execute("quit")
	assert.NoError(err)
	assert.True(quit)

	quit, err = mon.Execute("exit")
	assert.NoError(err)
	assert.True(quit)

	_, err = mon.Execute("jump 0")
	assert.ErrorIs(err, ErrCommandUnknown)
}
