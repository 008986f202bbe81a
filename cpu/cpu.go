package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/rv32/isa"
	"github.com/ezrec/rv32/memory"
)

const (
	REGISTER_COUNT      = 32  // Number of general purpose registers.
	INSTRUCTION_SIZE    = 4   // Bytes per instruction.
	DEFAULT_MEMORY_SIZE = 512 // Default memory capacity in bytes.
	DEFAULT_START       = 12  // Default reset address.
)

// ABI names of the general purpose registers.
var RegisterName = [REGISTER_COUNT]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// Cpu is the simulation context for a single RV32 hart.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Pc       uint32                 // Program counter.
	Register [REGISTER_COUNT]uint32 // Register bank. x0 is never written.
	Start    uint32                 // Reset address loaded into Pc by Init.

	Ticks int // Executed instruction counter.

	running bool           // Set by Init, cleared by Reset.
	memory  *memory.Memory // Exclusively owned memory.
}

// NewCpu creates a new CPU with 'size' bytes of memory, that starts
// execution at 'start'.
func NewCpu(size uint32, start uint32) (cpu *Cpu) {
	cpu = &Cpu{
		Start:  start,
		memory: memory.New(size),
	}

	return
}

// NewDefaultCpu creates a CPU with DEFAULT_MEMORY_SIZE bytes of memory that
// starts at DEFAULT_START.
func NewDefaultCpu() *Cpu {
	return NewCpu(DEFAULT_MEMORY_SIZE, DEFAULT_START)
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	defines := map[string]string{
		"REGISTER_COUNT":   fmt.Sprintf("%d", REGISTER_COUNT),
		"INSTRUCTION_SIZE": fmt.Sprintf("%d", INSTRUCTION_SIZE),
		"MEMORY_SIZE":      fmt.Sprintf("%#x", cpu.MemorySize()),
		"START":            fmt.Sprintf("%#x", cpu.Start),
	}
	return maps.All(defines)
}

// MemorySize returns the memory capacity in bytes.
func (cpu *Cpu) MemorySize() uint32 {
	return cpu.memory.Capacity()
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text = fmt.Sprintf("   pc: %04X_%04X\n", cpu.Pc>>16, cpu.Pc&0xffff)
	for n, name := range RegisterName {
		val := cpu.reg(uint8(n))
		text += fmt.Sprintf("%5s: %04X_%04X", name, val>>16, val&0xffff)
		if n%4 == 3 {
			text += "\n"
		} else {
			text += " "
		}
	}

	return
}

// Reset the CPU state.
// - Clears the registers, PC and memory.
// - Zeros the tick counter.
// - Returns to the uninitialized state; Init must be called before Step.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register[:])
	cpu.memory.Reset()
	cpu.Pc = 0
	cpu.Ticks = 0
	cpu.running = false
}

// Init seeds the PC from the start address. It may be called repeatedly.
func (cpu *Cpu) Init() {
	if cpu.Verbose {
		log.Printf("cpu: init pc 0x%x", cpu.Start)
	}

	cpu.Pc = cpu.Start
	cpu.running = true
}

// GetRegister returns the value of register 'index'. x0 always reads zero.
func (cpu *Cpu) GetRegister(index uint8) (value uint32, err error) {
	if index >= REGISTER_COUNT {
		err = ErrRegister(index)
		return
	}

	value = cpu.reg(index)
	return
}

// SetRegister sets the value of register 'index'. Writes to x0 are discarded.
func (cpu *Cpu) SetRegister(index uint8, value uint32) (err error) {
	if index >= REGISTER_COUNT {
		err = ErrRegister(index)
		return
	}

	cpu.setReg(index, value)
	return
}

// reg reads a register from a decoded 5-bit field.
func (cpu *Cpu) reg(index uint8) uint32 {
	if index == 0 {
		return 0
	}
	return cpu.Register[index&0x1f]
}

// setReg writes a register from a decoded 5-bit field.
func (cpu *Cpu) setReg(index uint8, value uint32) {
	if index == 0 {
		return
	}
	cpu.Register[index&0x1f] = value
}

// MapBytes writes 'data' into memory at 'start'.
func (cpu *Cpu) MapBytes(start uint32, data []byte) (err error) {
	if cpu.Verbose {
		log.Printf("cpu: map %d bytes at 0x%x", len(data), start)
	}

	return cpu.memory.MapBytes(start, data)
}

// MapWords writes 'words' little-endian into memory at 'start'.
func (cpu *Cpu) MapWords(start uint32, words []uint32) (err error) {
	if cpu.Verbose {
		log.Printf("cpu: map %d words at 0x%x", len(words), start)
	}

	return cpu.memory.MapWords(start, words)
}

// Load8 reads a byte of memory.
func (cpu *Cpu) Load8(addr uint32) (byte, error) {
	return cpu.memory.Read(addr)
}

// Load32 reads a little-endian word of memory.
func (cpu *Cpu) Load32(addr uint32) (uint32, error) {
	return cpu.memory.Read32(addr)
}

// MemoryBytes returns a copy of the memory contents.
func (cpu *Cpu) MemoryBytes() []byte {
	return cpu.memory.Bytes()
}

// FetchCode fetches the instruction word at the PC.
func (cpu *Cpu) FetchCode() (word uint32, err error) {
	if !cpu.running {
		err = ErrUninitialized
		return
	}

	word, err = cpu.memory.Read32(cpu.Pc)
	return
}

// Step executes a single fetch-decode-execute cycle.
//
// The PC advances by INSTRUCTION_SIZE whenever the fetch succeeded, even if
// the instruction failed to decode or execute.
func (cpu *Cpu) Step() (err error) {
	pc := cpu.Pc

	word, err := cpu.FetchCode()
	if err != nil {
		if err != ErrUninitialized {
			err = &ErrInstruction{Pc: pc, Err: errors.Join(ErrFetch, err)}
		}
		return
	}

	defer func() {
		cpu.Pc = pc + INSTRUCTION_SIZE
		cpu.Ticks += 1
		if err != nil {
			err = &ErrInstruction{Pc: pc, Word: word, Err: err}
		}
	}()

	inst, err := isa.Decode(word)
	if cpu.Verbose {
		log.Printf("%08x: %08x %v", pc, word, inst)
	}
	if err != nil {
		return
	}

	err = cpu.Execute(inst)
	return
}
