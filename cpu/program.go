package cpu

import (
	"iter"
)

// Opcode represents a line of assembled code with its source location and generated words.
type Opcode struct {
	LineNo    int
	Addr      uint32
	Words     []string
	Codes     []uint32
	LinkLabel string
}

// Program is an assembled listing, located at Origin.
type Program struct {
	Origin  uint32
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Index int
}

// Debug finds the opcode that generated the word at 'addr'.
func (prog *Program) Debug(addr uint32) (dbg Debug) {
	for n, op := range prog.Opcodes {
		end := op.Addr + uint32(len(op.Codes))*INSTRUCTION_SIZE
		if addr >= op.Addr && addr < end {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(addr-op.Addr) / INSTRUCTION_SIZE,
			}
			break
		}
	}

	return
}

// Binary returns the program words, to be mapped at Origin.
func (prog *Program) Binary() (bins []uint32) {
	for _, code := range prog.Codes() {
		bins = append(bins, code)
	}

	return
}

// Codes iterates over the (address, word) pairs of the program.
func (prog *Program) Codes() iter.Seq2[uint32, uint32] {
	return func(yield func(addr uint32, code uint32) bool) {
		for _, op := range prog.Opcodes {
			for n, code := range op.Codes {
				if !yield(op.Addr+uint32(n)*INSTRUCTION_SIZE, code) {
					return
				}
			}
		}
	}
}
