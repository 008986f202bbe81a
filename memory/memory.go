// Package memory implements the flat, byte addressable store behind the
// RV32 core's fetch, load and store operations.
package memory

import (
	"encoding/binary"
	"slices"

	"github.com/ezrec/rv32/internal"
)

// Memory is a zero-initialized byte store of fixed capacity.
type Memory struct {
	data []byte
}

// New creates a zero filled memory of exactly 'capacity' bytes.
func New(capacity uint32) (mem *Memory) {
	mem = &Memory{
		data: make([]byte, capacity),
	}

	return
}

// Capacity returns the size of the memory in bytes.
func (mem *Memory) Capacity() uint32 {
	return uint32(len(mem.data))
}

// check verifies that 'length' bytes at 'addr' fit in the memory.
// The sum is computed in 64 bits so it cannot wrap.
func (mem *Memory) check(addr uint32, length int) (err error) {
	if uint64(addr)+uint64(length) > uint64(len(mem.data)) {
		err = &ErrFault{Address: addr, Length: length, Capacity: mem.Capacity()}
	}

	return
}

// Read returns the byte at 'addr'.
func (mem *Memory) Read(addr uint32) (value byte, err error) {
	err = mem.check(addr, 1)
	if err != nil {
		return
	}

	value = mem.data[addr]
	return
}

// Write stores one byte at 'addr'.
func (mem *Memory) Write(addr uint32, value byte) (err error) {
	err = mem.check(addr, 1)
	if err != nil {
		return
	}

	mem.data[addr] = value
	return
}

// Read16 reads a little-endian 16-bit value at 'addr'.
func (mem *Memory) Read16(addr uint32) (value uint16, err error) {
	err = mem.check(addr, 2)
	if err != nil {
		return
	}

	value = binary.LittleEndian.Uint16(mem.data[addr:])
	return
}

// Write16 stores a little-endian 16-bit value at 'addr'.
func (mem *Memory) Write16(addr uint32, value uint16) (err error) {
	err = mem.check(addr, 2)
	if err != nil {
		return
	}

	binary.LittleEndian.PutUint16(mem.data[addr:], value)
	return
}

// Read32 reads a little-endian 32-bit value at 'addr'.
func (mem *Memory) Read32(addr uint32) (value uint32, err error) {
	err = mem.check(addr, 4)
	if err != nil {
		return
	}

	value = binary.LittleEndian.Uint32(mem.data[addr:])
	return
}

// Write32 stores a little-endian 32-bit value at 'addr'.
func (mem *Memory) Write32(addr uint32, value uint32) (err error) {
	err = mem.check(addr, 4)
	if err != nil {
		return
	}

	binary.LittleEndian.PutUint32(mem.data[addr:], value)
	return
}

// MapBytes copies 'data' into memory starting at 'start'.
// Nothing is written unless all of 'data' fits.
func (mem *Memory) MapBytes(start uint32, data []byte) (err error) {
	err = mem.check(start, len(data))
	if err != nil {
		return
	}

	copy(mem.data[start:], data)
	return
}

// MapWords stores 'words' little-endian at a 4 byte stride starting at 'start'.
// Nothing is written unless all of 'words' fits.
func (mem *Memory) MapWords(start uint32, words []uint32) (err error) {
	err = mem.check(start, len(words)*4)
	if err != nil {
		return
	}

	for addr, word := range internal.IterStride(start, 4, words) {
		binary.LittleEndian.PutUint32(mem.data[addr:], word)
	}
	return
}

// Bytes returns a copy of the memory contents.
func (mem *Memory) Bytes() []byte {
	return slices.Clone(mem.data)
}

// Reset zero fills the memory.
func (mem *Memory) Reset() {
	clear(mem.data)
}
