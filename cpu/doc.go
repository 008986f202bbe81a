// Package cpu implements the RV32 execution core and its assembler.
//
// The CPU consists of an explicit program counter (Pc), thirty-two 32-bit
// general-purpose registers (x0-x31, with x0 hard-wired to zero), and a flat
// memory that the CPU exclusively owns. After the memory has been mapped and
// Init has seeded the PC from the start address, each Step fetches, decodes
// and executes one instruction, then advances the PC by four bytes.
//
// The assembler provides a small RV32I assembly language with labels, equates,
// macros, and compile-time expression evaluation.
package cpu
