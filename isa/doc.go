// Package isa models the RV32 base instruction formats.
//
// Each of the six base formats (R, I, S, B, U, J) is a distinct type over the
// raw 32-bit instruction word, and only carries the field accessors that are
// meaningful for that format. Classify inspects the opcode field of a raw word
// and returns the matching format value, a Syscall for SYSTEM words, or an
// Unrecognized value for opcodes outside the supported table.
//
// The Make* encoders are the inverse of the accessors, and are used by the
// assembler and by tests to build instruction words from fields.
package isa
