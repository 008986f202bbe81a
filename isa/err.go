package isa

import (
	"errors"

	"github.com/ezrec/rv32/translate"
)

var f = translate.From

var (
	// Decode errors
	ErrOpcodeUnrecognized = errors.New(f("opcode unrecognized"))
)

// ErrUnrecognized is returned by Decode for a word whose opcode field is not
// in the supported table.
type ErrUnrecognized uint32

func (eu ErrUnrecognized) Error() string {
	return f("unrecognized opcode 0b%07b in word 0x%08x", uint32(eu)&OPCODE_MASK, uint32(eu))
}

func (eu ErrUnrecognized) Is(err error) (ok bool) {
	if err == ErrOpcodeUnrecognized {
		return true
	}
	_, ok = err.(ErrUnrecognized)
	return
}
