package memory

import (
	"errors"

	"github.com/ezrec/rv32/translate"
)

var f = translate.From

var (
	// Memory errors
	ErrMemoryFault = errors.New(f("memory fault"))
)

// ErrFault describes an access that does not fit in the memory.
type ErrFault struct {
	Address  uint32 // First byte of the access.
	Length   int    // Length of the access in bytes.
	Capacity uint32 // Capacity of the memory.
}

func (err *ErrFault) Error() string {
	return f("memory fault: %d bytes at 0x%08x exceeds capacity 0x%x", err.Length, err.Address, err.Capacity)
}

func (err *ErrFault) Is(target error) bool {
	return target == ErrMemoryFault
}
