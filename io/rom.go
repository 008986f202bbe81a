package io

import (
	"encoding/binary"
	"io"
	"iter"
)

const (
	ROM_LIMIT = 1 << 24 // Largest accepted raw image, in bytes.
	WORD_SIZE = 4       // Bytes per image word.
)

// Mapper accepts image words into its memory.
type Mapper interface {
	MapWords(start uint32, words []uint32) error
}

// Rom is a raw little-endian program image.
type Rom struct {
	Data []byte
}

// ReadRom reads an entire raw image from 'input'.
func ReadRom(input io.Reader) (rom *Rom, err error) {
	data, err := io.ReadAll(io.LimitReader(input, ROM_LIMIT+1))
	if err != nil {
		return
	}

	switch {
	case len(data) == 0:
		err = ErrRomEmpty
		return
	case len(data) > ROM_LIMIT:
		err = ErrRomTooLarge
		return
	}

	rom = &Rom{Data: data}
	return
}

// Words iterates over the (offset, word) pairs of the image.
// A trailing partial word is zero padded.
func (rom *Rom) Words() iter.Seq2[uint32, uint32] {
	return func(yield func(offset uint32, word uint32) bool) {
		for offset := 0; offset < len(rom.Data); offset += WORD_SIZE {
			var buf [WORD_SIZE]byte
			copy(buf[:], rom.Data[offset:])
			if !yield(uint32(offset), binary.LittleEndian.Uint32(buf[:])) {
				return
			}
		}
	}
}

// MapInto copies the image words into 'mapper' at 'start'. A trailing
// partial word is mapped zero padded.
func (rom *Rom) MapInto(mapper Mapper, start uint32) (err error) {
	words := make([]uint32, 0, (len(rom.Data)+WORD_SIZE-1)/WORD_SIZE)
	for _, word := range rom.Words() {
		words = append(words, word)
	}

	return mapper.MapWords(start, words)
}
