// Package internal holds iterator helpers shared by the rv32 packages.
package internal

import (
	"iter"
)

// IterSeq2Concat concatenates multiple dual-return iterators into a single iterator sequence.
func IterSeq2Concat[T1 any, T2 any](seqs ...iter.Seq2[T1, T2]) iter.Seq2[T1, T2] {
	return func(yield func(T1, T2) bool) {
		for _, seq := range seqs {
			for val1, val2 := range seq {
				if !yield(val1, val2) {
					return // Stop if the consumer stops
				}
			}
		}
	}
}

// IterStride yields (address, element) pairs for items laid out every
// 'stride' bytes starting at 'start'.
func IterStride[T any](start uint32, stride uint32, items []T) iter.Seq2[uint32, T] {
	return func(yield func(uint32, T) bool) {
		addr := start
		for _, item := range items {
			if !yield(addr, item) {
				return
			}
			addr += stride
		}
	}
}
