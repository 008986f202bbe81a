package internal

import (
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIterSeq2Concat(t *testing.T) {
	assert := assert.New(t)

	a := map[string]int{"a": 1}
	b := map[string]int{"b": 2, "c": 3}

	got := map[string]int{}
	for key, val := range IterSeq2Concat(maps.All(a), maps.All(b)) {
		got[key] = val
	}

	assert.Equal(map[string]int{"a": 1, "b": 2, "c": 3}, got)
}

func TestIterSeq2ConcatStop(t *testing.T) {
	assert := assert.New(t)

	count := 0
	for range IterSeq2Concat(IterStride(0, 4, []int{1, 2, 3}), IterStride(0, 4, []int{4})) {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(2, count)
}

func TestIterStride(t *testing.T) {
	assert := assert.New(t)

	var addrs []uint32
	var vals []uint32
	for addr, val := range IterStride(12, 4, []uint32{0xa, 0xb, 0xc}) {
		addrs = append(addrs, addr)
		vals = append(vals, val)
	}

	assert.Equal([]uint32{12, 16, 20}, addrs)
	assert.Equal([]uint32{0xa, 0xb, 0xc}, vals)
}
