package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("register invalid", From("register invalid"))
	assert.Equal("x12 0x0000000c", From("x%d 0x%08x", 12, uint32(12)))
}

func TestNewPrinter(t *testing.T) {
	assert := assert.New(t)

	p := newPrinter(nil)
	assert.NotNil(p)
	assert.Equal("pc 4", p.Sprintf("pc %d", 4))
}
