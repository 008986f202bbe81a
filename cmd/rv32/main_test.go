package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCommandErrors(t *testing.T) {
	assert := assert.New(t)

	root := newRootCommand()
	assert.True(root.SilenceErrors)
	assert.True(root.SilenceUsage)

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs([]string{"run", "--asm", filepath.Join(t.TempDir(), "missing.s")})

	err := root.Execute()
	assert.Error(err)
	assert.Equal("", stderr.String())
	assert.Equal("", stdout.String())
}

func TestRootCommandRun(t *testing.T) {
	assert := assert.New(t)

	source := filepath.Join(t.TempDir(), "add.s")
	program := []string{
		"li a0, 40",
		"li a1, 2",
		"add a2, a0, a1",
		"ecall",
	}
	assert.NoError(os.WriteFile(source, []byte(strings.Join(program, "\n")), 0o644))

	root := newRootCommand()
	stdout := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetArgs([]string{"run", "--asm", source})

	assert.NoError(root.Execute())
	assert.Contains(stdout.String(), "   a2: 0000_002A")
	assert.Contains(stdout.String(), "ticks: 4 done: true")
}
