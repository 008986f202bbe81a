package io

import (
	"errors"

	"github.com/ezrec/rv32/translate"
)

var f = translate.From

var (
	// Image errors
	ErrRomTooLarge = errors.New(f("rom image too large"))
	ErrRomEmpty    = errors.New(f("rom image empty"))
)
