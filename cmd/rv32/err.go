package main

import (
	"errors"

	"github.com/ezrec/rv32/translate"
)

var f = translate.From

var (
	// Monitor errors
	ErrCommandUnknown  = errors.New(f("command unknown"))
	ErrCommandArgument = errors.New(f("command argument invalid"))
)
