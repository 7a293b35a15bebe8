package io

import (
	"errors"

	"github.com/ezrec/chip8/translate"
)

var f = translate.From

var (
	// Device errors
	ErrNotTerminal = errors.New(f("not a terminal"))
	ErrQuit        = errors.New(f("quit requested"))
	ErrRestart     = errors.New(f("restart requested"))
	ErrToneFormat  = errors.New(f("bad parameters for wav encoding"))
)
