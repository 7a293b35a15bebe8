package io

import (
	"fmt"
	"io"

	"github.com/ezrec/chip8/cpu"
)

// ReadRom reads a program image. Images that do not fit in program memory
// are rejected with cpu.ErrProgramTooLarge.
func ReadRom(r io.Reader) (image []byte, err error) {
	image, err = io.ReadAll(io.LimitReader(r, cpu.PROGRAM_LIMIT+1))
	if err != nil {
		image = nil
		return
	}

	if len(image) > cpu.PROGRAM_LIMIT {
		err = fmt.Errorf("%w: > %d", cpu.ErrProgramTooLarge, cpu.PROGRAM_LIMIT)
		image = nil
		return
	}

	return
}

// WriteRom writes a program image.
func WriteRom(w io.Writer, image []byte) (err error) {
	if len(image) > cpu.PROGRAM_LIMIT {
		err = fmt.Errorf("%w: %d > %d", cpu.ErrProgramTooLarge, len(image), cpu.PROGRAM_LIMIT)
		return
	}

	_, err = w.Write(image)
	return
}
