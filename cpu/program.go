package cpu

import (
	"iter"
)

// Opcode represents a line of assembled code with its source location and
// generated bytes.
type Opcode struct {
	LineNo    int
	Address   int
	Words     []string
	Data      []uint8
	IsData    bool // Emitted by .byte or .word, not an instruction.
	LinkLabel string
}

type Program struct {
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Offset int
}

// Debug locates the opcode that emitted the byte at addr.
func (prog *Program) Debug(addr uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int(addr) >= op.Address && int(addr) < op.Address+len(op.Data) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Offset: int(addr) - op.Address,
			}
			break
		}
	}

	return
}

// Binary returns the program image, starting at PROGRAM_START. Gaps left by
// .org are zero filled.
func (prog *Program) Binary() (image []byte) {
	end := PROGRAM_START
	for _, op := range prog.Opcodes {
		end = max(end, op.Address+len(op.Data))
	}

	image = make([]byte, end-PROGRAM_START)
	for _, op := range prog.Opcodes {
		copy(image[op.Address-PROGRAM_START:], op.Data)
	}

	return
}

// Codes iterates the instruction words by address, skipping data.
func (prog *Program) Codes() iter.Seq2[uint16, Code] {
	return func(yield func(addr uint16, code Code) bool) {
		for _, op := range prog.Opcodes {
			if op.IsData || len(op.Data) != 2 {
				continue
			}
			code := Code(uint16(op.Data[0])<<8 | uint16(op.Data[1]))
			if !yield(uint16(op.Address), code) {
				return
			}
		}
	}
}
