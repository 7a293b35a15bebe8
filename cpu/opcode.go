package cpu

import (
	"fmt"
)

// CodeOp is a decoded instruction of the base instruction set.
type CodeOp int

const (
	OP_INVALID   = CodeOp(0)  // ???
	OP_CLS       = CodeOp(1)  // 00E0
	OP_RET       = CodeOp(2)  // 00EE
	OP_JP        = CodeOp(3)  // 1nnn
	OP_CALL      = CodeOp(4)  // 2nnn
	OP_SE_IMM    = CodeOp(5)  // 3xkk
	OP_SNE_IMM   = CodeOp(6)  // 4xkk
	OP_SE_REG    = CodeOp(7)  // 5xy0
	OP_LD_IMM    = CodeOp(8)  // 6xkk
	OP_ADD_IMM   = CodeOp(9)  // 7xkk
	OP_LD_REG    = CodeOp(10) // 8xy0
	OP_AND       = CodeOp(11) // 8xy2
	OP_XOR       = CodeOp(12) // 8xy3
	OP_ADD_REG   = CodeOp(13) // 8xy4
	OP_SUB       = CodeOp(14) // 8xy5
	OP_LD_I      = CodeOp(15) // Annn
	OP_RND       = CodeOp(16) // Cxkk
	OP_DRW       = CodeOp(17) // Dxyn
	OP_SKP       = CodeOp(18) // Ex9E
	OP_SKNP      = CodeOp(19) // ExA1
	OP_LD_VX_DT  = CodeOp(20) // Fx07
	OP_LD_VX_K   = CodeOp(21) // Fx0A
	OP_LD_DT_VX  = CodeOp(22) // Fx15
	OP_LD_ST_VX  = CodeOp(23) // Fx18
	OP_ADD_I     = CodeOp(24) // Fx1E
	OP_LD_F      = CodeOp(25) // Fx29
	OP_LD_B      = CodeOp(26) // Fx33
	OP_LD_MEM_VX = CodeOp(27) // Fx55
	OP_LD_VX_MEM = CodeOp(28) // Fx65
)

// CodeShape describes which operand fields an instruction carries.
//
//go:generate go tool stringer -linecomment -type=CodeShape
type CodeShape int

const (
	SHAPE_NONE = CodeShape(0) // no operands
	SHAPE_NNN  = CodeShape(1) // 12-bit address
	SHAPE_XKK  = CodeShape(2) // register and byte
	SHAPE_XY   = CodeShape(3) // two registers
	SHAPE_XYN  = CodeShape(4) // two registers and nibble
	SHAPE_X    = CodeShape(5) // one register
)

type codeOpInfo struct {
	pattern string
	base    Code
	shape   CodeShape
}

var codeOps = [...]codeOpInfo{
	OP_INVALID:   {"????", 0x0000, SHAPE_NONE},
	OP_CLS:       {"00E0", 0x00E0, SHAPE_NONE},
	OP_RET:       {"00EE", 0x00EE, SHAPE_NONE},
	OP_JP:        {"1nnn", 0x1000, SHAPE_NNN},
	OP_CALL:      {"2nnn", 0x2000, SHAPE_NNN},
	OP_SE_IMM:    {"3xkk", 0x3000, SHAPE_XKK},
	OP_SNE_IMM:   {"4xkk", 0x4000, SHAPE_XKK},
	OP_SE_REG:    {"5xy0", 0x5000, SHAPE_XY},
	OP_LD_IMM:    {"6xkk", 0x6000, SHAPE_XKK},
	OP_ADD_IMM:   {"7xkk", 0x7000, SHAPE_XKK},
	OP_LD_REG:    {"8xy0", 0x8000, SHAPE_XY},
	OP_AND:       {"8xy2", 0x8002, SHAPE_XY},
	OP_XOR:       {"8xy3", 0x8003, SHAPE_XY},
	OP_ADD_REG:   {"8xy4", 0x8004, SHAPE_XY},
	OP_SUB:       {"8xy5", 0x8005, SHAPE_XY},
	OP_LD_I:      {"Annn", 0xA000, SHAPE_NNN},
	OP_RND:       {"Cxkk", 0xC000, SHAPE_XKK},
	OP_DRW:       {"Dxyn", 0xD000, SHAPE_XYN},
	OP_SKP:       {"Ex9E", 0xE09E, SHAPE_X},
	OP_SKNP:      {"ExA1", 0xE0A1, SHAPE_X},
	OP_LD_VX_DT:  {"Fx07", 0xF007, SHAPE_X},
	OP_LD_VX_K:   {"Fx0A", 0xF00A, SHAPE_X},
	OP_LD_DT_VX:  {"Fx15", 0xF015, SHAPE_X},
	OP_LD_ST_VX:  {"Fx18", 0xF018, SHAPE_X},
	OP_ADD_I:     {"Fx1E", 0xF01E, SHAPE_X},
	OP_LD_F:      {"Fx29", 0xF029, SHAPE_X},
	OP_LD_B:      {"Fx33", 0xF033, SHAPE_X},
	OP_LD_MEM_VX: {"Fx55", 0xF055, SHAPE_X},
	OP_LD_VX_MEM: {"Fx65", 0xF065, SHAPE_X},
}

// String returns the encoding pattern of the operation.
func (op CodeOp) String() string {
	if op < 0 || int(op) >= len(codeOps) {
		return codeOps[OP_INVALID].pattern
	}
	return codeOps[op].pattern
}

// Shape returns the operand layout of the operation.
func (op CodeOp) Shape() CodeShape {
	if op < 0 || int(op) >= len(codeOps) {
		return SHAPE_NONE
	}
	return codeOps[op].shape
}

// Code is a single big-endian instruction word.
type Code uint16

// MakeCode encodes an operation. Operands not used by the operation's
// shape are ignored; used operands are truncated to their field width.
func MakeCode(op CodeOp, x, y uint8, imm uint16) Code {
	info := codeOps[OP_INVALID]
	if op > 0 && int(op) < len(codeOps) {
		info = codeOps[op]
	}

	code := info.base
	switch info.shape {
	case SHAPE_NNN:
		code |= Code(imm & 0xfff)
	case SHAPE_XKK:
		code |= Code(x&0xf)<<8 | Code(imm&0xff)
	case SHAPE_XY:
		code |= Code(x&0xf)<<8 | Code(y&0xf)<<4
	case SHAPE_XYN:
		code |= Code(x&0xf)<<8 | Code(y&0xf)<<4 | Code(imm&0xf)
	case SHAPE_X:
		code |= Code(x&0xf) << 8
	}

	return code
}

// Family returns the leading nibble.
func (code Code) Family() uint8 {
	return uint8((code >> 12) & 0xf)
}

// X returns the second nibble, the first register operand.
func (code Code) X() uint8 {
	return uint8((code >> 8) & 0xf)
}

// Y returns the third nibble, the second register operand.
func (code Code) Y() uint8 {
	return uint8((code >> 4) & 0xf)
}

// N returns the last nibble.
func (code Code) N() uint8 {
	return uint8(code & 0xf)
}

// KK returns the low byte.
func (code Code) KK() uint8 {
	return uint8(code & 0xff)
}

// NNN returns the low 12 bits.
func (code Code) NNN() uint16 {
	return uint16(code & 0xfff)
}

// Op decodes the instruction word, returning OP_INVALID for any word
// outside the base instruction set.
func (code Code) Op() CodeOp {
	switch code.Family() {
	case 0x0:
		switch code {
		case 0x00E0:
			return OP_CLS
		case 0x00EE:
			return OP_RET
		}
	case 0x1:
		return OP_JP
	case 0x2:
		return OP_CALL
	case 0x3:
		return OP_SE_IMM
	case 0x4:
		return OP_SNE_IMM
	case 0x5:
		if code.N() == 0x0 {
			return OP_SE_REG
		}
	case 0x6:
		return OP_LD_IMM
	case 0x7:
		return OP_ADD_IMM
	case 0x8:
		switch code.N() {
		case 0x0:
			return OP_LD_REG
		case 0x2:
			return OP_AND
		case 0x3:
			return OP_XOR
		case 0x4:
			return OP_ADD_REG
		case 0x5:
			return OP_SUB
		}
	case 0xA:
		return OP_LD_I
	case 0xC:
		return OP_RND
	case 0xD:
		return OP_DRW
	case 0xE:
		switch code.KK() {
		case 0x9E:
			return OP_SKP
		case 0xA1:
			return OP_SKNP
		}
	case 0xF:
		switch code.KK() {
		case 0x07:
			return OP_LD_VX_DT
		case 0x0A:
			return OP_LD_VX_K
		case 0x15:
			return OP_LD_DT_VX
		case 0x18:
			return OP_LD_ST_VX
		case 0x1E:
			return OP_ADD_I
		case 0x29:
			return OP_LD_F
		case 0x33:
			return OP_LD_B
		case 0x55:
			return OP_LD_MEM_VX
		case 0x65:
			return OP_LD_VX_MEM
		}
	}

	return OP_INVALID
}

// Valid returns true if the word is part of the base instruction set.
func (code Code) Valid() bool {
	return code.Op() != OP_INVALID
}

// String returns the assembly language representation of this instruction.
func (code Code) String() (out string) {
	x, y := code.X(), code.Y()

	switch code.Op() {
	case OP_CLS:
		out = "CLS"
	case OP_RET:
		out = "RET"
	case OP_JP:
		out = fmt.Sprintf("JP 0x%03X", code.NNN())
	case OP_CALL:
		out = fmt.Sprintf("CALL 0x%03X", code.NNN())
	case OP_SE_IMM:
		out = fmt.Sprintf("SE V%X, 0x%02X", x, code.KK())
	case OP_SNE_IMM:
		out = fmt.Sprintf("SNE V%X, 0x%02X", x, code.KK())
	case OP_SE_REG:
		out = fmt.Sprintf("SE V%X, V%X", x, y)
	case OP_LD_IMM:
		out = fmt.Sprintf("LD V%X, 0x%02X", x, code.KK())
	case OP_ADD_IMM:
		out = fmt.Sprintf("ADD V%X, 0x%02X", x, code.KK())
	case OP_LD_REG:
		out = fmt.Sprintf("LD V%X, V%X", x, y)
	case OP_AND:
		out = fmt.Sprintf("AND V%X, V%X", x, y)
	case OP_XOR:
		out = fmt.Sprintf("XOR V%X, V%X", x, y)
	case OP_ADD_REG:
		out = fmt.Sprintf("ADD V%X, V%X", x, y)
	case OP_SUB:
		out = fmt.Sprintf("SUB V%X, V%X", x, y)
	case OP_LD_I:
		out = fmt.Sprintf("LD I, 0x%03X", code.NNN())
	case OP_RND:
		out = fmt.Sprintf("RND V%X, 0x%02X", x, code.KK())
	case OP_DRW:
		out = fmt.Sprintf("DRW V%X, V%X, %d", x, y, code.N())
	case OP_SKP:
		out = fmt.Sprintf("SKP V%X", x)
	case OP_SKNP:
		out = fmt.Sprintf("SKNP V%X", x)
	case OP_LD_VX_DT:
		out = fmt.Sprintf("LD V%X, DT", x)
	case OP_LD_VX_K:
		out = fmt.Sprintf("LD V%X, K", x)
	case OP_LD_DT_VX:
		out = fmt.Sprintf("LD DT, V%X", x)
	case OP_LD_ST_VX:
		out = fmt.Sprintf("LD ST, V%X", x)
	case OP_ADD_I:
		out = fmt.Sprintf("ADD I, V%X", x)
	case OP_LD_F:
		out = fmt.Sprintf("LD F, V%X", x)
	case OP_LD_B:
		out = fmt.Sprintf("LD B, V%X", x)
	case OP_LD_MEM_VX:
		out = fmt.Sprintf("LD [I], V%X", x)
	case OP_LD_VX_MEM:
		out = fmt.Sprintf("LD V%X, [I]", x)
	default:
		out = fmt.Sprintf("??? 0x%04X", uint16(code))
	}

	return
}
