// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":        "0",
	"PROGRAM_START": fmt.Sprintf("%#x", PROGRAM_START),
	"FONT_BASE":     fmt.Sprintf("%#x", FONT_BASE),
	"FONT_SIZE":     fmt.Sprintf("%v", FONT_SIZE),
}

// Assembler is a single pass macro assembler for the CHIP-8 system.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	address int // Address of the next emitted byte.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// operand is a classified instruction argument.
type operand int

const (
	ARG_VALUE = operand(iota) // number, equate or label
	ARG_REG                   // V0-VF
	ARG_I                     // I
	ARG_MEM_I                 // [I]
	ARG_DT                    // DT
	ARG_ST                    // ST
	ARG_K                     // K
	ARG_F                     // F
	ARG_B                     // B
)

var argMap = map[string]operand{
	"i":   ARG_I,
	"[i]": ARG_MEM_I,
	"dt":  ARG_DT,
	"st":  ARG_ST,
	"k":   ARG_K,
	"f":   ARG_F,
	"b":   ARG_B,
}

// classify returns the operand kind of a word, and the register index for
// ARG_REG.
func classify(word string) (arg operand, reg uint8) {
	lower := strings.ToLower(word)
	if len(lower) == 2 && lower[0] == 'v' {
		n, err := strconv.ParseUint(lower[1:], 16, 8)
		if err == nil {
			return ARG_REG, uint8(n)
		}
	}

	arg, ok := argMap[lower]
	if ok {
		return
	}

	return ARG_VALUE, 0
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value uint32, err error) {
	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}
	invert := false
	if word[0] == '~' {
		invert = true
		word = word[1:]
	}
	if len(word) > 0 && word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(strings.Trim(word, "'"))
		return
	}
	v64, err := strconv.ParseInt(word, 0, 33)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if v64 <= 0xffffffff && v64 >= -int64(0x80000000) {
		if v64 < 0 {
			value = uint32(0xffffffff + (v64 + 1))
		} else {
			value = uint32(v64)
		}
	}

	if invert {
		value = ^value
	}

	return
}

// immediate returns a value operand, checked against limit. Negative
// values are accepted when their two's complement fits in limit.
func (asm *Assembler) immediate(word string, limit uint32) (value uint16, err error) {
	v32, err := asm.valueOf(word)
	if err != nil {
		return
	}

	switch {
	case v32 <= limit:
		value = uint16(v32)
	case v32 >= ^(limit >> 1):
		value = uint16(v32 & limit)
	default:
		err = ErrOperandRange
	}

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value32 uint32
		value32, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt(int(value32))
	}
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeInt(addr)
	}
	err = nil
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = uint32(st_int64)
	return
}

// parseLine parses a single line as an opcode.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	re := regexp.MustCompile(`'\\?[^']'`)
	line = re.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "e":
				str = "\033"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	re = regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#v", value)
	})
	if err != nil {
		return
	}

	// Operands may be separated by commas.
	line = strings.ReplaceAll(line, ",", " ")

	words = strings.Fields(line)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if strings.ToLower(words[0]) == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.address
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", fmt.Sprintf("%v_%v_", name, lineno))
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, macro.LineNo+n)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	asm.address = PROGRAM_START
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of address labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		line = strings.Join(op.Words, " ")
		lineno = op.LineNo
		label := op.LinkLabel
		addr, ok := asm.Label[label]
		if !ok {
			err = ErrLabelMissing(label)
			return
		}
		if len(op.Data) != 2 {
			err = ErrOperandInvalid
			return
		}
		op.Data[0] |= uint8((addr >> 8) & 0x0f)
		op.Data[1] |= uint8(addr & 0xff)
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// emit appends an opcode at the current address.
func (asm *Assembler) emit(opcode Opcode) {
	opcode.Address = asm.address
	asm.Opcode = append(asm.Opcode, opcode)
	asm.address += len(opcode.Data)
}

// addressOf returns a 12-bit address operand, or the label to link.
func (asm *Assembler) addressOf(word string) (addr uint16, label string, err error) {
	addr, err = asm.immediate(word, ADDRESS_MASK)
	if err == nil {
		return
	}

	_, is_number := err.(ErrParseNumber)
	if !is_number || !isLabel(word) {
		return
	}

	err = nil
	label = word
	return
}

var labelRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func isLabel(word string) bool {
	return labelRegexp.MatchString(word)
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := slices.Clone(words)
	mnemonic := strings.ToLower(words[0])
	args := words[1:]

	// Directives
	switch mnemonic {
	case ".org":
		if len(args) != 1 {
			err = ErrOpcodeValueMissing
			return
		}
		var addr uint16
		addr, err = asm.immediate(args[0], ADDRESS_MASK)
		if err != nil {
			return
		}
		if int(addr) < PROGRAM_START {
			err = ErrOriginInvalid
			return
		}
		asm.address = int(addr)
		return
	case ".byte":
		if len(args) == 0 {
			err = ErrOpcodeValueMissing
			return
		}
		var data []uint8
		for _, arg := range args {
			var value uint16
			value, err = asm.immediate(arg, 0xff)
			if err != nil {
				return
			}
			data = append(data, uint8(value))
		}
		asm.emit(Opcode{LineNo: lineno, Words: initial_words, Data: data, IsData: true})
		return
	case ".word":
		if len(args) == 0 {
			err = ErrOpcodeValueMissing
			return
		}
		var data []uint8
		for _, arg := range args {
			var value uint16
			value, err = asm.immediate(arg, 0xffff)
			if err != nil {
				return
			}
			data = append(data, uint8(value>>8), uint8(value))
		}
		asm.emit(Opcode{LineNo: lineno, Words: initial_words, Data: data, IsData: true})
		return
	}

	code, label, err := asm.encode(mnemonic, args)
	if err != nil {
		return
	}

	asm.emit(Opcode{
		LineNo:    lineno,
		Words:     initial_words,
		Data:      []uint8{uint8(code >> 8), uint8(code)},
		LinkLabel: label,
	})

	return
}

// encode assembles a single instruction.
func (asm *Assembler) encode(mnemonic string, args []string) (code Code, label string, err error) {
	kinds := make([]operand, len(args))
	regs := make([]uint8, len(args))
	for n, arg := range args {
		kinds[n], regs[n] = classify(arg)
	}

	want := func(count int) bool {
		switch {
		case len(args) < count:
			err = ErrOpcodeValueMissing
		case len(args) > count:
			err = ErrOpcodeExtraArgs
		}
		return err == nil
	}

	is := func(expect ...operand) bool {
		return slices.Equal(kinds, expect)
	}

	var imm uint16

	switch mnemonic {
	case "cls":
		if want(0) {
			code = MakeCode(OP_CLS, 0, 0, 0)
		}
	case "ret":
		if want(0) {
			code = MakeCode(OP_RET, 0, 0, 0)
		}
	case "jp", "call":
		if !want(1) {
			return
		}
		if kinds[0] != ARG_VALUE {
			err = ErrOperandInvalid
			return
		}
		imm, label, err = asm.addressOf(args[0])
		op := OP_JP
		if mnemonic == "call" {
			op = OP_CALL
		}
		code = MakeCode(op, 0, 0, imm)
	case "se", "sne":
		if !want(2) {
			return
		}
		switch {
		case is(ARG_REG, ARG_VALUE):
			imm, err = asm.immediate(args[1], 0xff)
			op := OP_SE_IMM
			if mnemonic == "sne" {
				op = OP_SNE_IMM
			}
			code = MakeCode(op, regs[0], 0, imm)
		case is(ARG_REG, ARG_REG) && mnemonic == "se":
			code = MakeCode(OP_SE_REG, regs[0], regs[1], 0)
		default:
			err = ErrOperandInvalid
		}
	case "ld":
		if !want(2) {
			return
		}
		switch {
		case is(ARG_REG, ARG_VALUE):
			imm, err = asm.immediate(args[1], 0xff)
			code = MakeCode(OP_LD_IMM, regs[0], 0, imm)
		case is(ARG_REG, ARG_REG):
			code = MakeCode(OP_LD_REG, regs[0], regs[1], 0)
		case is(ARG_I, ARG_VALUE):
			imm, label, err = asm.addressOf(args[1])
			code = MakeCode(OP_LD_I, 0, 0, imm)
		case is(ARG_REG, ARG_DT):
			code = MakeCode(OP_LD_VX_DT, regs[0], 0, 0)
		case is(ARG_REG, ARG_K):
			code = MakeCode(OP_LD_VX_K, regs[0], 0, 0)
		case is(ARG_DT, ARG_REG):
			code = MakeCode(OP_LD_DT_VX, regs[1], 0, 0)
		case is(ARG_ST, ARG_REG):
			code = MakeCode(OP_LD_ST_VX, regs[1], 0, 0)
		case is(ARG_F, ARG_REG):
			code = MakeCode(OP_LD_F, regs[1], 0, 0)
		case is(ARG_B, ARG_REG):
			code = MakeCode(OP_LD_B, regs[1], 0, 0)
		case is(ARG_MEM_I, ARG_REG):
			code = MakeCode(OP_LD_MEM_VX, regs[1], 0, 0)
		case is(ARG_REG, ARG_MEM_I):
			code = MakeCode(OP_LD_VX_MEM, regs[0], 0, 0)
		default:
			err = ErrOperandInvalid
		}
	case "add":
		if !want(2) {
			return
		}
		switch {
		case is(ARG_REG, ARG_VALUE):
			imm, err = asm.immediate(args[1], 0xff)
			code = MakeCode(OP_ADD_IMM, regs[0], 0, imm)
		case is(ARG_REG, ARG_REG):
			code = MakeCode(OP_ADD_REG, regs[0], regs[1], 0)
		case is(ARG_I, ARG_REG):
			code = MakeCode(OP_ADD_I, regs[1], 0, 0)
		default:
			err = ErrOperandInvalid
		}
	case "and", "xor", "sub":
		if !want(2) {
			return
		}
		if !is(ARG_REG, ARG_REG) {
			err = ErrOperandInvalid
			return
		}
		op := map[string]CodeOp{"and": OP_AND, "xor": OP_XOR, "sub": OP_SUB}[mnemonic]
		code = MakeCode(op, regs[0], regs[1], 0)
	case "rnd":
		if !want(2) {
			return
		}
		if !is(ARG_REG, ARG_VALUE) {
			err = ErrOperandInvalid
			return
		}
		imm, err = asm.immediate(args[1], 0xff)
		code = MakeCode(OP_RND, regs[0], 0, imm)
	case "drw":
		if !want(3) {
			return
		}
		if !is(ARG_REG, ARG_REG, ARG_VALUE) {
			err = ErrOperandInvalid
			return
		}
		imm, err = asm.immediate(args[2], 0xf)
		code = MakeCode(OP_DRW, regs[0], regs[1], imm)
	case "skp", "sknp":
		if !want(1) {
			return
		}
		if !is(ARG_REG) {
			err = ErrOperandInvalid
			return
		}
		op := OP_SKP
		if mnemonic == "sknp" {
			op = OP_SKNP
		}
		code = MakeCode(op, regs[0], 0, 0)
	default:
		err = ErrInstructionInvalid
	}

	return
}
