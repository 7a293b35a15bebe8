// Package cpu implements the interpreter and assembler for the CHIP-8 system.
//
// The CPU consists of 4096 bytes of memory with the hexadecimal font glyphs
// preloaded at address 0, sixteen 8-bit general-purpose registers (V0-VF,
// with VF doubling as the carry, borrow and collision flag), a 12-bit index
// register (I), a program counter, a 16-level call stack, a 64x32 monochrome
// display, delay and sound timers, and a 16-key hexadecimal keypad.
//
// The host drives the CPU: it calls Step (or Cycle) once per instruction,
// Tick at 60Hz, and reads Display and SoundActive afterwards. The CPU never
// performs I/O itself.
//
// The assembler provides Cowgod-style mnemonics for the base instruction
// set, supporting macros, labels, equates, and compile-time expression
// evaluation.
package cpu
