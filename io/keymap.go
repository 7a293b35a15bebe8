package io

import (
	"github.com/ezrec/chip8/cpu"
)

const (
	KEY_HOLD = 8 // Default polls a key stays down after its byte arrives.

	BYTE_QUIT    = 0x1b // ESC
	BYTE_CTRL_C  = 0x03
	BYTE_RESTART = 0x12 // Ctrl-R
)

// Keymap maps input bytes to keypad keys.
type Keymap map[byte]cpu.Key

// keypad layout, in the order of the physical QWERTY block
//
//	1 2 3 C      1 2 3 4
//	4 5 6 D  <-  q w e r
//	7 8 9 E      a s d f
//	A 0 B F      z x c v
var defaultLayout = [...]struct {
	char byte
	key  cpu.Key
}{
	{'1', 0x1}, {'2', 0x2}, {'3', 0x3}, {'4', 0xC},
	{'q', 0x4}, {'w', 0x5}, {'e', 0x6}, {'r', 0xD},
	{'a', 0x7}, {'s', 0x8}, {'d', 0x9}, {'f', 0xE},
	{'z', 0xA}, {'x', 0x0}, {'c', 0xB}, {'v', 0xF},
}

// DefaultKeymap returns the QWERTY keymap. Letters match in either case.
func DefaultKeymap() (km Keymap) {
	km = make(Keymap, 2*len(defaultLayout))
	for _, entry := range defaultLayout {
		km[entry.char] = entry.key
		if entry.char >= 'a' && entry.char <= 'z' {
			km[entry.char-'a'+'A'] = entry.key
		}
	}

	return
}

// KeyHold turns a stream of key bytes into held keys. Character devices
// report presses only, so each key stays down for Hold polls after its last
// byte.
type KeyHold struct {
	Keymap Keymap // Byte to key mapping; nil uses DefaultKeymap.
	Hold   int    // Polls a key stays down; zero uses KEY_HOLD.

	count [cpu.KEY_COUNT]int
}

// Feed processes a single input byte.
func (kh *KeyHold) Feed(b byte) (err error) {
	switch b {
	case BYTE_QUIT, BYTE_CTRL_C:
		err = ErrQuit
		return
	case BYTE_RESTART:
		clear(kh.count[:])
		err = ErrRestart
		return
	}

	if kh.Keymap == nil {
		kh.Keymap = DefaultKeymap()
	}

	key, ok := kh.Keymap[b]
	if !ok || !key.Valid() {
		return
	}

	hold := kh.Hold
	if hold <= 0 {
		hold = KEY_HOLD
	}
	kh.count[key] = hold

	return
}

// Keys returns the held keys, and ages every hold by one poll.
func (kh *KeyHold) Keys() (pressed cpu.Keys) {
	for key, count := range kh.count {
		if count > 0 {
			pressed = pressed.With(cpu.Key(key))
			kh.count[key]--
		}
	}

	return
}

// Reset releases all keys.
func (kh *KeyHold) Reset() {
	clear(kh.count[:])
}
