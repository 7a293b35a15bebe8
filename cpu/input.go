package cpu

import (
	"iter"
	"math/bits"
)

const (
	KEY_COUNT = 16
	KEY_NONE  = Key(-1) // No key.
)

// Key is a logical keypad code, 0x0 to 0xF.
type Key int8

// Valid returns true for the sixteen keypad codes.
func (k Key) Valid() bool {
	return k >= 0 && k < KEY_COUNT
}

// Keys is the set of pressed keys, one bit per key code.
type Keys uint16

// MakeKeys builds a set from key codes. Invalid codes are ignored.
func MakeKeys(keys ...Key) (ks Keys) {
	for _, k := range keys {
		ks = ks.With(k)
	}
	return
}

func (ks Keys) Contains(k Key) bool {
	if !k.Valid() {
		return false
	}
	return ks&(1<<k) != 0
}

func (ks Keys) With(k Key) Keys {
	if !k.Valid() {
		return ks
	}
	return ks | (1 << k)
}

func (ks Keys) Without(k Key) Keys {
	if !k.Valid() {
		return ks
	}
	return ks &^ (1 << k)
}

// All iterates the pressed keys in ascending order.
func (ks Keys) All() iter.Seq[Key] {
	return func(yield func(Key) bool) {
		for set := uint16(ks); set != 0; set &= set - 1 {
			if !yield(Key(bits.TrailingZeros16(set))) {
				return
			}
		}
	}
}

// InputLatch remembers the previous key snapshot so that a key release can
// be detected between two cycles.
type InputLatch struct {
	Previous Keys
}

// Latch records the current snapshot and returns the key that was released
// since the previous one. When several keys were released at once the
// lowest code wins. Returns KEY_NONE if nothing was released.
func (il *InputLatch) Latch(pressed Keys) (released Key) {
	gone := il.Previous &^ pressed
	il.Previous = pressed

	if gone == 0 {
		return KEY_NONE
	}

	return Key(bits.TrailingZeros16(uint16(gone)))
}

func (il *InputLatch) Reset() {
	il.Previous = 0
}
