package io

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/chip8/cpu"
)

func TestDefaultKeymap(t *testing.T) {
	assert := assert.New(t)

	km := DefaultKeymap()

	table := map[byte]cpu.Key{
		'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
		'q': 0x4, 'W': 0x5, 'e': 0x6, 'R': 0xD,
		'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
		'z': 0xA, 'x': 0x0, 'C': 0xB, 'v': 0xF,
	}
	for b, key := range table {
		assert.Equal(key, km[b], string(b))
	}

	_, ok := km['5']
	assert.False(ok)

	// Every key is reachable.
	var all cpu.Keys
	for _, key := range km {
		all = all.With(key)
	}
	assert.Equal(cpu.Keys(0xffff), all)
}

func TestKeyHold(t *testing.T) {
	assert := assert.New(t)

	kh := &KeyHold{Hold: 2}

	assert.NoError(kh.Feed('w'))
	assert.NoError(kh.Feed('5'))
	assert.Equal(cpu.MakeKeys(0x5), kh.Keys())

	assert.NoError(kh.Feed('x'))
	assert.Equal([]cpu.Key{0x0, 0x5}, slices.Collect(kh.Keys().All()))
	assert.Equal(cpu.MakeKeys(0x0), kh.Keys())
	assert.Equal(cpu.Keys(0), kh.Keys())

	assert.NoError(kh.Feed('v'))
	kh.Reset()
	assert.Equal(cpu.Keys(0), kh.Keys())
}

func TestKeyHold_Default(t *testing.T) {
	assert := assert.New(t)

	kh := &KeyHold{}
	assert.NoError(kh.Feed('q'))
	for range KEY_HOLD {
		assert.Equal(cpu.MakeKeys(0x4), kh.Keys())
	}
	assert.Equal(cpu.Keys(0), kh.Keys())
}

func TestKeyHold_Control(t *testing.T) {
	assert := assert.New(t)

	kh := &KeyHold{Keymap: Keymap{'j': 0x8, 'k': cpu.KEY_NONE}}

	assert.NoError(kh.Feed('k'))
	assert.NoError(kh.Feed('q'))
	assert.NoError(kh.Feed('j'))
	assert.ErrorIs(kh.Feed(BYTE_RESTART), ErrRestart)
	assert.Equal(cpu.Keys(0), kh.Keys())

	assert.ErrorIs(kh.Feed(BYTE_QUIT), ErrQuit)
	assert.ErrorIs(kh.Feed(BYTE_CTRL_C), ErrQuit)
}
