package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStack_Push(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	assert.True(s.Empty())
	assert.False(s.Full())

	s.Push(0x234)
	assert.False(s.Empty())
	assert.Equal(uint8(1), s.Sp)
	assert.Equal(uint16(0x234), s.Data[0])
}

func TestStack_Pop(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	s.Push(0x202)
	s.Push(0x3fe)

	val, ok := s.Pop()
	assert.True(ok)
	assert.Equal(uint16(0x3fe), val)
	assert.Equal(uint8(1), s.Sp)

	val, ok = s.Pop()
	assert.True(ok)
	assert.Equal(uint16(0x202), val)
	assert.True(s.Empty())
}

func TestStack_Pop_Empty(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	val, ok := s.Pop()
	assert.False(ok)
	assert.Equal(uint16(0), val)
	assert.Equal(uint8(0), s.Sp)
}

func TestStack_Peek(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	s.Push(0x202)
	s.Push(0x3fe)

	val, ok := s.Peek()
	assert.True(ok)
	assert.Equal(uint16(0x3fe), val)
	assert.Equal(uint8(2), s.Sp)
}

func TestStack_Capacity(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}

	for i := 0; i < STACK_LIMIT; i++ {
		assert.False(s.Full())
		s.Push(uint16(0x200 + i*2))
	}

	assert.True(s.Full())
	assert.Equal(uint8(STACK_LIMIT), s.Sp)

	// Overflowing push leaves the stack untouched.
	s.Push(0xfff)
	assert.Equal(uint8(STACK_LIMIT), s.Sp)
	val, _ := s.Peek()
	assert.Equal(uint16(0x200+(STACK_LIMIT-1)*2), val)
}

func TestStack_Reset(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	s.Push(0x202)
	s.Push(0x204)

	s.Reset()
	assert.True(s.Empty())
	assert.Equal(uint16(0), s.Data[0])
}
