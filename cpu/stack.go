package cpu

const (
	STACK_LIMIT = 16 // Maximum call depth
)

// Stack is the fixed-depth return address stack.
// Sp is the count of occupied slots.
type Stack struct {
	Data [STACK_LIMIT]uint16
	Sp   uint8
}

// Push a return address. Pushing onto a full stack is ignored; callers
// check Full first.
func (s *Stack) Push(value uint16) {
	if s.Full() {
		return
	}
	s.Data[s.Sp] = value
	s.Sp++
}

func (s *Stack) Pop() (value uint16, ok bool) {
	value, ok = s.Peek()
	if ok {
		s.Sp--
		s.Data[s.Sp] = 0
	}
	return
}

func (s *Stack) Empty() bool {
	return s.Sp == 0
}

func (s *Stack) Full() bool {
	return s.Sp == STACK_LIMIT
}

func (s *Stack) Peek() (value uint16, ok bool) {
	if s.Empty() {
		return
	}

	return s.Data[s.Sp-1], true
}

func (s *Stack) Reset() {
	clear(s.Data[:])
	s.Sp = 0
}
