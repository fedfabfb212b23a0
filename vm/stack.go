package vm

import (
	"errors"
	"fmt"
	"sync"

	"github.com/krehermann/evmasm/types"
)

var (
	ErrStackOverflow  = errors.New("stack overflow")
	ErrStackUnderflow = errors.New("stack underflow")
)

type Stack struct {
	lock sync.RWMutex
	data []types.Word
	ptr  int

	depth int
}

type StackOpt func(*Stack) *Stack

func MaxStack(max int) StackOpt {
	return func(s *Stack) *Stack {
		s.depth = max
		return s
	}
}

func NewStack(opts ...StackOpt) *Stack {
	s := &Stack{
		ptr:   0,
		depth: 1024,
	}
	for _, opt := range opts {
		s = opt(s)
	}
	s.data = make([]types.Word, s.depth)
	return s
}

func (s *Stack) Push(w types.Word) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.ptr == s.depth {
		return ErrStackOverflow
	}

	s.data[s.ptr] = w
	s.ptr += 1

	return nil
}

func (s *Stack) Pop() (types.Word, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.ptr == 0 {
		return types.Word{}, ErrStackUnderflow
	}

	// ptr is at the next write slot, one ahead of the read slot
	w := s.data[s.ptr-1]
	s.ptr -= 1

	return w, nil
}

// PopN pops n words, top of stack first.
func (s *Stack) PopN(n int) ([]types.Word, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.ptr < n {
		return nil, fmt.Errorf("pop %d of %d: %w", n, s.ptr, ErrStackUnderflow)
	}

	out := make([]types.Word, n)
	for i := range out {
		out[i] = s.data[s.ptr-1-i]
	}
	s.ptr -= n
	return out, nil
}

func (s *Stack) Empty() bool {
	return s.Len() == 0
}

func (s *Stack) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.ptr
}

func (s *Stack) Peek() (types.Word, error) {
	return s.Back(0)
}

// Back returns the word n slots below the top.
func (s *Stack) Back(n int) (types.Word, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	pos := s.ptr - 1 - n
	if n < 0 || pos < 0 {
		return types.Word{}, fmt.Errorf("read out of range len %d, pos %d: %w", s.ptr, pos, ErrStackUnderflow)
	}
	return s.data[pos], nil
}

// Dup pushes a copy of the n-th word from the top, 1 being the top.
func (s *Stack) Dup(n int) error {
	w, err := s.Back(n - 1)
	if err != nil {
		return err
	}
	return s.Push(w)
}

// Swap exchanges the top with the word n slots below it.
func (s *Stack) Swap(n int) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if n < 1 || s.ptr < n+1 {
		return fmt.Errorf("swap%d with len %d: %w", n, s.ptr, ErrStackUnderflow)
	}
	top := s.ptr - 1
	s.data[top], s.data[top-n] = s.data[top-n], s.data[top]
	return nil
}

// Words returns a copy of the stack, bottom first.
func (s *Stack) Words() []types.Word {
	s.lock.RLock()
	defer s.lock.RUnlock()
	out := make([]types.Word, s.ptr)
	copy(out, s.data[:s.ptr])
	return out
}
