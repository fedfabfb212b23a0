package vm

import (
	"sync"

	"github.com/krehermann/evmasm/types"
)

type Key = types.Word

// State is contract storage. Unset keys read as zero.
type State struct {
	lock sync.RWMutex
	data map[Key]types.Word
}

func NewState() *State {
	return &State{
		data: make(map[Key]types.Word),
	}
}

func (s *State) Put(k Key, v types.Word) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if v.IsZero() {
		delete(s.data, k)
		return nil
	}
	s.data[k] = v
	return nil
}

func (s *State) Delete(k Key) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.data, k)
	return nil
}

func (s *State) Get(k Key) types.Word {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.data[k]
}

// Snapshot copies the non-zero slots.
func (s *State) Snapshot() map[Key]types.Word {
	s.lock.RLock()
	defer s.lock.RUnlock()
	out := make(map[Key]types.Word, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}
