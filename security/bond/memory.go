package bond

import (
	"sync"

	"github.com/rigado/bredr"
)

type memory struct {
	lock  sync.RWMutex
	bonds map[bredr.Address]Bond
}

// NewMemoryStore returns a Store that forgets everything on exit.
func NewMemoryStore() Store {
	return &memory{bonds: map[bredr.Address]Bond{}}
}

func (m *memory) Load() ([]Bond, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	out := make([]Bond, 0, len(m.bonds))
	for _, b := range m.bonds {
		out = append(out, b)
	}
	return out, nil
}

func (m *memory) Find(a bredr.Address) (Bond, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	b, ok := m.bonds[a]
	if !ok {
		return Bond{}, NotFoundError{a}
	}
	return b, nil
}

func (m *memory) Save(b Bond) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.bonds[b.Address.Address] = b
	return nil
}

func (m *memory) Delete(a bredr.Address) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if _, ok := m.bonds[a]; !ok {
		return NotFoundError{a}
	}
	delete(m.bonds, a)
	return nil
}
