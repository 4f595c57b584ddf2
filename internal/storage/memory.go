package storage

import "sync"

// MemoryPrefs is a process-local Prefs. Nothing survives a restart.
type MemoryPrefs struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryPrefs() *MemoryPrefs {
	return &MemoryPrefs{values: make(map[string]string)}
}

func (p *MemoryPrefs) GetString(key string) (string, bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[key]
	return v, ok, nil
}

func (p *MemoryPrefs) PutString(key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[key] = value
	return nil
}

func (p *MemoryPrefs) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	clear(p.values)
	return nil
}
