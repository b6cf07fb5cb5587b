package storage

import "sync"

// MemoryProvider 是测试用的内存存储
type MemoryProvider struct {
	mu        sync.RWMutex
	documents map[string]string
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		documents: make(map[string]string),
	}
}

func (p *MemoryProvider) Get(key string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	value, ok := p.documents[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

func (p *MemoryProvider) Set(key string, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.documents[key] = value
	return nil
}

func (p *MemoryProvider) Remove(key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.documents, key)
	return nil
}
