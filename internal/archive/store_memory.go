package archive

import (
	"context"
	"sort"
	"sync"
)

type memoryStore struct {
	mu    sync.RWMutex
	items map[string]Conversion
}

func NewInMemoryStore() Store {
	return &memoryStore{items: map[string]Conversion{}}
}

func (m *memoryStore) Put(_ context.Context, c Conversion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[c.ID] = c
	return nil
}

func (m *memoryStore) Get(_ context.Context, id string) (Conversion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.items[id]
	if !ok {
		return Conversion{}, ErrNotFound
	}
	return c, nil
}

func (m *memoryStore) List(_ context.Context, opts ListOpts) ([]Conversion, error) {
	opts = opts.normalized()
	m.mu.RLock()
	all := make([]Conversion, 0, len(m.items))
	for _, c := range m.items {
		if opts.Format != "" && c.Format != opts.Format {
			continue
		}
		all = append(all, c)
	}
	m.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt != all[j].CreatedAt {
			return all[i].CreatedAt > all[j].CreatedAt
		}
		return all[i].ID > all[j].ID
	})
	if opts.Offset >= len(all) {
		return []Conversion{}, nil
	}
	all = all[opts.Offset:]
	if len(all) > opts.Limit {
		all = all[:opts.Limit]
	}
	return all, nil
}
