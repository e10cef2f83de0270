package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
)

// memStore is an in-memory Store. failPut makes Put fail for matching areas.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut map[string]bool
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}, failPut: map[string]bool{}}
}

func (m *memStore) Put(_ context.Context, area, name string, r io.Reader, _ int64, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut[area] {
		return errors.New("disk full")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[area+"/"+name] = data
	return nil
}

func (m *memStore) Open(_ context.Context, area, name string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[area+"/"+name]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, area, name)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStore) Remove(_ context.Context, area, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := area + "/" + name
	if _, ok := m.objects[key]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	delete(m.objects, key)
	return nil
}

func (m *memStore) List(_ context.Context, area string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var names []string
	for key := range m.objects {
		if len(key) > len(area) && key[:len(area)+1] == area+"/" {
			names = append(names, key[len(area)+1:])
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *memStore) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
