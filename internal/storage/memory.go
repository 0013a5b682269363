package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const memoryPrefix = "memory://uploads/"

// MemoryStorage keeps files in process for demo mode and tests.
type MemoryStorage struct {
	mu    sync.Mutex
	files map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{files: make(map[string][]byte)}
}

func (m *MemoryStorage) Upload(_ context.Context, ext, _ string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	url := memoryPrefix + uuid.New().String() + ext
	m.files[url] = append([]byte(nil), data...)
	return url, nil
}

func (m *MemoryStorage) Delete(_ context.Context, fileURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !strings.HasPrefix(fileURL, memoryPrefix) {
		return fmt.Errorf("file %q is not held in memory", fileURL)
	}
	if _, ok := m.files[fileURL]; !ok {
		return fmt.Errorf("file %q not found", fileURL)
	}
	delete(m.files, fileURL)
	return nil
}

func (m *MemoryStorage) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}
