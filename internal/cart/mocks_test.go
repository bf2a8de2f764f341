package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/fjod/yofoo_cart/internal/storage"
)

var errDiskFull = errors.New("disk full")

// FailingStorage implements storage.Storage and fails every write
type FailingStorage struct {
	mu       sync.Mutex
	SetCalls int
	GetData  []byte
	GetErr   error
}

func (f *FailingStorage) Get(_ context.Context, _ string) ([]byte, error) {
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	if f.GetData == nil {
		return nil, storage.ErrNotFound
	}
	return f.GetData, nil
}

func (f *FailingStorage) Set(_ context.Context, _ string, _ []byte) error {
	f.mu.Lock()
	f.SetCalls++
	f.mu.Unlock()
	return errDiskFull
}

func (f *FailingStorage) Delete(_ context.Context, _ string) error {
	return errDiskFull
}

// BlockingStorage holds every Set until release is closed, counting writes.
type BlockingStorage struct {
	*storage.Memory
	release chan struct{}
	mu      sync.Mutex
	writes  int
}

func NewBlockingStorage() *BlockingStorage {
	return &BlockingStorage{Memory: storage.NewMemory(), release: make(chan struct{})}
}

func (b *BlockingStorage) Set(ctx context.Context, key string, value []byte) error {
	<-b.release
	b.mu.Lock()
	b.writes++
	b.mu.Unlock()
	return b.Memory.Set(ctx, key, value)
}

func (b *BlockingStorage) Writes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes
}
