package character

import (
	"context"
	"sync"
	"time"

	"github.com/KirkDiggler/spell-planner/internal/pkg/clock"
)

// NewMemory creates a process-local character repository
func NewMemory(c clock.Clock) Repository {
	repo, _ := New(&Config{Backend: &memoryBackend{}, Clock: c})
	return repo
}

type memoryBackend struct {
	mu   sync.Mutex
	data []byte
}

func (b *memoryBackend) Load(_ context.Context) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data == nil {
		return nil, nil
	}
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out, nil
}

func (b *memoryBackend) Transact(ctx context.Context, _ time.Time, fn func(current []byte) ([]byte, error)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	next, err := fn(b.data)
	if err != nil {
		return err
	}
	b.data = next
	return nil
}
