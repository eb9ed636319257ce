package character

import (
	"context"
	"time"
)

// Backend stores the raw collection document under a single key
type Backend interface {
	// Load returns the stored document, or nil when the key is missing
	Load(ctx context.Context) ([]byte, error)

	// Transact reads the document, passes it to fn and writes fn's result
	// atomically. A nil result removes the key. If fn returns an error
	// nothing is written and that error is returned unchanged. at is the
	// write time for backends that record one.
	Transact(ctx context.Context, at time.Time, fn func(current []byte) ([]byte, error)) error
}
