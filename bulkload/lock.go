package bulkload

import (
	"context"
	"fmt"
	"sync"

	"github.com/code19m/errx"
)

// CodeInProgress is returned when another batch for the same key is running.
const CodeInProgress = "BULK_LOAD_IN_PROGRESS"

// Locker serializes batches that load the same entity.
type Locker interface {
	// TryLock acquires key without waiting. The returned func releases it.
	TryLock(ctx context.Context, key string) (unlock func(), err error)
}

// ErrInProgress builds the error reported when key is already locked.
func ErrInProgress(key string) error {
	return errx.New(
		fmt.Sprintf("a bulk load for %s is already in progress", key),
		errx.WithCode(CodeInProgress),
		errx.WithType(errx.T_Conflict),
	)
}

var _ Locker = (*LocalLocker)(nil)

// LocalLocker is a Locker for a single process.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocalLocker creates a LocalLocker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]struct{})}
}

func (l *LocalLocker) TryLock(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[key]; ok {
		return nil, ErrInProgress(key)
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, nil
}
