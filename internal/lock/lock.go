// Package lock provides the non-blocking, non-reentrant guard that serializes
// every operation mutating the bookmark tree. The guard is per process;
// separate bbs processes sharing a tree file are not excluded.
package lock

import (
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

// ErrContention is returned by callers that surface a failed acquisition.
var ErrContention = errors.New("operation in progress")

// OperationLock is a single held/free flag. Acquisition never blocks and
// never queues; the loser is expected to skip or fail immediately.
//
// The zero value is an unlocked lock.
type OperationLock struct {
	held atomic.Bool
}

// TryAcquire marks the lock held and returns true if it was free.
// It returns false without side effects when the lock is already held,
// including when the caller itself holds it.
func (l *OperationLock) TryAcquire() bool {
	return l.held.CompareAndSwap(false, true)
}

// Release clears the held flag unconditionally.
func (l *OperationLock) Release() {
	l.held.Store(false)
}

// Held reports whether the lock is currently held.
func (l *OperationLock) Held() bool {
	return l.held.Load()
}
