package importer

import "sync/atomic"

// ImportLock admits one import at a time without blocking. The holder's
// source path is kept so a rejected caller can say what is running.
type ImportLock struct {
	holder atomic.Pointer[string]
}

// TryAcquire takes the lock for source, or returns false and the current
// holder's source
func (l *ImportLock) TryAcquire(source string) (bool, string) {
	if l.holder.CompareAndSwap(nil, &source) {
		return true, ""
	}
	if cur := l.holder.Load(); cur != nil {
		return false, *cur
	}
	// Released between the swap and the load
	return l.TryAcquire(source)
}

// Holder returns the source being imported, or "" when idle
func (l *ImportLock) Holder() string {
	if cur := l.holder.Load(); cur != nil {
		return *cur
	}
	return ""
}

// Release frees the lock. Only the acquiring goroutine may call it.
func (l *ImportLock) Release() {
	l.holder.Store(nil)
}
