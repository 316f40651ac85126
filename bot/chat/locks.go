package chat

import "sync"

// SenderLocks serializes event handling per sender inside one process.
// Entries are dropped once no goroutine holds or waits for them.
type SenderLocks struct {
	mu    sync.Mutex
	locks map[string]*senderLock
}

type senderLock struct {
	mu   sync.Mutex
	refs int
}

func NewSenderLocks() *SenderLocks {
	return &SenderLocks{locks: make(map[string]*senderLock)}
}

// Lock blocks until the sender is free and returns the unlock function.
func (l *SenderLocks) Lock(userID string) func() {
	l.mu.Lock()
	entry, ok := l.locks[userID]
	if !ok {
		entry = &senderLock{}
		l.locks[userID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}

func (l *SenderLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
