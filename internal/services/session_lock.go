package services

import "sync"

// sessionLocks serializes load-modify-save per session id within this
// process. Entries are dropped once no caller holds or waits on them.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	sync.Mutex
	refs int
}

// lock blocks until sid is free and returns the matching unlock.
func (l *sessionLocks) lock(sid string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = map[string]*sessionLock{}
	}
	sl := l.locks[sid]
	if sl == nil {
		sl = &sessionLock{}
		l.locks[sid] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.Lock()
	return func() {
		sl.Unlock()
		l.mu.Lock()
		if sl.refs--; sl.refs == 0 {
			delete(l.locks, sid)
		}
		l.mu.Unlock()
	}
}

// held reports how many sessions have a holder or waiter. Tests use it to
// check entries are released.
func (l *sessionLocks) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
