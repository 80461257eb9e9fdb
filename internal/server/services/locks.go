package services

import "sync"

// UserLocks hands out one mutex per user id. Entries are reference counted
// and dropped when the last holder unlocks, so the map only holds ids that
// are in use.
type UserLocks struct {
	mu    sync.Mutex
	locks map[int64]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func NewUserLocks() *UserLocks {
	return &UserLocks{locks: map[int64]*userLock{}}
}

// Lock blocks until the caller holds the lock for id and returns the
// function that releases it.
func (l *UserLocks) Lock(id int64) (unlock func()) {
	l.mu.Lock()
	ul, ok := l.locks[id]
	if !ok {
		ul = &userLock{}
		l.locks[id] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()

	return func() {
		ul.mu.Unlock()

		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

func (l *UserLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
