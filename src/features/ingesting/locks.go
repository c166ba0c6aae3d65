package ingesting

import "sync"

// pathLocks serializes ingestion per destination path: at most one
// in-flight ingestion may target a given path, while ingestions into
// different paths proceed independently.
type pathLocks struct {
	mu    sync.Mutex
	locks map[string]*pathLock
}

type pathLock struct {
	mu   sync.Mutex
	refs int
}

func newPathLocks() *pathLocks {
	return &pathLocks{locks: make(map[string]*pathLock)}
}

func (p *pathLocks) lock(key string) {
	p.mu.Lock()
	l, ok := p.locks[key]
	if !ok {
		l = &pathLock{}
		p.locks[key] = l
	}
	l.refs++
	p.mu.Unlock()

	l.mu.Lock()
}

func (p *pathLocks) unlock(key string) {
	p.mu.Lock()
	l := p.locks[key]
	l.refs--
	if l.refs == 0 {
		delete(p.locks, key)
	}
	p.mu.Unlock()

	l.mu.Unlock()
}
