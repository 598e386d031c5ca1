// Package keylock provides exclusive critical sections keyed by string.
package keylock

import (
	"sort"
	"sync"
)

type entry struct {
	mu   sync.Mutex
	refs int
}

// Locker hands out one mutex per key. Entries are dropped once no goroutine holds or waits on them.
type Locker struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func New() *Locker {
	return &Locker{entries: make(map[string]*entry)}
}

// Lock blocks until every key is held and returns the function that releases them.
// Keys are taken in sorted order so overlapping multi-key callers cannot deadlock.
func (l *Locker) Lock(keys ...string) (unlock func()) {
	keys = dedupe(keys)

	held := make([]*entry, 0, len(keys))
	for _, key := range keys {
		e := l.acquire(key)
		e.mu.Lock()
		held = append(held, e)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			for i := len(held) - 1; i >= 0; i-- {
				held[i].mu.Unlock()
				l.release(keys[i])
			}
		})
	}
}

func (l *Locker) acquire(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *Locker) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.entries[key]
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

// Len reports how many keys are currently held or awaited.
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func dedupe(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
