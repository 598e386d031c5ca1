package keylock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLockSerialisesSameKey(t *testing.T) {
	l := New()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("product:1")
			defer unlock()
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Zero(t, l.Len())
}

func TestLockDifferentKeysDoNotBlock(t *testing.T) {
	l := New()
	unlockA := l.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := l.Lock("b")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on b blocked behind a")
	}
}

func TestLockMultiKeyOrderingAvoidsDeadlock(t *testing.T) {
	l := New()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			l.Lock("x", "y")()
		}()
		go func() {
			defer wg.Done()
			l.Lock("y", "x", "y")()
		}()
	}

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("multi-key locking deadlocked")
	}
	assert.Zero(t, l.Len())
}

func TestUnlockIsIdempotent(t *testing.T) {
	l := New()
	unlock := l.Lock("k")
	unlock()
	unlock()
	assert.Zero(t, l.Len())
}
