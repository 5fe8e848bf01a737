package pool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPool_RunsAllTasks(t *testing.T) {
	p := New(4, 8)
	var count int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		p.Submit(func() {
			atomic.AddInt64(&count, 1)
			wg.Done()
		})
	}
	wg.Wait()
	p.Close()
	if count != 100 {
		t.Errorf("expected 100 tasks executed, got %d", count)
	}
}

func TestPool_SaturationRunsInline(t *testing.T) {
	// One worker blocked forever, zero queue slots: the second submit must
	// execute on the calling goroutine.
	block := make(chan struct{})
	defer close(block)

	p := New(1, 0)
	// Let the worker park on the queue before handing it the blocker.
	time.Sleep(10 * time.Millisecond)

	started := make(chan struct{})
	p.Submit(func() { close(started); <-block })
	<-started

	done := make(chan struct{})
	go func() {
		p.Submit(func() {})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Submit blocked on a saturated pool instead of running inline")
	}
}

func TestPool_CloseDrainsQueue(t *testing.T) {
	p := New(2, 16)
	var count int64
	for i := 0; i < 10; i++ {
		p.Submit(func() { atomic.AddInt64(&count, 1) })
	}
	p.Close()
	if count != 10 {
		t.Errorf("expected 10 tasks drained before Close returned, got %d", count)
	}
}
