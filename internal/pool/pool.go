// Package pool provides a fixed-capacity worker pool with a bounded queue.
// When the queue is full, Submit runs the task on the calling goroutine
// instead of blocking or dropping it, so dispatch never grows unboundedly.
package pool

import "sync"

// Pool executes submitted tasks on a fixed number of workers.
type Pool struct {
	tasks chan func()
	wg    sync.WaitGroup
}

// New starts a pool with the given worker count and queue capacity.
// Non-positive values fall back to 1 worker / 0 queue slots.
func New(workers, queueSize int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	p := &Pool{tasks: make(chan func(), queueSize)}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer p.wg.Done()
			for task := range p.tasks {
				task()
			}
		}()
	}
	return p
}

// Submit enqueues a task, or executes it inline when the queue is full.
func (p *Pool) Submit(task func()) {
	select {
	case p.tasks <- task:
	default:
		task()
	}
}

// Close stops accepting tasks and waits for the workers to drain the queue.
func (p *Pool) Close() {
	close(p.tasks)
	p.wg.Wait()
}
