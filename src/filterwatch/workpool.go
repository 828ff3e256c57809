// Copyright (c) 2026 Sepehrz All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package filterwatch

import (
	"errors"
	"sync"
)

// Sentinel reasons a task submission can be refused.
var (
	errPoolClosed   = errors.New("filterwatch: worker pool closed")
	errPoolCanceled = errors.New("filterwatch: probe canceled while queued")
)

// workPool runs submitted tasks on a fixed set of goroutines. DNS
// exchanges block at the library layer, so the pool caps how many are
// in flight at once: a fixed number of workers services an arbitrarily
// larger number of admitted checks. The pool size and the admission
// limit are independent knobs; the pool must be at least twice the
// admission limit because every admitted check runs two probes
// concurrently.
type workPool struct {
	tasks chan func()
	quit  chan struct{}

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// newWorkPool starts size worker goroutines.
func newWorkPool(size int) *workPool {
	if size < 1 {
		size = 1
	}
	p := &workPool{
		tasks: make(chan func()),
		quit:  make(chan struct{}),
	}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-p.quit:
					return
				case task := <-p.tasks:
					task()
				}
			}
		}()
	}
	return p
}

// submit queues fn for execution on a worker, blocking until a worker
// accepts it, the caller's done channel closes, or the pool shuts down.
func (p *workPool) submit(done <-chan struct{}, fn func()) error {
	select {
	case p.tasks <- fn:
		return nil
	case <-done:
		return errPoolCanceled
	case <-p.quit:
		return errPoolClosed
	}
}

// close stops the workers and waits for in-flight tasks to finish.
// Queued submissions that no worker picked up are refused.
func (p *workPool) close() {
	p.closeOnce.Do(func() { close(p.quit) })
	p.wg.Wait()
}
