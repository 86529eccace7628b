package worker

import (
	"context"
	"log"
	"runtime"
	"sync"

	"spellpaste/src/spell"
)

// Task is one spell invocation bound to its inputs.
type Task func(ctx context.Context) (spell.Result, error)

// ResultCallback is invoked on completion (from a worker goroutine).
// The event loop should pass a closure that posts back into the loop safely.
type ResultCallback func(res spell.Result, err error)

// Pool is a fixed-size invocation pool with a 1-slot input queue
// (strict back-pressure: a busy pool drops instead of queueing).
type Pool struct {
	jobs chan job
	wg   sync.WaitGroup
}

type job struct {
	ctx  context.Context
	task Task
	cb   ResultCallback
}

// New creates a worker pool. Size defaults to NumCPU when size<=0. Queue is 1 slot.
func New(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	p := &Pool{jobs: make(chan job, 1)}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				res, err := runTask(j.ctx, j.task)
				log.Printf("Worker: invocation completed, mode=%d err=%v", res.Mode, err)
				j.cb(res, err)
			}
		}()
	}
}

// Submit enqueues an invocation if the single-slot queue is free.
// Returns false if dropped.
func (p *Pool) Submit(ctx context.Context, task Task, cb ResultCallback) bool {
	select {
	case p.jobs <- job{ctx: ctx, task: task, cb: cb}:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining current work.
func (p *Pool) Close() {
	close(p.jobs)
	p.wg.Wait()
}

// runTask short-circuits tasks whose context is already cancelled; running
// tasks are not interrupted (a spell runs to its natural completion).
func runTask(ctx context.Context, task Task) (spell.Result, error) {
	select {
	case <-ctx.Done():
		return spell.Result{}, ctx.Err()
	default:
	}
	return task(ctx)
}
