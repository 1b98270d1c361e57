package rembed

import (
	"context"
	"runtime"
)

// worker runs jobs one at a time on a single locked OS thread.
type worker struct {
	jobs chan func()
	done chan struct{}
}

func newWorker() *worker {
	w := &worker{
		jobs: make(chan func()),
		done: make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *worker) loop() {
	// Never unlocked: the thread dies with the goroutine rather than being
	// handed back to the scheduler with runtime state attached.
	runtime.LockOSThread()
	defer close(w.done)
	for job := range w.jobs {
		job()
	}
}

// do runs fn on the worker thread and waits for it. ctx only bounds the
// wait for the worker to accept the job; a running job is never abandoned.
func (w *worker) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	select {
	case w.jobs <- func() { defer close(finished); fn() }:
	case <-ctx.Done():
		return ctx.Err()
	}
	<-finished
	return nil
}

// close stops the worker after pending jobs finish.
func (w *worker) close() {
	close(w.jobs)
	<-w.done
}
