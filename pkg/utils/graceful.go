package utils

import (
	"context"
	"sync"
)

// GracefulContext - a context which additionally tracks child runners so that
// cancellation waits until every child finished its cleanup
type GracefulContext interface {
	context.Context

	// RunAsChild - runs callback in a go routine bound to this context
	RunAsChild(callback func(GracefulContext)) GracefulRunner

	// Fail - marks the run as failed, reported by GracefulRunner.Wait
	Fail(err error)
}

// GracefulRunner - handle of a running graceful routine
type GracefulRunner interface {
	// Wait - waits until the routine and all of its children exit
	Wait() error

	// Cancel - requests cancellation and waits for the cleanup
	Cancel() error
}

// RunWithGracefulCancel - runs callback as a go routine and returns its runner
// This is inspired by context but with the key difference that the cancel function waits until
// the handler finishes all the cleanup
// @see https://blog.golang.org/context
func RunWithGracefulCancel(callback func(GracefulContext)) GracefulRunner {
	return runGraceful(context.Background(), callback)
}

type gracefulCtx struct {
	context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	errMutex sync.Mutex
	err      error
}

type gracefulRunner struct {
	ctx   *gracefulCtx
	doneC chan struct{}
}

func runGraceful(parent context.Context, callback func(GracefulContext)) *gracefulRunner {
	ctx, cancel := context.WithCancel(parent)

	runner := &gracefulRunner{
		ctx:   &gracefulCtx{Context: ctx, cancel: cancel},
		doneC: make(chan struct{}),
	}

	go func() {
		callback(runner.ctx)
		runner.ctx.wg.Wait()
		close(runner.doneC)
	}()

	return runner
}

func (c *gracefulCtx) RunAsChild(callback func(GracefulContext)) GracefulRunner {
	c.wg.Add(1)
	child := runGraceful(c.Context, callback)

	go func() {
		child.Wait()
		c.wg.Done()
	}()

	return child
}

func (c *gracefulCtx) Fail(err error) {
	c.errMutex.Lock()
	if c.err == nil {
		c.err = err
	}
	c.errMutex.Unlock()
}

func (c *gracefulCtx) failure() error {
	c.errMutex.Lock()
	defer c.errMutex.Unlock()
	return c.err
}

func (r *gracefulRunner) Wait() error {
	<-r.doneC
	return r.ctx.failure()
}

func (r *gracefulRunner) Cancel() error {
	r.ctx.cancel()
	return r.Wait()
}
