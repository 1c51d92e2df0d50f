/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)  Consult jacobin.org.
 */

// Package sched is the cooperative executor of spec.md §5: "Single-threaded
// cooperative. There is exactly one logical execution thread at a time."
// Grounded on the teacher's synchronous, single-goroutine boot sequencing
// (jvm/initializerBlock.go's runInitializationBlock, which is plain
// sequential Go with error returns, no goroutines), re-architected per
// spec.md §9's design note into the uniform Pending{resume, fail} shape the
// original TypeScript source expressed as callback pairs.
package sched

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// OnResume and OnException are the two continuations spec.md §5 describes:
// "exactly one is invoked, exactly once."
type OnResume func(value interface{})
type OnException func(err error)

// Executor enforces "exactly one logical thread at a time" via a
// binary-weighted semaphore, and drains scheduled work to quiescence,
// surfacing the first failure, via an errgroup -- the same pairing the
// pack's worker-pool code (NVIDIA/aistore's mpather jogger,
// kralicky/protocompile's compiler) uses for a bounded single-flight
// pipeline.
type Executor struct {
	sem *semaphore.Weighted
}

// New returns a ready Executor.
func New() *Executor {
	return &Executor{sem: semaphore.NewWeighted(1)}
}

// RunUntilFinished is spec.md §6's run_until_finished(work, topLevel, doneCb):
// it acquires the single logical thread, runs work to completion, and
// reports success or failure. The semaphore makes concurrent calls queue
// rather than interleave. It is not reentrant: the slot stays held while
// work runs, so a RunUntilFinished call on the same Executor from inside
// work blocks until its ctx is done, and an AsyncOp started from inside work
// runs only after work has returned.
func (e *Executor) RunUntilFinished(ctx context.Context, work func(ctx context.Context) error) error {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer e.sem.Release(1)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return work(gctx) })
	return g.Wait()
}

// AsyncOp is spec.md §6's async_op(resumeCb, exceptCb): schedules op to run
// on the executor and delivers its outcome through exactly one of resume or
// except, exactly once, never both.
func (e *Executor) AsyncOp(ctx context.Context, op func(ctx context.Context) (interface{}, error), resume OnResume, except OnException) {
	go func() {
		ran := false
		err := e.RunUntilFinished(ctx, func(ctx context.Context) error {
			ran = true
			v, err := op(ctx)
			if err != nil {
				except(err)
				return err
			}
			resume(v)
			return nil
		})
		// The slot was never acquired (ctx done first): op did not run, so
		// report that failure through except.
		if !ran {
			except(err)
		}
	}()
}
