/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)  Consult jacobin.org.
 */

// Package launch composes the boot sequence of spec.md §4.7 (component C7):
// preinitialize core classes -> init threads -> init system class -> load
// main class -> look up main -> call main, cooperatively. Grounded on
// jvm/initializerBlock.go's runInitializationBlock: the same superclass
// ordering/status-transition discipline (ClInitInProgress/ClInitRun there,
// here modeled as the Runtime collaborator's responsibility), generalized
// from "run one class's <clinit>" to the full multi-step boot composed over
// jacobin/sched.
package launch

import (
	"context"

	"jacobin/classmember"
	"jacobin/globals"
	"jacobin/sched"
	"jacobin/trace"

	"github.com/pkg/errors"
)

// ClassHandle is the loaded, initialized class the Runtime hands back once
// the target class has been initialized -- just enough surface for Run to
// look up and invoke main.
type ClassHandle interface {
	InternalName() string
	FindMethod(name, descriptor string) (*classmember.Method, bool)
}

// Runtime is spec.md §6's "Runtime scheduler" collaborator:
// preinitialize_core_classes(ok, fail), init_threads, init_system_class,
// init_args, get_bs_cl(), plus the class-loader collaborator
// initializeClass(thread, descriptor, ok, fail) the boot sequence's step 4
// needs. All of it is external per spec.md §1 -- the bytecode interpreter,
// GC-less heap, and JCL that would implement these live outside this core.
type Runtime interface {
	PreinitializeCoreClasses(ctx context.Context) error
	InitThreads(ctx context.Context) error
	InitSystemClass(ctx context.Context) error
	InitializeClass(ctx context.Context, descriptor string) (ClassHandle, error)
	SetCmdlineArgs(args []string)
}

// Invoker is the frame-setup collaborator spec.md §4.7 step 4 needs:
// "cooperatively set up an invocation frame for main."
type Invoker interface {
	InvokeMain(ctx context.Context, class ClassHandle, main *classmember.Method, args []string) error
}

// Run executes spec.md §4.7's boot sequence. completion, if non-nil, is
// called once on full success and on every path that stops silently
// (initThreads, initSystemClass or target-class initialization failing, or
// no main method); Run then returns nil. When Run returns an error
// (preinitialization failure, an executor failure in step 4, or a failed
// main invocation), completion is not called.
// Each numbered step runs inside its own sched.Executor.RunUntilFinished
// scope (spec.md §4.7: "performed inside a run until finished scope").
func Run(ctx context.Context, ex *sched.Executor, rt Runtime, inv Invoker, className string, cmdlineArgs []string, completion func()) error {
	notify := func() {
		if completion != nil {
			completion()
		}
	}

	// Step 1: preinitialize core classes. Fatal on failure.
	if err := ex.RunUntilFinished(ctx, rt.PreinitializeCoreClasses); err != nil {
		return errors.Wrap(err, "launch: preinitializing core classes")
	}

	// Step 2: init threads. Stop silently on failure -- the failure has
	// already been surfaced to the user via the thread.
	if err := ex.RunUntilFinished(ctx, rt.InitThreads); err != nil {
		trace.Error("launch: initThreads failed: " + err.Error())
		notify()
		return nil
	}

	// Step 3: init system class, only if not already marked initialized.
	if !globals.GetGlobalRef().IsSystemInitialized() {
		if err := ex.RunUntilFinished(ctx, rt.InitSystemClass); err != nil {
			trace.Error("launch: initSystemClass failed: " + err.Error())
			notify()
			return nil
		}
		globals.GetGlobalRef().MarkSystemInitialized()
	}

	// Step 4: initialize the target class, then look up and invoke main.
	var class ClassHandle
	var stepErr error
	if err := ex.RunUntilFinished(ctx, func(ctx context.Context) error {
		c, err := rt.InitializeClass(ctx, "L"+className+";")
		if err != nil {
			stepErr = err
			return nil
		}
		class = c
		return nil
	}); err != nil {
		return errors.Wrapf(err, "launch: initializing class %s", className)
	}
	if stepErr != nil {
		trace.Error("launch: initializing " + className + " failed: " + stepErr.Error())
		notify()
		return nil
	}

	rt.SetCmdlineArgs(cmdlineArgs)

	main, ok := class.FindMethod("main", "([Ljava/lang/String;)V")
	if !ok {
		notify()
		return nil
	}

	if err := ex.RunUntilFinished(ctx, func(ctx context.Context) error {
		return inv.InvokeMain(ctx, class, main, cmdlineArgs)
	}); err != nil {
		return errors.Wrap(err, "launch: invoking main")
	}
	notify()
	return nil
}
