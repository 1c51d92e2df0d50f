/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)  Consult jacobin.org.
 */

// Package dispatch binds a parsed classmember.Method to exactly one
// callable body (spec.md §4.4, component C4): trapped, native-lookup thunk,
// inert NOP, or bytecode. Grounded on the teacher's gfunction package (the
// MethodSignatures registry shape) for the native-lookup convention, and on
// classloader.go's method-parsing call sites for where resolution slots in
// right after classmember.ParseMethod.
package dispatch

import (
	"jacobin/classmember"
	"jacobin/excNames"
	"jacobin/sched"

	"github.com/pkg/errors"
)

// NativeFunc aliases the shared native-function shape (sched.NativeFunc ==
// classmember.NativeFunc).
type NativeFunc = sched.NativeFunc

// Registry is the external native registry spec.md §4.4 step 2 consults:
// "queries the external native registry for (ownerInternalClassName,
// name+rawDescriptor)". The concrete registered JCL native methods are out
// of scope (Non-goal: rewriting the reference Java Class Library); this
// core only defines the lookup contract the deferred binder uses.
type Registry interface {
	Lookup(owner, nameAndDescriptor string) (NativeFunc, bool)
}

// Resolve runs the resolution cascade of spec.md §4.4 exactly once against
// m, selecting m's code variant. owner is m's defining class's internal
// name (spec.md's ownerInternalClassName); registry is consulted only for
// genuinely native, non-exempt methods.
func Resolve(m *classmember.Method, owner string, registry Registry) error {
	nameAndDesc := m.Name + m.RawDescriptor

	// Step 1: trapped override. Installed regardless of the method's own
	// NATIVE flag, and forces accessFlags.NATIVE := true.
	if trap, ok := lookupTrap(owner, nameAndDesc); ok {
		m.AccessFlags.Set(classmember.FlagNative)
		return m.SetNativeFunction(trap)
	}

	// Step 2: native placeholder.
	if m.AccessFlags.Has(classmember.FlagNative) {
		if nameAndDesc == "registerNatives()V" || nameAndDesc == "initIDs()V" {
			return m.SetNativeFunction(nopFunc)
		}
		return m.SetNativeFunction(deferredBinder(m, owner, nameAndDesc, registry))
	}

	// Step 3: abstract. code stays unset; nothing to install.
	if m.AccessFlags.Has(classmember.FlagAbstract) {
		return nil
	}

	// Step 4: bytecode.
	codeAttr, ok := m.GetAttribute("Code")
	if !ok {
		return errors.Errorf("dispatch: method %s is neither trapped, native, nor abstract, but has no Code attribute", m.FullSignature())
	}
	return m.SetBytecode(codeAttr)
}

func nopFunc(_ sched.Thread, _ []interface{}) (interface{}, error) {
	return nil, nil
}

// deferredBinder implements spec.md §4.4 step 2's unbound native body: on
// first invocation it queries registry, throwing UnsatisfiedLinkError if
// absent, else memoizing the resolved function onto m (so subsequent calls
// skip the registry entirely) and tail-calling it. This is the "binder
// variant transitions once to the native variant on first call" of
// spec.md §9.
func deferredBinder(m *classmember.Method, owner, nameAndDesc string, registry Registry) NativeFunc {
	return func(thread sched.Thread, args []interface{}) (interface{}, error) {
		fn, ok := registry.Lookup(owner, nameAndDesc)
		if !ok {
			return nil, thread.Throw(excNames.UnsatisfiedLinkError, owner+"::"+nameAndDesc)
		}
		m.RebindNativeFunction(fn)
		return fn(thread, args)
	}
}
