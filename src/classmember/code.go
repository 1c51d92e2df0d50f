/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)  Consult jacobin.org.
 */

package classmember

import (
	"jacobin/cpool"
	"jacobin/sched"

	"github.com/pkg/errors"
)

// NativeFunc is the shape of a native, trapped, NOP, or not-yet-bound
// deferred native method body (spec.md §4.4, §6 "JVM context on a thread").
type NativeFunc = sched.NativeFunc

// code is the tagged union of spec.md §9 "Tagged code variant": exactly one
// of attr or nativeFunc is set after resolution, or neither if the
// method is abstract.
type code struct {
	attr       *cpool.Attribute
	nativeFunc NativeFunc
}

// ErrCodeAlreadySet is returned by SetBytecode/SetNativeFunction when the
// code slot has already been written. Spec.md §5: "write-once except for
// the native deferred-binder memoization".
var ErrCodeAlreadySet = errors.New("classmember: method code already resolved")

// GetCodeAttribute returns the method's Code attribute. Spec.md §4.4:
// "Accessors ... must assert the variant they expect and fail loudly on
// mismatch; this catches resolver/interpreter disagreements." This is a
// contract violation (SPEC_FULL.md §7), so a variant mismatch panics rather
// than returning an error -- a caller that hits this has a bug, not a
// recoverable runtime condition.
func (m *Method) GetCodeAttribute() cpool.Attribute {
	if m.code.attr == nil {
		panic(errors.Errorf("classmember: method %s has no bytecode (native=%v, abstract=%v)",
			m.FullSignature(), m.AccessFlags.Has(FlagNative), m.AccessFlags.Has(FlagAbstract)))
	}
	return *m.code.attr
}

// GetNativeFunction returns the method's native/trapped/NOP body. Panics if
// the method carries bytecode or is abstract (SPEC_FULL.md §7).
func (m *Method) GetNativeFunction() NativeFunc {
	if m.code.nativeFunc == nil {
		panic(errors.Errorf("classmember: method %s has no native function (native=%v, abstract=%v)",
			m.FullSignature(), m.AccessFlags.Has(FlagNative), m.AccessFlags.Has(FlagAbstract)))
	}
	return m.code.nativeFunc
}

// IsAbstract reports whether neither code variant has been installed --
// spec.md §3: "For ABSTRACT methods, code is absent".
func (m *Method) IsAbstract() bool {
	return m.code.attr == nil && m.code.nativeFunc == nil
}

// SetBytecode installs the method's Code attribute as its body. Called at
// most once, by the dispatch resolver (spec.md §4.4 step 4).
func (m *Method) SetBytecode(attr cpool.Attribute) error {
	if m.code.attr != nil || m.code.nativeFunc != nil {
		return errors.Wrapf(ErrCodeAlreadySet, "method %s", m.FullSignature())
	}
	a := attr
	m.code.attr = &a
	return nil
}

// SetNativeFunction installs fn as the method's native/trapped/NOP/deferred
// body. Called at most once per method by the dispatch resolver.
func (m *Method) SetNativeFunction(fn NativeFunc) error {
	if m.code.attr != nil || m.code.nativeFunc != nil {
		return errors.Wrapf(ErrCodeAlreadySet, "method %s", m.FullSignature())
	}
	m.code.nativeFunc = fn
	return nil
}

// RebindNativeFunction replaces an already-installed native function with
// another. This is the one permitted write after the initial Set: the
// deferred native binder's unbound-to-bound memoization (spec.md §4.4 step
// 2, §5 "idempotent"). It is a contract violation to call this on a method
// that never had a native function installed, or that holds bytecode.
func (m *Method) RebindNativeFunction(fn NativeFunc) {
	if m.code.attr != nil || m.code.nativeFunc == nil {
		panic(errors.Errorf("classmember: RebindNativeFunction on %s without a prior native function", m.FullSignature()))
	}
	m.code.nativeFunc = fn
}
