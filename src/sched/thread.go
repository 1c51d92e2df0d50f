/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)  Consult jacobin.org.
 */

package sched

import "jacobin/excNames"

// Thread is spec.md §6's "JVM context on a thread" collaborator:
// getThreadPool().getJVM() exposing internString(s), getNative(owner,
// nameDesc), getHeap().get_byte(addr). The bytecode interpreter, heap, and
// string-pool that would back a real implementation are external
// collaborators per spec.md §1; this core only declares the interface
// trapped/native bodies and the reflection materializer consume.
type Thread interface {
	// InternString returns the canonical interned instance of s.
	InternString(s string) string

	// GetNative looks up a registered native function by owner internal
	// name and "name+descriptor" key, the same composite key the trap
	// table and dispatch resolver use.
	GetNative(owner, nameAndDescriptor string) (NativeFunc, bool)

	// GetHeapByte reads one byte at a heap address, backing traps like
	// java/nio/Bits.copyToByteArray.
	GetHeapByte(addr int64) (byte, error)

	// SetHeapBytes writes length bytes starting at dstPos into the byte
	// array object dst, copied from src. The java/nio/Bits.copyToByteArray
	// trap does not call it; it writes through dispatch.ByteArrayHolder.
	SetHeapBytes(dst interface{}, dstPos int64, src []byte) error

	// StaticGet reads a static field of an already-initialized class,
	// backing traps like java/nio/Bits.byteOrder, which returns
	// java/nio/ByteOrder's LITTLE_ENDIAN constant.
	StaticGet(classDescriptor, fieldName string) (interface{}, error)

	// Throw surfaces a Java exception on this thread (spec.md §7, "Java
	// exception surfaced"). The native/trapped body returns immediately
	// after calling it; the interpreter unwinds the current frame.
	Throw(kind excNames.ExceptionType, message string) error
}

// NativeFunc is the shape of a registered native function, as returned by
// Thread.GetNative and installed by the dispatch resolver as a Method's
// code variant.
type NativeFunc func(thread Thread, args []interface{}) (interface{}, error)
