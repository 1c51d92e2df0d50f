/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package types holds the small vocabulary of JVM primitive and reference
// descriptor characters shared by the descriptor decoder, the class member
// model, and the argument marshaller.
package types

// JavaByte is a signed 8-bit value stored the way byte arrays are kept in a
// Java heap object's field table (distinguished from a raw Go byte so that
// array stores/loads round-trip through the same widening rules the JVM
// spec requires for BASTORE/BALOAD on boolean arrays).
type JavaByte int8

// Descriptor leading characters for primitive types, per JVMS 4.3.2.
const (
	Byte      = "B"
	Short     = "S"
	Char      = "C"
	Int       = "I"
	Long      = "J"
	Float     = "F"
	Double    = "D"
	Bool      = "Z"
	Void      = "V"
	Class     = "L"
	Array     = "["
	RefArray  = "[L"
)

// ObjectClassName is the internal name of java.lang.Object, the implicit
// root of every class hierarchy and the sentinel that ends a superclass walk.
const ObjectClassName = "java/lang/Object"

// IsWide reports whether a parameter descriptor occupies two operand-stack
// slots (JVMS 2.6.2): longs and doubles do, everything else is one slot.
func IsWide(descriptor string) bool {
	return descriptor == Long || descriptor == Double
}
