/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)  Consult jacobin.org.
 */

package marshal

import "jacobin/types"

// GoBytesFromJavaBytes converts a Java byte-array representation into a
// plain Go []byte, for handing off to a native body that expects raw bytes
// (e.g. the java/nio/Bits.copyToByteArray trap). Grounded on the teacher's
// object/javaByteArray.go GoByteArrayFromJavaByteArray; the heap/string-pool
// specific conversions in that file are out of scope here (external
// collaborator, spec.md §1).
func GoBytesFromJavaBytes(jbarr []types.JavaByte) []byte {
	gbarr := make([]byte, len(jbarr))
	for i, b := range jbarr {
		gbarr[i] = byte(b)
	}
	return gbarr
}

// JavaBytesFromGoBytes is the inverse of GoBytesFromJavaBytes.
func JavaBytesFromGoBytes(gbarr []byte) []types.JavaByte {
	jbarr := make([]types.JavaByte, len(gbarr))
	for i, b := range gbarr {
		jbarr[i] = types.JavaByte(b)
	}
	return jbarr
}
