/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)  Consult jacobin.org.
 */

// Package cpool defines the minimal external-collaborator surface spec.md
// §6 names for the constant pool, the class-file byte stream, and the
// attribute parser. The real implementations of these (full constant-pool
// parsing, the bytecode/attribute grammar) are declared out of scope in
// spec.md §1 ("Everything that parses the rest of a class file ... is
// treated as an external collaborator"); this package exists only so that
// jacobin/classmember, jacobin/dispatch, and jacobin/reflectmirror have a
// concrete Go type to compile and test against, shaped by CPutils.go's
// FetchCPentry in the teacher (generalized from a typed-array-per-kind CP
// to the single-method shape spec.md actually asks for).
package cpool

import "github.com/pkg/errors"

// ConstantKind distinguishes the handful of constant pool entry kinds this
// core's parsing and reflection code needs to recognize.
type ConstantKind int

const (
	UTF8 ConstantKind = iota
	ClassRef
	Other
)

// Constant is one resolved constant pool entry. Only Value is populated for
// UTF8 entries, matching spec.md §6 ("a UTF-8 constant has a value field
// holding the string").
type Constant struct {
	Kind  ConstantKind
	Value string
}

// ByteStream is the class-file byte cursor collaborator of spec.md §6.
type ByteStream interface {
	GetUint16() (uint16, error)
}

// Pool is the constant pool collaborator of spec.md §6: "get(index) returns
// a constant".
type Pool interface {
	Get(index uint16) (Constant, error)
}

// Attribute is one parsed class-file attribute. Kind-specific fields are
// populated only for the attribute kinds this core inspects (spec.md §6);
// all others carry only Name.
type Attribute struct {
	Name string

	// Signature attribute: generic-type parameter text.
	SignatureText string

	// RuntimeVisibleAnnotations / AnnotationDefault / RuntimeVisibleParameterAnnotations.
	RawBytes []byte
	IsHidden bool

	// Exceptions attribute: declared checked exception class descriptors.
	Exceptions []string

	// Code attribute: exception table, used to collect catch types for the
	// reflection materializer's batched resolve (spec.md §4.5 step 1).
	ExceptionHandlers []ExceptionHandler

	// MethodParameters attribute: one entry per formal parameter, in order.
	// [EXPANSION per SPEC_FULL.md §3]: the teacher carries this; spec.md
	// itself is silent on it but doesn't exclude it.
	Parameters []MethodParameter
}

// MethodParameter is one entry of a MethodParameters attribute: a
// parameter's name (may be absent, per JVMS 4.7.24) and its own access
// flags (ACC_FINAL/ACC_SYNTHETIC/ACC_MANDATED). AccessFlags is carried as
// the raw uint16 here rather than classmember.AccessFlags, so that cpool
// does not depend on classmember (which already depends on cpool).
type MethodParameter struct {
	Name        string
	AccessFlags uint16
}

// ExceptionHandler is one entry of a Code attribute's exception table.
// CatchType is "" for a catch-all (finally) handler — spec.md §8 property 8
// calls this "non-wildcard catchType".
type ExceptionHandler struct {
	StartPC, EndPC, HandlerPC int
	CatchType                 string
}

// AttributeParser is the external attribute-parser collaborator of
// spec.md §6: "makeAttributes(stream, constantPool) returns an ordered
// sequence of attributes".
type AttributeParser interface {
	MakeAttributes(stream ByteStream, pool Pool) ([]Attribute, error)
}

// ErrBadPoolIndex is returned by a Pool implementation when asked for an
// out-of-range or wrong-kind entry.
var ErrBadPoolIndex = errors.New("constant pool: index out of range or wrong kind")

// First returns the first attribute with the given name, and whether one
// was found. Spec.md §4.3: "first-matching by name".
func First(attrs []Attribute, name string) (Attribute, bool) {
	for _, a := range attrs {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// All returns every attribute with the given name, preserving input order.
// Spec.md §4.3: "all-matching by name, preserving input order".
func All(attrs []Attribute, name string) []Attribute {
	var out []Attribute
	for _, a := range attrs {
		if a.Name == name {
			out = append(out, a)
		}
	}
	return out
}
