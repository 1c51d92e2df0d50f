/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)  Consult jacobin.org.
 */

// Package classmember holds the parsed metadata for one field or method of
// a class (spec.md §3 "ClassMember (abstract)", §4.3 component C3).
//
// Grounded on classloader.go's field/method parse structs in the teacher,
// generalized to the public, fully-typed Field/Method this spec calls for
// (the teacher keeps these private and converts them into a separate
// postable form; here they are the same public struct throughout, since
// this core has no separate "postable" representation to convert into).
package classmember

import (
	"jacobin/cpool"

	"github.com/pkg/errors"
)

// AccessFlags is the 16-bit access_flags bitfield of a field_info/method_info
// structure (spec.md §3 "Access flags").
type AccessFlags uint16

const (
	FlagPublic    AccessFlags = 0x0001
	FlagPrivate   AccessFlags = 0x0002
	FlagProtected AccessFlags = 0x0004
	FlagStatic    AccessFlags = 0x0008
	FlagFinal     AccessFlags = 0x0010
	FlagSynchron  AccessFlags = 0x0020
	FlagBridge    AccessFlags = 0x0040
	FlagVarargs   AccessFlags = 0x0080
	FlagNative    AccessFlags = 0x0100
	FlagAbstract  AccessFlags = 0x0400
	FlagSynthetic AccessFlags = 0x1000
)

func (f AccessFlags) Has(bit AccessFlags) bool { return f&bit != 0 }
func (f *AccessFlags) Set(bit AccessFlags)      { *f |= bit }

// Raw returns the raw 16-bit value, for reflection's "modifiers" field
// (spec.md §3: "Must round-trip via a raw-byte accessor for reflection").
func (f AccessFlags) Raw() uint16 { return uint16(f) }

// ParamAttrib is one entry of a MethodParameters attribute.
// [EXPANSION per SPEC_FULL.md §3]: the teacher carries this; spec.md itself
// is silent on it but doesn't exclude it.
type ParamAttrib struct {
	Name        string
	AccessFlags AccessFlags
}

// Owner is the minimal view of the defining class a ClassMember needs: a
// name, for building the trap-table key and error messages. The full class
// representation is an external collaborator and is not part of this
// repository; this interface is all classmember depends on.
type Owner interface {
	InternalName() string
}

// ClassMember is the data and invariants common to Field and Method
// (spec.md §3).
type ClassMember struct {
	owner         Owner
	slot          int // -1 until the owning class resolves it
	AccessFlags   AccessFlags
	Name          string
	RawDescriptor string
	Attrs         []cpool.Attribute
	Deprecated    bool
}

// newClassMember constructs a ClassMember with slot unset, per spec.md §3
// ("slot ... −1 until then").
func newClassMember(owner Owner, accessFlags AccessFlags, name, rawDescriptor string, attrs []cpool.Attribute) ClassMember {
	_, deprecated := cpool.First(attrs, "Deprecated")
	return ClassMember{
		owner:         owner,
		slot:          -1,
		AccessFlags:   accessFlags,
		Name:          name,
		RawDescriptor: rawDescriptor,
		Attrs:         attrs,
		Deprecated:    deprecated,
	}
}

// Owner returns the back-reference to the defining class.
func (m *ClassMember) Owner() Owner { return m.owner }

// Slot returns the member's assigned slot, or -1 if not yet assigned.
func (m *ClassMember) Slot() int { return m.slot }

// SetSlot assigns the member's slot. Spec.md §3: "set at most once, by the
// class resolver". A second call is a contract violation.
func (m *ClassMember) SetSlot(slot int) {
	if m.slot != -1 {
		panic(errors.Errorf("classmember: slot already assigned (%d), cannot reassign to %d", m.slot, slot))
	}
	m.slot = slot
}

// GetAttribute returns the first attribute matching name (spec.md §4.3).
func (m *ClassMember) GetAttribute(name string) (cpool.Attribute, bool) {
	return cpool.First(m.Attrs, name)
}

// GetAttributes returns every attribute matching name, in file order
// (spec.md §4.3).
func (m *ClassMember) GetAttributes(name string) []cpool.Attribute {
	return cpool.All(m.Attrs, name)
}

// FullSignature returns "<owner>::<name><rawDescriptor>", the key shape the
// trapped-method table and UnsatisfiedLinkError messages use (spec.md §4.4).
func (m *ClassMember) FullSignature() string {
	ownerName := ""
	if m.owner != nil {
		ownerName = m.owner.InternalName()
	}
	return ownerName + "::" + m.Name + m.RawDescriptor
}

// readMemberHeader reads the access_flags/name_index/descriptor_index
// triple common to field_info and method_info (spec.md §4.3 steps 1-3) and
// resolves the name/descriptor UTF-8 constants.
func readMemberHeader(stream cpool.ByteStream, pool cpool.Pool) (accessFlags AccessFlags, name, rawDescriptor string, err error) {
	af, err := stream.GetUint16()
	if err != nil {
		return 0, "", "", errors.Wrap(err, "classmember: reading access_flags")
	}
	nameIdx, err := stream.GetUint16()
	if err != nil {
		return 0, "", "", errors.Wrap(err, "classmember: reading name_index")
	}
	nameConst, err := pool.Get(nameIdx)
	if err != nil {
		return 0, "", "", errors.Wrapf(err, "classmember: resolving name_index %d", nameIdx)
	}
	descIdx, err := stream.GetUint16()
	if err != nil {
		return 0, "", "", errors.Wrap(err, "classmember: reading descriptor_index")
	}
	descConst, err := pool.Get(descIdx)
	if err != nil {
		return 0, "", "", errors.Wrapf(err, "classmember: resolving descriptor_index %d", descIdx)
	}
	return AccessFlags(af), nameConst.Value, descConst.Value, nil
}

