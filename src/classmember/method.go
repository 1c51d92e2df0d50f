/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)  Consult jacobin.org.
 */

package classmember

import (
	"jacobin/cpool"
	"jacobin/descriptor"

	"github.com/pkg/errors"
)

// Method extends ClassMember with the descriptor breakdown and code variant
// spec.md §3 describes: "ParamTypes, ReturnType, ParamBytes and NumArgs are
// derived once from RawDescriptor at parse time and never recomputed."
type Method struct {
	ClassMember
	ParamTypes []string
	ReturnType string
	ParamBytes int
	NumArgs    int
	Parameters []ParamAttrib
	code       code
}

// ParseMethod parses a method_info structure (spec.md §4.3) and derives the
// descriptor-shaped fields. It installs no code variant: that is the
// dispatch resolver's job (spec.md §4.4), applied once the method's owner
// and its class's context (trap table, native registry) are available.
func ParseMethod(owner Owner, stream cpool.ByteStream, pool cpool.Pool, attrParser cpool.AttributeParser) (*Method, error) {
	accessFlags, name, rawDescriptor, err := readMemberHeader(stream, pool)
	if err != nil {
		return nil, errors.Wrap(err, "classmember: parsing method_info")
	}

	paramTypes, returnType, err := descriptor.Parse(rawDescriptor)
	if err != nil {
		return nil, errors.Wrapf(err, "classmember: method %s has invalid descriptor %q", name, rawDescriptor)
	}

	attrs, err := attrParser.MakeAttributes(stream, pool)
	if err != nil {
		return nil, errors.Wrapf(err, "classmember: parsing attributes of method %s", name)
	}

	isStatic := accessFlags.Has(FlagStatic)
	m := &Method{
		ClassMember: newClassMember(owner, accessFlags, name, rawDescriptor, attrs),
		ParamTypes:  paramTypes,
		ReturnType:  returnType,
		ParamBytes:  descriptor.ParamBytes(paramTypes, isStatic),
		NumArgs:     descriptor.NumArgs(paramTypes, isStatic),
		Parameters:  parseMethodParameters(attrs),
	}

	if err := checkMethodInvariants(m); err != nil {
		return nil, err
	}

	return m, nil
}

// parseMethodParameters populates Method.Parameters from the
// MethodParameters attribute, if present, the same way newClassMember
// populates Deprecated from the Deprecated attribute.
func parseMethodParameters(attrs []cpool.Attribute) []ParamAttrib {
	attr, ok := cpool.First(attrs, "MethodParameters")
	if !ok {
		return nil
	}
	params := make([]ParamAttrib, len(attr.Parameters))
	for i, p := range attr.Parameters {
		params[i] = ParamAttrib{Name: p.Name, AccessFlags: AccessFlags(p.AccessFlags)}
	}
	return params
}

// checkMethodInvariants enforces spec.md §3's NATIVE/ABSTRACT shape rules
// that are visible purely from access_flags and attributes, before any code
// variant has been resolved: a NATIVE or ABSTRACT method must not carry a
// Code attribute of its own, and a method that is neither must carry one.
func checkMethodInvariants(m *Method) error {
	_, hasCodeAttr := m.GetAttribute("Code")
	native := m.AccessFlags.Has(FlagNative)
	abstract := m.AccessFlags.Has(FlagAbstract)

	if (native || abstract) && hasCodeAttr {
		return errors.Errorf("classmember: method %s is native/abstract but carries a Code attribute", m.FullSignature())
	}
	if !native && !abstract && !hasCodeAttr {
		return errors.Errorf("classmember: method %s is neither native nor abstract but carries no Code attribute", m.FullSignature())
	}
	return nil
}

// IsSignaturePolymorphic reports whether this method is a signature
// polymorphic method in the sense of spec.md §4.4: descriptor exactly
// "([Ljava/lang/Object;)Ljava/lang/Object;", declared NATIVE and VARARGS
// (both, not either), on java.lang.invoke.MethodHandle. The dispatch and
// marshal packages use this to bypass normal descriptor-driven argument
// handling.
func (m *Method) IsSignaturePolymorphic() bool {
	if len(m.ParamTypes) != 1 || m.ParamTypes[0] != "[Ljava/lang/Object;" {
		return false
	}
	if m.ReturnType != "Ljava/lang/Object;" {
		return false
	}
	if !m.AccessFlags.Has(FlagVarargs) || !m.AccessFlags.Has(FlagNative) {
		return false
	}
	owner := ""
	if o := m.Owner(); o != nil {
		owner = o.InternalName()
	}
	return owner == "java/lang/invoke/MethodHandle"
}
