/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)  Consult jacobin.org.
 */

// Package reflectmirror produces the java.lang.reflect.{Field,Method,
// Constructor} mirror objects (spec.md §4.5, component C5). Grounded on
// texadactyl-jacobin's mhResolution.go (asynchronous, callback-driven class
// resolution against a loader -- here expressed as a synchronous
// (mirror, ok) return rather than a callback pair) and jlc.go (the
// Jlc/class-mirror record shape: a back-pointer to method-area class data
// plus a statics list).
package reflectmirror

import (
	"jacobin/classmember"
	"jacobin/sched"

	"github.com/pkg/errors"
)

// ClassMirror is the runtime java.lang.Class instance a resolved descriptor
// maps to (spec.md GLOSSARY: "Class mirror"). Grounded on jlc.go's Jlc.
type ClassMirror struct {
	Descriptor string
}

// Resolver is the external class-resolution collaborator of spec.md §6:
// "resolveClass(thread, descriptor, cb), resolveClasses(thread, descriptors,
// cb) where the second delivers either a mapping descriptor -> classData or
// absent on failure". Grounded on mhResolution.go's LoadClassFromNameOnly
// call sites, generalized to the batched form spec.md §4.5 requires.
type Resolver interface {
	ResolveClasses(thread sched.Thread, descriptors []string) (map[string]*ClassMirror, error)
}

// FieldMirror is the mirror spec.md §4.5 describes for java/lang/reflect/Field.
type FieldMirror struct {
	Clazz        *ClassMirror
	Name         string // interned
	Type         *ClassMirror
	Modifiers    uint16
	Slot         int
	Signature    string
	HasSignature bool
	Annotations  []byte
	HasAnnotations bool
}

// ReflectField implements spec.md §4.5's Field.reflect(thread, callback),
// expressed as a synchronous call returning (mirror, ok) rather than a
// callback pair: "On failure to resolve the type, the callback receives the
// absent value" becomes ok=false here.
func ReflectField(thread sched.Thread, f *classmember.Field, owner *ClassMirror, resolver Resolver) (FieldMirror, bool) {
	sig, hasSig := f.GetAttribute("Signature")

	resolved, err := resolver.ResolveClasses(thread, []string{f.Type})
	if err != nil {
		return FieldMirror{}, false
	}
	typeMirror, ok := resolved[f.Type]
	if !ok {
		return FieldMirror{}, false
	}

	annotAttr, hasAnnot := f.GetAttribute("RuntimeVisibleAnnotations")

	return FieldMirror{
		Clazz:          owner,
		Name:           thread.InternString(f.Name),
		Type:           typeMirror,
		Modifiers:      f.AccessFlags.Raw(),
		Slot:           f.Slot(),
		Signature:      thread.InternString(sig.SignatureText),
		HasSignature:   hasSig,
		Annotations:    annotAttr.RawBytes,
		HasAnnotations: hasAnnot,
	}, true
}

// MethodMirror is the mirror spec.md §4.5 describes for
// java/lang/reflect/Method or java/lang/reflect/Constructor (selected by
// IsConstructor).
type MethodMirror struct {
	Clazz                *ClassMirror
	Name                 string
	ParameterTypes       []*ClassMirror
	ReturnType           *ClassMirror
	ExceptionTypes       []*ClassMirror
	Modifiers            uint16
	Slot                 int
	Signature            string
	HasSignature         bool
	Annotations          []byte
	HasAnnotations       bool
	AnnotationDefault    []byte
	HasAnnotationDefault bool
	ParameterAnnotations [][]byte
	IsConstructor        bool
}

// requiredDescriptors assembles the set of class descriptors spec.md §4.5
// step 1 requires resolved for m: return type, parameter types, declared
// checked exceptions, and -- if m has a Code attribute with exception
// handlers -- Ljava/lang/Throwable; plus every non-wildcard catch type.
// This is testable property 8's "reflection resolution closure".
func requiredDescriptors(m *classmember.Method) []string {
	seen := map[string]bool{}
	var out []string
	add := func(d string) {
		if d != "" && !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}

	add(m.ReturnType)
	for _, p := range m.ParamTypes {
		add(p)
	}
	if exc, ok := m.GetAttribute("Exceptions"); ok {
		for _, e := range exc.Exceptions {
			add(e)
		}
	}
	if code, ok := m.GetAttribute("Code"); ok && len(code.ExceptionHandlers) > 0 {
		add("Ljava/lang/Throwable;")
		for _, h := range code.ExceptionHandlers {
			if h.CatchType != "" {
				add(h.CatchType)
			}
		}
	}
	return out
}

// ReflectMethod implements spec.md §4.5's Method.reflect(thread,
// isConstructor, callback): resolves every referenced descriptor in one
// batched call (spec.md §9: "avoid implementing it as a loop of individual
// resolutions to preserve the source's single failure/success semantics"),
// then assembles the mirror. ok is false if the batch resolution fails or
// its result lacks one of the descriptors the mirror needs.
func ReflectMethod(thread sched.Thread, m *classmember.Method, owner *ClassMirror, isConstructor bool, resolver Resolver) (MethodMirror, bool) {
	descriptors := requiredDescriptors(m)
	resolved, err := resolver.ResolveClasses(thread, descriptors)
	if err != nil {
		return MethodMirror{}, false
	}

	lookup := func(d string) (*ClassMirror, error) {
		cm, ok := resolved[d]
		if !ok {
			return nil, errors.Errorf("reflectmirror: descriptor %q missing from batched resolution", d)
		}
		return cm, nil
	}

	returnType, err := lookup(m.ReturnType)
	if err != nil {
		return MethodMirror{}, false
	}

	paramTypes := make([]*ClassMirror, len(m.ParamTypes))
	for i, p := range m.ParamTypes {
		pt, err := lookup(p)
		if err != nil {
			return MethodMirror{}, false
		}
		paramTypes[i] = pt
	}

	var exceptionTypes []*ClassMirror
	if exc, ok := m.GetAttribute("Exceptions"); ok {
		for _, e := range exc.Exceptions {
			et, err := lookup(e)
			if err != nil {
				return MethodMirror{}, false
			}
			exceptionTypes = append(exceptionTypes, et)
		}
	}

	sig, hasSig := m.GetAttribute("Signature")
	annotAttr, hasAnnot := m.GetAttribute("RuntimeVisibleAnnotations")
	defaultAttr, hasDefault := m.GetAttribute("AnnotationDefault")

	var paramAnnots [][]byte
	for _, a := range m.GetAttributes("RuntimeVisibleParameterAnnotations") {
		paramAnnots = append(paramAnnots, a.RawBytes)
	}

	return MethodMirror{
		Clazz:                owner,
		Name:                 thread.InternString(m.Name),
		ParameterTypes:       paramTypes,
		ReturnType:           returnType,
		ExceptionTypes:       exceptionTypes,
		Modifiers:            m.AccessFlags.Raw(),
		Slot:                 m.Slot(),
		Signature:            thread.InternString(sig.SignatureText),
		HasSignature:         hasSig,
		Annotations:          annotAttr.RawBytes,
		HasAnnotations:       hasAnnot,
		AnnotationDefault:    defaultAttr.RawBytes,
		HasAnnotationDefault: hasDefault,
		ParameterAnnotations: paramAnnots,
		IsConstructor:        isConstructor,
	}, true
}
