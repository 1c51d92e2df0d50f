/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)  Consult jacobin.org.
 */

package reflectmirror

import (
	"jacobin/classmember"
	"jacobin/cpool"
	"jacobin/excNames"
	"jacobin/sched"
	"reflect"
	"sort"
	"testing"

	"github.com/pkg/errors"
)

type fakeOwner string

func (o fakeOwner) InternalName() string { return string(o) }

type fakeByteStream struct {
	u16 []uint16
	pos int
}

func (s *fakeByteStream) GetUint16() (uint16, error) {
	if s.pos >= len(s.u16) {
		return 0, errors.New("fakeByteStream: exhausted")
	}
	v := s.u16[s.pos]
	s.pos++
	return v, nil
}

type fakePool map[uint16]cpool.Constant

func (p fakePool) Get(index uint16) (cpool.Constant, error) {
	c, ok := p[index]
	if !ok {
		return cpool.Constant{}, cpool.ErrBadPoolIndex
	}
	return c, nil
}

type fakeAttrParser struct{ attrs []cpool.Attribute }

func (p fakeAttrParser) MakeAttributes(stream cpool.ByteStream, pool cpool.Pool) ([]cpool.Attribute, error) {
	return p.attrs, nil
}

type fakeThread struct{}

func (fakeThread) InternString(s string) string { return s }
func (fakeThread) GetNative(owner, nameAndDescriptor string) (sched.NativeFunc, bool) {
	return nil, false
}
func (fakeThread) GetHeapByte(addr int64) (byte, error)                         { return 0, nil }
func (fakeThread) SetHeapBytes(dst interface{}, dstPos int64, src []byte) error { return nil }
func (fakeThread) StaticGet(classDescriptor, fieldName string) (interface{}, error) {
	return nil, nil
}
func (fakeThread) Throw(kind excNames.ExceptionType, message string) error { return nil }

type recordingResolver struct {
	requested []string
	fail      bool
}

func (r *recordingResolver) ResolveClasses(thread sched.Thread, descriptors []string) (map[string]*ClassMirror, error) {
	r.requested = append(r.requested, descriptors...)
	if r.fail {
		return nil, errors.New("resolution failed")
	}
	out := map[string]*ClassMirror{}
	for _, d := range descriptors {
		out[d] = &ClassMirror{Descriptor: d}
	}
	return out, nil
}

func newMethod(t *testing.T, rawDescriptor string, attrs []cpool.Attribute) *classmember.Method {
	t.Helper()
	stream := &fakeByteStream{u16: []uint16{0, 1, 2}}
	pool := fakePool{1: {Kind: cpool.UTF8, Value: "doStuff"}, 2: {Kind: cpool.UTF8, Value: rawDescriptor}}
	m, err := classmember.ParseMethod(fakeOwner("some/Class"), stream, pool, fakeAttrParser{attrs: attrs})
	if err != nil {
		t.Fatalf("ParseMethod: %v", err)
	}
	return m
}

// Testable property 8 — reflection resolution closure.
func TestRequiredDescriptorsClosure(t *testing.T) {
	attrs := []cpool.Attribute{
		{Name: "Exceptions", Exceptions: []string{"Ljava/io/IOException;"}},
		{
			Name: "Code",
			ExceptionHandlers: []cpool.ExceptionHandler{
				{CatchType: "Ljava/lang/RuntimeException;"},
				{CatchType: ""}, // wildcard/finally handler, must be excluded
			},
		},
	}
	m := newMethod(t, "(ILjava/lang/String;)V", attrs)

	got := requiredDescriptors(m)
	want := []string{"V", "I", "Ljava/lang/String;", "Ljava/io/IOException;", "Ljava/lang/Throwable;", "Ljava/lang/RuntimeException;"}

	gotSorted := append([]string{}, got...)
	wantSorted := append([]string{}, want...)
	sort.Strings(gotSorted)
	sort.Strings(wantSorted)
	if !reflect.DeepEqual(gotSorted, wantSorted) {
		t.Errorf("requiredDescriptors = %v, want set %v", got, want)
	}
}

func TestRequiredDescriptorsNoHandlersOmitsThrowable(t *testing.T) {
	m := newMethod(t, "()V", nil)
	got := requiredDescriptors(m)
	for _, d := range got {
		if d == "Ljava/lang/Throwable;" {
			t.Error("Throwable must not be required when there are no exception handlers")
		}
	}
}

func TestReflectMethodAssemblesMirror(t *testing.T) {
	m := newMethod(t, "(ILjava/lang/String;)V", []cpool.Attribute{
		{Name: "Signature", SignatureText: "(I)V"},
	})
	resolver := &recordingResolver{}
	owner := &ClassMirror{Descriptor: "Lsome/Class;"}

	mirror, ok := ReflectMethod(fakeThread{}, m, owner, false, resolver)
	if !ok {
		t.Fatal("ReflectMethod reported failure")
	}
	if mirror.ReturnType.Descriptor != "V" {
		t.Errorf("ReturnType = %v", mirror.ReturnType)
	}
	if len(mirror.ParameterTypes) != 2 || mirror.ParameterTypes[0].Descriptor != "I" || mirror.ParameterTypes[1].Descriptor != "Ljava/lang/String;" {
		t.Errorf("ParameterTypes = %v", mirror.ParameterTypes)
	}
	if !mirror.HasSignature || mirror.Signature != "(I)V" {
		t.Errorf("Signature = %q, hasSignature=%v", mirror.Signature, mirror.HasSignature)
	}
	if mirror.IsConstructor {
		t.Error("IsConstructor should be false")
	}
}

func TestReflectMethodBatchFailureReturnsAbsent(t *testing.T) {
	m := newMethod(t, "()V", nil)
	resolver := &recordingResolver{fail: true}
	_, ok := ReflectMethod(fakeThread{}, m, &ClassMirror{}, false, resolver)
	if ok {
		t.Error("expected ReflectMethod to report failure when the batch resolve fails")
	}
}

func TestReflectFieldResolvesType(t *testing.T) {
	stream := &fakeByteStream{u16: []uint16{0, 1, 2}}
	pool := fakePool{1: {Kind: cpool.UTF8, Value: "count"}, 2: {Kind: cpool.UTF8, Value: "I"}}
	f, err := classmember.ParseField(fakeOwner("some/Class"), stream, pool, fakeAttrParser{})
	if err != nil {
		t.Fatalf("ParseField: %v", err)
	}

	resolver := &recordingResolver{}
	mirror, ok := ReflectField(fakeThread{}, f, &ClassMirror{Descriptor: "Lsome/Class;"}, resolver)
	if !ok {
		t.Fatal("ReflectField reported failure")
	}
	if mirror.Type.Descriptor != "I" {
		t.Errorf("Type = %v", mirror.Type)
	}
	if mirror.Name != "count" {
		t.Errorf("Name = %q", mirror.Name)
	}
}
