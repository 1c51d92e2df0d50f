/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)  Consult jacobin.org.
 */

package marshal

import (
	"jacobin/classmember"
	"jacobin/cpool"
	"jacobin/excNames"
	"jacobin/sched"
	"reflect"
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

func (fakeThread) InternString(s string) string                                { return s }
func (fakeThread) GetNative(owner, nameAndDescriptor string) (sched.NativeFunc, bool) { return nil, false }
func (fakeThread) GetHeapByte(addr int64) (byte, error)                          { return 0, nil }
func (fakeThread) SetHeapBytes(dst interface{}, dstPos int64, src []byte) error  { return nil }
func (fakeThread) StaticGet(classDescriptor, fieldName string) (interface{}, error) {
	return nil, nil
}
func (fakeThread) Throw(kind excNames.ExceptionType, message string) error { return nil }

func newMethod(t *testing.T, owner classmember.Owner, accessFlags classmember.AccessFlags, rawDescriptor string) *classmember.Method {
	t.Helper()
	stream := &fakeByteStream{u16: []uint16{uint16(accessFlags), 1, 2}}
	pool := fakePool{1: {Kind: cpool.UTF8, Value: "m"}, 2: {Kind: cpool.UTF8, Value: rawDescriptor}}
	var attrs []cpool.Attribute
	if !accessFlags.Has(classmember.FlagNative) && !accessFlags.Has(classmember.FlagAbstract) {
		attrs = []cpool.Attribute{{Name: "Code"}}
	}
	m, err := classmember.ParseMethod(owner, stream, pool, fakeAttrParser{attrs: attrs})
	if err != nil {
		t.Fatalf("ParseMethod: %v", err)
	}
	return m
}

// Testable property 4 — takeArgs/pushArgs idempotence: pushing
// m.ParamBytes sentinel values onto a caller stack and then calling
// TakeArgs recovers those exact sentinels, in order, and restores the
// caller stack to what was beneath them.
func TestTakeArgsIdempotence(t *testing.T) {
	m := newMethod(t, fakeOwner("some/Class"), classmember.FlagStatic, "(IJLjava/lang/String;[D)V")
	if m.ParamBytes != 5 {
		t.Fatalf("paramBytes = %d, want 5", m.ParamBytes)
	}

	below := []interface{}{"caller-local-1", "caller-local-2"}
	sentinels := []interface{}{"s0", "s1", "s2", "s3", "s4"}
	stack := append(append([]interface{}{}, below...), sentinels...)

	taken, err := TakeArgs(&stack, m)
	if err != nil {
		t.Fatalf("TakeArgs: %v", err)
	}
	if !reflect.DeepEqual(taken, sentinels) {
		t.Errorf("taken = %v, want %v", taken, sentinels)
	}
	if !reflect.DeepEqual(stack, below) {
		t.Errorf("callerStack after TakeArgs = %v, want %v (restored)", stack, below)
	}
}

func TestTakeArgsUnderflow(t *testing.T) {
	m := newMethod(t, fakeOwner("some/Class"), classmember.FlagStatic, "(I)V")
	stack := []interface{}{}
	if _, err := TakeArgs(&stack, m); err == nil {
		t.Error("expected underflow error on empty stack")
	}
}

// Testable property 3, first case: static method, no wide types.
func TestConvertArgsStaticNoWide(t *testing.T) {
	m := newMethod(t, fakeOwner("some/Class"), classmember.FlagStatic, "(ILjava/lang/String;)V")
	raw := []interface{}{int32(1), "s"}
	got := ConvertArgs(fakeThread{}, m, raw)
	want := []interface{}{fakeThread{}, int32(1), "s"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ConvertArgs = %#v, want %#v", got, want)
	}
	if len(got) != 1+m.NumArgs {
		t.Errorf("len = %d, want %d", len(got), 1+m.NumArgs)
	}
}

// Testable property 3: non-static method skips the wide-value sentinel slot.
func TestConvertArgsInstanceWithWide(t *testing.T) {
	m := newMethod(t, fakeOwner("some/Class"), 0, "(J)V")
	// rawParams: [receiver, longValue, sentinel]
	raw := []interface{}{"receiver", int64(42), "sentinel"}
	got := ConvertArgs(fakeThread{}, m, raw)
	want := []interface{}{fakeThread{}, "receiver", int64(42)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ConvertArgs = %#v, want %#v", got, want)
	}
	if len(got) != 1+m.NumArgs {
		t.Errorf("len = %d, want %d", len(got), 1+m.NumArgs)
	}
}

// S2 — signature polymorphism bypasses normal marshalling entirely.
func TestConvertArgsSignaturePolymorphic(t *testing.T) {
	m := newMethod(t, fakeOwner("java/lang/invoke/MethodHandle"),
		classmember.FlagNative|classmember.FlagVarargs, "([Ljava/lang/Object;)Ljava/lang/Object;")
	if !m.IsSignaturePolymorphic() {
		t.Fatal("expected IsSignaturePolymorphic() true")
	}
	raw := []interface{}{"a", "b", "c"}
	got := ConvertArgs(fakeThread{}, m, raw)
	want := []interface{}{fakeThread{}, "a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ConvertArgs = %#v, want %#v", got, want)
	}
	if len(got) != 1+len(raw) {
		t.Errorf("len = %d, want %d", len(got), 1+len(raw))
	}
}

// IsSignaturePolymorphic requires NATIVE and VARARGS together, not either
// alone -- a method with only one of the two flags set must fall through to
// normal descriptor-driven marshalling.
func TestConvertArgsMixedFlagsNotPolymorphic(t *testing.T) {
	nativeOnly := newMethod(t, fakeOwner("java/lang/invoke/MethodHandle"),
		classmember.FlagNative, "([Ljava/lang/Object;)Ljava/lang/Object;")
	if nativeOnly.IsSignaturePolymorphic() {
		t.Error("NATIVE without VARARGS must not be signature polymorphic")
	}

	varargsOnly := newMethod(t, fakeOwner("java/lang/invoke/MethodHandle"),
		classmember.FlagVarargs, "([Ljava/lang/Object;)Ljava/lang/Object;")
	if varargsOnly.IsSignaturePolymorphic() {
		t.Error("VARARGS without NATIVE must not be signature polymorphic")
	}
}

// A matching-parameter, different-return-type method must not be classified
// as signature polymorphic: the full descriptor must match exactly.
func TestConvertArgsWrongReturnTypeNotPolymorphic(t *testing.T) {
	m := newMethod(t, fakeOwner("java/lang/invoke/MethodHandle"),
		classmember.FlagNative|classmember.FlagVarargs, "([Ljava/lang/Object;)V")
	if m.IsSignaturePolymorphic() {
		t.Error("a non-Object return type must not be signature polymorphic")
	}
}

func TestByteArrayConversionRoundTrip(t *testing.T) {
	orig := []byte{0x00, 0x7f, 0x80, 0xff}
	jb := JavaBytesFromGoBytes(orig)
	back := GoBytesFromJavaBytes(jb)
	if !reflect.DeepEqual(orig, back) {
		t.Errorf("round trip = %v, want %v", back, orig)
	}
}
