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

// Field extends ClassMember with Type = RawDescriptor (spec.md §3).
type Field struct {
	ClassMember
	Type string
}

// ParseField parses a field_info structure (spec.md §4.3).
func ParseField(owner Owner, stream cpool.ByteStream, pool cpool.Pool, attrParser cpool.AttributeParser) (*Field, error) {
	accessFlags, name, rawDescriptor, err := readMemberHeader(stream, pool)
	if err != nil {
		return nil, errors.Wrap(err, "classmember: parsing field_info")
	}

	if _, err := descriptor.ParseField(rawDescriptor); err != nil {
		return nil, errors.Wrapf(err, "classmember: field %s has invalid descriptor %q", name, rawDescriptor)
	}

	attrs, err := attrParser.MakeAttributes(stream, pool)
	if err != nil {
		return nil, errors.Wrapf(err, "classmember: parsing attributes of field %s", name)
	}

	return &Field{
		ClassMember: newClassMember(owner, accessFlags, name, rawDescriptor, attrs),
		Type:        rawDescriptor,
	}, nil
}
