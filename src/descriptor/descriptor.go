/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)  Consult jacobin.org.
 */

// Package descriptor decodes JVM field and method descriptors into typed
// parameter lists (spec.md §4.1, component C1). The class-file parser that
// produces the raw descriptor string is an external collaborator (spec.md
// §1); this package only understands the descriptor grammar itself.
package descriptor

import (
	"strings"

	"github.com/pkg/errors"
)

// BadDescriptor is returned when a descriptor is malformed: an incomplete
// token, or an unrecognized leading character outside an array prefix.
// Spec.md §4.1: "never silently truncates".
var BadDescriptor = errors.New("malformed descriptor")

// primitiveChars are the one-character descriptor tokens (JVMS 4.3.2),
// including V(oid), which is legal only as a method return type.
const primitiveChars = "BSCIJFDZV"

// Parse decodes a method descriptor of the form "(P1P2...Pn)R" into its
// ordered parameter descriptors and its return-type descriptor.
func Parse(rawDescriptor string) (paramTypes []string, returnType string, err error) {
	if !strings.HasPrefix(rawDescriptor, "(") {
		return nil, "", errors.Wrapf(BadDescriptor, "descriptor %q does not start with '('", rawDescriptor)
	}
	closeIdx := strings.Index(rawDescriptor, ")")
	if closeIdx < 0 {
		return nil, "", errors.Wrapf(BadDescriptor, "descriptor %q has no closing ')'", rawDescriptor)
	}

	paramRegion := rawDescriptor[1:closeIdx]
	returnRegion := rawDescriptor[closeIdx+1:]

	params, err := parseTokens(paramRegion)
	if err != nil {
		return nil, "", err
	}

	ret, rest, err := consumeOneToken(returnRegion)
	if err != nil {
		return nil, "", err
	}
	if rest != "" {
		return nil, "", errors.Wrapf(BadDescriptor, "descriptor %q has trailing data %q after return type", rawDescriptor, rest)
	}

	return params, ret, nil
}

// ParseField decodes a field descriptor, which is a single type token with
// no surrounding parentheses.
func ParseField(rawDescriptor string) (string, error) {
	tok, rest, err := consumeOneToken(rawDescriptor)
	if err != nil {
		return "", err
	}
	if rest != "" {
		return "", errors.Wrapf(BadDescriptor, "field descriptor %q has trailing data %q", rawDescriptor, rest)
	}
	return tok, nil
}

// parseTokens repeatedly consumes one descriptor token from the front of s
// until s is exhausted.
func parseTokens(s string) ([]string, error) {
	var tokens []string
	for s != "" {
		tok, rest, err := consumeOneToken(s)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		s = rest
	}
	return tokens, nil
}

// consumeOneToken reads exactly one descriptor token from the front of s
// and returns it along with the unconsumed remainder.
//
// A token is: one primitive/void character; or "L<name>;" read up to and
// including the first ';'; or '[' followed by another token (arrays of any
// rank, including arrays of arrays).
func consumeOneToken(s string) (token string, rest string, err error) {
	if s == "" {
		return "", "", errors.Wrap(BadDescriptor, "expected a type descriptor, found end of input")
	}

	switch s[0] {
	case '[':
		inner, innerRest, err := consumeOneToken(s[1:])
		if err != nil {
			return "", "", err
		}
		return "[" + inner, innerRest, nil

	case 'L':
		semi := strings.IndexByte(s, ';')
		if semi < 0 {
			return "", "", errors.Wrapf(BadDescriptor, "unterminated class descriptor %q", s)
		}
		return s[:semi+1], s[semi+1:], nil

	default:
		if strings.IndexByte(primitiveChars, s[0]) < 0 {
			return "", "", errors.Wrapf(BadDescriptor, "unrecognized descriptor character %q", s[0])
		}
		return s[0:1], s[1:], nil
	}
}

// ParamBytes computes the number of operand-stack slots a method's
// parameters occupy, per spec.md §3: 2 for J/D, else 1, plus 1 more if the
// method is non-static (the implicit receiver).
func ParamBytes(paramTypes []string, isStatic bool) int {
	n := 0
	if !isStatic {
		n++
	}
	for _, p := range paramTypes {
		if p == "J" || p == "D" {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// NumArgs computes spec.md §3's numArgs: the count of paramTypes plus 1 if
// non-static.
func NumArgs(paramTypes []string, isStatic bool) int {
	n := len(paramTypes)
	if !isStatic {
		n++
	}
	return n
}
