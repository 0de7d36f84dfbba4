// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package domain

import (
	"strings"
)

// TypeKind classifies a type reference the way the closure needs it: primitive values are leaves, arrays are opaque
// containers and references point to objects whose fields can be explored.
type TypeKind int

const (
	// Unknown is the kind of malformed or unsupported type references
	Unknown TypeKind = iota
	// Primitive is the kind of primitive types (int, boolean, ...)
	Primitive
	// Array is the kind of array types, of any dimension
	Array
	// Reference is the kind of class and interface types
	Reference
)

func (k TypeKind) String() string {
	switch k {
	case Primitive:
		return "primitive"
	case Array:
		return "array"
	case Reference:
		return "reference"
	default:
		return "unknown"
	}
}

// TypeRef references a type by name. Two type references are equal when their names and kinds are equal.
type TypeRef struct {
	// Name is the name of the type. For types parsed from descriptors, this is the descriptor itself.
	Name string
	// Kind is the classification of the type
	Kind TypeKind
}

// IsPrimitive returns true when t is a primitive type
func (t TypeRef) IsPrimitive() bool { return t.Kind == Primitive }

// IsArray returns true when t is an array type
func (t TypeRef) IsArray() bool { return t.Kind == Array }

// IsReference returns true when t is a class or interface type
func (t TypeRef) IsReference() bool { return t.Kind == Reference }

// IsZero returns true when t does not reference any type
func (t TypeRef) IsZero() bool { return t.Name == "" }

func (t TypeRef) String() string {
	return t.Name
}

// primitiveDescriptors maps the one-letter descriptors of primitive types to their source names
var primitiveDescriptors = map[byte]string{
	'B': "byte",
	'C': "char",
	'D': "double",
	'F': "float",
	'I': "int",
	'J': "long",
	'S': "short",
	'Z': "boolean",
	'V': "void",
}

// ParseDescriptor returns the type reference for a Dalvik type descriptor.
// For the rules on how type descriptors are encoded, see
// https://source.android.com/devices/tech/dalvik/dex-format.html#typedescriptor
// Malformed descriptors are returned with the Unknown kind.
func ParseDescriptor(d string) TypeRef {
	dims := 0
	for dims < len(d) && d[dims] == '[' {
		dims++
	}
	base := d[dims:]
	var kind TypeKind
	switch {
	case len(base) == 1:
		if _, ok := primitiveDescriptors[base[0]]; ok {
			kind = Primitive
		}
	case len(base) > 2 && base[0] == 'L' && strings.HasSuffix(base, ";"):
		kind = Reference
	}
	if kind == Unknown {
		return TypeRef{Name: d, Kind: Unknown}
	}
	if dims > 0 {
		return TypeRef{Name: d, Kind: Array}
	}
	return TypeRef{Name: d, Kind: kind}
}

// ClassType returns the reference type for a class (or interface) name.
func ClassType(name string) TypeRef {
	return TypeRef{Name: name, Kind: Reference}
}

// PrimitiveType returns the primitive type with the given name.
func PrimitiveType(name string) TypeRef {
	return TypeRef{Name: name, Kind: Primitive}
}

// ArrayOf returns the array type whose elements are of type elt.
// Descriptor-named types stay in descriptor form, other types get a "[]" suffix.
func ArrayOf(elt TypeRef) TypeRef {
	if isDescriptor(elt) {
		return TypeRef{Name: "[" + elt.Name, Kind: Array}
	}
	return TypeRef{Name: elt.Name + "[]", Kind: Array}
}

// SourceName returns the name of t as it appears in source code, decoding descriptors
// (e.g. "[Lcom/foo/Bar;" becomes "com.foo.Bar[]").
func SourceName(t TypeRef) string {
	if !isDescriptor(t) {
		return t.Name
	}
	d := t.Name
	dims := 0
	for dims < len(d) && d[dims] == '[' {
		dims++
	}
	var base string
	if d[dims] == 'L' {
		base = strings.ReplaceAll(d[dims+1:len(d)-1], "/", ".")
	} else {
		base = primitiveDescriptors[d[dims]]
	}
	return base + strings.Repeat("[]", dims)
}

func isDescriptor(t TypeRef) bool {
	return t.Kind != Unknown && t.Name != "" && ParseDescriptor(t.Name) == t
}
