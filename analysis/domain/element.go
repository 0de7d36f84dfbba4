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
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidElement is returned by element constructors when their arguments do not identify a program entity.
var ErrInvalidElement = errors.New("invalid domain element")

// An Element is a taint-relevant program entity: a local value, an instance field slot or a heap object.
// Elements are comparable values: two elements are equal when all their identifiers are equal, which is what
// deduplication of elements relies on.
type Element interface {
	fmt.Stringer
	isElement()
}

// LocalElement is a local value (an SSA value number) in a specific call graph node.
type LocalElement struct {
	Node  NodeID
	Value int
}

// FieldElement is the slot of an instance field on a specific abstract object.
type FieldElement struct {
	Owner InstanceID
	Field FieldRef
}

// InstanceKeyElement is an abstract heap object itself.
type InstanceKeyElement struct {
	Instance InstanceID
}

func (LocalElement) isElement()       {}
func (FieldElement) isElement()       {}
func (InstanceKeyElement) isElement() {}

func (e LocalElement) String() string {
	return fmt.Sprintf("local(n%d, v%d)", e.Node, e.Value)
}

func (e FieldElement) String() string {
	return fmt.Sprintf("field(%s, %s)", e.Owner, e.Field)
}

func (e InstanceKeyElement) String() string {
	return fmt.Sprintf("instance(%s)", e.Instance)
}

// NewLocalElement returns the element for value number value in node.
func NewLocalElement(node NodeID, value int) (LocalElement, error) {
	if node < 0 || value < 0 {
		return LocalElement{}, fmt.Errorf("%w: local v%d in node %d", ErrInvalidElement, value, node)
	}
	return LocalElement{Node: node, Value: value}, nil
}

// NewFieldElement returns the element for the slot of field on the object owner.
func NewFieldElement(owner InstanceID, field FieldRef) (FieldElement, error) {
	if owner.Type.IsZero() {
		return FieldElement{}, fmt.Errorf("%w: field %s on an untyped instance", ErrInvalidElement, field)
	}
	if !field.Valid() {
		return FieldElement{}, fmt.Errorf("%w: unresolved field %q", ErrInvalidElement, field)
	}
	return FieldElement{Owner: owner, Field: field}, nil
}

// NewInstanceKeyElement returns the element for the abstract object instance.
func NewInstanceKeyElement(instance InstanceID) (InstanceKeyElement, error) {
	if instance.Type.IsZero() {
		return InstanceKeyElement{}, fmt.Errorf("%w: untyped instance", ErrInvalidElement)
	}
	return InstanceKeyElement{Instance: instance}, nil
}

// ElementSet is a set of elements.
type ElementSet map[Element]bool

// Add adds e to the set and returns true if it was not already in the set.
func (s ElementSet) Add(e Element) bool {
	if s[e] {
		return false
	}
	s[e] = true
	return true
}

// AddAll adds all the elements of other to the set.
func (s ElementSet) AddAll(other ElementSet) {
	for e := range other {
		s[e] = true
	}
}

// Contains returns true when e is in the set
func (s ElementSet) Contains(e Element) bool {
	return s[e]
}

// Sorted returns the elements of the set in a deterministic order (by their string representation).
func (s ElementSet) Sorted() []Element {
	elts := make([]Element, 0, len(s))
	for e := range s {
		elts = append(elts, e)
	}
	sort.Slice(elts, func(i, j int) bool { return elts[i].String() < elts[j].String() })
	return elts
}

// Equal returns true when both sets contain the same elements
func (s ElementSet) Equal(other ElementSet) bool {
	if len(s) != len(other) {
		return false
	}
	for e := range s {
		if !other[e] {
			return false
		}
	}
	return true
}
