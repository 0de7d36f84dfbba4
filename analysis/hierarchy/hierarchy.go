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


// Package hierarchy defines the class-hierarchy oracle consumed by the heap reachability closure, and an in-memory
// class hierarchy built from class declarations.
package hierarchy

import (
	"errors"
	"fmt"

	"github.com/awslabs/ar-droid-tools/analysis/domain"
)

var (
	// ErrUnknownClass is returned when a type cannot be resolved to a class of the hierarchy
	ErrUnknownClass = errors.New("unknown class")

	// ErrNotConcrete is returned when a concrete instance is requested for an interface
	ErrNotConcrete = errors.New("type has no concrete instance")
)

// ClassHierarchy answers the type queries of the heap reachability closure.
type ClassHierarchy interface {
	// LookupConcreteType returns an abstract object that represents the instances of t.
	LookupConcreteType(t domain.TypeRef) (domain.InstanceID, error)

	// IsInterface returns true if t is an interface type
	IsInterface(t domain.TypeRef) bool

	// AllInstanceFields returns the instance fields of t, including inherited fields.
	AllInstanceFields(t domain.TypeRef) []domain.FieldRef
}

// FieldDecl is the declaration of an instance field in a class
type FieldDecl struct {
	Name string
	Type domain.TypeRef
}

// Class is the declaration of a class or interface
type Class struct {
	// Name is the name of the class, which must match the name of the type references to it
	Name string
	// Super is the name of the superclass, empty for root classes
	Super string
	// Interface is true for interfaces
	Interface bool
	// Fields are the instance fields declared by the class (not the inherited ones)
	Fields []FieldDecl
}

// Hierarchy is an in-memory ClassHierarchy
type Hierarchy struct {
	classes map[string]*Class
}

// New returns a hierarchy containing the classes provided. It returns an error if a class is declared twice or if
// the superclass chains contain a cycle.
func New(classes ...Class) (*Hierarchy, error) {
	h := &Hierarchy{classes: map[string]*Class{}}
	for i := range classes {
		c := classes[i]
		if _, ok := h.classes[c.Name]; ok {
			return nil, fmt.Errorf("class %s declared twice", c.Name)
		}
		h.classes[c.Name] = &c
	}
	for name := range h.classes {
		if _, err := h.superChain(name); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Class returns the declaration of the class named name
func (h *Hierarchy) Class(name string) (*Class, bool) {
	c, ok := h.classes[name]
	return c, ok
}

// Len returns the number of classes in the hierarchy
func (h *Hierarchy) Len() int {
	return len(h.classes)
}

// LookupConcreteType returns the concrete-type key of t. Array types always resolve; reference types must be
// declared classes that are not interfaces.
func (h *Hierarchy) LookupConcreteType(t domain.TypeRef) (domain.InstanceID, error) {
	switch t.Kind {
	case domain.Array:
		return domain.ConcreteTypeKey(t), nil
	case domain.Reference:
		c, ok := h.classes[t.Name]
		if !ok {
			return domain.InstanceID{}, fmt.Errorf("%w: %s", ErrUnknownClass, t)
		}
		if c.Interface {
			return domain.InstanceID{}, fmt.Errorf("%w: %s is an interface", ErrNotConcrete, t)
		}
		return domain.ConcreteTypeKey(t), nil
	default:
		return domain.InstanceID{}, fmt.Errorf("%w: %s is a %s type", ErrUnknownClass, t, t.Kind)
	}
}

// IsInterface returns true if t is a declared interface
func (h *Hierarchy) IsInterface(t domain.TypeRef) bool {
	c, ok := h.classes[t.Name]
	return ok && t.IsReference() && c.Interface
}

// AllInstanceFields returns the fields of the superclasses of t, root class first, followed by the fields declared
// in t. Unknown classes, arrays and primitives have no fields.
func (h *Hierarchy) AllInstanceFields(t domain.TypeRef) []domain.FieldRef {
	if !t.IsReference() {
		return nil
	}
	chain, err := h.superChain(t.Name)
	if err != nil {
		return nil
	}
	var fields []domain.FieldRef
	for i := len(chain) - 1; i >= 0; i-- {
		for _, f := range chain[i].Fields {
			fields = append(fields, domain.FieldRef{Class: chain[i].Name, Name: f.Name, Type: f.Type})
		}
	}
	return fields
}

// superChain returns the class named name followed by its declared superclasses. Superclasses that are not declared
// end the chain.
func (h *Hierarchy) superChain(name string) ([]*Class, error) {
	var chain []*Class
	seen := map[string]bool{}
	for cur, ok := h.classes[name]; ok; cur, ok = h.classes[cur.Super] {
		if seen[cur.Name] {
			return nil, fmt.Errorf("cycle in the superclasses of %s", name)
		}
		seen[cur.Name] = true
		chain = append(chain, cur)
		if cur.Super == "" {
			break
		}
	}
	return chain, nil
}
