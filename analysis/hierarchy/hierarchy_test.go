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


package hierarchy

import (
	"errors"
	"testing"

	"github.com/awslabs/ar-droid-tools/analysis/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	objectT   = domain.ParseDescriptor("Ljava/lang/Object;")
	baseT     = domain.ParseDescriptor("Lcom/example/Base;")
	derivedT  = domain.ParseDescriptor("Lcom/example/Derived;")
	listenerT = domain.ParseDescriptor("Lcom/example/Listener;")
	intT      = domain.ParseDescriptor("I")
)

func testHierarchy(t *testing.T) *Hierarchy {
	h, err := New(
		Class{Name: objectT.Name},
		Class{Name: baseT.Name, Super: objectT.Name, Fields: []FieldDecl{{Name: "count", Type: intT}}},
		Class{Name: derivedT.Name, Super: baseT.Name, Fields: []FieldDecl{{Name: "listener", Type: listenerT}}},
		Class{Name: listenerT.Name, Interface: true},
	)
	require.NoError(t, err)
	return h
}

func TestAllInstanceFieldsIncludesInheritedFieldsFirst(t *testing.T) {
	h := testHierarchy(t)
	fields := h.AllInstanceFields(derivedT)
	require.Len(t, fields, 2)
	assert.Equal(t, domain.FieldRef{Class: baseT.Name, Name: "count", Type: intT}, fields[0])
	assert.Equal(t, domain.FieldRef{Class: derivedT.Name, Name: "listener", Type: listenerT}, fields[1])
	assert.Empty(t, h.AllInstanceFields(domain.ArrayOf(derivedT)))
	assert.Empty(t, h.AllInstanceFields(domain.ParseDescriptor("Lcom/example/Missing;")))
}

func TestLookupConcreteType(t *testing.T) {
	h := testHierarchy(t)

	ik, err := h.LookupConcreteType(derivedT)
	require.NoError(t, err)
	assert.Equal(t, domain.ConcreteTypeKey(derivedT), ik)

	arr := domain.ArrayOf(intT)
	ik, err = h.LookupConcreteType(arr)
	require.NoError(t, err)
	assert.Equal(t, domain.ConcreteTypeKey(arr), ik)

	_, err = h.LookupConcreteType(listenerT)
	assert.True(t, errors.Is(err, ErrNotConcrete))

	_, err = h.LookupConcreteType(domain.ParseDescriptor("Lcom/example/Missing;"))
	assert.True(t, errors.Is(err, ErrUnknownClass))

	_, err = h.LookupConcreteType(intT)
	assert.True(t, errors.Is(err, ErrUnknownClass))
}

func TestIsInterface(t *testing.T) {
	h := testHierarchy(t)
	assert.True(t, h.IsInterface(listenerT))
	assert.False(t, h.IsInterface(baseT))
	assert.False(t, h.IsInterface(domain.ParseDescriptor("Lcom/example/Missing;")))
}

func TestNewRejectsInvalidHierarchies(t *testing.T) {
	_, err := New(Class{Name: "A"}, Class{Name: "A"})
	assert.Error(t, err)

	_, err = New(Class{Name: "A", Super: "B"}, Class{Name: "B", Super: "A"})
	assert.Error(t, err)

	h, err := New(Class{Name: "A", Super: "Undeclared"})
	require.NoError(t, err)
	assert.Equal(t, 1, h.Len())
}
