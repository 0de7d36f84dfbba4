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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDescriptor(t *testing.T) {
	tests := []struct {
		descriptor string
		kind       TypeKind
		source     string
	}{
		{"I", Primitive, "int"},
		{"Z", Primitive, "boolean"},
		{"[I", Array, "int[]"},
		{"[[Ljava/lang/String;", Array, "java.lang.String[][]"},
		{"Landroid/content/Intent;", Reference, "android.content.Intent"},
		{"Q", Unknown, "Q"},
		{"L;", Unknown, "L;"},
		{"Ljava/lang/Object", Unknown, "Ljava/lang/Object"},
		{"[", Unknown, "["},
	}
	for _, test := range tests {
		t.Run(test.descriptor, func(t *testing.T) {
			typ := ParseDescriptor(test.descriptor)
			assert.Equal(t, test.kind, typ.Kind)
			assert.Equal(t, test.descriptor, typ.Name)
			assert.Equal(t, test.source, SourceName(typ))
		})
	}
}

func TestArrayOf(t *testing.T) {
	assert.Equal(t, ParseDescriptor("[Landroid/os/Bundle;"), ArrayOf(ParseDescriptor("Landroid/os/Bundle;")))
	assert.Equal(t, TypeRef{Name: "Foo[]", Kind: Array}, ArrayOf(ClassType("Foo")))
}

func TestElementsAreStructurallyEqual(t *testing.T) {
	bundle := ClassType("Landroid/os/Bundle;")
	field := FieldRef{Class: bundle.Name, Name: "mMap", Type: ClassType("Ljava/util/Map;")}

	set := ElementSet{}
	assert.True(t, set.Add(LocalElement{Node: 3, Value: 2}))
	assert.False(t, set.Add(LocalElement{Node: 3, Value: 2}))
	assert.True(t, set.Add(LocalElement{Node: 4, Value: 2}))
	assert.True(t, set.Add(FieldElement{Owner: ConcreteTypeKey(bundle), Field: field}))
	assert.False(t, set.Add(FieldElement{Owner: ConcreteTypeKey(bundle), Field: field}))
	assert.True(t, set.Add(InstanceKeyElement{Instance: AllocationSite(bundle, "n1@4")}))
	assert.True(t, set.Add(InstanceKeyElement{Instance: ConcreteTypeKey(bundle)}))
	assert.Len(t, set, 5)
}

func TestConstructorsValidate(t *testing.T) {
	_, err := NewLocalElement(-1, 1)
	assert.True(t, errors.Is(err, ErrInvalidElement))
	_, err = NewLocalElement(1, -1)
	assert.True(t, errors.Is(err, ErrInvalidElement))

	_, err = NewInstanceKeyElement(InstanceID{})
	assert.True(t, errors.Is(err, ErrInvalidElement))

	owner := ConcreteTypeKey(ClassType("LFoo;"))
	_, err = NewFieldElement(owner, FieldRef{Class: "LFoo;", Name: "x"})
	assert.True(t, errors.Is(err, ErrInvalidElement))

	e, err := NewFieldElement(owner, FieldRef{Class: "LFoo;", Name: "x", Type: ParseDescriptor("I")})
	require.NoError(t, err)
	assert.Equal(t, "x", e.Field.Name)
}

func TestElementSetSortedIsDeterministic(t *testing.T) {
	set := ElementSet{}
	for i := 10; i > 0; i-- {
		set.Add(LocalElement{Node: 1, Value: i})
	}
	first := set.Sorted()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, set.Sorted())
	}
	other := ElementSet{}
	other.AddAll(set)
	assert.True(t, set.Equal(other))
}

func TestMethodSignature(t *testing.T) {
	m := MethodRef{Package: "android/content", Class: "BroadcastReceiver", Name: "onReceive",
		Descriptor: "(Landroid/content/Context;Landroid/content/Intent;)V"}
	assert.Equal(t, "android/content.BroadcastReceiver.onReceive(Landroid/content/Context;Landroid/content/Intent;)V",
		m.Signature())
	assert.Equal(t, "main", MethodRef{Name: "main"}.Signature())
}
