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


// Package pointsto defines the interface of the points-to oracle consumed by the taint seeding layer, and a
// table-backed oracle that serves a frozen snapshot of a points-to analysis.
package pointsto

import (
	"fmt"
	"sort"

	"github.com/awslabs/ar-droid-tools/analysis/domain"
)

// A Key is a heap pointer key: a location that can hold references to abstract objects.
type Key interface {
	fmt.Stringer
	isKey()
}

// LocalKey is the pointer key of a local value in a call graph node.
type LocalKey struct {
	Node  domain.NodeID
	Value int
}

// FieldKey is the pointer key of an instance field of an abstract object.
type FieldKey struct {
	Instance domain.InstanceID
	Field    domain.FieldRef
}

func (LocalKey) isKey() {}
func (FieldKey) isKey() {}

func (k LocalKey) String() string {
	return fmt.Sprintf("[n%d, v%d]", k.Node, k.Value)
}

func (k FieldKey) String() string {
	return fmt.Sprintf("[%s.%s]", k.Instance, k.Field.Name)
}

// Oracle answers "what abstract objects may this pointer reference".
// For a fixed analysis snapshot, answers must be deterministic. An empty answer is valid and means that the analysis
// does not model any object for that key.
type Oracle interface {
	PointsTo(key Key) []domain.InstanceID
}

// Table is an Oracle backed by an explicit table. The zero value is not usable; use NewTable.
type Table struct {
	sets map[Key]map[domain.InstanceID]bool
}

// NewTable returns an empty points-to table
func NewTable() *Table {
	return &Table{sets: map[Key]map[domain.InstanceID]bool{}}
}

// Add records that key may point to each of the instances
func (t *Table) Add(key Key, instances ...domain.InstanceID) {
	set, ok := t.sets[key]
	if !ok {
		set = map[domain.InstanceID]bool{}
		t.sets[key] = set
	}
	for _, i := range instances {
		set[i] = true
	}
}

// Len returns the number of keys that have a points-to set in the table
func (t *Table) Len() int {
	return len(t.sets)
}

// PointsTo returns the instances key may point to, sorted so that the answer does not depend on map iteration order.
func (t *Table) PointsTo(key Key) []domain.InstanceID {
	set := t.sets[key]
	res := make([]domain.InstanceID, 0, len(set))
	for i := range set {
		res = append(res, i)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].String() < res[j].String() })
	return res
}

// Empty is an oracle that does not model any object.
type Empty struct{}

// PointsTo always returns nil
func (Empty) PointsTo(Key) []domain.InstanceID {
	return nil
}
