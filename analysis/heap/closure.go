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


// Package heap computes the heap reachability closure of abstract objects: the instance fields and the objects
// reachable from a root object through its fields, as far as the points-to analysis and the class hierarchy can
// tell.
package heap

import (
	"github.com/awslabs/ar-droid-tools/analysis/config"
	"github.com/awslabs/ar-droid-tools/analysis/domain"
	"github.com/awslabs/ar-droid-tools/analysis/hierarchy"
	"github.com/awslabs/ar-droid-tools/analysis/pointsto"
	"github.com/awslabs/ar-droid-tools/internal/queue"
)

// Closure returns the set of domain elements reachable from root: the instance key of every object visited, a field
// element for every instance field of the non-array objects visited, and the objects the reference and array fields
// may point to.
//
// When the points-to set of a field is empty, one placeholder object of the field's static type is added, unless the
// field type is an interface. Objects reached through array fields are added but not explored, and so are objects
// of array type.
//
// The result depends only on root, pta and cha: it does not depend on the order in which objects are explored, and
// the traversal terminates on cyclic object graphs.
func Closure(logger *config.LogGroup, root domain.InstanceID, pta pointsto.Oracle,
	cha hierarchy.ClassHierarchy) domain.ElementSet {
	c := &closureState{
		logger:  logger,
		pta:     pta,
		cha:     cha,
		result:  domain.ElementSet{},
		visited: map[domain.InstanceID]bool{},
	}
	c.enqueue(root)
	for !c.worklist.Empty() {
		c.visit(c.worklist.Pop())
	}
	return c.result
}

type closureState struct {
	logger   *config.LogGroup
	pta      pointsto.Oracle
	cha      hierarchy.ClassHierarchy
	result   domain.ElementSet
	visited  map[domain.InstanceID]bool
	worklist queue.Queue[domain.InstanceID]
}

// enqueue schedules ik for exploration if it has never been scheduled before
func (c *closureState) enqueue(ik domain.InstanceID) {
	if c.visited[ik] {
		return
	}
	c.visited[ik] = true
	c.worklist.Push(ik)
}

func (c *closureState) visit(ik domain.InstanceID) {
	c.result.Add(domain.InstanceKeyElement{Instance: ik})
	if ik.Type.IsArray() {
		return
	}
	for _, field := range c.cha.AllInstanceFields(ik.Type) {
		c.visitField(ik, field)
	}
}

func (c *closureState) visitField(ik domain.InstanceID, field domain.FieldRef) {
	switch field.Type.Kind {
	case domain.Primitive:
		c.result.Add(domain.FieldElement{Owner: ik, Field: field})
	case domain.Array:
		c.result.Add(domain.FieldElement{Owner: ik, Field: field})
		pts := c.pta.PointsTo(pointsto.FieldKey{Instance: ik, Field: field})
		if len(pts) == 0 {
			if placeholder, ok := c.placeholder(field); ok {
				c.result.Add(domain.InstanceKeyElement{Instance: placeholder})
			}
			return
		}
		for _, obj := range pts {
			c.result.Add(domain.InstanceKeyElement{Instance: obj})
		}
	case domain.Reference:
		c.result.Add(domain.FieldElement{Owner: ik, Field: field})
		pts := c.pta.PointsTo(pointsto.FieldKey{Instance: ik, Field: field})
		if len(pts) == 0 {
			if c.cha.IsInterface(field.Type) {
				c.logger.Tracef("no placeholder for field %s of interface type %s", field, field.Type)
				return
			}
			if placeholder, ok := c.placeholder(field); ok {
				c.result.Add(domain.InstanceKeyElement{Instance: placeholder})
				c.enqueue(placeholder)
			}
			return
		}
		for _, obj := range pts {
			c.result.Add(domain.InstanceKeyElement{Instance: obj})
			c.enqueue(obj)
		}
	default:
		c.logger.Warnf("field %s of %s has a type of unknown kind %q, skipping it", field, ik, field.Type)
	}
}

// placeholder returns the abstract object that represents the instances of the static type of field
func (c *closureState) placeholder(field domain.FieldRef) (domain.InstanceID, bool) {
	ik, err := c.cha.LookupConcreteType(field.Type)
	if err != nil {
		c.logger.Warnf("could not synthesize an object for field %s: %v", field, err)
		return domain.InstanceID{}, false
	}
	return ik, true
}

// Closer computes closures and memoizes them for the duration of an analysis run. The points-to oracle and the class
// hierarchy must not change while the Closer is in use.
type Closer struct {
	logger *config.LogGroup
	pta    pointsto.Oracle
	cha    hierarchy.ClassHierarchy
	cache  map[domain.InstanceID]domain.ElementSet
}

// NewCloser returns a closer that queries pta and cha
func NewCloser(logger *config.LogGroup, pta pointsto.Oracle, cha hierarchy.ClassHierarchy) *Closer {
	return &Closer{
		logger: logger,
		pta:    pta,
		cha:    cha,
		cache:  map[domain.InstanceID]domain.ElementSet{},
	}
}

// Closure returns the heap reachability closure of root. The returned set is shared and must not be modified.
func (c *Closer) Closure(root domain.InstanceID) domain.ElementSet {
	if s, ok := c.cache[root]; ok {
		return s
	}
	s := Closure(c.logger, root, c.pta, c.cha)
	c.cache[root] = s
	c.logger.Tracef("closure of %s: %d elements", root, len(s))
	return s
}

// Len returns the number of closures memoized
func (c *Closer) Len() int {
	return len(c.cache)
}
