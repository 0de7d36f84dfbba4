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


package flow

import (
	"fmt"
	"sort"
	"strings"

	"github.com/awslabs/ar-droid-tools/analysis/cg"
	"github.com/awslabs/ar-droid-tools/analysis/domain"
	"golang.org/x/exp/maps"
)

// Facts is the taint fact map: for each program point, the sets of domain elements seeded under each flow type.
// The zero value is not usable, use NewFacts.
//
// Insertion is idempotent and commutative; a Facts is owned by a single analysis run and is not safe for concurrent
// use.
type Facts struct {
	points map[cg.ProgramPoint]map[Type]domain.ElementSet
}

// NewFacts returns an empty fact map
func NewFacts() *Facts {
	return &Facts{points: map[cg.ProgramPoint]map[Type]domain.ElementSet{}}
}

// Add records element e under flow t at program point p. Returns true if the fact was not already present.
// Panics if t or e is nil: facts without provenance are a programming error.
func (f *Facts) Add(p cg.ProgramPoint, t Type, e domain.Element) bool {
	if t == nil {
		panic(fmt.Sprintf("flow.Facts.Add: nil flow type for %v at %s", e, p))
	}
	if e == nil {
		panic(fmt.Sprintf("flow.Facts.Add: nil element for %s at %s", t, p))
	}
	return f.set(p, t).Add(e)
}

// AddAll records all the elements of s under flow t at program point p. Returns the number of new facts.
func (f *Facts) AddAll(p cg.ProgramPoint, t Type, s domain.ElementSet) int {
	if t == nil {
		panic(fmt.Sprintf("flow.Facts.AddAll: nil flow type at %s", p))
	}
	if len(s) == 0 {
		return 0
	}
	n := 0
	set := f.set(p, t)
	for e := range s {
		if set.Add(e) {
			n++
		}
	}
	return n
}

// Merge adds all the facts of other into f
func (f *Facts) Merge(other *Facts) {
	for p, flows := range other.points {
		for t, s := range flows {
			f.AddAll(p, t, s)
		}
	}
}

// Get returns the elements recorded under flow t at program point p. The returned set must not be modified.
func (f *Facts) Get(p cg.ProgramPoint, t Type) domain.ElementSet {
	return f.points[p][t]
}

// Flows returns the flow types that have facts at p, sorted by their string representation
func (f *Facts) Flows(p cg.ProgramPoint) []Type {
	flows := maps.Keys(f.points[p])
	sort.Slice(flows, func(i, j int) bool { return flows[i].String() < flows[j].String() })
	return flows
}

// Points returns the program points that have facts, in increasing order
func (f *Facts) Points() []cg.ProgramPoint {
	points := maps.Keys(f.points)
	sort.Slice(points, func(i, j int) bool { return points[i].Less(points[j]) })
	return points
}

// Len returns the number of (program point, flow type, element) facts
func (f *Facts) Len() int {
	n := 0
	for _, flows := range f.points {
		for _, s := range flows {
			n += len(s)
		}
	}
	return n
}

// Equal returns true when f and other contain the same facts
func (f *Facts) Equal(other *Facts) bool {
	if len(f.points) != len(other.points) {
		return false
	}
	for p, flows := range f.points {
		otherFlows, ok := other.points[p]
		if !ok || len(flows) != len(otherFlows) {
			return false
		}
		for t, s := range flows {
			if !s.Equal(otherFlows[t]) {
				return false
			}
		}
	}
	return true
}

// String returns a deterministic multi-line representation of the facts
func (f *Facts) String() string {
	var b strings.Builder
	for _, p := range f.Points() {
		fmt.Fprintf(&b, "%s:\n", p)
		for _, t := range f.Flows(p) {
			fmt.Fprintf(&b, "  %s:\n", t)
			for _, e := range f.points[p][t].Sorted() {
				fmt.Fprintf(&b, "    %s\n", e)
			}
		}
	}
	return b.String()
}

func (f *Facts) set(p cg.ProgramPoint, t Type) domain.ElementSet {
	flows, ok := f.points[p]
	if !ok {
		flows = map[Type]domain.ElementSet{}
		f.points[p] = flows
	}
	s, ok := flows[t]
	if !ok {
		s = domain.ElementSet{}
		flows[t] = s
	}
	return s
}
