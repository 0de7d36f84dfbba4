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


package graphutil

import (
	"sort"

	"github.com/yourbasic/graph"
)

// FindAllElementaryCycles finds all elementary cycles in the graph CGraph, self-loops included.
// This uses Donald B. Johnson's algorithm presented in
// "Finding All The Elementary Circuits of a Directed Graph", 1975
//
// Each cycle starts and ends with its smallest node id. The number of cycles can be exponential in the size of the
// graph; limit bounds the number of cycles returned when positive.
func FindAllElementaryCycles(cg CGraph, limit int) [][]int64 {
	s := &state{limit: limit}
	for start := 0; start < len(cg.Keys); start++ {
		if s.full() {
			break
		}
		fg := Subgraph(cg, cg.Keys[start:])
		// the least node of the subgraph that is in a non-trivial component, or has a self-loop
		least := int64(-1)
		var component map[int64]bool
		for _, c := range graph.StrongComponents(fg) {
			if len(c) == 1 && !fg.Edges[int64(c[0])][int64(c[0])] {
				continue
			}
			sort.Ints(c)
			if least < 0 || int64(c[0]) < least {
				least = int64(c[0])
				component = map[int64]bool{}
				for _, v := range c {
					component[int64(v)] = true
				}
			}
		}
		if least < 0 {
			break
		}
		s.blocked = map[int64]bool{}
		s.blist = map[int64]map[int64]bool{}
		s.stack = nil
		s.circuit(least, least, Subgraph(fg, keysOf(component)))
		for start < len(cg.Keys) && cg.Keys[start] < least {
			start++
		}
	}
	return s.cycles
}

func keysOf(m map[int64]bool) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

type state struct {
	blocked map[int64]bool
	blist   map[int64]map[int64]bool
	stack   []int64
	cycles  [][]int64
	limit   int
}

func (s *state) full() bool {
	return s.limit > 0 && len(s.cycles) >= s.limit
}

func (s *state) unblock(u int64) {
	s.blocked[u] = false
	for w := range s.blist[u] {
		delete(s.blist[u], w)
		if s.blocked[w] {
			s.unblock(w)
		}
	}
}

func (s *state) circuit(v int64, i int64, g CGraph) bool {
	f := false
	s.stack = append(s.stack, v)
	s.blocked[v] = true
	for _, w := range sortedKeys(g.Edges[v]) {
		if s.full() {
			break
		}
		if w == i {
			cycle := make([]int64, len(s.stack), len(s.stack)+1)
			copy(cycle, s.stack)
			s.cycles = append(s.cycles, append(cycle, w))
			f = true
		} else if !s.blocked[w] {
			if s.circuit(w, i, g) {
				f = true
			}
		}
	}

	if f {
		s.unblock(v)
	} else {
		for w := range g.Edges[v] {
			if s.blist[w] == nil {
				s.blist[w] = map[int64]bool{}
			}
			s.blist[w][v] = true
		}
	}
	s.stack = s.stack[:len(s.stack)-1]
	return f
}
