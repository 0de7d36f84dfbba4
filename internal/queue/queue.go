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


// Package queue implements a first-in first-out worklist.
package queue

import "errors"

// Queue is a FIFO queue. The zero value is an empty queue ready to use.
type Queue[E any] struct {
	elements []E
}

// ErrEmpty is the value Pop panics with when the queue is empty.
var ErrEmpty = errors.New("queue is empty")

// Push adds e at the back of the queue.
func (q *Queue[E]) Push(e E) {
	q.elements = append(q.elements, e)
}

// PushAll adds all the elements at the back of the queue, in order.
func (q *Queue[E]) PushAll(es ...E) {
	q.elements = append(q.elements, es...)
}

// Empty returns true when there is no element in the queue.
func (q *Queue[E]) Empty() bool {
	return len(q.elements) == 0
}

// Len returns the number of elements in the queue.
func (q *Queue[E]) Len() int {
	return len(q.elements)
}

// Pop removes and returns the element at the front of the queue. Panics with ErrEmpty if the queue is empty.
func (q *Queue[E]) Pop() E {
	if q.Empty() {
		panic(ErrEmpty)
	}
	e := q.elements[0]
	var zero E
	q.elements[0] = zero
	q.elements = q.elements[1:]
	return e
}
