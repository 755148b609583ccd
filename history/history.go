// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package history keeps undo and redo stacks of snapshots.
package history

// DefaultLimit is the undo depth used when none is configured.
const DefaultLimit = 100

// Stack holds undo and redo snapshots, most recent last.
type Stack[T any] struct {
	undo  []T
	redo  []T
	limit int
}

// New creates a stack keeping at most limit undo snapshots. A limit of 0
// keeps everything.
func New[T any](limit int) *Stack[T] {
	if limit < 0 {
		limit = 0
	}
	return &Stack[T]{limit: limit}
}

// Record saves the state before a mutation and discards the redo stack.
// When the limit is reached the oldest snapshot is dropped.
func (s *Stack[T]) Record(before T) {
	s.undo = append(s.undo, before)
	if s.limit > 0 && len(s.undo) > s.limit {
		var zero T
		drop := len(s.undo) - s.limit
		for i := 0; i < drop; i++ {
			s.undo[i] = zero
		}
		s.undo = append(s.undo[:0], s.undo[drop:]...)
	}
	clear(s.redo)
	s.redo = s.redo[:0]
}

// Undo returns the previous state and saves current for Redo. It reports
// false, leaving both stacks alone, when there is nothing to undo.
func (s *Stack[T]) Undo(current T) (T, bool) {
	prev, ok := pop(&s.undo)
	if !ok {
		return prev, false
	}
	s.redo = append(s.redo, current)
	return prev, true
}

// Redo is the inverse of Undo.
func (s *Stack[T]) Redo(current T) (T, bool) {
	next, ok := pop(&s.redo)
	if !ok {
		return next, false
	}
	s.undo = append(s.undo, current)
	return next, true
}

// CanUndo reports whether Undo would succeed.
func (s *Stack[T]) CanUndo() bool { return len(s.undo) > 0 }

// CanRedo reports whether Redo would succeed.
func (s *Stack[T]) CanRedo() bool { return len(s.redo) > 0 }

// UndoDepth returns the number of undo snapshots.
func (s *Stack[T]) UndoDepth() int { return len(s.undo) }

// RedoDepth returns the number of redo snapshots.
func (s *Stack[T]) RedoDepth() int { return len(s.redo) }

// Limit returns the configured undo depth, 0 meaning unbounded.
func (s *Stack[T]) Limit() int { return s.limit }

// Clear drops every snapshot.
func (s *Stack[T]) Clear() {
	s.undo = nil
	s.redo = nil
}

func pop[T any](stack *[]T) (T, bool) {
	var zero T
	n := len(*stack)
	if n == 0 {
		return zero, false
	}
	v := (*stack)[n-1]
	(*stack)[n-1] = zero
	*stack = (*stack)[:n-1]
	return v, true
}
