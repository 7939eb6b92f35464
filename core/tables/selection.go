/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package tables

import (
	"slices"
	"sync"
)

// Selection is a set of selected rows. It is safe for concurrent use, so
// several summaries over the same table may select and unselect at once.
type Selection struct {
	mu   sync.RWMutex
	rows map[uint32]struct{}
}

func NewSelection() *Selection {
	return &Selection{rows: make(map[uint32]struct{})}
}

// Select adds rows to the selection and returns how many were not selected before.
func (s *Selection) Select(rows []uint32) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	added := 0
	for _, r := range rows {
		if _, ok := s.rows[r]; !ok {
			s.rows[r] = struct{}{}
			added++
		}
	}
	return added
}

// Unselect removes rows from the selection and returns how many were selected.
func (s *Selection) Unselect(rows []uint32) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for _, r := range rows {
		if _, ok := s.rows[r]; ok {
			delete(s.rows, r)
			removed++
		}
	}
	return removed
}

func (s *Selection) IsSelected(row uint32) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rows[row]
	return ok
}

func (s *Selection) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// ContainsAll reports whether rows is non-empty and every row in it is
// selected.
func (s *Selection) ContainsAll(rows []uint32) bool {
	if len(rows) == 0 {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range rows {
		if _, ok := s.rows[r]; !ok {
			return false
		}
	}
	return true
}

// Rows returns the selected rows in ascending order.
func (s *Selection) Rows() []uint32 {
	s.mu.RLock()
	out := make([]uint32, 0, len(s.rows))
	for r := range s.rows {
		out = append(out, r)
	}
	s.mu.RUnlock()
	slices.Sort(out)
	return out
}
