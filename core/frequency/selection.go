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

package frequency

import (
	"fmt"

	"github.com/google/frequentia/core/grouping"
	"github.com/google/frequentia/core/tables"
)

// IsSelected reports whether every source row of bucket i is selected in
// the source view. Nothing is cached between calls.
func (s *Summary) IsSelected(i int) bool {
	b, err := s.Table().Bucket(i)
	return err == nil && b.SelectedIn(s.source.Selection())
}

// Select selects every source row of bucket i. It returns the number of
// rows that were not selected before.
func (s *Summary) Select(i int) (int, error) {
	b, err := s.Table().Bucket(i)
	if err != nil {
		return 0, err
	}
	return s.selectBucket(b), nil
}

// Unselect unselects every source row of bucket i. It returns the number
// of rows that were selected before.
func (s *Summary) Unselect(i int) (int, error) {
	b, err := s.Table().Bucket(i)
	if err != nil {
		return 0, err
	}
	return s.unselectBucket(b), nil
}

// Toggle unselects bucket i if all its rows are selected, and selects it
// otherwise.
func (s *Summary) Toggle(i int) (int, error) {
	b, err := s.Table().Bucket(i)
	if err != nil {
		return 0, err
	}
	if b.SelectedIn(s.source.Selection()) {
		return s.unselectBucket(b), nil
	}
	return s.selectBucket(b), nil
}

// SelectAll selects the rows of every bucket of the published table.
func (s *Summary) SelectAll() int {
	n := 0
	for _, b := range s.Table().Buckets {
		n += s.selectBucket(b)
	}
	return n
}

// UnselectAll unselects the rows of every bucket of the published table.
func (s *Summary) UnselectAll() int {
	n := 0
	for _, b := range s.Table().Buckets {
		n += s.unselectBucket(b)
	}
	return n
}

func (s *Summary) selectBucket(b *grouping.Bucket) int {
	n := s.source.Selection().Select(b.Members)
	s.log.V(1).Info("selected bucket", "bucket", b.Label, "rows", n)
	return n
}

func (s *Summary) unselectBucket(b *grouping.Bucket) int {
	n := s.source.Selection().Unselect(b.Members)
	s.log.V(1).Info("unselected bucket", "bucket", b.Label, "rows", n)
	return n
}

// DrillDown returns a new view of the source holding only the rows of
// bucket i, named "<source>_<label>" and ordered by the summarized column.
func (s *Summary) DrillDown(i int) (*tables.TableView, error) {
	b, err := s.Table().Bucket(i)
	if err != nil {
		return nil, err
	}
	sub, err := s.source.Subset(s.source.Name()+"_"+b.Label, b.Members)
	if err != nil {
		return nil, err
	}
	if err := sub.SortBy(tables.SortKey{Column: s.column.ColumnDef().Name()}); err != nil {
		return nil, err
	}
	return sub, nil
}

// DrillSelected returns a new view of the selected source rows, named
// "<source>_selected".
func (s *Summary) DrillSelected() (*tables.TableView, error) {
	rows := s.source.Selection().Rows()
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows selected in %q", s.source.Name())
	}
	return s.source.Subset(s.source.Name()+"_selected", rows)
}
