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

// Package grouping partitions the rows of a view into buckets, either by
// exact value or by equal-frequency numeric ranges, and holds the
// resulting frequency table.
package grouping

import (
	"errors"
	"fmt"

	"github.com/google/frequentia/core/columns"
	"github.com/google/frequentia/core/tables"
)

// ErrorsLabel labels the bucket holding rows without a numeric value.
const ErrorsLabel = "errors"

// ErrBucketOutOfRange is returned when a bucket index does not exist.
var ErrBucketOutOfRange = errors.New("bucket index out of range")

// Mode is how a frequency table was built.
type Mode int

const (
	// Categorical groups rows by exact value.
	Categorical Mode = iota
	// Binned groups numeric rows into equal-frequency ranges.
	Binned
)

func (m Mode) String() string {
	if m == Binned {
		return "binned"
	}
	return "categorical"
}

// Bucket is a group of rows sharing a value or a numeric range.
type Bucket struct {
	Label string
	// Key is the raw value shared by the members of a categorical bucket.
	Key     any
	Members []uint32
	// Aggregates holds one reduced value per FrequencyTable.Derived column.
	Aggregates []any
}

// Count returns the number of rows in the bucket.
func (b *Bucket) Count() int {
	return len(b.Members)
}

// SelectedIn reports whether every member of the bucket is selected in sel.
func (b *Bucket) SelectedIn(sel *tables.Selection) bool {
	return sel != nil && sel.ContainsAll(b.Members)
}

// DerivedColumn describes a per-bucket aggregate column.
type DerivedColumn struct {
	Name string
	Kind columns.Kind
}

// FrequencyTable is the ordered set of buckets for one column. It is built
// in one piece and never modified afterwards. Bucket selection is not part
// of the table; see Bucket.SelectedIn.
type FrequencyTable struct {
	Name      string
	Column    string
	Mode      Mode
	LabelKind columns.Kind
	Buckets   []*Bucket
	// Largest is the size of the largest bucket plus one; it scales the
	// histogram so that no bar reaches the full width. Zero when empty.
	Largest int
	// Total is the number of source rows the table was built from.
	Total   int
	Derived []DerivedColumn
}

// NewFrequencyTable returns an empty table.
func NewFrequencyTable(name, column string) *FrequencyTable {
	return &FrequencyTable{Name: name, Column: column}
}

// Len returns the number of buckets.
func (ft *FrequencyTable) Len() int {
	return len(ft.Buckets)
}

// Bucket returns the i-th bucket.
func (ft *FrequencyTable) Bucket(i int) (*Bucket, error) {
	if i < 0 || i >= len(ft.Buckets) {
		return nil, fmt.Errorf("%w: %d (table %q has %d buckets)", ErrBucketOutOfRange, i, ft.Name, len(ft.Buckets))
	}
	return ft.Buckets[i], nil
}

func (ft *FrequencyTable) setLargest() {
	ft.Largest = 0
	for _, b := range ft.Buckets {
		if b.Count()+1 > ft.Largest {
			ft.Largest = b.Count() + 1
		}
	}
}
