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
	"fmt"
	"slices"

	"github.com/google/frequentia/core/columns"
)

// SortKey names a column and its sort direction.
type SortKey struct {
	Column     string
	Descending bool
}

// SortBy reorders the view's rows by the given keys. The sort is stable, so
// rows comparing equal on every key keep their relative order.
func (tv *TableView) SortBy(keys ...SortKey) error {
	cols := make([]columns.IDataColumn, len(keys))
	for i, k := range keys {
		cols[i] = tv.GetColumn(k.Column)
		if cols[i] == nil {
			return fmt.Errorf("sort: column %q not found in %q", k.Column, tv.tableName)
		}
	}
	rows := tv.Rows()
	slices.SortStableFunc(rows, func(a, b uint32) int {
		for i, col := range cols {
			cmp := columns.CompareAtIndex(col, a, b)
			if cmp == 0 {
				continue
			}
			if keys[i].Descending {
				return -cmp
			}
			return cmp
		}
		return 0
	})
	tv.mu.Lock()
	tv.rows = rows
	tv.mu.Unlock()
	return nil
}
