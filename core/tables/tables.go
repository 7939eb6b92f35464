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

	"github.com/google/frequentia/core/columns"
)

// DataTable is an immutable-after-load set of equally long columns.
// Rows are identified by their uint32 index.
type DataTable struct {
	columns map[string]columns.IDataColumn
	order   []string
	length  int
}

func NewDataTable() *DataTable {
	return &DataTable{
		columns: make(map[string]columns.IDataColumn),
	}
}

// AddColumn adds a column. All columns of a table must have the same length.
func (dt *DataTable) AddColumn(col columns.IDataColumn) error {
	name := col.ColumnDef().Name()
	if _, exists := dt.columns[name]; exists {
		return fmt.Errorf("column %q already exists", name)
	}
	if len(dt.order) > 0 && col.Length() != dt.length {
		return fmt.Errorf("column %q has %d rows, table has %d", name, col.Length(), dt.length)
	}
	dt.columns[name] = col
	dt.order = append(dt.order, name)
	dt.length = col.Length()
	return nil
}

func (dt *DataTable) GetColumn(name string) columns.IDataColumn {
	return dt.columns[name]
}

// GetColumnNames returns the column names in the order they were added.
func (dt *DataTable) GetColumnNames() []string {
	names := make([]string, len(dt.order))
	copy(names, dt.order)
	return names
}

// Length returns the number of rows.
func (dt *DataTable) Length() int {
	return dt.length
}
