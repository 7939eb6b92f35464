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
	"sync"

	"github.com/google/frequentia/core/columns"
)

// TableView is an ordered, row-scoped view of a DataTable. The underlying
// DataTable stays immutable; a view owns its row sequence, its selection
// and any extra columns (such as combined key columns) added to it.
type TableView struct {
	baseTable *DataTable
	tableName string
	extra     map[string]columns.IDataColumn
	extraCols []string
	selection *Selection

	mu   sync.RWMutex
	rows []uint32 // nil means every row of baseTable, in order
}

// NewTableView creates a new TableView wrapping a DataTable
func NewTableView(baseTable *DataTable, tableName string) *TableView {
	return &TableView{
		baseTable: baseTable,
		tableName: tableName,
		extra:     make(map[string]columns.IDataColumn),
		selection: NewSelection(),
	}
}

// Name returns the view name.
func (tv *TableView) Name() string {
	return tv.tableName
}

// GetBaseTable returns the underlying immutable DataTable
func (tv *TableView) GetBaseTable() *DataTable {
	return tv.baseTable
}

// Selection returns the selected rows of this view.
func (tv *TableView) Selection() *Selection {
	return tv.selection
}

// Rows returns a snapshot of the view's row sequence. Later calls to
// SetRows do not affect a snapshot already taken.
func (tv *TableView) Rows() []uint32 {
	tv.mu.RLock()
	defer tv.mu.RUnlock()
	if tv.rows == nil {
		out := make([]uint32, tv.baseTable.Length())
		for i := range out {
			out[i] = uint32(i)
		}
		return out
	}
	out := make([]uint32, len(tv.rows))
	copy(out, tv.rows)
	return out
}

// Length returns the number of rows in the view.
func (tv *TableView) Length() int {
	tv.mu.RLock()
	defer tv.mu.RUnlock()
	if tv.rows == nil {
		return tv.baseTable.Length()
	}
	return len(tv.rows)
}

// SetRows replaces the row sequence of the view.
func (tv *TableView) SetRows(rows []uint32) error {
	n := uint32(tv.baseTable.Length())
	for _, r := range rows {
		if r >= n {
			return fmt.Errorf("row %d out of range for table %q (%d rows)", r, tv.tableName, n)
		}
	}
	out := make([]uint32, len(rows))
	copy(out, rows)
	tv.mu.Lock()
	tv.rows = out
	tv.mu.Unlock()
	return nil
}

// AddColumn adds a column to this view only; the base table is unchanged.
func (tv *TableView) AddColumn(col columns.IDataColumn) error {
	name := col.ColumnDef().Name()
	if col.Length() != tv.baseTable.Length() {
		return fmt.Errorf("column %q has %d rows, table %q has %d", name, col.Length(), tv.tableName, tv.baseTable.Length())
	}
	tv.mu.Lock()
	defer tv.mu.Unlock()
	if tv.baseTable.GetColumn(name) != nil || tv.extra[name] != nil {
		return fmt.Errorf("column %q already exists in %q", name, tv.tableName)
	}
	tv.extra[name] = col
	tv.extraCols = append(tv.extraCols, name)
	return nil
}

// GetColumn retrieves a column by name, checking both base table and view columns
func (tv *TableView) GetColumn(name string) columns.IDataColumn {
	if col := tv.baseTable.GetColumn(name); col != nil {
		return col
	}
	tv.mu.RLock()
	defer tv.mu.RUnlock()
	if col, ok := tv.extra[name]; ok {
		return col
	}
	return nil
}

// GetColumnNames returns base table columns followed by view columns.
func (tv *TableView) GetColumnNames() []string {
	tv.mu.RLock()
	defer tv.mu.RUnlock()
	return append(tv.baseTable.GetColumnNames(), tv.extraCols...)
}

// Columns returns a snapshot of every column of the view in GetColumnNames
// order. Columns added later do not appear in a snapshot already taken.
func (tv *TableView) Columns() []columns.IDataColumn {
	tv.mu.RLock()
	defer tv.mu.RUnlock()
	names := tv.baseTable.GetColumnNames()
	out := make([]columns.IDataColumn, 0, len(names)+len(tv.extraCols))
	for _, name := range names {
		out = append(out, tv.baseTable.GetColumn(name))
	}
	for _, name := range tv.extraCols {
		out = append(out, tv.extra[name])
	}
	return out
}

// Subset returns a new view over the same table holding exactly rows, in
// the given order. The new view shares the view columns and starts with
// an empty selection.
func (tv *TableView) Subset(name string, rows []uint32) (*TableView, error) {
	sub := NewTableView(tv.baseTable, name)
	tv.mu.RLock()
	for _, col := range tv.extraCols {
		sub.extra[col] = tv.extra[col]
	}
	sub.extraCols = append(sub.extraCols, tv.extraCols...)
	tv.mu.RUnlock()
	if err := sub.SetRows(rows); err != nil {
		return nil, err
	}
	return sub, nil
}
