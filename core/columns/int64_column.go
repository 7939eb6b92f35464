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

package columns

import (
	"strconv"
)

// Int64Column is optimized for int64 numeric data.
// It stores int64 values directly without key mapping overhead.
type Int64Column struct {
	columnDef *ColumnDef
	data      []int64
	nulls
}

// NewInt64Column creates a new int64 column
func NewInt64Column(columnDef *ColumnDef) *Int64Column {
	return &Int64Column{
		columnDef: columnDef,
		data:      make([]int64, 0),
	}
}

func (c *Int64Column) Append(value int64) {
	c.data = append(c.data, value)
}

// AppendNull appends a missing value.
func (c *Int64Column) AppendNull() {
	c.mark(len(c.data))
	c.data = append(c.data, 0)
}

func (c *Int64Column) Length() int {
	return len(c.data)
}

func (c *Int64Column) ColumnDef() *ColumnDef {
	return c.columnDef
}

func (c *Int64Column) Kind() Kind {
	return KindInteger
}

// GetString returns the string representation of the value at index i
func (c *Int64Column) GetString(i uint32) (string, error) {
	if i >= uint32(len(c.data)) {
		return "", outOfBounds(i, len(c.data))
	}
	if c.isMissing(i) {
		return "", nil
	}
	return strconv.FormatInt(c.data[i], 10), nil
}

// GetValue returns the value at index i and whether it is present.
func (c *Int64Column) GetValue(i uint32) (int64, bool, error) {
	if i >= uint32(len(c.data)) {
		return 0, false, outOfBounds(i, len(c.data))
	}
	return c.data[i], !c.isMissing(i), nil
}

func (c *Int64Column) GetRaw(i uint32) (any, error) {
	v, ok, err := c.GetValue(i)
	if err != nil || !ok {
		return nil, err
	}
	return v, nil
}
