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
	"fmt"
	"strings"
)

// CombinedColumn presents several key columns as one string column, so that
// rows can be summarized by the combination of their key values.
type CombinedColumn struct {
	columnDef *ColumnDef
	parts     []IDataColumn
	sep       string
}

// NewCombinedColumn joins the display values of parts with sep.
// All parts must have the same length.
func NewCombinedColumn(columnDef *ColumnDef, sep string, parts ...IDataColumn) (*CombinedColumn, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("combined column %q needs at least one column", columnDef.Name())
	}
	n := parts[0].Length()
	for _, p := range parts[1:] {
		if p.Length() != n {
			return nil, fmt.Errorf("combined column %q: column %q has %d rows, want %d",
				columnDef.Name(), p.ColumnDef().Name(), p.Length(), n)
		}
	}
	return &CombinedColumn{columnDef: columnDef, parts: parts, sep: sep}, nil
}

// CombinedName is the conventional name for a combination of columns.
func CombinedName(parts ...IDataColumn) string {
	names := make([]string, len(parts))
	for i, p := range parts {
		names[i] = p.ColumnDef().Name()
	}
	return strings.Join(names, "+")
}

func (c *CombinedColumn) ColumnDef() *ColumnDef {
	return c.columnDef
}

func (c *CombinedColumn) Length() int {
	return c.parts[0].Length()
}

func (c *CombinedColumn) Kind() Kind {
	return KindString
}

// GetString returns the joined display values, or "" if every part is missing.
func (c *CombinedColumn) GetString(i uint32) (string, error) {
	values := make([]string, len(c.parts))
	empty := true
	for k, p := range c.parts {
		s, err := p.GetString(i)
		if err != nil {
			return "", err
		}
		if s != "" {
			empty = false
		}
		values[k] = s
	}
	if empty {
		return "", nil
	}
	return strings.Join(values, c.sep), nil
}

func (c *CombinedColumn) GetRaw(i uint32) (any, error) {
	s, err := c.GetString(i)
	if err != nil {
		return nil, err
	}
	return s, nil
}
