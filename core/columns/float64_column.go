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
	"math"
	"strconv"
)

// Float64Column stores float64 (double) values.
type Float64Column struct {
	columnDef *ColumnDef
	data      []float64
	nulls
}

// NewFloat64Column creates a new float64 column.
func NewFloat64Column(columnDef *ColumnDef) *Float64Column {
	return &Float64Column{
		columnDef: columnDef,
		data:      make([]float64, 0),
	}
}

// ColumnDef returns the column definition.
func (c *Float64Column) ColumnDef() *ColumnDef {
	return c.columnDef
}

// Length returns the number of rows in the column.
func (c *Float64Column) Length() int {
	return len(c.data)
}

func (c *Float64Column) Kind() Kind {
	return KindFloat
}

// GetString returns the string representation of the value at the given index.
// Returns "NaN" for NaN values, "+Inf"/"-Inf" for infinities.
func (c *Float64Column) GetString(i uint32) (string, error) {
	if int(i) >= len(c.data) {
		return "", outOfBounds(i, len(c.data))
	}
	if c.isMissing(i) {
		return "", nil
	}
	return FormatFloat64(c.data[i]), nil
}

// FormatFloat64 formats a float64 value for display.
// Returns "NaN" for NaN, "+Inf"/"-Inf" for infinities.
func FormatFloat64(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	if math.IsInf(v, 1) {
		return "+Inf"
	}
	if math.IsInf(v, -1) {
		return "-Inf"
	}
	// Use 'g' format for compact representation without trailing zeros
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// GetValue returns the float64 value at the given index and whether it is present.
func (c *Float64Column) GetValue(i uint32) (float64, bool, error) {
	if int(i) >= len(c.data) {
		return 0, false, outOfBounds(i, len(c.data))
	}
	return c.data[i], !c.isMissing(i), nil
}

func (c *Float64Column) GetRaw(i uint32) (any, error) {
	v, ok, err := c.GetValue(i)
	if err != nil || !ok {
		return nil, err
	}
	return v, nil
}

// Append adds a float64 value to the column.
func (c *Float64Column) Append(value float64) {
	c.data = append(c.data, value)
}

// AppendNull appends a missing value.
func (c *Float64Column) AppendNull() {
	c.mark(len(c.data))
	c.data = append(c.data, 0)
}

// AppendString parses and adds a float64 from a string.
// Recognizes "NaN", "Inf", "+Inf", "-Inf" as special values.
func (c *Float64Column) AppendString(s string) error {
	v, err := ParseFloat64(s)
	if err != nil {
		return err
	}
	c.data = append(c.data, v)
	return nil
}

// ParseFloat64 parses a string to float64.
// Recognizes "NaN", "Inf", "+Inf", "-Inf" as special values.
func ParseFloat64(s string) (float64, error) {
	// Handle special values explicitly
	switch s {
	case "NaN", "nan", "NAN":
		return math.NaN(), nil
	case "Inf", "+Inf", "inf", "+inf":
		return math.Inf(1), nil
	case "-Inf", "-inf":
		return math.Inf(-1), nil
	}
	return strconv.ParseFloat(s, 64)
}
