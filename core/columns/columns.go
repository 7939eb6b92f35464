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

// Kind tags the declared type of a column. Bucketing decides between
// categorical grouping and numeric binning by branching on it.
type Kind int

const (
	// KindUnset is only meaningful on an Aggregator, where it means
	// "same kind as the column the aggregator is attached to".
	KindUnset Kind = iota
	KindString
	KindInteger
	KindFloat
	KindCurrency
	KindOther
)

var kindNames = map[Kind]string{
	KindUnset:    "unset",
	KindString:   "string",
	KindInteger:  "integer",
	KindFloat:    "float",
	KindCurrency: "currency",
	KindOther:    "other",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsNumeric reports whether values of this kind can be ordered numerically.
func (k Kind) IsNumeric() bool {
	return k == KindInteger || k == KindFloat || k == KindCurrency
}

// ParseKind maps a kind name ("int", "float", ...) to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto", "unset":
		return KindUnset, nil
	case "string", "str":
		return KindString, nil
	case "integer", "int", "int64":
		return KindInteger, nil
	case "float", "float64":
		return KindFloat, nil
	case "currency":
		return KindCurrency, nil
	case "other":
		return KindOther, nil
	}
	return KindUnset, fmt.Errorf("unknown column kind %q", s)
}

// Aggregator reduces the raw values of a group of rows to a single value.
// Missing values are passed to Reduce as nil.
type Aggregator struct {
	Name string
	// Kind of the reduced value; KindUnset inherits the column kind.
	Kind   Kind
	Reduce func(values []any) (any, error)
}

type ColumnDef struct {
	name        string // must not contain any of the following characters: & = : ,
	displayName string
	aggregator  *Aggregator
}

// NewColumnDef creates a new ColumnDef with the given name and display name
func NewColumnDef(name, displayName string) *ColumnDef {
	return &ColumnDef{
		name:        name,
		displayName: displayName,
	}
}

func (cd *ColumnDef) Name() string {
	return cd.name
}

func (cd *ColumnDef) DisplayName() string {
	return cd.displayName
}

// WithAggregator attaches an aggregator to the column and returns the def.
func (cd *ColumnDef) WithAggregator(agg *Aggregator) *ColumnDef {
	cd.aggregator = agg
	return cd
}

// Aggregator returns the attached aggregator, or nil if there is none.
func (cd *ColumnDef) Aggregator() *Aggregator {
	return cd.aggregator
}

// IDataColumn is the per-row access every column provides.
type IDataColumn interface {
	ColumnDef() *ColumnDef
	Length() int
	Kind() Kind
	// GetString returns the display value; "" means the value is missing.
	GetString(i uint32) (string, error)
	// GetRaw returns the underlying typed value, nil when missing.
	GetRaw(i uint32) (any, error)
}

// FormatRaw returns the string form of a raw value, used as the key for
// categorical grouping.
func FormatRaw(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return FormatFloat64(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func outOfBounds(i uint32, n int) error {
	return fmt.Errorf("index %d out of bounds (length: %d)", i, n)
}
