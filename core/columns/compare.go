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
	"strings"
)

// CompareAtIndex compares values at indices i and j for the given column.
// Returns -1 if value[i] < value[j], 0 if equal, 1 if value[i] > value[j].
// Uses type-specific comparison for efficiency on base columns.
// Missing values sort after present ones.
func CompareAtIndex(col IDataColumn, i, j uint32) int {
	switch c := col.(type) {
	case *StringColumn:
		return strings.Compare(c.data[i], c.data[j])

	case *Int64Column:
		if m := compareMissing(c.isMissing(i), c.isMissing(j)); m != 2 {
			return m
		}
		if c.data[i] < c.data[j] {
			return -1
		}
		if c.data[i] > c.data[j] {
			return 1
		}
		return 0

	case *Float64Column:
		if m := compareMissing(c.isMissing(i), c.isMissing(j)); m != 2 {
			return m
		}
		return compareFloat64s(c.data[i], c.data[j])

	case *CurrencyColumn:
		if m := compareMissing(c.isMissing(i), c.isMissing(j)); m != 2 {
			return m
		}
		return compareFloat64s(c.data[i], c.data[j])

	// Combined and foreign columns - use string comparison as fallback
	default:
		si, errI := col.GetString(i)
		sj, errJ := col.GetString(j)
		if errI != nil || errJ != nil {
			return compareErrors(errI, errJ)
		}
		return strings.Compare(si, sj)
	}
}

// compareMissing orders missing values last. It returns 2 when both
// values are present and the caller must compare them.
func compareMissing(mi, mj bool) int {
	switch {
	case mi && mj:
		return 0
	case mi:
		return 1
	case mj:
		return -1
	}
	return 2
}

// compareFloat64s compares two float64 values with NaN handling.
// NaN values are considered greater than all other values (sort to end).
func compareFloat64s(a, b float64) int {
	aNaN := math.IsNaN(a)
	bNaN := math.IsNaN(b)

	if aNaN && bNaN {
		return 0 // Both NaN - equal
	}
	if aNaN {
		return 1 // a is NaN, b isn't - a comes after
	}
	if bNaN {
		return -1 // b is NaN, a isn't - a comes before
	}

	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// compareErrors handles error cases in comparison.
// Errors sort to the end (after valid values).
func compareErrors(errI, errJ error) int {
	if errI != nil && errJ != nil {
		return 0 // Both errors - equal
	}
	if errI != nil {
		return 1 // i has error, j doesn't - i comes after
	}
	return -1 // j has error, i doesn't - i comes before
}
