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

package aggregates

import (
	"fmt"
	"math"

	"github.com/google/frequentia/core/columns"
)

// FormatValue formats an aggregate value for display. Missing values
// render as "-".
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return columns.FormatFloat64(x)
		}
		return formatNumber(x)
	case int64:
		return fmt.Sprintf("%d", x)
	default:
		return columns.FormatRaw(x)
	}
}

// formatNumber formats a float64 for display, using appropriate precision.
func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		// Integer value
		return fmt.Sprintf("%d", int64(v))
	}
	// Show up to 2 decimal places, trimming trailing zeros
	formatted := fmt.Sprintf("%.2f", v)
	// Trim trailing zeros after decimal point
	if idx := len(formatted) - 1; formatted[idx] == '0' {
		formatted = formatted[:idx]
		if idx--; formatted[idx] == '0' {
			formatted = formatted[:idx]
		}
	}
	// Remove trailing decimal point if no decimals
	if formatted[len(formatted)-1] == '.' {
		formatted = formatted[:len(formatted)-1]
	}
	return formatted
}
