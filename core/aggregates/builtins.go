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
	"cmp"
	"fmt"
	"sort"
	"strings"

	"github.com/aclements/go-moremath/stats"

	"github.com/google/frequentia/core/columns"
)

var builtins = map[string]func() *columns.Aggregator{
	"sum":      Sum,
	"mean":     Mean,
	"median":   Median,
	"stddev":   StdDev,
	"min":      Min,
	"max":      Max,
	"count":    Count,
	"distinct": Distinct,
}

// Builtin returns the named built-in aggregator.
func Builtin(name string) (*columns.Aggregator, error) {
	ctor, ok := builtins[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown aggregator %q (have %s)", name, strings.Join(BuiltinNames(), ", "))
	}
	return ctor(), nil
}

// BuiltinNames lists the built-in aggregators in alphabetical order.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sum adds the numeric values.
func Sum() *columns.Aggregator {
	return numeric("sum", columns.KindFloat, func(xs []float64) float64 {
		total := 0.0
		for _, x := range xs {
			total += x
		}
		return total
	})
}

// Mean averages the numeric values.
func Mean() *columns.Aggregator {
	return numeric("mean", columns.KindFloat, stats.Mean)
}

// Median returns the middle numeric value.
func Median() *columns.Aggregator {
	return numeric("median", columns.KindFloat, func(xs []float64) float64 {
		return stats.Sample{Xs: xs}.Quantile(0.5)
	})
}

// StdDev returns the sample standard deviation; it needs at least two values.
func StdDev() *columns.Aggregator {
	agg := numeric("stddev", columns.KindFloat, stats.StdDev)
	reduce := agg.Reduce
	agg.Reduce = func(values []any) (any, error) {
		if len(numbers(values)) < 2 {
			return nil, nil
		}
		return reduce(values)
	}
	return agg
}

// Min returns the smallest numeric value, as an int64 when every value was one.
func Min() *columns.Aggregator {
	return bound("min", -1)
}

// Max returns the largest numeric value, as an int64 when every value was one.
func Max() *columns.Aggregator {
	return bound("max", 1)
}

// Count counts the present values.
func Count() *columns.Aggregator {
	return &columns.Aggregator{
		Name: "count",
		Kind: columns.KindInteger,
		Reduce: func(values []any) (any, error) {
			n := 0
			for _, v := range values {
				if v != nil {
					n++
				}
			}
			return int64(n), nil
		},
	}
}

// Distinct counts the distinct present values.
func Distinct() *columns.Aggregator {
	return &columns.Aggregator{
		Name: "distinct",
		Kind: columns.KindInteger,
		Reduce: func(values []any) (any, error) {
			seen := make(map[string]struct{})
			for _, v := range values {
				if v != nil {
					seen[columns.FormatRaw(v)] = struct{}{}
				}
			}
			return int64(len(seen)), nil
		},
	}
}

func numeric(name string, kind columns.Kind, fn func([]float64) float64) *columns.Aggregator {
	return &columns.Aggregator{
		Name: name,
		Kind: kind,
		Reduce: func(values []any) (any, error) {
			xs := numbers(values)
			if len(xs) == 0 {
				return nil, nil
			}
			return fn(xs), nil
		},
	}
}

// bound keeps the smallest value for sign -1 and the largest for sign 1.
// Integer columns are compared as int64 so that values beyond 2^53 stay
// exact.
func bound(name string, sign int) *columns.Aggregator {
	return &columns.Aggregator{
		Name: name,
		Reduce: func(values []any) (any, error) {
			if allInt64(values) {
				var best int64
				found := false
				for _, v := range values {
					x, ok := v.(int64)
					if !ok {
						continue
					}
					if !found || cmp.Compare(x, best) == sign {
						best, found = x, true
					}
				}
				if !found {
					return nil, nil
				}
				return best, nil
			}
			xs := numbers(values)
			if len(xs) == 0 {
				return nil, nil
			}
			lo, hi := stats.Bounds(xs)
			if sign < 0 {
				return lo, nil
			}
			return hi, nil
		},
	}
}

// numbers extracts the numeric values, skipping missing and non-numeric ones.
func numbers(values []any) []float64 {
	xs := make([]float64, 0, len(values))
	for _, v := range values {
		if x, ok := toFloat(v); ok {
			xs = append(xs, x)
		}
	}
	return xs
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}

func allInt64(values []any) bool {
	for _, v := range values {
		if v == nil {
			continue
		}
		if _, ok := v.(int64); !ok {
			return false
		}
	}
	return true
}
