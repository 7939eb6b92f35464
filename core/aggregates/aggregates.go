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

// Package aggregates derives the per-bucket columns of a frequency table:
// count, percentage, histogram bar and one reduced value per source column
// that carries an aggregator.
package aggregates

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/google/frequentia/core/columns"
	"github.com/google/frequentia/core/grouping"
)

// ReducerError reports an aggregator that failed on one bucket. It fails
// the whole computation.
type ReducerError struct {
	Column string // derived column name
	Bucket string
	Err    error
}

func (e *ReducerError) Error() string {
	return fmt.Sprintf("aggregate %s of bucket %q: %v", e.Column, e.Bucket, e.Err)
}

func (e *ReducerError) Unwrap() error {
	return e.Err
}

// Percent returns count as a percentage of total, or 0 for an empty source.
func Percent(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return 100 * float64(count) / float64(total)
}

// HistogramBar repeats glyph in proportion to count/largest over width
// cells. largest is expected to exceed every count, so no bar is full.
func HistogramBar(glyph string, width, count, largest int) string {
	if largest <= 0 || width <= 0 || count <= 0 {
		return ""
	}
	return strings.Repeat(glyph, width*count/largest)
}

// DerivedName names the derived column of an aggregator on a column.
func DerivedName(agg *columns.Aggregator, col columns.IDataColumn) string {
	return agg.Name + "_" + col.ColumnDef().Name()
}

// Derive returns the derived columns for every column carrying an
// aggregator, in column order, along with those source columns.
func Derive(cols []columns.IDataColumn) ([]grouping.DerivedColumn, []columns.IDataColumn) {
	var derived []grouping.DerivedColumn
	var sources []columns.IDataColumn
	for _, col := range cols {
		agg := col.ColumnDef().Aggregator()
		if agg == nil {
			continue
		}
		kind := agg.Kind
		if kind == columns.KindUnset {
			kind = col.Kind()
		}
		derived = append(derived, grouping.DerivedColumn{Name: DerivedName(agg, col), Kind: kind})
		sources = append(sources, col)
	}
	return derived, sources
}

// Compute fills Bucket.Aggregates for every bucket of ft, reducing the
// member values of each aggregator-carrying column. Buckets are reduced
// concurrently; the first failure cancels the rest and is returned.
func Compute(ctx context.Context, ft *grouping.FrequencyTable, cols []columns.IDataColumn) error {
	derived, sources := Derive(cols)
	ft.Derived = derived
	if len(sources) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, bucket := range ft.Buckets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			values, err := reduceBucket(bucket, derived, sources)
			if err != nil {
				return err
			}
			bucket.Aggregates = values
			return nil
		})
	}
	return g.Wait()
}

func reduceBucket(bucket *grouping.Bucket, derived []grouping.DerivedColumn, sources []columns.IDataColumn) (out []any, err error) {
	out = make([]any, len(sources))
	for i, col := range sources {
		raw := make([]any, len(bucket.Members))
		for j, r := range bucket.Members {
			v, err := col.GetRaw(r)
			if err != nil {
				return nil, &ReducerError{Column: derived[i].Name, Bucket: bucket.Label, Err: err}
			}
			raw[j] = v
		}
		v, err := reduce(col.ColumnDef().Aggregator(), raw)
		if err != nil {
			return nil, &ReducerError{Column: derived[i].Name, Bucket: bucket.Label, Err: err}
		}
		out[i] = v
	}
	return out, nil
}

// reduce runs an aggregator, turning a panic into an error so that it
// fails the computation instead of the process.
func reduce(agg *columns.Aggregator, values []any) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("aggregator %s panicked: %v", agg.Name, r)
		}
	}()
	return agg.Reduce(values)
}
