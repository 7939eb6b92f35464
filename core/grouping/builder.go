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

package grouping

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/google/frequentia/core/columns"
)

// Progress receives a Step after every unit of work: a row classified, a
// pivot sampled or a row placed into a bin. A non-nil error from Step
// aborts the build. Grow announces units of work discovered while building.
type Progress interface {
	Grow(n int)
	Step() error
}

// Builder partitions rows of one column into buckets.
type Builder struct {
	Column columns.IDataColumn
	// Bins is the configured number of numeric bins; 0 derives it from the
	// row count.
	Bins     int
	Progress Progress
}

func (b *Builder) step() error {
	if b.Progress == nil {
		return nil
	}
	return b.Progress.Step()
}

func (b *Builder) grow(n int) {
	if b.Progress != nil {
		b.Progress.Grow(n)
	}
}

// EffectiveBins returns the configured bin count, or the cube root of the
// row count when none is configured.
func EffectiveBins(configured, total int) int {
	if configured > 0 {
		return configured
	}
	// The epsilon keeps perfect cubes from flooring one short.
	return int(math.Floor(math.Cbrt(float64(total)) + 1e-9))
}

// Build groups rows into a new FrequencyTable. Numeric columns are binned
// when the effective bin count is positive; every other column is grouped
// by value. total is the size of the source, used for the auto bin count.
func (b *Builder) Build(name string, rows []uint32, total int) (*FrequencyTable, error) {
	ft := NewFrequencyTable(name, b.Column.ColumnDef().Name())
	ft.Total = total

	var err error
	nbins := EffectiveBins(b.Bins, total)
	if nbins > 0 && b.Column.Kind().IsNumeric() {
		ft.Mode = Binned
		ft.LabelKind = columns.KindString
		ft.Buckets, err = b.binned(rows, nbins)
	} else {
		ft.Mode = Categorical
		ft.LabelKind = b.Column.Kind()
		ft.Buckets, err = b.categorical(rows)
	}
	if err != nil {
		return nil, err
	}
	ft.setLargest()
	return ft, nil
}

// categorical groups rows by the string form of their raw value, then orders
// the buckets by descending size. Equal sizes keep first-seen order.
func (b *Builder) categorical(rows []uint32) ([]*Bucket, error) {
	index := make(map[string]*Bucket)
	var buckets []*Bucket
	for _, r := range rows {
		raw, err := b.Column.GetRaw(r)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", b.Column.ColumnDef().Name(), err)
		}
		label := columns.FormatRaw(raw)
		bucket, ok := index[label]
		if !ok {
			bucket = &Bucket{Label: label, Key: raw}
			index[label] = bucket
			buckets = append(buckets, bucket)
		}
		bucket.Members = append(bucket.Members, r)
		if err := b.step(); err != nil {
			return nil, err
		}
	}
	slices.SortStableFunc(buckets, func(x, y *Bucket) int {
		return cmp.Compare(y.Count(), x.Count())
	})
	return buckets, nil
}

// binned splits rows into equal-frequency ranges. Rows without a display
// value go to a trailing errors bucket.
func (b *Builder) binned(rows []uint32, nbins int) ([]*Bucket, error) {
	col := b.Column
	var errorRows, valueRows []uint32
	for _, r := range rows {
		s, err := col.GetString(r)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.ColumnDef().Name(), err)
		}
		if s == "" {
			errorRows = append(errorRows, r)
		} else {
			valueRows = append(valueRows, r)
		}
		if err := b.step(); err != nil {
			return nil, err
		}
	}

	slices.SortStableFunc(valueRows, func(x, y uint32) int {
		return columns.CompareAtIndex(col, x, y)
	})

	n := len(valueRows)
	if nbins <= 1 || nbins >= n {
		nbins = 1
	}
	b.grow(nbins + n)

	// Pivots are the sorted positions where each bin nominally starts.
	binSize := n / nbins
	pivots := make([]int, 0, nbins)
	for k := 0; k < nbins; k++ {
		pivots = append(pivots, k*binSize)
		if err := b.step(); err != nil {
			return nil, err
		}
	}

	// A bin closes at the value just before the next pivot; rows equal to
	// that value stay in the bin, so a later bin may end up empty.
	type span struct{ start, end int }
	var spans []span
	start := 0
	for k := 0; k < nbins && start < n; k++ {
		end := n
		if k < nbins-1 {
			boundary := valueRows[pivots[k+1]-1]
			end = start
			for end < n && columns.CompareAtIndex(col, valueRows[end], boundary) <= 0 {
				end++
				if err := b.step(); err != nil {
					return nil, err
				}
			}
		} else {
			for i := start; i < end; i++ {
				if err := b.step(); err != nil {
					return nil, err
				}
			}
		}
		if end > start {
			spans = append(spans, span{start, end})
		}
		start = end
	}

	buckets := make([]*Bucket, 0, len(spans)+1)
	for i, s := range spans {
		lo, err := col.GetString(valueRows[s.start])
		if err != nil {
			return nil, err
		}
		hi, err := col.GetString(valueRows[s.end-1])
		if err != nil {
			return nil, err
		}
		buckets = append(buckets, &Bucket{
			Label:   binLabel(i, len(spans), lo, hi),
			Members: valueRows[s.start:s.end:s.end],
		})
	}
	if len(errorRows) > 0 {
		buckets = append(buckets, &Bucket{Label: ErrorsLabel, Members: errorRows})
	}
	return buckets, nil
}

// binLabel names bin i of n by the display values of its lowest and
// highest rows. The brackets are part of the label.
func binLabel(i, n int, lo, hi string) string {
	switch {
	case i == 0:
		return fmt.Sprintf("<=[%s-]%s", lo, hi)
	case i == n-1:
		return fmt.Sprintf(">=%s[-%s]", lo, hi)
	default:
		return fmt.Sprintf("%s-%s", lo, hi)
	}
}
