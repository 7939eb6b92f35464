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

// Package views turns frequency tables into models for the renderers.
package views

import (
	"net/url"
	"strconv"

	"github.com/google/safehtml"

	"github.com/google/frequentia/core/aggregates"
	"github.com/google/frequentia/core/frequency"
	"github.com/google/frequentia/core/grouping"
)

// FrequencyViewModel contains a frequency table formatted for template
// consumption
type FrequencyViewModel struct {
	Title   string
	Name    string // Summary name
	Source  string // Source view name
	Column  string // Summarized column display name
	Mode    string // "categorical" or "binned"
	Total   int    // Rows in the source
	Largest int
	Headers []string // Label, count, percent, histogram, then derived columns
	Rows    []BucketRow

	SelectedRows int // Rows currently selected in the source
	ReloadURL    safehtml.URL
	// Table-wide selection actions.
	SelectAllURL     safehtml.URL
	UnselectAllURL   safehtml.URL
	DrillSelectedURL safehtml.URL
}

// BucketRow is one bucket of the table
type BucketRow struct {
	Index      int
	Label      string
	Count      int
	Percent    string
	Histogram  string
	Aggregates []string
	Selected   bool
	ToggleURL  safehtml.URL // URL to toggle the bucket selection
	DrillURL   safehtml.URL // URL to open the bucket rows as a new view
}

// Cells returns the row in Headers order.
func (r BucketRow) Cells() []string {
	cells := []string{r.Label, strconv.Itoa(r.Count), r.Percent, r.Histogram}
	return append(cells, r.Aggregates...)
}

// BuildViewModel builds the view model of the last published table of s.
// basePath is the path the bucket action URLs are relative to, e.g. "/freq".
func BuildViewModel(s *frequency.Summary, basePath string) FrequencyViewModel {
	ft := s.Table()
	display := s.Column().ColumnDef().DisplayName()
	sel := s.Source().Selection()
	vm := newViewModel(ft, display)
	vm.Name = s.Name()
	vm.Source = s.Source().Name()
	vm.SelectedRows = sel.Len()
	vm.ReloadURL = actionURL(basePath+"/reload", s.Name(), -1)
	vm.SelectAllURL = actionURL(basePath+"/selectall", s.Name(), -1)
	vm.UnselectAllURL = actionURL(basePath+"/unselectall", s.Name(), -1)
	vm.DrillSelectedURL = actionURL(basePath+"/drillselected", s.Name(), -1)
	vm.Rows = bucketRows(ft, s.Options(), func(i int, b *grouping.Bucket, row *BucketRow) {
		row.Selected = b.SelectedIn(sel)
		row.ToggleURL = actionURL(basePath+"/toggle", s.Name(), i)
		row.DrillURL = actionURL(basePath+"/drill", s.Name(), i)
	})
	return vm
}

// BuildSavedViewModel builds the view model of a table read back from a
// store. It has no source, so no bucket is selected and there are no
// action URLs.
func BuildSavedViewModel(ft *grouping.FrequencyTable, opts frequency.Options) FrequencyViewModel {
	vm := newViewModel(ft, ft.Column)
	vm.Name = ft.Name
	vm.Rows = bucketRows(ft, opts, nil)
	return vm
}

func newViewModel(ft *grouping.FrequencyTable, display string) FrequencyViewModel {
	vm := FrequencyViewModel{
		Title:   display + " frequency",
		Column:  display,
		Mode:    ft.Mode.String(),
		Total:   ft.Total,
		Largest: ft.Largest,
		Headers: []string{display, "count", "percent", "histogram"},
	}
	for _, d := range ft.Derived {
		vm.Headers = append(vm.Headers, d.Name)
	}
	return vm
}

func bucketRows(ft *grouping.FrequencyTable, opts frequency.Options, decorate func(int, *grouping.Bucket, *BucketRow)) []BucketRow {
	rows := make([]BucketRow, 0, ft.Len())
	for i, b := range ft.Buckets {
		row := BucketRow{
			Index:     i,
			Label:     b.Label,
			Count:     b.Count(),
			Percent:   aggregates.FormatValue(aggregates.Percent(b.Count(), ft.Total)),
			Histogram: aggregates.HistogramBar(opts.HistogramGlyph, opts.HistogramWidth, b.Count(), ft.Largest),
		}
		for j := range ft.Derived {
			var v any
			if j < len(b.Aggregates) {
				v = b.Aggregates[j]
			}
			row.Aggregates = append(row.Aggregates, aggregates.FormatValue(v))
		}
		if decorate != nil {
			decorate(i, b, &row)
		}
		rows = append(rows, row)
	}
	return rows
}

func actionURL(path, summary string, bucket int) safehtml.URL {
	q := url.Values{}
	q.Set("summary", summary)
	if bucket >= 0 {
		q.Set("bucket", strconv.Itoa(bucket))
	}
	return safehtml.URLSanitized(path + "?" + q.Encode())
}
