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

package rendering

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/google/frequentia/core/views"
)

// Cell positions in an ASCII record; the first cell is the selection marker.
const (
	asciiLabel = iota + 1
	asciiCount
	asciiPercent
	asciiHistogram
)

// RenderASCII writes the view model as a text table with ASCII borders.
// Selected buckets are marked with '*'; counts are formatted for tag.
func RenderASCII(w io.Writer, vm views.FrequencyViewModel, tag language.Tag) error {
	p := message.NewPrinter(tag)

	header := append([]string{""}, vm.Headers...)
	records := make([][]string, 0, len(vm.Rows))
	for _, r := range vm.Rows {
		cells := r.Cells()
		cells[asciiCount-1] = p.Sprintf("%d", r.Count)
		marker := " "
		if r.Selected {
			marker = "*"
		}
		records = append(records, append([]string{marker}, cells...))
	}

	widths := calculateColumnWidths(header, records)
	var sb strings.Builder
	sb.WriteString(vm.Title)
	sb.WriteString("\n")
	writeBorder(&sb, widths)
	writeRecord(&sb, header, widths, false)
	writeBorder(&sb, widths)
	for _, rec := range records {
		writeRecord(&sb, rec, widths, true)
	}
	writeBorder(&sb, widths)

	_, err := io.WriteString(w, sb.String())
	return err
}

// calculateColumnWidths calculates the width needed for each column
func calculateColumnWidths(header []string, records [][]string) []int {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = max(1, utf8.RuneCountInString(h))
	}
	for _, rec := range records {
		for i, c := range rec {
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(c))
			}
		}
	}
	return widths
}

func writeBorder(sb *strings.Builder, widths []int) {
	for _, w := range widths {
		sb.WriteString("+")
		sb.WriteString(strings.Repeat("-", w+2))
	}
	sb.WriteString("+\n")
}

func writeRecord(sb *strings.Builder, rec []string, widths []int, alignNumbers bool) {
	for i, w := range widths {
		cell := ""
		if i < len(rec) {
			cell = rec[i]
		}
		sb.WriteString("| ")
		if alignNumbers && isNumericCell(i) {
			sb.WriteString(fmt.Sprintf("%*s", w, cell))
		} else {
			sb.WriteString(fmt.Sprintf("%-*s", w, cell))
		}
		sb.WriteString(" ")
	}
	sb.WriteString("|\n")
}

func isNumericCell(i int) bool {
	return i == asciiCount || i == asciiPercent || i > asciiHistogram
}
