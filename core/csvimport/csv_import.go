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

// Package csvimport loads delimited text files into DataTables.
package csvimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"

	"github.com/google/frequentia/core/aggregates"
	"github.com/google/frequentia/core/columns"
	"github.com/google/frequentia/core/tables"
)

// ColumnSource defines how a column is imported.
type ColumnSource struct {
	// Name is the column name (defaults to the header).
	Name string `json:"name"`
	// DisplayName is the name shown in rendered tables.
	DisplayName string `json:"displayName,omitempty"`
	// Kind forces a column kind ("string", "int", "float", "currency");
	// empty detects it from the data.
	Kind string `json:"kind,omitempty"`
	// Currency is the ISO 4217 code of a currency column (default USD).
	Currency string `json:"currency,omitempty"`
	// Aggregator names the built-in aggregator reported per bucket.
	Aggregator string `json:"aggregator,omitempty"`
}

// ImportOptions configures CSV import behavior
type ImportOptions struct {
	// HasHeader indicates whether the first row contains column headers
	HasHeader bool
	// Delimiter is the field delimiter (defaults to comma)
	Delimiter rune
	// ColumnSources provides configuration for specific columns by header name
	ColumnSources map[string]ColumnSource
	// SampleSize is the number of rows to sample for type detection (default: 100)
	SampleSize int
	// Locale formats currency columns.
	Locale language.Tag
}

// DefaultOptions returns default import options
func DefaultOptions() ImportOptions {
	return ImportOptions{
		HasHeader:     true,
		Delimiter:     ',',
		ColumnSources: make(map[string]ColumnSource),
		SampleSize:    100,
		Locale:        language.AmericanEnglish,
	}
}

// ImportFromFile imports a CSV file and returns a DataTable
func ImportFromFile(filepath string, options ImportOptions) (*tables.DataTable, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ImportFromReader(file, options)
}

// appender adds one field of a record to a column. Fields that are empty or
// do not parse become missing values.
type appender func(value string)

// ImportFromReader imports CSV data from an io.Reader and returns a DataTable
func ImportFromReader(reader io.Reader, options ImportOptions) (*tables.DataTable, error) {
	csvReader := csv.NewReader(reader)
	if options.Delimiter != 0 {
		csvReader.Comma = options.Delimiter
	}
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	var headers []string
	var dataRows [][]string
	if options.HasHeader {
		headers = records[0]
		dataRows = records[1:]
	} else {
		headers = make([]string, len(records[0]))
		for i := range headers {
			headers[i] = fmt.Sprintf("column_%d", i+1)
		}
		dataRows = records
	}
	if len(dataRows) == 0 {
		return nil, fmt.Errorf("CSV file has no data rows")
	}

	sampleSize := options.SampleSize
	if sampleSize <= 0 {
		sampleSize = 100
	}
	locale := options.Locale
	if locale == language.Und {
		locale = language.AmericanEnglish
	}

	table := tables.NewDataTable()
	appenders := make([]appender, len(headers))
	var built []columns.IDataColumn
	for i, header := range headers {
		header = strings.TrimSpace(header)
		source := options.ColumnSources[header]
		col, app, err := newColumn(header, source, sample(dataRows, i, sampleSize), locale)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", header, err)
		}
		appenders[i] = app
		built = append(built, col)
	}

	for _, row := range dataRows {
		for i, app := range appenders {
			value := ""
			if i < len(row) {
				value = strings.TrimSpace(row[i])
			}
			app(value)
		}
	}

	for _, col := range built {
		if err := table.AddColumn(col); err != nil {
			return nil, err
		}
	}
	return table, nil
}

func sample(rows [][]string, i, n int) []string {
	var out []string
	for _, row := range rows {
		if len(out) == n {
			break
		}
		if i < len(row) {
			if v := strings.TrimSpace(row[i]); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func newColumn(header string, source ColumnSource, sampled []string, locale language.Tag) (columns.IDataColumn, appender, error) {
	name, displayName := header, header
	if source.Name != "" {
		name = source.Name
	}
	if source.DisplayName != "" {
		displayName = source.DisplayName
	}
	def := columns.NewColumnDef(name, displayName)
	if source.Aggregator != "" {
		agg, err := aggregates.Builtin(source.Aggregator)
		if err != nil {
			return nil, nil, err
		}
		def = def.WithAggregator(agg)
	}

	kind, err := columns.ParseKind(source.Kind)
	if err != nil {
		return nil, nil, err
	}
	unit := currency.USD
	if source.Currency != "" {
		if unit, err = currency.ParseISO(source.Currency); err != nil {
			return nil, nil, fmt.Errorf("bad currency %q: %w", source.Currency, err)
		}
	}
	if kind == columns.KindUnset {
		var detected currency.Unit
		kind, detected = detectKind(sampled)
		if kind == columns.KindCurrency && source.Currency == "" {
			unit = detected
		}
	}

	switch kind {
	case columns.KindInteger:
		col := columns.NewInt64Column(def)
		return col, func(v string) {
			n, err := strconv.ParseInt(v, 10, 64)
			if v == "" || err != nil {
				col.AppendNull()
				return
			}
			col.Append(n)
		}, nil
	case columns.KindFloat:
		col := columns.NewFloat64Column(def)
		return col, func(v string) {
			if v == "" || col.AppendString(v) != nil {
				col.AppendNull()
			}
		}, nil
	case columns.KindCurrency:
		col := columns.NewCurrencyColumn(def, unit, locale)
		return col, func(v string) {
			f, err := columns.ParseAmount(v)
			if v == "" || err != nil {
				col.AppendNull()
				return
			}
			col.Append(f)
		}, nil
	default:
		col := columns.NewStringColumn(def)
		return col, col.Append, nil
	}
}

var symbols = map[string]currency.Unit{
	"$": currency.USD,
	"€": currency.EUR,
	"£": currency.GBP,
	"¥": currency.JPY,
}

// detectKind picks the narrowest kind every sampled value parses as.
func detectKind(sampled []string) (columns.Kind, currency.Unit) {
	if len(sampled) == 0 {
		return columns.KindString, currency.Unit{}
	}
	if all(sampled, func(v string) bool {
		_, err := strconv.ParseInt(v, 10, 64)
		return err == nil
	}) {
		return columns.KindInteger, currency.Unit{}
	}
	if all(sampled, func(v string) bool {
		_, err := strconv.ParseFloat(v, 64)
		return err == nil
	}) {
		return columns.KindFloat, currency.Unit{}
	}
	var unit currency.Unit
	seen := false
	if all(sampled, func(v string) bool {
		u, ok := leadingSymbol(v)
		if !ok || (seen && u != unit) {
			return false
		}
		unit, seen = u, true
		_, err := columns.ParseAmount(v)
		return err == nil
	}) {
		return columns.KindCurrency, unit
	}
	return columns.KindString, currency.Unit{}
}

func leadingSymbol(v string) (currency.Unit, bool) {
	for sym, u := range symbols {
		if strings.HasPrefix(v, sym) {
			return u, true
		}
	}
	return currency.Unit{}, false
}

func all(values []string, pred func(string) bool) bool {
	for _, v := range values {
		if !pred(v) {
			return false
		}
	}
	return true
}
