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

package csvimport

import (
	"strings"
	"testing"

	"golang.org/x/text/currency"

	"github.com/google/frequentia/core/columns"
)

func TestImportBasicCSV(t *testing.T) {
	csvData := `name,age,city
Alice,30,New York
Bob,25,Los Angeles
Charlie,35,Chicago`

	reader := strings.NewReader(csvData)
	table, err := ImportFromReader(reader, DefaultOptions())
	if err != nil {
		t.Fatalf("failed to import CSV: %v", err)
	}

	// Check table length
	if table.Length() != 3 {
		t.Errorf("expected 3 rows, got %d", table.Length())
	}

	// Check columns exist
	names := table.GetColumnNames()
	if len(names) != 3 {
		t.Errorf("expected 3 columns, got %d", len(names))
	}

	// Check name column (string)
	nameCol := table.GetColumn("name")
	if nameCol == nil {
		t.Fatal("name column not found")
	}
	val, err := nameCol.GetString(0)
	if err != nil || val != "Alice" {
		t.Errorf("expected 'Alice', got '%s'", val)
	}

	// Check age column (should be int64)
	ageCol := table.GetColumn("age")
	if ageCol == nil {
		t.Fatal("age column not found")
	}
	ageVal, err := ageCol.GetString(0)
	if err != nil || ageVal != "30" {
		t.Errorf("expected '30', got '%s'", ageVal)
	}
}

func TestImportWithoutHeader(t *testing.T) {
	csvData := `Alice,30,New York
Bob,25,Los Angeles`

	reader := strings.NewReader(csvData)
	options := DefaultOptions()
	options.HasHeader = false

	table, err := ImportFromReader(reader, options)
	if err != nil {
		t.Fatalf("failed to import CSV: %v", err)
	}

	// Check auto-generated column names
	col1 := table.GetColumn("column_1")
	if col1 == nil {
		t.Fatal("column_1 not found")
	}

	val, err := col1.GetString(0)
	if err != nil || val != "Alice" {
		t.Errorf("expected 'Alice', got '%s'", val)
	}
}

func TestImportWithColumnSource(t *testing.T) {
	csvData := `id,region,amount
1,North,100
2,South,200`

	reader := strings.NewReader(csvData)
	options := DefaultOptions()
	options.ColumnSources = map[string]ColumnSource{
		"region": {
			DisplayName: "Sales region",
		},
		"id": {
			DisplayName: "Order ID",
			Kind:        "string", // Force string even though it looks numeric
		},
		"amount": {
			Kind:       "currency",
			Currency:   "EUR",
			Aggregator: "sum",
		},
	}

	table, err := ImportFromReader(reader, options)
	if err != nil {
		t.Fatalf("failed to import CSV: %v", err)
	}

	regionCol := table.GetColumn("region")
	if regionCol == nil {
		t.Fatal("region column not found")
	}
	if got := regionCol.ColumnDef().DisplayName(); got != "Sales region" {
		t.Errorf("expected display name 'Sales region', got %q", got)
	}

	idCol := table.GetColumn("id")
	if idCol == nil {
		t.Fatal("id column not found")
	}
	if idCol.Kind() != columns.KindString {
		t.Errorf("expected forced string kind, got %v", idCol.Kind())
	}

	amountCol := table.GetColumn("amount")
	if amountCol == nil {
		t.Fatal("amount column not found")
	}
	cc, ok := amountCol.(*columns.CurrencyColumn)
	if !ok {
		t.Fatalf("expected currency column, got %T", amountCol)
	}
	if cc.Unit() != currency.EUR {
		t.Errorf("expected EUR, got %v", cc.Unit())
	}
	if agg := cc.ColumnDef().Aggregator(); agg == nil || agg.Name != "sum" {
		t.Errorf("expected sum aggregator, got %+v", agg)
	}
}

func TestImportBadColumnSource(t *testing.T) {
	for _, source := range []ColumnSource{
		{Kind: "complex"},
		{Aggregator: "mode"},
		{Kind: "currency", Currency: "XYZW"},
	} {
		options := DefaultOptions()
		options.ColumnSources = map[string]ColumnSource{"amount": source}
		if _, err := ImportFromReader(strings.NewReader("amount\n1\n"), options); err == nil {
			t.Errorf("expected error for %+v", source)
		}
	}
}

func TestDetectKinds(t *testing.T) {
	csvData := `int,float,money,text,sparse
1,1.5,$10.00,a,
-2,2,$1234.50,b,7
3,NaN,$3,c,`

	table, err := ImportFromReader(strings.NewReader(csvData), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to import CSV: %v", err)
	}
	want := map[string]columns.Kind{
		"int":    columns.KindInteger,
		"float":  columns.KindFloat,
		"money":  columns.KindCurrency,
		"text":   columns.KindString,
		"sparse": columns.KindInteger,
	}
	for name, kind := range want {
		col := table.GetColumn(name)
		if col == nil {
			t.Fatalf("%s column not found", name)
		}
		if col.Kind() != kind {
			t.Errorf("%s: expected kind %v, got %v", name, kind, col.Kind())
		}
	}
	raw, _ := table.GetColumn("money").GetRaw(1)
	if raw != 1234.5 {
		t.Errorf("expected money raw value 1234.5, got %v", raw)
	}
}

func TestImportWithDelimiter(t *testing.T) {
	csvData := `name;age;city
Alice;30;New York
Bob;25;Los Angeles`

	reader := strings.NewReader(csvData)
	options := DefaultOptions()
	options.Delimiter = ';'

	table, err := ImportFromReader(reader, options)
	if err != nil {
		t.Fatalf("failed to import CSV: %v", err)
	}

	if table.Length() != 2 {
		t.Errorf("expected 2 rows, got %d", table.Length())
	}

	nameCol := table.GetColumn("name")
	if nameCol == nil {
		t.Fatal("name column not found")
	}
}

func TestImportEmptyCSV(t *testing.T) {
	csvData := ``

	reader := strings.NewReader(csvData)
	_, err := ImportFromReader(reader, DefaultOptions())
	if err == nil {
		t.Error("expected error for empty CSV")
	}
}

func TestImportHeaderOnly(t *testing.T) {
	csvData := `name,age,city`

	reader := strings.NewReader(csvData)
	_, err := ImportFromReader(reader, DefaultOptions())
	if err == nil {
		t.Error("expected error for header-only CSV")
	}
}

func TestImportMixedNumericString(t *testing.T) {
	csvData := `code,value
ABC,100
DEF,200
123,300`

	reader := strings.NewReader(csvData)
	table, err := ImportFromReader(reader, DefaultOptions())
	if err != nil {
		t.Fatalf("failed to import CSV: %v", err)
	}

	// Code should be string (has non-numeric values)
	codeCol := table.GetColumn("code")
	if codeCol == nil {
		t.Fatal("code column not found")
	}
	codeVal, _ := codeCol.GetString(0)
	if codeVal != "ABC" {
		t.Errorf("expected 'ABC', got '%s'", codeVal)
	}

	// Value should be int64 (all numeric)
	valueCol := table.GetColumn("value")
	if valueCol == nil {
		t.Fatal("value column not found")
	}
	valueVal, _ := valueCol.GetString(0)
	if valueVal != "100" {
		t.Errorf("expected '100', got '%s'", valueVal)
	}
}

func TestImportWithEmptyValues(t *testing.T) {
	csvData := `name,count
Alice,10
Bob,
Charlie,20
Dave,lots`

	// The sample stops before the unparsable value.
	reader := strings.NewReader(csvData)
	options := DefaultOptions()
	options.SampleSize = 2
	table, err := ImportFromReader(reader, options)
	if err != nil {
		t.Fatalf("failed to import CSV: %v", err)
	}

	countCol := table.GetColumn("count")
	if countCol == nil {
		t.Fatal("count column not found")
	}
	if countCol.Kind() != columns.KindInteger {
		t.Fatalf("expected integer kind, got %v", countCol.Kind())
	}

	// Empty and unparsable values are missing.
	for _, row := range []uint32{1, 3} {
		val, _ := countCol.GetString(row)
		if val != "" {
			t.Errorf("row %d: expected '' for missing numeric, got '%s'", row, val)
		}
		raw, _ := countCol.GetRaw(row)
		if raw != nil {
			t.Errorf("row %d: expected nil raw value, got %v", row, raw)
		}
	}
}
