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
	"testing"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

func TestInt64ColumnMissingValues(t *testing.T) {
	col := NewInt64Column(NewColumnDef("n", "N"))
	col.Append(7)
	col.AppendNull()
	col.Append(-3)

	if col.Length() != 3 {
		t.Fatalf("expected 3 rows, got %d", col.Length())
	}
	if s, _ := col.GetString(0); s != "7" {
		t.Errorf("expected '7', got %q", s)
	}
	if s, _ := col.GetString(1); s != "" {
		t.Errorf("expected missing value to display as empty, got %q", s)
	}
	if raw, _ := col.GetRaw(1); raw != nil {
		t.Errorf("expected nil raw value for missing row, got %v", raw)
	}
	if raw, _ := col.GetRaw(2); raw != int64(-3) {
		t.Errorf("expected raw -3, got %v", raw)
	}
	if _, err := col.GetString(3); err == nil {
		t.Error("expected out of bounds error")
	}
}

func TestFloat64ColumnFormatting(t *testing.T) {
	col := NewFloat64Column(NewColumnDef("f", "F"))
	col.Append(1.5)
	col.AppendNull()
	col.Append(math.NaN())
	if err := col.AppendString("-Inf"); err != nil {
		t.Fatalf("AppendString: %v", err)
	}

	want := []string{"1.5", "", "NaN", "-Inf"}
	for i, w := range want {
		got, err := col.GetString(uint32(i))
		if err != nil {
			t.Fatalf("GetString(%d): %v", i, err)
		}
		if got != w {
			t.Errorf("row %d: expected %q, got %q", i, w, got)
		}
	}
}

func TestCurrencyColumn(t *testing.T) {
	col := NewCurrencyColumn(NewColumnDef("price", "Price"), currency.USD, language.English)
	col.Append(1234.5)
	col.AppendNull()

	if col.Kind() != KindCurrency || !col.Kind().IsNumeric() {
		t.Fatalf("expected numeric currency kind, got %v", col.Kind())
	}
	s, err := col.GetString(0)
	if err != nil {
		t.Fatalf("GetString: %v", err)
	}
	if !strings.Contains(s, "$") || !(strings.Contains(s, "1234.50") || strings.Contains(s, "1,234.50")) {
		t.Errorf("expected dollar amount with cents in %q", s)
	}
	if s, _ := col.GetString(1); s != "" {
		t.Errorf("expected empty display for missing amount, got %q", s)
	}
	if raw, _ := col.GetRaw(0); raw != 1234.5 {
		t.Errorf("expected raw 1234.5, got %v", raw)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"12.5", 12.5},
		{"$1,200", 1200},
		{"USD 3.25", 3.25},
		{" 7 ", 7},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if err != nil {
			t.Errorf("ParseAmount(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAmount(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseAmount("abc"); err == nil {
		t.Error("expected error for non-numeric amount")
	}
}

func TestCompareAtIndex(t *testing.T) {
	ints := NewInt64Column(NewColumnDef("i", "I"))
	ints.Append(5)
	ints.Append(2)
	ints.AppendNull()
	ints.Append(5)

	if CompareAtIndex(ints, 0, 1) != 1 {
		t.Error("expected 5 > 2")
	}
	if CompareAtIndex(ints, 1, 0) != -1 {
		t.Error("expected 2 < 5")
	}
	if CompareAtIndex(ints, 0, 3) != 0 {
		t.Error("expected 5 == 5")
	}
	if CompareAtIndex(ints, 2, 1) != 1 {
		t.Error("expected missing value to sort last")
	}

	floats := NewFloat64Column(NewColumnDef("f", "F"))
	floats.Append(math.NaN())
	floats.Append(1)
	if CompareAtIndex(floats, 0, 1) != 1 {
		t.Error("expected NaN to sort after numbers")
	}
}

func TestCombinedColumn(t *testing.T) {
	a := NewStringColumn(NewColumnDef("region", "Region"))
	b := NewInt64Column(NewColumnDef("year", "Year"))
	a.Append("north")
	b.Append(2020)
	a.Append("")
	b.AppendNull()

	col, err := NewCombinedColumn(NewColumnDef(CombinedName(a, b), "Region+Year"), "|", a, b)
	if err != nil {
		t.Fatalf("NewCombinedColumn: %v", err)
	}
	if col.ColumnDef().Name() != "region+year" {
		t.Errorf("unexpected combined name %q", col.ColumnDef().Name())
	}
	if s, _ := col.GetString(0); s != "north|2020" {
		t.Errorf("expected 'north|2020', got %q", s)
	}
	if s, _ := col.GetString(1); s != "" {
		t.Errorf("expected empty combined value, got %q", s)
	}

	short := NewStringColumn(NewColumnDef("short", "Short"))
	if _, err := NewCombinedColumn(NewColumnDef("x", "X"), "|", a, short); err == nil {
		t.Error("expected length mismatch error")
	}
}

func TestFormatRawAndParseKind(t *testing.T) {
	if FormatRaw(nil) != "" || FormatRaw(int64(3)) != "3" || FormatRaw(2.5) != "2.5" || FormatRaw("x") != "x" {
		t.Error("unexpected FormatRaw output")
	}
	k, err := ParseKind("int")
	if err != nil || k != KindInteger {
		t.Errorf("ParseKind(int) = %v, %v", k, err)
	}
	if _, err := ParseKind("blob"); err == nil {
		t.Error("expected error for unknown kind")
	}
	if KindString.IsNumeric() || !KindFloat.IsNumeric() {
		t.Error("unexpected IsNumeric result")
	}
}
