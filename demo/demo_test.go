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

package demo

import (
	"testing"

	"github.com/google/frequentia/core/columns"
)

func TestOrders(t *testing.T) {
	orders, err := Orders()
	if err != nil {
		t.Fatalf("Orders: %v", err)
	}
	if orders.Length() != 30 {
		t.Errorf("expected 30 rows, got %d", orders.Length())
	}
	want := map[string]columns.Kind{
		"order_id": columns.KindString,
		"status":   columns.KindString,
		"amount":   columns.KindCurrency,
		"qty":      columns.KindInteger,
	}
	for name, kind := range want {
		col := orders.GetColumn(name)
		if col == nil {
			t.Fatalf("%s column not found", name)
		}
		if col.Kind() != kind {
			t.Errorf("%s: expected %v, got %v", name, kind, col.Kind())
		}
	}
	missing := 0
	qty := orders.GetColumn("qty")
	for i := 0; i < qty.Length(); i++ {
		if v, _ := qty.GetRaw(uint32(i)); v == nil {
			missing++
		}
	}
	if missing != 3 {
		t.Errorf("expected 3 missing quantities, got %d", missing)
	}
}

func TestTransactions(t *testing.T) {
	tx := Transactions(1000)
	if tx.Length() != 1000 {
		t.Fatalf("expected 1000 rows, got %d", tx.Length())
	}
	if v, _ := tx.GetColumn("amount").GetRaw(97); v != nil {
		t.Errorf("expected amount 97 to be missing, got %v", v)
	}
	if v, _ := tx.GetColumn("category_id").GetRaw(14); v != int64(0) {
		t.Errorf("expected category 0 for row 14, got %v", v)
	}
}
