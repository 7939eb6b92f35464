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
	"golang.org/x/text/currency"
	"golang.org/x/text/language"

	"github.com/google/frequentia/core/aggregates"
	"github.com/google/frequentia/core/columns"
	"github.com/google/frequentia/core/tables"
)

// Performance test cardinalities
const (
	PerfNumStatuses   = 4
	PerfNumCategories = 200
)

// Transactions creates a deterministic transaction table of n rows for
// load testing. Every 97th amount is missing.
func Transactions(n int) *tables.DataTable {
	t := tables.NewDataTable()

	sum, _ := aggregates.Builtin("sum")
	mean, _ := aggregates.Builtin("mean")
	txnIDCol := columns.NewInt64Column(columns.NewColumnDef("txn_id", "Transaction ID"))
	categoryCol := columns.NewInt64Column(columns.NewColumnDef("category_id", "Category ID"))
	amountCol := columns.NewCurrencyColumn(columns.NewColumnDef("amount", "Amount").WithAggregator(sum), currency.USD, language.AmericanEnglish)
	latencyCol := columns.NewFloat64Column(columns.NewColumnDef("latency_ms", "Latency (ms)").WithAggregator(mean))
	statusCol := columns.NewStringColumn(columns.NewColumnDef("status", "Status"))

	statuses := [PerfNumStatuses]string{"pending", "completed", "cancelled", "processing"}
	for i := 0; i < n; i++ {
		txnIDCol.Append(int64(i))

		// Category 0 is overrepresented.
		category := int64(i % PerfNumCategories)
		if i%7 == 0 {
			category = 0
		}
		categoryCol.Append(category)

		if i%97 == 0 {
			amountCol.AppendNull()
		} else {
			amountCol.Append(float64(10+(i*37)%1000) + float64(i%100)/100)
		}
		latencyCol.Append(float64((i*7919)%5000) / 10)
		statusCol.Append(statuses[i%len(statuses)])
	}

	for _, col := range []columns.IDataColumn{txnIDCol, categoryCol, amountCol, latencyCol, statusCol} {
		_ = t.AddColumn(col) // all columns have n rows
	}
	return t
}
