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

// Package demo provides sample tables for trying out frequency tables.
package demo

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/google/frequentia/core/csvimport"
	"github.com/google/frequentia/core/tables"
)

//go:embed data/orders.csv
var ordersCSV string

//go:embed data/sources.yaml
var annotations string

// importTable imports an embedded CSV table using its annotations
func importTable(name, csv string) (*tables.DataTable, error) {
	sources, err := csvimport.ParseTableSources([]byte(annotations))
	if err != nil {
		return nil, fmt.Errorf("failed to parse annotations: %w", err)
	}
	for _, source := range sources.Tables {
		if source.Name != name {
			continue
		}
		options, err := source.Options()
		if err != nil {
			return nil, err
		}
		table, err := csvimport.ImportFromReader(strings.NewReader(csv), options)
		if err != nil {
			return nil, fmt.Errorf("failed to import %s CSV: %w", name, err)
		}
		return table, nil
	}
	return nil, fmt.Errorf("no annotations found for table %s", name)
}

// Orders returns a small order table with string, currency and integer
// columns. Three quantities are blank or invalid.
func Orders() (*tables.DataTable, error) {
	return importTable("orders", ordersCSV)
}
