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
	"os"
	"path/filepath"
	"testing"
)

const sourcesYAML = `
tables:
- name: orders
  file: orders.csv
  delimiter: ";"
  columns:
  - name: amount
    displayName: Amount
    kind: float
    aggregator: mean
- name: raw
  file: /data/raw.csv
  noHeader: true
`

func TestParseTableSources(t *testing.T) {
	sources, err := ParseTableSources([]byte(sourcesYAML))
	if err != nil {
		t.Fatalf("ParseTableSources: %v", err)
	}
	if len(sources.Tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(sources.Tables))
	}
	options, err := sources.Tables[0].Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if options.Delimiter != ';' || !options.HasHeader {
		t.Errorf("unexpected options %+v", options)
	}
	if got := options.ColumnSources["amount"].Aggregator; got != "mean" {
		t.Errorf("expected mean aggregator, got %q", got)
	}
	raw, err := sources.Tables[1].Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if raw.HasHeader {
		t.Error("expected noHeader to disable the header")
	}
}

func TestParseTableSourcesErrors(t *testing.T) {
	for _, doc := range []string{
		"tables:\n- file: a.csv\n",
		"tables:\n- name: a\n- name: a\n",
		"tables:\n- name: a\n  format: xml\n",
	} {
		if _, err := ParseTableSources([]byte(doc)); err == nil {
			t.Errorf("expected error for %q", doc)
		}
	}
	bad := TableSource{Name: "t", Delimiter: ";;"}
	if _, err := bad.Options(); err == nil {
		t.Error("expected error for a multi-character delimiter")
	}
}

func TestLoadTableSources(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "orders.csv"), []byte("region;amount\nnorth;1.5\nsouth;\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "sources.yaml")
	if err := os.WriteFile(path, []byte(sourcesYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	sources, err := LoadTableSources(path)
	if err != nil {
		t.Fatalf("LoadTableSources: %v", err)
	}
	if got, want := sources.Tables[0].File, filepath.Join(dir, "orders.csv"); got != want {
		t.Errorf("expected relative file resolved to %q, got %q", want, got)
	}
	if got := sources.Tables[1].File; got != "/data/raw.csv" {
		t.Errorf("expected absolute file kept, got %q", got)
	}

	table, err := sources.Tables[0].Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if table.Length() != 2 {
		t.Fatalf("expected 2 rows, got %d", table.Length())
	}
	amount := table.GetColumn("amount")
	if amount.ColumnDef().DisplayName() != "Amount" {
		t.Errorf("expected display name Amount, got %q", amount.ColumnDef().DisplayName())
	}
	if v, _ := amount.GetRaw(1); v != nil {
		t.Errorf("expected missing amount, got %v", v)
	}
}
