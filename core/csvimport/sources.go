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
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"sigs.k8s.io/yaml"

	"github.com/google/frequentia/core/tables"
)

// TableSource describes one CSV file and how its columns are imported.
type TableSource struct {
	Name      string         `json:"name"`
	File      string         `json:"file"`
	Delimiter string         `json:"delimiter,omitempty"`
	NoHeader  bool           `json:"noHeader,omitempty"`
	Columns   []ColumnSource `json:"columns,omitempty"`
}

// TableSources is the top level of a sources file.
type TableSources struct {
	Tables []TableSource `json:"tables"`
}

// ParseTableSources parses a YAML sources document.
func ParseTableSources(data []byte) (*TableSources, error) {
	sources := &TableSources{}
	if err := yaml.UnmarshalStrict(data, sources); err != nil {
		return nil, fmt.Errorf("failed to parse table sources: %w", err)
	}
	seen := make(map[string]bool)
	for _, t := range sources.Tables {
		if t.Name == "" {
			return nil, fmt.Errorf("table source for %q has no name", t.File)
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("duplicate table source %q", t.Name)
		}
		seen[t.Name] = true
	}
	return sources, nil
}

// LoadTableSources reads a YAML sources file. Relative file paths are
// resolved against the directory of the sources file.
func LoadTableSources(path string) (*TableSources, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read table sources: %w", err)
	}
	sources, err := ParseTableSources(data)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	for i := range sources.Tables {
		if f := sources.Tables[i].File; f != "" && !filepath.IsAbs(f) {
			sources.Tables[i].File = filepath.Join(dir, f)
		}
	}
	return sources, nil
}

// Options converts the source to ImportOptions.
func (ts TableSource) Options() (ImportOptions, error) {
	options := DefaultOptions()
	options.HasHeader = !ts.NoHeader
	if ts.Delimiter != "" {
		r, size := utf8.DecodeRuneInString(ts.Delimiter)
		if size != len(ts.Delimiter) {
			return ImportOptions{}, fmt.Errorf("table %q: delimiter %q must be a single character", ts.Name, ts.Delimiter)
		}
		options.Delimiter = r
	}
	for _, col := range ts.Columns {
		if col.Name == "" {
			return ImportOptions{}, fmt.Errorf("table %q: column source without a name", ts.Name)
		}
		options.ColumnSources[col.Name] = col
	}
	return options, nil
}

// Load imports the table described by the source.
func (ts TableSource) Load() (*tables.DataTable, error) {
	options, err := ts.Options()
	if err != nil {
		return nil, err
	}
	table, err := ImportFromFile(ts.File, options)
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", ts.Name, err)
	}
	return table, nil
}
