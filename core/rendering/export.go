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

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/google/frequentia/core/aggregates"
	"github.com/google/frequentia/core/columns"
	"github.com/google/frequentia/core/grouping"
	"github.com/google/frequentia/core/tables"
)

// ToStruct converts a frequency table to a protobuf Struct with the table
// fields and one entry per bucket. Buckets carry a "selected" field when
// sel, the selection of the source view, is not nil.
func ToStruct(ft *grouping.FrequencyTable, sel *tables.Selection) (*structpb.Struct, error) {
	buckets := make([]any, 0, ft.Len())
	for _, b := range ft.Buckets {
		aggs := make(map[string]any, len(ft.Derived))
		for j, d := range ft.Derived {
			var v any
			if j < len(b.Aggregates) {
				v = b.Aggregates[j]
			}
			aggs[d.Name] = exportValue(v)
		}
		bucket := map[string]any{
			"label":      b.Label,
			"count":      b.Count(),
			"percent":    aggregates.Percent(b.Count(), ft.Total),
			"aggregates": aggs,
		}
		if sel != nil {
			bucket["selected"] = b.SelectedIn(sel)
		}
		buckets = append(buckets, bucket)
	}
	s, err := structpb.NewStruct(map[string]any{
		"name":    ft.Name,
		"column":  ft.Column,
		"mode":    ft.Mode.String(),
		"total":   ft.Total,
		"largest": ft.Largest,
		"buckets": buckets,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to export %s: %w", ft.Name, err)
	}
	return s, nil
}

func exportValue(v any) any {
	switch v.(type) {
	case nil, string, bool, float64, int64:
		return v
	default:
		return columns.FormatRaw(v)
	}
}

// MarshalJSON exports the table as indented JSON.
func MarshalJSON(ft *grouping.FrequencyTable, sel *tables.Selection) ([]byte, error) {
	s, err := ToStruct(ft, sel)
	if err != nil {
		return nil, err
	}
	return protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
}

// MarshalText exports the table in protobuf text format.
func MarshalText(ft *grouping.FrequencyTable, sel *tables.Selection) ([]byte, error) {
	s, err := ToStruct(ft, sel)
	if err != nil {
		return nil, err
	}
	return prototext.MarshalOptions{Multiline: true}.Marshal(s)
}
