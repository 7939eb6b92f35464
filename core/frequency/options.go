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

package frequency

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// Options configures a Summary. They are read once, at construction.
type Options struct {
	// HistogramGlyph is repeated to draw the histogram bar.
	HistogramGlyph string `json:"histogramGlyph"`
	// HistogramWidth is the width of a bar for a bucket holding every row.
	HistogramWidth int `json:"histogramWidth"`
	// Bins is the number of numeric bins; 0 derives it from the row count.
	Bins int `json:"bins"`
}

// DefaultOptions returns default summary options
func DefaultOptions() Options {
	return Options{
		HistogramGlyph: "*",
		HistogramWidth: 80,
		Bins:           0,
	}
}

// Validate checks that the options are usable.
func (o Options) Validate() error {
	if o.HistogramGlyph == "" {
		return fmt.Errorf("histogramGlyph must not be empty")
	}
	if o.HistogramWidth < 0 {
		return fmt.Errorf("histogramWidth must not be negative, got %d", o.HistogramWidth)
	}
	if o.Bins < 0 {
		return fmt.Errorf("bins must not be negative, got %d", o.Bins)
	}
	return nil
}

// OptionsFromYAML parses options, starting from DefaultOptions so that
// omitted fields keep their defaults.
func OptionsFromYAML(data []byte) (Options, error) {
	opts := DefaultOptions()
	if err := yaml.UnmarshalStrict(data, &opts); err != nil {
		return Options{}, fmt.Errorf("failed to parse options: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, fmt.Errorf("invalid options: %w", err)
	}
	return opts, nil
}

// LoadOptions reads options from a YAML file.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("failed to read options file: %w", err)
	}
	return OptionsFromYAML(data)
}
