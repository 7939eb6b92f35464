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

// Package rendering writes frequency view models as HTML, ASCII or
// protobuf-encoded documents.
package rendering

import (
	"embed"
	"fmt"
	"io"

	"github.com/google/safehtml/template"

	"github.com/google/frequentia/core/views"
)

//go:embed templates/*
var templateFS embed.FS

// FrequencyRenderer executes the embedded page templates: one frequency
// table per page, and a landing page listing the registered summaries.
// Labels and aggregate values are escaped by safehtml; action links must
// already be safehtml.URL values.
type FrequencyRenderer struct {
	table   *template.Template
	landing *template.Template
}

// NewFrequencyRenderer parses the embedded templates.
func NewFrequencyRenderer() (*FrequencyRenderer, error) {
	fsys := template.TrustedFSFromEmbed(templateFS)
	table, err := parsePage(fsys, "freq.html")
	if err != nil {
		return nil, err
	}
	landing, err := parsePage(fsys, "landing.html")
	if err != nil {
		return nil, err
	}
	return &FrequencyRenderer{table: table, landing: landing}, nil
}

func parsePage(fsys template.TrustedFS, page string) (*template.Template, error) {
	t, err := template.New(page).ParseFS(fsys, "templates/"+page)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", page, err)
	}
	return t, nil
}

// Render writes the HTML page of one frequency table: a row per bucket
// with its histogram bar, a toggle link and a drill-down link.
func (r *FrequencyRenderer) Render(w io.Writer, vm views.FrequencyViewModel) error {
	return r.table.Execute(w, vm)
}

// RenderLanding writes the page linking to every summary.
func (r *FrequencyRenderer) RenderLanding(w io.Writer, vm views.LandingViewModel) error {
	return r.landing.Execute(w, vm)
}
