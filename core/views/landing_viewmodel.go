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

package views

import (
	"net/url"

	"github.com/google/safehtml"

	"github.com/google/frequentia/core/frequency"
)

// LandingViewModel lists the available summaries
type LandingViewModel struct {
	Title     string
	Summaries []SummaryInfo
}

// SummaryInfo describes one summary on the landing page
type SummaryInfo struct {
	Name    string
	Source  string
	Column  string
	Rows    int
	Buckets int
	URL     safehtml.URL
}

// BuildLandingViewModel lists summaries in the given order.
func BuildLandingViewModel(title, basePath string, summaries []*frequency.Summary) LandingViewModel {
	vm := LandingViewModel{Title: title}
	for _, s := range summaries {
		q := url.Values{}
		q.Set("summary", s.Name())
		vm.Summaries = append(vm.Summaries, SummaryInfo{
			Name:    s.Name(),
			Source:  s.Source().Name(),
			Column:  s.Column().ColumnDef().DisplayName(),
			Rows:    s.Source().Length(),
			Buckets: s.Table().Len(),
			URL:     safehtml.URLSanitized(basePath + "?" + q.Encode()),
		})
	}
	return vm
}
