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

// nulls records which rows of a column hold no value. It stays nil until
// the first missing value is appended.
type nulls struct {
	missing []bool
}

func (n *nulls) mark(i int) {
	if n.missing == nil {
		n.missing = make([]bool, i, i+1)
	}
	for len(n.missing) < i {
		n.missing = append(n.missing, false)
	}
	n.missing = append(n.missing, true)
}

func (n *nulls) isMissing(i uint32) bool {
	return int(i) < len(n.missing) && n.missing[i]
}
