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

import (
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CurrencyColumn stores monetary amounts in a single currency unit.
// Values are kept as float64; display goes through the locale printer.
type CurrencyColumn struct {
	Float64Column
	unit    currency.Unit
	printer *message.Printer
}

// NewCurrencyColumn creates a currency column for the given unit, formatted
// for the given locale.
func NewCurrencyColumn(columnDef *ColumnDef, unit currency.Unit, tag language.Tag) *CurrencyColumn {
	return &CurrencyColumn{
		Float64Column: *NewFloat64Column(columnDef),
		unit:          unit,
		printer:       message.NewPrinter(tag),
	}
}

func (c *CurrencyColumn) Kind() Kind {
	return KindCurrency
}

// Unit returns the currency of the column.
func (c *CurrencyColumn) Unit() currency.Unit {
	return c.unit
}

// GetString formats the amount with the currency symbol, e.g. "$ 1234.50".
func (c *CurrencyColumn) GetString(i uint32) (string, error) {
	v, ok, err := c.GetValue(i)
	if err != nil || !ok {
		return "", err
	}
	return c.printer.Sprint(currency.Symbol(c.unit.Amount(v))), nil
}

// ParseAmount parses an amount, ignoring a leading currency symbol or ISO
// code and thousands separators.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "$€£¥ ")
	if len(s) > 3 && isUpperASCII(s[:3]) {
		s = strings.TrimSpace(s[3:])
	}
	s = strings.ReplaceAll(s, ",", "")
	return ParseFloat64(s)
}

func isUpperASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
