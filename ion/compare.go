// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package ion

import "github.com/cockroachdb/apd/v3"

// DecimalContext is the arbitrary-precision context used for every
// Decimal operation in the document model: 34 digits of precision
// (the same working precision apd's own decimal128 preset uses),
// rounding half-even.
var DecimalContext = apd.BaseContext.WithPrecision(34)

// CompareDecimal orders two Decimal values, returning -1, 0, or 1.
func CompareDecimal(a, b Decimal) int {
	return a.V.Cmp(b.V)
}

// CompareTimestamp orders two Timestamp values by the instant they
// name, ignoring precision and recorded offset, returning -1, 0, or 1.
func CompareTimestamp(a, b Timestamp) int {
	return a.V.Compare(b.V)
}

// EqualDecimal reports whether a and b name the same numeric value
// regardless of scale (1.0 == 1.00).
func EqualDecimal(a, b Decimal) bool {
	return a.V.Cmp(b.V) == 0
}

// DecimalFromInt64 builds a Decimal with the given unscaled value and
// is a convenience for callers (e.g. CAST) producing exact integers.
func DecimalFromInt64(v int64) Decimal {
	return Decimal{V: apd.New(v, 0)}
}
