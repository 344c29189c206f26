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

package eval

import (
	"strconv"

	"github.com/cockroachdb/apd/v3"

	"github.com/partiql-core/pql/ion"
	"github.com/partiql-core/pql/perr"
)

// numericRank places a numeric type on the §4.4 coercion ladder:
// integer < double < arbitrary-decimal. Non-numeric types rank below
// everything, so callers that check IsNumeric first never see them.
func numericRank(t ion.Type) int {
	switch t {
	case ion.IntType:
		return 0
	case ion.FloatType:
		return 1
	case ion.DecimalType:
		return 2
	default:
		return -1
	}
}

// coerce promotes a and b to their common widest numeric type on the
// ladder, returning the promoted pair and that common type.
func coerce(a, b ion.Datum) (ion.Datum, ion.Datum, ion.Type, bool) {
	ta, tb := a.Type(), b.Type()
	if !ta.IsNumeric() || !tb.IsNumeric() {
		return nil, nil, 0, false
	}
	common := ta
	if numericRank(tb) > numericRank(ta) {
		common = tb
	}
	pa, ok := widen(a, common)
	if !ok {
		return nil, nil, 0, false
	}
	pb, ok := widen(b, common)
	if !ok {
		return nil, nil, 0, false
	}
	return pa, pb, common, true
}

func widen(d ion.Datum, to ion.Type) (ion.Datum, bool) {
	if d.Type() == to {
		return d, true
	}
	switch to {
	case ion.FloatType:
		switch v := d.(type) {
		case ion.Int:
			return ion.Float(v), true
		}
	case ion.DecimalType:
		switch v := d.(type) {
		case ion.Int:
			return ion.DecimalFromInt64(int64(v)), true
		case ion.Float:
			dec, _, err := apd.NewFromString(strconv.FormatFloat(float64(v), 'g', -1, 64))
			if err != nil {
				return nil, false
			}
			return ion.NewDecimal(dec), true
		}
	}
	return nil, false
}

// arith applies op to a and b after coercing them onto the §4.4
// ladder, using integer-quotient division when the common type is
// INT so that int/int division never pays for decimal scale inflation
// (the behavior §4.4 calls out by name).
func arith(op ArithKind, a, b ion.Datum) (ion.Datum, error) {
	pa, pb, common, ok := coerce(a, b)
	if !ok {
		return nil, perr.New(perr.EvaluatorInvalidArguments, "arithmetic requires numeric operands",
			perr.ActualType, a.Type().String())
	}
	switch common {
	case ion.IntType:
		return intArith(op, int64(pa.(ion.Int)), int64(pb.(ion.Int)))
	case ion.FloatType:
		return floatArith(op, float64(pa.(ion.Float)), float64(pb.(ion.Float)))
	default:
		return decimalArith(op, pa.(ion.Decimal), pb.(ion.Decimal))
	}
}

// ArithKind names a binary arithmetic operator, independent of
// expr.ArithOp so this package doesn't need to import expr just for
// the enum.
type ArithKind int

const (
	Add ArithKind = iota
	Sub
	Mul
	Div
	Mod
)

func intArith(op ArithKind, a, b int64) (ion.Datum, error) {
	switch op {
	case Add:
		r := a + b
		if (b > 0 && r < a) || (b < 0 && r > a) {
			return nil, overflow()
		}
		return ion.Int(r), nil
	case Sub:
		r := a - b
		if (b < 0 && r < a) || (b > 0 && r > a) {
			return nil, overflow()
		}
		return ion.Int(r), nil
	case Mul:
		if a == 0 || b == 0 {
			return ion.Int(0), nil
		}
		r := a * b
		if r/b != a {
			return nil, overflow()
		}
		return ion.Int(r), nil
	case Div:
		if b == 0 {
			return nil, perr.New(perr.EvaluatorDivideByZero, "division by zero")
		}
		return ion.Int(a / b), nil
	case Mod:
		if b == 0 {
			return nil, perr.New(perr.EvaluatorDivideByZero, "division by zero")
		}
		return ion.Int(a % b), nil
	}
	return nil, perr.Internal(perr.EvaluatorGeneric, "unknown arithmetic op")
}

func floatArith(op ArithKind, a, b float64) (ion.Datum, error) {
	switch op {
	case Add:
		return ion.Float(a + b), nil
	case Sub:
		return ion.Float(a - b), nil
	case Mul:
		return ion.Float(a * b), nil
	case Div:
		return ion.Float(a / b), nil
	case Mod:
		return ion.Float(floatMod(a, b)), nil
	}
	return nil, perr.Internal(perr.EvaluatorGeneric, "unknown arithmetic op")
}

func floatMod(a, b float64) float64 {
	m := a - (trunc(a/b))*b
	return m
}

func trunc(f float64) float64 {
	i := int64(f)
	return float64(i)
}

func decimalArith(op ArithKind, a, b ion.Decimal) (ion.Datum, error) {
	var r apd.Decimal
	var err error
	switch op {
	case Add:
		_, err = ion.DecimalContext.Add(&r, a.V, b.V)
	case Sub:
		_, err = ion.DecimalContext.Sub(&r, a.V, b.V)
	case Mul:
		_, err = ion.DecimalContext.Mul(&r, a.V, b.V)
	case Div:
		if b.V.IsZero() {
			return nil, perr.New(perr.EvaluatorDivideByZero, "division by zero")
		}
		_, err = ion.DecimalContext.Quo(&r, a.V, b.V)
	case Mod:
		if b.V.IsZero() {
			return nil, perr.New(perr.EvaluatorDivideByZero, "division by zero")
		}
		_, err = ion.DecimalContext.Rem(&r, a.V, b.V)
	default:
		return nil, perr.Internal(perr.EvaluatorGeneric, "unknown arithmetic op")
	}
	if err != nil {
		return nil, perr.New(perr.EvaluatorInvalidArguments, "decimal arithmetic failed", perr.Cause, err.Error())
	}
	return ion.NewDecimal(&r), nil
}

func overflow() error {
	return perr.New(perr.EvaluatorIntOverflow, "integer overflow")
}

// compareNumeric orders two numeric Datums on the §4.4 ladder,
// returning -1, 0, or 1.
func compareNumeric(a, b ion.Datum) (int, bool) {
	pa, pb, common, ok := coerce(a, b)
	if !ok {
		return 0, false
	}
	switch common {
	case ion.IntType:
		x, y := int64(pa.(ion.Int)), int64(pb.(ion.Int))
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		default:
			return 0, true
		}
	case ion.FloatType:
		x, y := float64(pa.(ion.Float)), float64(pb.(ion.Float))
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		default:
			return 0, true
		}
	default:
		return ion.CompareDecimal(pa.(ion.Decimal), pb.(ion.Decimal)), true
	}
}
