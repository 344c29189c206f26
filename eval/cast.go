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
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/partiql-core/pql/date"
	"github.com/partiql-core/pql/ion"
	"github.com/partiql-core/pql/perr"
)

// Cast implements the §4.3 CAST table. NULL and MISSING cast to
// themselves for every target; any other source/target pairing not
// named in the table is EVALUATOR_INVALID_CAST, a pairing that is
// legal but fails at runtime on an unparseable string is
// EVALUATOR_CAST_FAILED, and a number out of INT's range is
// EVALUATOR_INT_OVERFLOW.
func Cast(v Value, to ion.Type, params []int) (Value, error) {
	d := v.Datum
	if d.Type() == ion.MissingType || d.Type() == ion.NullType {
		return v, nil
	}
	switch to {
	case ion.BoolType:
		return castToBool(d)
	case ion.IntType:
		return castToInt(d)
	case ion.FloatType:
		return castToFloat(d)
	case ion.DecimalType:
		return castToDecimal(d)
	case ion.TimestampType:
		return castToTimestamp(d)
	case ion.StringType, ion.SymbolType:
		return castToText(d, to, params)
	case ion.ClobType, ion.BlobType:
		return castToLob(d, to)
	case ion.ListType, ion.SexpType, ion.BagType:
		return castToSequence(v, to)
	case ion.StructType:
		return castToStruct(d)
	}
	return Value{}, invalidCast(d.Type(), to)
}

func invalidCast(from, to ion.Type) error {
	return perr.New(perr.EvaluatorInvalidCast, "no conversion from "+from.String()+" to "+to.String(),
		perr.CastFrom, from.String(), perr.CastTo, to.String())
}

func castFailed(from, to ion.Type, cause string) error {
	return perr.New(perr.EvaluatorCastFailed, "cast failed: "+cause,
		perr.CastFrom, from.String(), perr.CastTo, to.String())
}

func castToBool(d ion.Datum) (Value, error) {
	switch v := d.(type) {
	case ion.Bool:
		return Of(v), nil
	case ion.Int:
		return Of(ion.Bool(v != 0)), nil
	case ion.Float:
		return Of(ion.Bool(v != 0)), nil
	case ion.Decimal:
		return Of(ion.Bool(!v.V.IsZero())), nil
	case ion.String:
		return Of(ion.Bool(strings.EqualFold(string(v), "true"))), nil
	case ion.Symbol:
		return Of(ion.Bool(strings.EqualFold(string(v), "true"))), nil
	}
	return Value{}, invalidCast(d.Type(), ion.BoolType)
}

func castToInt(d ion.Datum) (Value, error) {
	switch v := d.(type) {
	case ion.Bool:
		if v {
			return Of(ion.Int(1)), nil
		}
		return Of(ion.Int(0)), nil
	case ion.Int:
		return Of(v), nil
	case ion.Float:
		if v != v || v < -9.223372036854776e18 || v >= 9.223372036854776e18 {
			return Value{}, overflowCast()
		}
		return Of(ion.Int(int64(v))), nil
	case ion.Decimal:
		var i apd.Decimal
		_, err := ion.DecimalContext.RoundToIntegralValue(&i, v.V)
		if err != nil {
			return Value{}, castFailed(ion.DecimalType, ion.IntType, err.Error())
		}
		n, err := i.Int64()
		if err != nil {
			return Value{}, overflowCast()
		}
		return Of(ion.Int(n)), nil
	case ion.String:
		return parseIntText(string(v))
	case ion.Symbol:
		return parseIntText(string(v))
	}
	return Value{}, invalidCast(d.Type(), ion.IntType)
}

func overflowCast() error {
	return perr.New(perr.EvaluatorIntOverflow, "integer overflow")
}

// parseIntText parses base-10 digits, or "0x"/"0b"-prefixed text,
// with an optional leading sign, stripping leading zeros first (so
// "-0005" parses as -5 rather than tripping an octal-looking prefix).
func parseIntText(s string) (Value, error) {
	t := strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(t, "+") {
		t = t[1:]
	} else if strings.HasPrefix(t, "-") {
		neg = true
		t = t[1:]
	}
	base := 10
	switch {
	case strings.HasPrefix(t, "0x"), strings.HasPrefix(t, "0X"):
		base = 16
		t = t[2:]
	case strings.HasPrefix(t, "0b"), strings.HasPrefix(t, "0B"):
		base = 2
		t = t[2:]
	}
	t = strings.TrimLeft(t, "0")
	if t == "" {
		t = "0"
	}
	n, err := strconv.ParseUint(t, base, 64)
	if err != nil {
		if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
			return Value{}, overflowCast()
		}
		return Value{}, castFailed(ion.StringType, ion.IntType, err.Error())
	}
	if neg {
		if n > 1<<63 {
			return Value{}, overflowCast()
		}
		return Of(ion.Int(-int64(n))), nil
	}
	if n > (1<<63)-1 {
		return Value{}, overflowCast()
	}
	return Of(ion.Int(int64(n))), nil
}

func castToFloat(d ion.Datum) (Value, error) {
	switch v := d.(type) {
	case ion.Bool:
		if v {
			return Of(ion.Float(1)), nil
		}
		return Of(ion.Float(0)), nil
	case ion.Int:
		return Of(ion.Float(v)), nil
	case ion.Float:
		return Of(v), nil
	case ion.Decimal:
		f, err := strconv.ParseFloat(v.V.String(), 64)
		if err != nil {
			return Value{}, castFailed(ion.DecimalType, ion.FloatType, err.Error())
		}
		return Of(ion.Float(f)), nil
	case ion.String:
		return parseFloatText(string(v))
	case ion.Symbol:
		return parseFloatText(string(v))
	}
	return Value{}, invalidCast(d.Type(), ion.FloatType)
}

func parseFloatText(s string) (Value, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Value{}, castFailed(ion.StringType, ion.FloatType, err.Error())
	}
	return Of(ion.Float(f)), nil
}

func castToDecimal(d ion.Datum) (Value, error) {
	switch v := d.(type) {
	case ion.Bool:
		if v {
			return Of(ion.DecimalFromInt64(1)), nil
		}
		return Of(ion.DecimalFromInt64(0)), nil
	case ion.Int:
		return Of(ion.DecimalFromInt64(int64(v))), nil
	case ion.Float:
		dec, _, err := apd.NewFromString(strconv.FormatFloat(float64(v), 'g', -1, 64))
		if err != nil {
			return Value{}, castFailed(ion.FloatType, ion.DecimalType, err.Error())
		}
		return Of(ion.NewDecimal(dec)), nil
	case ion.Decimal:
		return Of(v), nil
	case ion.String:
		return parseDecimalText(string(v))
	case ion.Symbol:
		return parseDecimalText(string(v))
	}
	return Value{}, invalidCast(d.Type(), ion.DecimalType)
}

func parseDecimalText(s string) (Value, error) {
	dec, err := ion.ParseDecimal(strings.TrimSpace(s))
	if err != nil {
		return Value{}, castFailed(ion.StringType, ion.DecimalType, err.Error())
	}
	return Of(dec), nil
}

func castToTimestamp(d ion.Datum) (Value, error) {
	switch v := d.(type) {
	case ion.Timestamp:
		return Of(v), nil
	case ion.String:
		return parseTimestampText(string(v))
	case ion.Symbol:
		return parseTimestampText(string(v))
	}
	return Value{}, invalidCast(d.Type(), ion.TimestampType)
}

func parseTimestampText(s string) (Value, error) {
	t, ok := date.Parse([]byte(strings.TrimSpace(s)))
	if !ok {
		return Value{}, castFailed(ion.StringType, ion.TimestampType, "unparseable timestamp")
	}
	return Of(ion.NewTimestamp(t)), nil
}

func castToText(d ion.Datum, to ion.Type, params []int) (Value, error) {
	var text string
	switch v := d.(type) {
	case ion.Bool:
		if v {
			text = "true"
		} else {
			text = "false"
		}
	case ion.Int, ion.Float, ion.Decimal:
		text = ion.Render(d)
	case ion.Timestamp:
		text = v.V.String()
	case ion.String:
		text = string(v)
	case ion.Symbol:
		text = string(v)
	default:
		return Value{}, invalidCast(d.Type(), to)
	}
	if to == ion.StringType && len(params) == 1 && params[0] >= 0 && len(text) > params[0] {
		text = string([]rune(text)[:params[0]])
	}
	if to == ion.SymbolType {
		return Of(ion.Symbol(text)), nil
	}
	return Of(ion.String(text)), nil
}

func castToLob(d ion.Datum, to ion.Type) (Value, error) {
	var b []byte
	switch v := d.(type) {
	case ion.Blob:
		b = []byte(v)
	case ion.Clob:
		b = []byte(v)
	default:
		return Value{}, invalidCast(d.Type(), to)
	}
	if to == ion.BlobType {
		return Of(ion.Blob(b)), nil
	}
	return Of(ion.Clob(b)), nil
}

func castToSequence(v Value, to ion.Type) (Value, error) {
	switch d := v.Datum.(type) {
	case ion.Sequence:
		items := d.Items()
		i := 0
		seq := NewSequence(to, func() (Value, bool) {
			if i >= len(items) {
				return Value{}, false
			}
			item := unnamedOf(items[i])
			i++
			return item, true
		})
		return Of(seq), nil
	case *SequenceExprValue:
		return Of(d.Retarget(to)), nil
	}
	return Value{}, invalidCast(v.Datum.Type(), to)
}

func castToStruct(d ion.Datum) (Value, error) {
	if st, ok := d.(ion.Struct); ok {
		return Of(st), nil
	}
	return Value{}, invalidCast(d.Type(), ion.StructType)
}
