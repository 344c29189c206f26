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

// Package date provides a timestamp representation for the document
// model's TIMESTAMP scalar. Unlike time.Time, a Time remembers the
// precision and UTC offset that were present in its textual source,
// since PartiQL/Ion timestamps are significant down to the field that
// was actually written (a bare "2022" and "2022-01-01T00:00:00Z" are
// different values even though they name the same instant).
package date

import (
	"fmt"
	"time"
)

// Precision records which components of a Time were
// actually present in the source text that produced it.
// Components coarser than the recorded precision are
// meaningful; anything finer is a zero-fill, not data.
type Precision int

const (
	// Nanosecond is the default precision for timestamps
	// constructed programmatically (e.g. Now()).
	Nanosecond Precision = iota
	Year
	Month
	Day
	Minute
	Second
	Fraction
)

func (p Precision) String() string {
	switch p {
	case Year:
		return "year"
	case Month:
		return "month"
	case Day:
		return "day"
	case Minute:
		return "minute"
	case Second:
		return "second"
	case Fraction:
		return "fraction"
	case Nanosecond:
		return "nanosecond"
	default:
		return "unknown"
	}
}

// A Time represents a date and time with a nanosecond
// component. This representation allows for faster
// extraction of date components than time.Time, at the
// cost of slower conversion to Unix times.
//
// This representation cannot store years below 0 or
// above 16,383. Years falling outside that range will
// be truncated to fit within that range.
type Time struct {
	ts uint64
	ns uint32

	precision Precision

	// offset is the UTC offset in minutes as written in the
	// source text. hasOffset distinguishes "Z" (hasOffset,
	// offset==0) from an unknown/local offset.
	offset    int16
	hasOffset bool
}

// Parse parses a date string from data
// and returns the associated time and true,
// or the zero time value and false if the buffer
// did not contain a recognized date format.
//
// Parse attempts to recognize strings
// that (approximately) match RFC3339 timestamps
// with optional nanosecond precision and timezone/offset
// components, as well as the coarser ISO-8601 prefixes
// (year-only, year-month, date-only) that Ion timestamps
// permit.
func Parse(data []byte) (Time, bool) {
	year, month, day, hour, min, sec, ns, prec, offset, hasOffset, ok := parseISO8601(data)
	if !ok {
		return Time{}, false
	}
	t := date(year, month, day, hour, min, sec, ns)
	t.precision = prec
	t.offset = int16(offset)
	t.hasOffset = hasOffset
	return t, true
}

// Date constructs a Time from components. Values of
// month, day, hour, min, sec, and ns outside their
// usual ranges will be normalized. Values for year
// outside of the range [0, 16383] will be truncated to
// fit within that range. The resulting Time has
// Nanosecond precision and no recorded offset.
func Date(year, month, day, hour, min, sec, ns int) Time {
	sec, ns = norm(sec, ns, 1e9)
	min, sec = norm(min, sec, 60)
	hour, min = norm(hour, min, 60)
	day, hour = norm(day, hour, 24)
	year, month, day = normdate(year, month, day)
	return date(year, month, day, hour, min, sec, ns)
}

// DateWithPrecision is like Date but additionally records the
// precision and UTC offset (in minutes) that the value should
// be treated as carrying.
func DateWithPrecision(year, month, day, hour, min, sec, ns int, precision Precision, offsetMinutes int, hasOffset bool) Time {
	t := Date(year, month, day, hour, min, sec, ns)
	t.precision = precision
	t.offset = int16(offsetMinutes)
	t.hasOffset = hasOffset
	return t
}

func date(year, month, day, hour, min, sec, ns int) Time {
	if year < 0 {
		year = 0
	} else if year > (1<<14)-1 {
		year = (1 << 14) - 1
	}
	ts := (uint64(year) & 0xffff << 40) |
		(uint64(month-1) & 0xff << 32) |
		(uint64(day-1) & 0xff << 24) |
		(uint64(hour) & 0xff << 16) |
		(uint64(min) & 0xff << 8) |
		(uint64(sec) & 0xff)
	return Time{ts: ts, ns: uint32(ns)}
}

// FromTime returns a Time equivalent to t.
func FromTime(t time.Time) Time {
	_, offset := t.Zone()
	u := t
	year, month, day := u.Year(), int(u.Month()), u.Day()
	hour, min, sec := u.Hour(), u.Minute(), u.Second()
	ns := u.Nanosecond()
	out := date(year, month, day, hour, min, sec, ns)
	out.offset = int16(offset / 60)
	out.hasOffset = true
	return out
}

// Now returns the current time.
func Now() Time {
	return FromTime(time.Now())
}

// Unix returns a Time from the given Unix time in seconds and nanoseconds.
func Unix(sec, ns int64) Time {
	return FromTime(time.Unix(sec, ns))
}

// UnixMicro returns a Time from the given Unix time in microseconds.
func UnixMicro(us int64) Time {
	return FromTime(time.UnixMicro(us))
}

// Time returns t as a time.Time.
func (t Time) Time() time.Time {
	year, month, day := t.Year(), time.Month(t.Month()), t.Day()
	hour, min, sec := t.Hour(), t.Minute(), t.Second()
	return time.Date(year, month, day, hour, min, sec, int(t.ns), time.UTC)
}

// instant returns the absolute instant t names, correcting the
// wall-clock fields (kept as written in the source text) by the
// recorded UTC offset. Used only for comparisons: Year/Month/Hour
// and friends must keep returning the textual wall-clock value so
// that String round-trips the source, but "the same instant" needs
// the offset applied.
func (t Time) instant() time.Time {
	off, ok := t.Offset()
	if !ok {
		return t.Time()
	}
	return t.Time().Add(-time.Duration(off) * time.Minute)
}

// Year returns the year component of t.
func (t Time) Year() int {
	return int(t.ts & 0xffff0000000000 >> 40)
}

// Month returns the month component of t.
func (t Time) Month() int {
	return int(t.ts&0xff00000000>>32) + 1
}

// Day returns the day component of t.
func (t Time) Day() int {
	return int(t.ts&0xff000000>>24) + 1
}

// Hour returns the hour component of t.
func (t Time) Hour() int {
	return int(t.ts & 0xff0000 >> 16)
}

// Minute returns the minute component of t.
func (t Time) Minute() int {
	return int(t.ts & 0xff00 >> 8)
}

// Second returns the second component of t.
func (t Time) Second() int {
	return int(t.ts & 0xff)
}

// Nanosecond returns the nanosecond component of t.
func (t Time) Nanosecond() int {
	return int(t.ns)
}

// Precision reports which components of t were present in its source.
func (t Time) Precision() Precision {
	return t.precision
}

// WithPrecision returns a copy of t with precision set to p.
func (t Time) WithPrecision(p Precision) Time {
	t.precision = p
	return t
}

// Offset returns t's UTC offset in minutes and whether one was recorded.
func (t Time) Offset() (minutes int, ok bool) {
	return int(t.offset), t.hasOffset
}

// Unix returns t as the number of seconds since the Unix epoch.
func (t Time) Unix() int64 {
	return t.instant().Unix()
}

// UnixMicro returns t as the number of microseconds since the Unix epoch.
func (t Time) UnixMicro() int64 {
	return t.instant().UnixMicro()
}

// UnixNano returns t as the number of nanoseconds since the Unix epoch.
func (t Time) UnixNano() int64 {
	return t.instant().UnixNano()
}

// Equal returns whether t and t2 name the same instant.
// Unlike ==, Equal ignores precision and compares across recorded
// offsets rather than raw wall-clock fields.
func (t Time) Equal(t2 Time) bool {
	return t.instant().Equal(t2.instant())
}

// Before returns whether t is before t2.
func (t Time) Before(t2 Time) bool {
	return t.instant().Before(t2.instant())
}

// After returns whether t is after t2.
func (t Time) After(t2 Time) bool {
	return t.instant().After(t2.instant())
}

// Compare returns -1, 0, or 1 depending on whether t is before, equal
// to, or after t2.
func (t Time) Compare(t2 Time) int {
	switch {
	case t.Before(t2):
		return -1
	case t.After(t2):
		return 1
	default:
		return 0
	}
}

// IsZero returns whether t is the zero value,
// corresponding to January 1st of year zero.
func (t Time) IsZero() bool {
	return t.ts == 0 && t.ns == 0
}

// AppendRFC3339 appends t formatted as an RFC3339
// compliant string to b.
func (t Time) AppendRFC3339(b []byte) []byte {
	return t.Time().AppendFormat(b, time.RFC3339)
}

// AppendRFC3339Nano is like AppendRFC3339 but includes nanoseconds.
func (t Time) AppendRFC3339Nano(b []byte) []byte {
	return t.Time().AppendFormat(b, time.RFC3339Nano)
}

// Add adds d to t, preserving neither precision nor offset.
func (t Time) Add(d time.Duration) Time {
	return FromTime(t.Time().Add(d))
}

// Truncate rounds t down to a multiple of d.
func (t Time) Truncate(d time.Duration) Time {
	out := FromTime(t.Time().Truncate(d))
	out.precision = t.precision
	return out
}

// String implements fmt.Stringer, rendering t according to its
// recorded precision (used by the text-form AST serializer).
func (t Time) String() string {
	y, mo, d := t.Year(), t.Month(), t.Day()
	h, mi, s := t.Hour(), t.Minute(), t.Second()
	ns := t.Nanosecond()
	switch t.precision {
	case Year:
		return fmt.Sprintf("%04d", y)
	case Month:
		return fmt.Sprintf("%04d-%02d", y, mo)
	case Day:
		return fmt.Sprintf("%04d-%02d-%02d", y, mo, d)
	}
	base := fmt.Sprintf("%04d-%02d-%02dT%02d:%02d", y, mo, d, h, mi)
	if t.precision != Minute {
		base += fmt.Sprintf(":%02d", s)
		if ns != 0 {
			base += fmt.Sprintf(".%09d", ns)
		}
	}
	if off, ok := t.Offset(); ok {
		if off == 0 {
			base += "Z"
		} else {
			sign := "+"
			if off < 0 {
				sign = "-"
				off = -off
			}
			base += fmt.Sprintf("%s%02d:%02d", sign, off/60, off%60)
		}
	} else {
		base += "Z"
	}
	return base
}

var monthdays = [12]int{
	31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31,
}

func isleap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func daysin(y, m int) int {
	d := monthdays[m-1]
	if m == 2 && isleap(y) {
		d++
	}
	return d
}

func norm(hi, lo, base int) (nhi, nlo int) {
	if lo < 0 {
		n := (-lo-1)/base + 1
		hi -= n
		lo += n * base
	}
	if lo >= base {
		n := lo / base
		hi += n
		lo -= n * base
	}
	return hi, lo
}

func normdate(y, m, d int) (year, month, day int) {
	y, m = norm(y, m-1, 12)
	m++
	md := daysin(y, m)
	if d >= 1 && d <= md {
		return y, m, d
	}
	for d < 1 {
		if m--; m < 1 {
			y, m = y-1, 12
		}
		md = daysin(y, m)
		d += md
	}
	for ; d > md; md = daysin(y, m) {
		d -= md
		if m++; m > 12 {
			y, m = y+1, 1
		}
	}
	return y, m, d
}
