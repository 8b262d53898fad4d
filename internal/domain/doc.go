// Package domain converts geographic positions between their wire forms.
//
// # Array form
//
// A position travels as a JSON number array, longitude first:
//
//	[lng, lat]        no altitude
//	[lng, lat, alt]   altitude present
//
// Altitude is never written as a trailing null. When decoding, longitude and
// latitude pass through [Normalize]; the altitude is taken verbatim.
//
// # D:M:S strings
//
//	"-D:M:S"  e.g. "-122:25:9.9"
//	"D:M"     minutes may be fractional when no seconds follow
//	"D"       any decimal, not range checked
//
// A leading "-" is the only sign accepted. Degrees and (with seconds)
// minutes are integers. With more than one token, degrees are limited to
// 0..179 except for the exact value "-180:0:0", and minutes and seconds to
// 0..59. See [ParseDMS].
//
// # Normalization
//
// [Normalize] formats a raw value with [FormatDMS] and parses the result
// again. The formatter divides the magnitude by a fixed 36000 and rounds each
// component half-up to two places on the exact binary value. Because the
// formatted string always has three components, normalization fails with
// InvalidFormat whenever degrees or minutes do not round to whole numbers or
// a component rounds out of range. Callers must treat that failure as a
// rejected value.
//
// # Errors
//
// Every conversion failure is a [*CoordinateError] of one of three kinds:
// NullInput, InvalidFormat or MalformedRecord. Match with errors.Is against
// [ErrNullInput], [ErrInvalidFormat] and [ErrMalformedRecord], or use [KindOf].
package domain
