package domain

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// dmsScale is the fixed divisor FormatDMS applies before splitting a value
// into degrees, minutes and seconds.
const dmsScale = 36000.0

// ParseDMS converts a "[-]D", "[-]D:M" or "[-]D:M:S" string to decimal degrees.
//
// A single token is parsed as a plain decimal and returned without any range
// check. With two or more tokens the degrees must be an integer in [0, 179]
// (or exactly -180:0:0), minutes in [0, 59] and seconds in [0, 59]; minutes
// must be an integer when seconds are given. Tokens after the third are
// ignored and empty tokens between separators are skipped.
//
// Every failure is an InvalidFormat CoordinateError.
func ParseDMS(coordinate string) (float64, error) {
	s := coordinate
	negative := false
	if strings.HasPrefix(s, "-") {
		s = s[1:]
		negative = true
	}

	tokens := strings.FieldsFunc(s, func(r rune) bool { return r == ':' })
	if len(tokens) == 0 {
		return 0, invalidFormat(coordinate, nil)
	}
	if len(tokens) > 3 {
		tokens = tokens[:3]
	}
	// The leading '-' is the only sign; strconv would accept one per token.
	for _, tok := range tokens {
		if tok[0] == '+' || tok[0] == '-' {
			return 0, invalidFormat(coordinate, nil)
		}
	}

	if len(tokens) == 1 {
		v, err := parseDecimal(tokens[0])
		if err != nil {
			return 0, invalidFormat(coordinate, err)
		}
		return applySign(v, negative), nil
	}

	deg, err := strconv.Atoi(tokens[0])
	if err != nil {
		return 0, invalidFormat(coordinate, err)
	}

	var minutes, seconds float64
	if len(tokens) > 2 {
		m, err := strconv.Atoi(tokens[1])
		if err != nil {
			return 0, invalidFormat(coordinate, err)
		}
		minutes = float64(m)
		if seconds, err = parseDecimal(tokens[2]); err != nil {
			return 0, invalidFormat(coordinate, err)
		}
	} else if minutes, err = parseDecimal(tokens[1]); err != nil {
		return 0, invalidFormat(coordinate, err)
	}

	negative180 := negative && deg == 180 && minutes == 0 && seconds == 0

	if deg < 0 || (deg > 179 && !negative180) {
		return 0, invalidFormat(coordinate, nil)
	}
	if minutes < 0 || minutes > 59 {
		return 0, invalidFormat(coordinate, nil)
	}
	if seconds < 0 || seconds > 59 {
		return 0, invalidFormat(coordinate, nil)
	}

	v := float64(deg)*3600.0 + minutes*60.0 + seconds
	v /= 3600.0
	return applySign(v, negative), nil
}

// ParseDMSField is ParseDMS for optional values, such as a nullable JSON
// field. A nil coordinate is a NullInput error.
func ParseDMSField(coordinate *string) (float64, error) {
	if coordinate == nil {
		return 0, ErrNullInput
	}
	return ParseDMS(*coordinate)
}

// FormatDMS renders value as "[-]D:M:S" after dividing its magnitude by the
// fixed 36000 scale. Each component is rounded half-up to two decimal places
// on the exact binary value of the float and written in its shortest decimal
// form, so whole components carry no fraction ("10:0:0.5").
func FormatDMS(value float64) (string, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "", invalidFormat(strconv.FormatFloat(value, 'g', -1, 64), nil)
	}

	deg := math.Abs(value) / dmsScale
	minutes := math.Abs(math.Mod(deg, 1)) * 60
	seconds := math.Abs(math.Mod(minutes, 1)) * 60

	var b strings.Builder
	if value < 0 {
		b.WriteByte('-')
	}
	b.WriteString(roundHalfUp(deg).String())
	b.WriteByte(':')
	b.WriteString(roundHalfUp(minutes).String())
	b.WriteByte(':')
	b.WriteString(roundHalfUp(seconds).String())
	return b.String(), nil
}

// roundHalfUp rounds a finite, non-negative float to two places. The float
// is first expanded to its exact decimal value (num/2^k == num*5^k/10^k) so
// that 59.995, stored as 59.99499..., rounds down.
func roundHalfUp(v float64) decimal.Decimal {
	r := new(big.Rat).SetFloat64(v)
	k := r.Denom().BitLen() - 1
	five := new(big.Int).Exp(big.NewInt(5), big.NewInt(int64(k)), nil)
	num := new(big.Int).Mul(r.Num(), five)
	return decimal.NewFromBigInt(num, int32(-k)).Round(2)
}

func parseDecimal(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}

func applySign(v float64, negative bool) float64 {
	if negative {
		return -v
	}
	return v
}
