package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Altitude is an optional height. The zero value is NoAltitude.
type Altitude struct {
	value float64
	valid bool
}

// NoAltitude marks a position without a height.
var NoAltitude = Altitude{}

// AltitudeOf returns a present altitude. Non-finite values have no altitude
// to carry and yield NoAltitude.
func AltitudeOf(v float64) Altitude {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NoAltitude
	}
	return Altitude{value: v, valid: true}
}

// Value returns the altitude and whether it is present.
func (a Altitude) Value() (float64, bool) { return a.value, a.valid }

// Valid reports whether the altitude is present.
func (a Altitude) Valid() bool { return a.valid }

func (a Altitude) String() string {
	if !a.valid {
		return "none"
	}
	return strconv.FormatFloat(a.value, 'g', -1, 64)
}

// Position is a longitude/latitude pair in decimal degrees with an optional
// altitude. On the wire it is the array [lng, lat] or [lng, lat, alt].
type Position struct {
	Longitude float64
	Latitude  float64
	Altitude  Altitude
}

// NewPosition assembles a position from already normalized values.
func NewPosition(longitude, latitude float64, altitude Altitude) Position {
	return Position{Longitude: longitude, Latitude: latitude, Altitude: altitude}
}

// EncodeArray returns [lng, lat], or [lng, lat, alt] when the altitude is present.
func EncodeArray(p Position) []float64 {
	if alt, ok := p.Altitude.Value(); ok {
		return []float64{p.Longitude, p.Latitude, alt}
	}
	return []float64{p.Longitude, p.Latitude}
}

// DecodeArray reads a position from its array form using DefaultNormalizer.
func DecodeArray(values []float64) (Position, error) {
	return DecodeArrayWith(values, DefaultNormalizer)
}

// DecodeArrayWith reads a position from its array form. Index 0 and 1 are
// passed through n; index 2, when present, is taken verbatim as the
// altitude. Elements after the third are ignored.
func DecodeArrayWith(values []float64, n Normalizer) (Position, error) {
	if len(values) < 2 {
		return Position{}, &CoordinateError{
			Kind:  MalformedRecord,
			Input: fmt.Sprintf("expected at least 2 elements, got %d", len(values)),
		}
	}

	lng, err := n.Normalize(values[0])
	if err != nil {
		return Position{}, fmt.Errorf("longitude: %w", err)
	}
	lat, err := n.Normalize(values[1])
	if err != nil {
		return Position{}, fmt.Errorf("latitude: %w", err)
	}

	alt := NoAltitude
	if len(values) > 2 {
		v := values[2]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Position{}, fmt.Errorf("altitude: %w", invalidFormat(strconv.FormatFloat(v, 'g', -1, 64), nil))
		}
		alt = AltitudeOf(v)
	}

	return NewPosition(lng, lat, alt), nil
}

// ArrayElements unwraps a decoded JSON number array. A null element is a
// MalformedRecord; encoding/json would otherwise leave it at zero.
func ArrayElements(raw []*float64) ([]float64, error) {
	values := make([]float64, len(raw))
	for i, v := range raw {
		if v == nil {
			return nil, &CoordinateError{
				Kind:  MalformedRecord,
				Input: fmt.Sprintf("element %d is null", i),
			}
		}
		values[i] = *v
	}
	return values, nil
}

// MarshalJSON writes the array form.
func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal(EncodeArray(p))
}

// UnmarshalJSON reads the array form and normalizes longitude and latitude.
// Anything other than a numeric array, including null, is a MalformedRecord.
func (p *Position) UnmarshalJSON(data []byte) error {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return &CoordinateError{Kind: MalformedRecord, Input: string(data), Err: err}
	}
	values, err := ArrayElements(raw)
	if err != nil {
		return err
	}
	decoded, err := DecodeArray(values)
	if err != nil {
		return err
	}
	*p = decoded
	return nil
}
