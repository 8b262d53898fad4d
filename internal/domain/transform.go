package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// rawRecord accepts both source layouts; Format selects which fields apply.
type rawRecord struct {
	ID          string     `json:"id"`
	Source      string     `json:"source"`
	Format      string     `json:"format"`
	Coordinates []*float64 `json:"coordinates"`
	Longitude   *string    `json:"longitude"`
	Latitude    *string    `json:"latitude"`
	Altitude    *float64   `json:"altitude"`
}

// ParseRawEvent decodes a source message and converts its coordinates.
// Array records go through n; DMS records are parsed with ParseDMSField.
// The returned position has no ProcessedAt; see StampProcessed.
func ParseRawEvent(raw RawEvent, n Normalizer) (NormalizedPosition, error) {
	var rec rawRecord
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return NormalizedPosition{}, fmt.Errorf("parse raw event: %w", err)
	}

	var (
		pos    Position
		format string
		err    error
	)
	switch rec.Format {
	case "", InputFormatArray:
		format = InputFormatArray
		pos, err = decodeArray(rec.Coordinates, n)
	case InputFormatDMS:
		format = InputFormatDMS
		pos, err = decodeDMS(rec)
	default:
		return NormalizedPosition{}, fmt.Errorf("parse raw event: unknown format %q", rec.Format)
	}
	if err != nil {
		return NormalizedPosition{}, fmt.Errorf("convert %s record: %w", format, err)
	}

	id := rec.ID
	if id == "" {
		id = generateID(format, pos)
	}

	return NormalizedPosition{
		ID:          id,
		Source:      rec.Source,
		Position:    pos,
		InputFormat: format,
		RawPayload:  raw.Value,
	}, nil
}

func decodeArray(raw []*float64, n Normalizer) (Position, error) {
	values, err := ArrayElements(raw)
	if err != nil {
		return Position{}, err
	}
	return DecodeArrayWith(values, n)
}

func decodeDMS(rec rawRecord) (Position, error) {
	lng, err := ParseDMSField(rec.Longitude)
	if err != nil {
		return Position{}, fmt.Errorf("longitude: %w", err)
	}
	lat, err := ParseDMSField(rec.Latitude)
	if err != nil {
		return Position{}, fmt.Errorf("latitude: %w", err)
	}

	alt := NoAltitude
	if rec.Altitude != nil {
		if math.IsInf(*rec.Altitude, 0) || math.IsNaN(*rec.Altitude) {
			return Position{}, fmt.Errorf("altitude: %w", ErrInvalidFormat)
		}
		alt = AltitudeOf(*rec.Altitude)
	}
	return NewPosition(lng, lat, alt), nil
}

// StampProcessed sets ProcessedAt from the package clock.
func StampProcessed(pos NormalizedPosition) NormalizedPosition {
	pos.ProcessedAt = clock.Now().UTC()
	return pos
}

// SerializePosition marshals a converted position into a sink message keyed
// by its ID.
func SerializePosition(pos NormalizedPosition) (OutputEvent, error) {
	data, err := json.Marshal(pos)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize position: %w", err)
	}
	return OutputEvent{
		Key:   []byte(pos.ID),
		Value: data,
		Headers: map[string]string{
			"input_format": pos.InputFormat,
			"processed_at": pos.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}

// generateID produces a deterministic ID for records that arrive without
// one, so replays of the same payload map to the same key.
func generateID(format string, pos Position) string {
	input := fmt.Sprintf("%s|%.7f|%.7f|%s", format, pos.Longitude, pos.Latitude, pos.Altitude)
	hash := sha256.Sum256([]byte(input))
	return "pos-" + hex.EncodeToString(hash[:8])
}
