package domain

import (
	"context"
	"time"
)

// Input formats carried by source records.
const (
	InputFormatArray = "array"
	InputFormatDMS   = "dms"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// PositionRecord is a source message carrying a raw array position,
// e.g. {"id":"buoy-7","coordinates":[360000,-1800000,12.5]}.
type PositionRecord struct {
	ID          string    `json:"id"`
	Source      string    `json:"source,omitempty"`
	Format      string    `json:"format,omitempty"` // empty or "array"
	Coordinates []float64 `json:"coordinates"`
}

// DMSRecord is a source message carrying longitude and latitude as D:M:S
// strings. Null or missing strings are rejected with NullInput.
type DMSRecord struct {
	ID        string   `json:"id"`
	Source    string   `json:"source,omitempty"`
	Format    string   `json:"format"` // "dms"
	Longitude *string  `json:"longitude"`
	Latitude  *string  `json:"latitude"`
	Altitude  *float64 `json:"altitude,omitempty"`
}

// NormalizedPosition is the sink representation of a converted record.
// Consumers should read Coordinates as a plain number array: decoding it
// into a Position normalizes the values a second time.
type NormalizedPosition struct {
	ID          string    `json:"id"`
	Source      string    `json:"source,omitempty"`
	Position    Position  `json:"coordinates"`
	InputFormat string    `json:"input_format"`
	ProcessedAt time.Time `json:"processed_at"`

	RawPayload []byte `json:"-"`
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
