package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testBuoyID   = "buoy-7"
	testSourceID = "ais"
)

func TestParseRawEvent(t *testing.T) {
	t.Run("array record with altitude", func(t *testing.T) {
		data := []byte(`{"id":"buoy-7","source":"ais","coordinates":[360000,-1800000,12.5]}`)
		result, err := ParseRawEvent(RawEvent{Value: data}, DefaultNormalizer)

		require.NoError(t, err)
		assert.Equal(t, testBuoyID, result.ID)
		assert.Equal(t, testSourceID, result.Source)
		assert.Equal(t, InputFormatArray, result.InputFormat)
		assert.Equal(t, NewPosition(10, -50, AltitudeOf(12.5)), result.Position)
		assert.Equal(t, data, result.RawPayload)
		assert.True(t, result.ProcessedAt.IsZero())
	})

	t.Run("explicit array format", func(t *testing.T) {
		data := []byte(`{"id":"p1","format":"array","coordinates":[0,360000]}`)
		result, err := ParseRawEvent(RawEvent{Value: data}, DefaultNormalizer)

		require.NoError(t, err)
		assert.Equal(t, NewPosition(0, 10, NoAltitude), result.Position)
	})

	t.Run("dms record", func(t *testing.T) {
		data := []byte(`{"id":"p2","format":"dms","longitude":"-122:25:9.9","latitude":"37:46:29.7","altitude":16}`)
		result, err := ParseRawEvent(RawEvent{Value: data}, DefaultNormalizer)

		require.NoError(t, err)
		assert.Equal(t, InputFormatDMS, result.InputFormat)
		assert.InDelta(t, -122.419416, result.Position.Longitude, 1e-6)
		assert.InDelta(t, 37.774916, result.Position.Latitude, 1e-6)
		alt, ok := result.Position.Altitude.Value()
		require.True(t, ok)
		assert.Equal(t, 16.0, alt)
	})

	t.Run("marshaled dms record", func(t *testing.T) {
		lng, lat, alt := "-45:15", "10:30:36", 120.0
		data, err := json.Marshal(DMSRecord{
			ID:        "p12",
			Source:    "survey",
			Format:    InputFormatDMS,
			Longitude: &lng,
			Latitude:  &lat,
			Altitude:  &alt,
		})
		require.NoError(t, err)

		result, err := ParseRawEvent(RawEvent{Value: data}, DefaultNormalizer)
		require.NoError(t, err)
		assert.Equal(t, "survey", result.Source)
		assert.Equal(t, InputFormatDMS, result.InputFormat)
		assert.Equal(t, -45.25, result.Position.Longitude)
		assert.InDelta(t, 10.51, result.Position.Latitude, 1e-12)
		assert.Equal(t, AltitudeOf(120), result.Position.Altitude)
	})

	t.Run("dms record with nil fields", func(t *testing.T) {
		data, err := json.Marshal(DMSRecord{ID: "p13", Format: InputFormatDMS})
		require.NoError(t, err)

		_, err = ParseRawEvent(RawEvent{Value: data}, DefaultNormalizer)
		assert.ErrorIs(t, err, ErrNullInput)
	})

	t.Run("dms record skips the normalizer", func(t *testing.T) {
		calls := 0
		n := NormalizerFunc(func(v float64) (float64, error) {
			calls++
			return v, nil
		})
		data := []byte(`{"id":"p3","format":"dms","longitude":"10:30","latitude":"-5"}`)
		result, err := ParseRawEvent(RawEvent{Value: data}, n)

		require.NoError(t, err)
		assert.Zero(t, calls)
		assert.Equal(t, NewPosition(10.5, -5, NoAltitude), result.Position)
	})

	t.Run("dms record with null latitude", func(t *testing.T) {
		data := []byte(`{"id":"p4","format":"dms","longitude":"10:30","latitude":null}`)
		_, err := ParseRawEvent(RawEvent{Value: data}, DefaultNormalizer)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNullInput)
		assert.Contains(t, err.Error(), "latitude")
	})

	t.Run("dms record missing longitude", func(t *testing.T) {
		data := []byte(`{"id":"p5","format":"dms","latitude":"10:30"}`)
		_, err := ParseRawEvent(RawEvent{Value: data}, DefaultNormalizer)

		assert.ErrorIs(t, err, ErrNullInput)
	})

	t.Run("dms record out of range", func(t *testing.T) {
		data := []byte(`{"id":"p6","format":"dms","longitude":"180:0:0","latitude":"0"}`)
		_, err := ParseRawEvent(RawEvent{Value: data}, DefaultNormalizer)

		assert.ErrorIs(t, err, ErrInvalidFormat)
	})

	t.Run("short coordinates", func(t *testing.T) {
		data := []byte(`{"id":"p7","coordinates":[1]}`)
		_, err := ParseRawEvent(RawEvent{Value: data}, DefaultNormalizer)

		assert.ErrorIs(t, err, ErrMalformedRecord)
	})

	t.Run("null coordinate element", func(t *testing.T) {
		for _, data := range []string{
			`{"id":"p10","coordinates":[360000,null]}`,
			`{"id":"p11","coordinates":[null,360000]}`,
		} {
			_, err := ParseRawEvent(RawEvent{Value: []byte(data)}, DefaultNormalizer)
			require.Error(t, err, data)
			assert.ErrorIs(t, err, ErrMalformedRecord)
			assert.Contains(t, err.Error(), "is null")
		}
	})

	t.Run("missing coordinates", func(t *testing.T) {
		_, err := ParseRawEvent(RawEvent{Value: []byte(`{"id":"p8"}`)}, DefaultNormalizer)

		assert.ErrorIs(t, err, ErrMalformedRecord)
	})

	t.Run("unnormalizable coordinates", func(t *testing.T) {
		data := []byte(`{"id":"p9","coordinates":[37.7749,-122.4194]}`)
		_, err := ParseRawEvent(RawEvent{Value: data}, DefaultNormalizer)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidFormat)
		assert.Contains(t, err.Error(), "convert array record")
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := ParseRawEvent(RawEvent{Value: []byte(`{"format":"wkt"}`)}, DefaultNormalizer)

		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown format "wkt"`)
		assert.Zero(t, KindOf(err))
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := ParseRawEvent(RawEvent{Value: []byte("{invalid json")}, DefaultNormalizer)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse raw event")
	})

	t.Run("deterministic ID when missing", func(t *testing.T) {
		raw := RawEvent{Value: []byte(`{"coordinates":[360000,720000]}`)}

		result1, err := ParseRawEvent(raw, DefaultNormalizer)
		require.NoError(t, err)
		result2, err := ParseRawEvent(raw, DefaultNormalizer)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(result1.ID, "pos-"))
		assert.Equal(t, result1.ID, result2.ID)
	})
}

func TestStampProcessed(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2024, time.April, 26, 15, 10, 0, 0, time.UTC))
	SetClock(fakeClock)
	t.Cleanup(func() { SetClock(nil) })

	pos := StampProcessed(NormalizedPosition{ID: testBuoyID})
	assert.Equal(t, fakeClock.Now(), pos.ProcessedAt)
}

func TestSerializePosition(t *testing.T) {
	processed := time.Date(2024, time.April, 26, 15, 10, 0, 0, time.UTC)
	pos := NormalizedPosition{
		ID:          testBuoyID,
		Source:      testSourceID,
		Position:    NewPosition(10, -50, AltitudeOf(12.5)),
		InputFormat: InputFormatArray,
		ProcessedAt: processed,
	}

	out, err := SerializePosition(pos)
	require.NoError(t, err)

	assert.Equal(t, []byte(testBuoyID), out.Key)
	assert.JSONEq(t, `{
		"id": "buoy-7",
		"source": "ais",
		"coordinates": [10, -50, 12.5],
		"input_format": "array",
		"processed_at": "2024-04-26T15:10:00Z"
	}`, string(out.Value))
	assert.Equal(t, InputFormatArray, out.Headers["input_format"])
	assert.Equal(t, processed.Format(time.RFC3339), out.Headers["processed_at"])
}

func TestSerializePosition_NoAltitude(t *testing.T) {
	out, err := SerializePosition(NormalizedPosition{ID: "p1", Position: NewPosition(1, 2, NoAltitude)})
	require.NoError(t, err)
	assert.Contains(t, string(out.Value), `"coordinates":[1,2]`)
}
