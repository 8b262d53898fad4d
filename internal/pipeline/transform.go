package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/geo-position-etl/internal/domain"
)

// PositionTransformer implements Transformer: it decodes a source record,
// converts its coordinates, stamps it and serializes it for the sink.
type PositionTransformer struct {
	normalizer domain.Normalizer
	logger     *slog.Logger
}

// NewTransformer creates a PositionTransformer. A nil normalizer uses
// domain.DefaultNormalizer.
func NewTransformer(normalizer domain.Normalizer, logger *slog.Logger) *PositionTransformer {
	if normalizer == nil {
		normalizer = domain.DefaultNormalizer
	}
	return &PositionTransformer{
		normalizer: normalizer,
		logger:     logger,
	}
}

func (t *PositionTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	pos, err := domain.ParseRawEvent(raw, t.normalizer)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	pos = domain.StampProcessed(pos)
	t.logger.Debug("position converted",
		"id", pos.ID,
		"input_format", pos.InputFormat,
		"longitude", pos.Position.Longitude,
		"latitude", pos.Position.Latitude,
		"altitude", pos.Position.Altitude.String(),
	)

	return domain.SerializePosition(pos)
}
