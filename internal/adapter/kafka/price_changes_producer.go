package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/strogholod/catalog/internal/core/domain"
	"github.com/strogholod/catalog/internal/core/port"
	"github.com/strogholod/catalog/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.PriceChangeRecorder = (*PriceChangesProducer)(nil)

// A PriceChangesProducer publishes confirmed price changes.
// Records are keyed by product id so changes of one product stay ordered.
type PriceChangesProducer struct {
	cl      ProducerClient
	encoder Encoder
}

func NewPriceChangesProducer(
	opts ...ProducerOpt,
) (PriceChangesProducer, error) {
	const op = "NewPriceChangesProducer"

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return PriceChangesProducer{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	if options.cl == nil || options.encoder == nil {
		return PriceChangesProducer{}, fmt.Errorf("%s: %w", op, ErrTooFewOpts)
	}
	return PriceChangesProducer{options.cl, options.encoder}, nil
}

func (p PriceChangesProducer) Close() {
	const op = "PriceChangesProducer.Close"
	log := slog.With("op", op)
	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

func (p PriceChangesProducer) RecordPriceChange(
	ctx context.Context, change domain.PriceChange,
) error {
	const op = "PriceChangesProducer.RecordPriceChange"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	r, err := p.createRecord(change)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res := p.cl.ProduceSync(ctx, r)
	if err := res.FirstErr(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	slog.Debug("price change produced", "op", op, "productID", change.ProductID)
	return nil
}

func (p PriceChangesProducer) createRecord(
	change domain.PriceChange,
) (*kgo.Record, error) {
	v, err := p.encoder.Encode(p.toSchema(change))
	if err != nil {
		return nil, err
	}
	return &kgo.Record{
		Key:       []byte(strconv.Itoa(change.ProductID)),
		Value:     v,
		Timestamp: change.ChangedAt,
	}, nil
}

func (PriceChangesProducer) toSchema(
	change domain.PriceChange,
) schema.PriceChangeV1 {
	return schema.PriceChangeV1{
		ProductID: int64(change.ProductID),
		Name:      change.Name,
		Category:  change.Category,
		OldPrice:  change.OldPrice,
		NewPrice:  change.NewPrice,
		ChangedAt: domain.FormatPriceTime(change.ChangedAt),
	}
}
