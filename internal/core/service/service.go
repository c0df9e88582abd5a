package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/strogholod/catalog/internal/core/domain"
	"github.com/strogholod/catalog/internal/core/port"
)

var (
	ErrTooFewOpts = errors.New("too few options")
	ErrNotFound   = errors.New("product not found")
	ErrCardBusy   = errors.New("product card has a pending operation")
)

var (
	ErrSubmissionInProgress = errors.New("submission already in progress")
	ErrEmptyName            = errors.New("product name is required")
	ErrPhotoRequired        = errors.New("photo is required")
	ErrPhotoUnavailable     = errors.New("photo file is not available")
	ErrUploadRejected       = errors.New("failed to upload photo")
)

// A journal fans a confirmed price change out to every recorder.
// Recording is best-effort: failures are logged only.
type journal []port.PriceChangeRecorder

func newJournal(rs ...port.PriceChangeRecorder) journal {
	var j journal
	for _, r := range rs {
		if r != nil {
			j = append(j, r)
		}
	}
	return j
}

func (j journal) record(ctx context.Context, change domain.PriceChange) {
	const op = "journal.record"
	log := slog.With("op", op)

	for _, r := range j {
		err := r.RecordPriceChange(ctx, change)
		if err != nil {
			log.Error(
				"failed to record price change",
				"productID", change.ProductID, "err", err,
			)
		}
	}
}
