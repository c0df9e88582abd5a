package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/strogholod/catalog/internal/core/domain"
	"github.com/strogholod/catalog/internal/core/port"
)

var (
	_ port.PriceChangeRecorder = (*PriceChangesRepository)(nil)
	_ port.PriceChangesReader  = (*PriceChangesRepository)(nil)
)

// PriceChangesRepository keeps the local price change history.
type PriceChangesRepository struct {
	sqldb sqldb
}

func NewPriceChangesRepository(sqldb sqldb) PriceChangesRepository {
	return PriceChangesRepository{sqldb}
}

func (r PriceChangesRepository) RecordPriceChange(
	ctx context.Context, v domain.PriceChange,
) error {
	const op = "PriceChangesRepository.RecordPriceChange"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `
		INSERT INTO price_changes (
			product_id, name, category, old_price, new_price, changed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6);`

	_, err := r.sqldb.ExecContext(ctx, query,
		v.ProductID, v.Name, v.Category, v.OldPrice, v.NewPrice, v.ChangedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: failed to exec: %w", op, err)
	}
	return nil
}

// ReadPriceChanges returns the history of a product, newest first.
func (r PriceChangesRepository) ReadPriceChanges(
	ctx context.Context, productID int,
) (vs []domain.PriceChange, readErr error) {
	const op = "PriceChangesRepository.ReadPriceChanges"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		SELECT product_id, name, category, old_price, new_price, changed_at
		FROM price_changes
		WHERE product_id = $1
		ORDER BY changed_at DESC, id DESC;`

	rows, err := r.sqldb.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query: %w", op, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", "err", err)
		}
	}()

	for rows.Next() {
		var v domain.PriceChange
		err := rows.Scan(
			&v.ProductID, &v.Name, &v.Category,
			&v.OldPrice, &v.NewPrice, &v.ChangedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to scan: %w", op, err)
		}
		vs = append(vs, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vs, nil
}
