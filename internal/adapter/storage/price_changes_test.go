package storage

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/strogholod/catalog/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepository(t *testing.T) (PriceChangesRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPriceChangesRepository(db), mock
}

func TestRecordPriceChange(t *testing.T) {
	change := domain.PriceChange{
		ProductID: 3,
		Name:      "Витрина 3",
		Category:  "Vitriny",
		OldPrice:  "250",
		NewPrice:  "300",
		ChangedAt: time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC),
	}
	insert := regexp.QuoteMeta("INSERT INTO price_changes")

	t.Run("Stored", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectExec(insert).
			WithArgs(3, "Витрина 3", "Vitriny", "250", "300", change.ChangedAt).
			WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, repo.RecordPriceChange(t.Context(), change))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ExecFailure", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectExec(insert).WillReturnError(errors.New("connection lost"))

		require.Error(t, repo.RecordPriceChange(t.Context(), change))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReadPriceChanges(t *testing.T) {
	selectQuery := regexp.QuoteMeta("FROM price_changes")
	columns := []string{
		"product_id", "name", "category", "old_price", "new_price", "changed_at",
	}
	newer := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	older := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	t.Run("Rows", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectQuery(selectQuery).WithArgs(3).WillReturnRows(
			sqlmock.NewRows(columns).
				AddRow(3, "Витрина 3", "Vitriny", "250", "300", newer).
				AddRow(3, "Витрина 3", "Vitriny", "200", "250", older),
		)

		vs, err := repo.ReadPriceChanges(t.Context(), 3)
		require.NoError(t, err)
		require.Len(t, vs, 2)
		assert.Equal(t, "300", vs[0].NewPrice)
		assert.Equal(t, newer, vs[0].ChangedAt)
		assert.Equal(t, "200", vs[1].OldPrice)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectQuery(selectQuery).WithArgs(9).
			WillReturnRows(sqlmock.NewRows(columns))

		vs, err := repo.ReadPriceChanges(t.Context(), 9)
		require.NoError(t, err)
		assert.Empty(t, vs)
	})

	t.Run("QueryFailure", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectQuery(selectQuery).WillReturnError(errors.New("timeout"))

		_, err := repo.ReadPriceChanges(t.Context(), 3)
		require.Error(t, err)
	})
}
