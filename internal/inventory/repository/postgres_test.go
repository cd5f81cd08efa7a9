package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var itemColumns = []string{
	"id", "product_id", "location_id", "initial_stock", "current_stock", "min_stock",
	"max_stock", "safe_stock", "average_cost", "version", "created_at", "updated_at",
}

func newMockRepo(t *testing.T) (*PGRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPGRepository(sqlx.NewDb(db, "pgx")), mock
}

func TestPG_FindByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM inventory_items WHERE id = $1 LIMIT 1`)).
		WithArgs("item-1").
		WillReturnRows(sqlmock.NewRows(itemColumns).
			AddRow("item-1", "popcorn", "loc-1", 100, 15, 20, nil, 30, 1550, 4, now, now))

	item, err := repo.FindByID(context.Background(), "item-1")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, int64(15), item.CurrentStock)
	assert.Nil(t, item.MaxStock)
	assert.Equal(t, model.StatusLowStock, item.Status)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM inventory_items WHERE id = $1 LIMIT 1`)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(itemColumns))

	item, err = repo.FindByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, item)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPG_CreateDuplicate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO inventory_items`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "inventory_items_product_location_key"})

	err := repo.Create(context.Background(), &model.InventoryItem{ID: "i", ProductID: "p", LocationID: "l"})
	assert.ErrorIs(t, err, apperror.ErrDuplicateKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPG_ApplyTransaction(t *testing.T) {
	now := time.Now().UTC()
	item := &model.InventoryItem{ID: "item-1", CurrentStock: 40, AverageCost: 1550, Version: 3, UpdatedAt: now}
	txn := &model.Transaction{
		ID: "txn-1", InventoryItemID: "item-1", OperationType: model.OperationStockOut,
		Quantity: 60, QuantityChange: -60, QuantityBefore: 100, ResultingBalance: 40, CreatedAt: now,
	}

	t.Run("commits item and ledger together", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT version FROM inventory_items WHERE id = $1 FOR UPDATE`)).
			WithArgs("item-1").
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(2))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(MAX(sequence), 0) + 1 FROM inventory_transactions`)).
			WithArgs("item-1").
			WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(7))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE inventory_items SET current_stock = $1`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO inventory_transactions`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		tx := *txn
		require.NoError(t, repo.ApplyTransaction(context.Background(), item, &tx, 2))
		assert.Equal(t, int64(7), tx.Sequence)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on version conflict", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT version FROM inventory_items WHERE id = $1 FOR UPDATE`)).
			WithArgs("item-1").
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(5))
		mock.ExpectRollback()

		tx := *txn
		err := repo.ApplyTransaction(context.Background(), item, &tx, 2)
		assert.ErrorIs(t, err, inventory.ErrVersionConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the ledger insert fails", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT version FROM inventory_items`)).
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(2))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(MAX(sequence), 0) + 1`)).
			WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(1))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE inventory_items`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO inventory_transactions`)).
			WillReturnError(assert.AnError)
		mock.ExpectRollback()

		tx := *txn
		err := repo.ApplyTransaction(context.Background(), item, &tx, 2)
		assert.ErrorIs(t, err, apperror.ErrPersistence)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPG_FindAllStatusFilter(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM inventory_items WHERE location_id = $1 AND current_stock > 0 AND current_stock <= min_stock`)).
		WithArgs("loc-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectPrepare(regexp.QuoteMeta(`SELECT * FROM inventory_items WHERE location_id = $1 AND current_stock > 0 AND current_stock <= min_stock ORDER BY product_id, location_id, id LIMIT 10 OFFSET 0`)).
		ExpectQuery().
		WithArgs("loc-1").
		WillReturnRows(sqlmock.NewRows(itemColumns).
			AddRow("item-1", "popcorn", "loc-1", 100, 5, 20, 500, 30, 1550, 2, now, now))

	items, total, err := repo.FindAll(context.Background(), &dto.InventoryFilters{
		LocationID: "loc-1", Status: string(model.StatusLowStock), Page: 1, PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, model.StatusLowStock, items[0].Status)
	assert.Equal(t, int64(500), *items[0].MaxStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPG_UpdateMetadataVersionConflict(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE inventory_items`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateMetadata(context.Background(), &model.InventoryItem{ID: "item-1", Version: 4}, 3)
	assert.ErrorIs(t, err, inventory.ErrVersionConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPG_ListByItemDateRange(t *testing.T) {
	repo, mock := newMockRepo(t)
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM inventory_transactions WHERE inventory_item_id = $1 AND created_at >= $2 ORDER BY sequence ASC`)).
		WithArgs("item-1", from).
		WillReturnRows(sqlmock.NewRows([]string{"id", "inventory_item_id", "quantity_change", "sequence"}).
			AddRow("t1", "item-1", 5, 1).
			AddRow("t2", "item-1", -3, 2))

	txns, err := repo.ListByItem(context.Background(), "item-1", &model.DateRange{From: &from})
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, int64(2), model.Replay(0, txns))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPG_RestoreRequiresEmptyStore(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(restoreGuardQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectRollback()

	err := repo.Restore(context.Background(), nil, nil)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
