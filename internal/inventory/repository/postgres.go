package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	pg "github.com/fekuna/omnipos-inventory-service/internal/database/postgres"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type PGRepository struct {
	DB *sqlx.DB
}

var _ inventory.Repository = (*PGRepository)(nil)

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const (
	insertItemQuery = `
        INSERT INTO inventory_items (
            id, product_id, location_id, initial_stock, current_stock,
            min_stock, max_stock, safe_stock, average_cost, version,
            created_at, updated_at
        )
        VALUES (
            :id, :product_id, :location_id, :initial_stock, :current_stock,
            :min_stock, :max_stock, :safe_stock, :average_cost, :version,
            :created_at, :updated_at
        )
    `

	insertTransactionQuery = `
        INSERT INTO inventory_transactions (
            id, inventory_item_id, operation_type, quantity, quantity_change,
            quantity_before, resulting_balance, unit_price, reason, reference,
            created_by, sequence, created_at
        )
        VALUES (
            :id, :inventory_item_id, :operation_type, :quantity, :quantity_change,
            :quantity_before, :resulting_balance, :unit_price, :reason, :reference,
            :created_by, :sequence, :created_at
        )
    `
)

func (r *PGRepository) Create(ctx context.Context, item *model.InventoryItem) error {
	_, err := r.DB.NamedExecContext(ctx, insertItemQuery, item)
	switch {
	case pg.IsUniqueViolation(err):
		return duplicatePair(item.ProductID, item.LocationID)
	case pg.IsForeignKeyViolation(err):
		return apperror.NotFound("location %s not found", item.LocationID)
	}
	return wrap(err, "insert inventory item")
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.InventoryItem, error) {
	return r.findOne(ctx, `SELECT * FROM inventory_items WHERE id = $1 LIMIT 1`, id)
}

func (r *PGRepository) FindByProductLocation(ctx context.Context, productID, locationID string) (*model.InventoryItem, error) {
	return r.findOne(ctx, `SELECT * FROM inventory_items WHERE product_id = $1 AND location_id = $2 LIMIT 1`, productID, locationID)
}

func (r *PGRepository) findOne(ctx context.Context, query string, args ...interface{}) (*model.InventoryItem, error) {
	var item model.InventoryItem
	if err := r.DB.GetContext(ctx, &item, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap(err, "find inventory item")
	}
	item.RefreshStatus()
	return &item, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.InventoryFilters) ([]model.InventoryItem, int, error) {
	if f == nil {
		f = &dto.InventoryFilters{}
	}
	items := []model.InventoryItem{}
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.LocationID != "" {
		conditions = append(conditions, "location_id = :location_id")
		args["location_id"] = f.LocationID
	}
	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.Keyword != "" {
		conditions = append(conditions, "(product_id ILIKE :keyword OR location_id::text ILIKE :keyword)")
		args["keyword"] = "%" + f.Keyword + "%"
	}
	// status is derived, so it filters on the quantities it is derived from
	switch model.Status(f.Status) {
	case model.StatusOutOfStock:
		conditions = append(conditions, "current_stock = 0")
	case model.StatusLowStock:
		conditions = append(conditions, "current_stock > 0 AND current_stock <= min_stock")
	case model.StatusInStock:
		conditions = append(conditions, "current_stock > 0 AND current_stock > min_stock")
	}
	if f.LowStockOnly {
		conditions = append(conditions, "current_stock <= min_stock")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM inventory_items" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, wrap(err, "count inventory items")
	}
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			rows.Close()
			return nil, 0, wrap(err, "scan inventory item count")
		}
	}
	rows.Close()

	query := "SELECT * FROM inventory_items" + whereClause + " ORDER BY product_id, location_id, id"
	if f.PageSize > 0 {
		offset := (max(f.Page, 1) - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, wrap(err, "prepare list inventory items")
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &items, args); err != nil {
		return nil, 0, wrap(err, "list inventory items")
	}
	for i := range items {
		items[i].RefreshStatus()
	}
	if items == nil {
		items = []model.InventoryItem{}
	}
	return items, count, nil
}

func (r *PGRepository) UpdateMetadata(ctx context.Context, item *model.InventoryItem, expectedVersion int64) error {
	params := map[string]interface{}{
		"id":               item.ID,
		"min_stock":        item.MinStock,
		"max_stock":        item.MaxStock,
		"safe_stock":       item.SafeStock,
		"average_cost":     item.AverageCost,
		"version":          item.Version,
		"updated_at":       item.UpdatedAt,
		"expected_version": expectedVersion,
	}
	query := `
        UPDATE inventory_items
        SET min_stock = :min_stock,
            max_stock = :max_stock,
            safe_stock = :safe_stock,
            average_cost = :average_cost,
            version = :version,
            updated_at = :updated_at
        WHERE id = :id AND version = :expected_version
    `
	res, err := r.DB.NamedExecContext(ctx, query, params)
	if err != nil {
		return wrap(err, "update inventory item")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap(err, "update inventory item")
	}
	if n == 0 {
		return inventory.ErrVersionConflict
	}
	return nil
}

// Delete removes the item row only; its ledger stays for audit.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM inventory_items WHERE id = $1", id)
	return wrap(err, "delete inventory item")
}

func (r *PGRepository) CountByLocation(ctx context.Context, locationID string) (int, error) {
	var n int
	err := r.DB.GetContext(ctx, &n, "SELECT count(*) FROM inventory_items WHERE location_id = $1", locationID)
	if err != nil {
		return 0, wrap(err, "count items by location")
	}
	return n, nil
}

func (r *PGRepository) ApplyTransaction(ctx context.Context, item *model.InventoryItem, txn *model.Transaction, expectedVersion int64) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return wrap(err, "begin apply")
	}
	defer tx.Rollback()

	// 1. Lock the row and compare versions
	var version int64
	err = tx.GetContext(ctx, &version, `SELECT version FROM inventory_items WHERE id = $1 FOR UPDATE`, item.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.NotFound("inventory item %s not found", item.ID)
		}
		return wrap(err, "lock inventory item")
	}
	if version != expectedVersion {
		return inventory.ErrVersionConflict
	}

	// 2. Next ledger position
	var seq int64
	err = tx.GetContext(ctx, &seq, `SELECT COALESCE(MAX(sequence), 0) + 1 FROM inventory_transactions WHERE inventory_item_id = $1`, item.ID)
	if err != nil {
		return wrap(err, "next ledger sequence")
	}
	txn.Sequence = seq

	// 3. Update item
	updateQuery := `
        UPDATE inventory_items
        SET current_stock = :current_stock,
            average_cost = :average_cost,
            version = :version,
            updated_at = :updated_at
        WHERE id = :id
    `
	if _, err = tx.NamedExecContext(ctx, updateQuery, item); err != nil {
		return wrap(err, "update inventory item stock")
	}

	// 4. Append transaction
	if _, err = tx.NamedExecContext(ctx, insertTransactionQuery, txn); err != nil {
		return wrap(err, "append inventory transaction")
	}

	if err := ctx.Err(); err != nil {
		return apperror.Persistence(err, "apply inventory transaction")
	}
	return wrap(tx.Commit(), "commit apply")
}

func (r *PGRepository) ListByItem(ctx context.Context, itemID string, dr *model.DateRange) ([]model.Transaction, error) {
	conditions := []string{"inventory_item_id = $1"}
	args := []interface{}{itemID}
	conditions, args = rangeConditions(conditions, args, dr)

	query := "SELECT * FROM inventory_transactions WHERE " + strings.Join(conditions, " AND ") + " ORDER BY sequence ASC"
	return r.selectTransactions(ctx, query, args...)
}

func (r *PGRepository) ListByRange(ctx context.Context, dr *model.DateRange) ([]model.Transaction, error) {
	conditions, args := rangeConditions(nil, nil, dr)

	query := "SELECT * FROM inventory_transactions"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at, inventory_item_id, sequence"
	return r.selectTransactions(ctx, query, args...)
}

func rangeConditions(conditions []string, args []interface{}, dr *model.DateRange) ([]string, []interface{}) {
	if dr == nil {
		return conditions, args
	}
	if dr.From != nil {
		args = append(args, *dr.From)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if dr.To != nil {
		args = append(args, *dr.To)
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	return conditions, args
}

func (r *PGRepository) selectTransactions(ctx context.Context, query string, args ...interface{}) ([]model.Transaction, error) {
	txns := []model.Transaction{}
	if err := r.DB.SelectContext(ctx, &txns, query, args...); err != nil {
		return nil, wrap(err, "list inventory transactions")
	}
	return txns, nil
}

func (r *PGRepository) Snapshot(ctx context.Context) ([]model.InventoryItem, []model.Transaction, error) {
	tx, err := r.DB.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, nil, wrap(err, "begin snapshot")
	}
	defer tx.Rollback()

	items := []model.InventoryItem{}
	if err := tx.SelectContext(ctx, &items, `SELECT * FROM inventory_items ORDER BY product_id, location_id, id`); err != nil {
		return nil, nil, wrap(err, "snapshot items")
	}
	for i := range items {
		items[i].RefreshStatus()
	}

	txns := []model.Transaction{}
	query := `
        SELECT t.* FROM inventory_transactions t
        JOIN inventory_items i ON i.id = t.inventory_item_id
        ORDER BY t.created_at, t.inventory_item_id, t.sequence
    `
	if err := tx.SelectContext(ctx, &txns, query); err != nil {
		return nil, nil, wrap(err, "snapshot transactions")
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, wrap(err, "commit snapshot")
	}
	return items, txns, nil
}

// Retained ledger rows of deleted items also count as existing data.
const restoreGuardQuery = `SELECT (SELECT count(*) FROM inventory_items) + (SELECT count(*) FROM inventory_transactions)`

func (r *PGRepository) Restore(ctx context.Context, items []model.InventoryItem, txns []model.Transaction) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return wrap(err, "begin restore")
	}
	defer tx.Rollback()

	var existing int
	if err := tx.GetContext(ctx, &existing, restoreGuardQuery); err != nil {
		return wrap(err, "count inventory rows")
	}
	if existing > 0 {
		return apperror.Conflict("restore requires an empty inventory, found %d existing rows", existing)
	}

	for i := range items {
		if _, err := tx.NamedExecContext(ctx, insertItemQuery, &items[i]); err != nil {
			if pg.IsUniqueViolation(err) {
				return duplicatePair(items[i].ProductID, items[i].LocationID)
			}
			if pg.IsForeignKeyViolation(err) {
				return apperror.NotFound("location %s not found", items[i].LocationID)
			}
			return wrap(err, "restore inventory item")
		}
	}
	for i := range txns {
		if _, err := tx.NamedExecContext(ctx, insertTransactionQuery, &txns[i]); err != nil {
			return wrap(err, "restore inventory transaction")
		}
	}

	return wrap(tx.Commit(), "commit restore")
}

func wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return apperror.Persistence(errors.Wrap(err, msg), msg)
}
