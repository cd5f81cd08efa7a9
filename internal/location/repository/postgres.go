package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	pg "github.com/fekuna/omnipos-inventory-service/internal/database/postgres"
	"github.com/fekuna/omnipos-inventory-service/internal/location/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, l *model.Location) error {
	query := `
        INSERT INTO locations (id, name, code, type, capacity, is_active, created_at, updated_at)
        VALUES (:id, :name, :code, :type, :capacity, :is_active, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, l)
	if pg.IsUniqueViolation(err) {
		return apperror.DuplicateKey("location code %q already exists", l.Code)
	}
	return wrap(err, "insert location")
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Location, error) {
	var l model.Location
	err := r.DB.GetContext(ctx, &l, `SELECT * FROM locations WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap(err, "find location")
	}
	return &l, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.LocationFilters) ([]model.Location, int, error) {
	locations := []model.Location{}
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.Type != "" {
		conditions = append(conditions, "type = :type")
		args["type"] = f.Type
	}
	if f.IsActive != nil {
		conditions = append(conditions, "is_active = :is_active")
		args["is_active"] = *f.IsActive
	}
	if f.Keyword != "" {
		conditions = append(conditions, "(name ILIKE :keyword OR code ILIKE :keyword)")
		args["keyword"] = "%" + f.Keyword + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM locations" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, wrap(err, "count locations")
	}
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			rows.Close()
			return nil, 0, wrap(err, "scan location count")
		}
	}
	rows.Close()

	query := "SELECT * FROM locations" + whereClause + " ORDER BY code ASC"
	if f.PageSize > 0 {
		offset := (max(f.Page, 1) - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, wrap(err, "prepare list locations")
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &locations, args); err != nil {
		return nil, 0, wrap(err, "list locations")
	}
	return locations, count, nil
}

func (r *PGRepository) Update(ctx context.Context, l *model.Location) error {
	query := `
        UPDATE locations
        SET name = :name,
            code = :code,
            type = :type,
            capacity = :capacity,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, l)
	if pg.IsUniqueViolation(err) {
		return apperror.DuplicateKey("location code %q already exists", l.Code)
	}
	return wrap(err, "update location")
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM locations WHERE id = $1", id)
	if pg.IsForeignKeyViolation(err) {
		return apperror.Conflict("location %s is still referenced by inventory items", id)
	}
	return wrap(err, "delete location")
}

func (r *PGRepository) IsCodeUnique(ctx context.Context, code, excludeID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM locations WHERE code = $1 AND id::text <> $2)`
	if err := r.DB.GetContext(ctx, &exists, query, code, excludeID); err != nil {
		return false, wrap(err, "check location code")
	}
	return !exists, nil
}

func wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return apperror.Persistence(errors.Wrap(err, msg), msg)
}
