package repository

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/product"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var _ product.Resolver = (*PGRepository)(nil)

// PGRepository reads the catalog's products table.
type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) BatchGet(ctx context.Context, ids []string) (map[string]model.ProductRef, error) {
	refs := make(map[string]model.ProductRef, len(ids))
	if len(ids) == 0 {
		return refs, nil
	}

	query, args, err := sqlx.In(`SELECT id, sku, barcode, name FROM products WHERE id IN (?)`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "build product lookup")
	}

	var rows []model.ProductRef
	if err := r.DB.SelectContext(ctx, &rows, r.DB.Rebind(query), args...); err != nil {
		return nil, apperror.Persistence(errors.Wrap(err, "select products"), "failed to resolve products")
	}
	for _, p := range rows {
		refs[p.ID] = p
	}
	return refs, nil
}
