// Package product reads the product catalog owned by the product service so
// inventory listings can show names and SKUs next to product ids.
package product

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

// Resolver looks up catalog entries by id. Unknown ids are absent from the
// result map rather than errors.
type Resolver interface {
	BatchGet(ctx context.Context, ids []string) (map[string]model.ProductRef, error)
}

// NopResolver is used when no catalog is configured.
type NopResolver struct{}

func (NopResolver) BatchGet(context.Context, []string) (map[string]model.ProductRef, error) {
	return map[string]model.ProductRef{}, nil
}

// UniqueIDs collects distinct non-empty product ids in first-seen order.
func UniqueIDs[T any](rows []T, id func(T) string) []string {
	seen := make(map[string]struct{}, len(rows))
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		v := id(row)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		ids = append(ids, v)
	}
	return ids
}
