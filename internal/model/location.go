package model

import "time"

type LocationType string

const (
	LocationWarehouse LocationType = "warehouse"
	LocationShelf     LocationType = "shelf"
	LocationStore     LocationType = "store"
	LocationKiosk     LocationType = "kiosk"
	LocationOther     LocationType = "other"
)

func (t LocationType) Valid() bool {
	switch t {
	case LocationWarehouse, LocationShelf, LocationStore, LocationKiosk, LocationOther:
		return true
	}
	return false
}

type Location struct {
	ID        string       `db:"id" json:"id"`
	Name      string       `db:"name" json:"name"`
	Code      string       `db:"code" json:"code"`
	Type      LocationType `db:"type" json:"type"`
	Capacity  *int64       `db:"capacity" json:"capacity,omitempty"`
	IsActive  bool         `db:"is_active" json:"isActive"`
	CreatedAt time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time    `db:"updated_at" json:"updatedAt"`
}
