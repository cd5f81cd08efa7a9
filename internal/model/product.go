package model

// ProductRef is the slice of the product catalog the inventory core reads for
// reporting. The catalog itself is owned by the product service.
type ProductRef struct {
	ID      string  `db:"id" json:"id"`
	SKU     string  `db:"sku" json:"sku"`
	Barcode *string `db:"barcode" json:"barcode,omitempty"`
	Name    string  `db:"name" json:"name"`
}
