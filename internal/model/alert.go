package model

type AlertSeverity string

const (
	SeverityCritical AlertSeverity = "critical"
	SeverityHigh     AlertSeverity = "high"
	SeverityMedium   AlertSeverity = "medium"
)

type AlertType string

const (
	AlertOutOfStock     AlertType = "out_of_stock"
	AlertLowStock       AlertType = "low_stock"
	AlertBelowSafeStock AlertType = "below_safe_stock"
	AlertOverStock      AlertType = "over_stock"
	AlertExpiringSoon   AlertType = "expiring_soon"
)

// Alert is derived from an InventoryItem and never stored.
type Alert struct {
	InventoryItemID string        `json:"inventoryItemId"`
	ProductID       string        `json:"productId"`
	LocationID      string        `json:"locationId"`
	AlertType       AlertType     `json:"alertType"`
	Severity        AlertSeverity `json:"severity"`
	CurrentStock    int64         `json:"currentStock"`
	Threshold       int64         `json:"threshold"`
	Message         string        `json:"message"`
}
