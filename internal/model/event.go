package model

import "time"

const EventStockChanged = "StockChanged"

// StockChangedEvent is published after every applied operation.
type StockChangedEvent struct {
	EventID   string        `json:"event_id"`
	EventType string        `json:"event_type"`
	Item      InventoryItem `json:"item"`
	Txn       Transaction   `json:"transaction"`
	Alerts    []Alert       `json:"alerts"`
	Timestamp time.Time     `json:"timestamp"`
}
