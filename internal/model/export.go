package model

import "time"

const ExportType = "inventory_export"

// Snapshot is a consistent point-in-time copy of items and their ledgers.
type Snapshot struct {
	Type         string          `json:"type"`
	GeneratedAt  time.Time       `json:"generatedAt"`
	Items        []InventoryItem `json:"items"`
	Transactions []Transaction   `json:"transactions"`
}

type BatchError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BatchResult reports the outcome of one element of a batch command.
type BatchResult struct {
	ID      string      `json:"id"`
	Success bool        `json:"success"`
	Error   *BatchError `json:"error,omitempty"`
}
