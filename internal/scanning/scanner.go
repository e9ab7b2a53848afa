package scanning

import "context"

// ReceiptData contains extracted information from a receipt.
// Every field is optional: the model is not schema-constrained.
type ReceiptData struct {
	Date     string   `json:"date"` // YYYY-MM-DD
	Amount   *float64 `json:"amount"`
	Vendor   string   `json:"vendor"`
	Items    []string `json:"items"`
	Category string   `json:"category"`
	Invoice  string   `json:"invoice"`
}

// Scanner defines the interface for receipt scanning operations
type Scanner interface {
	// ScanReceipt sends a receipt image to the model and extracts its fields
	ScanReceipt(ctx context.Context, imageData []byte, contentType string) (*ReceiptData, error)
	// Close closes the scanner and releases resources
	Close() error
}
