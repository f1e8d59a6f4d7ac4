package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"invoice_number": true,
	"date":           true,
	"due_date":       true,
	"status":         true,
	"subtotal":       true,
	"tax_amount":     true,
	"total_amount":   true,
}

// ClientSortFields contains allowed sort fields for clients
var ClientSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"type":       true,
}

// BranchSortFields contains allowed sort fields for branches
var BranchSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"city":       true,
	"province":   true,
}
