package types

import "github.com/shopspring/decimal"

// InvoiceLine is one billed row copied by value into the invoice snapshot.
// Issued invoices never re-read prices, so later catalog edits cannot change
// a persisted line.
type InvoiceLine struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// InvoiceLines is stored as a JSONB array on the invoice row.
type InvoiceLines []InvoiceLine
