// Package domain defines the typed rows of every table in the pipeline:
// the raw landing records, the validated silver tables and the derived gold
// tables. Wire names (parquet fields, BSON keys) keep the source system's
// original column names.
package domain

// RawClient is a landing-layer client record. Every field is text as read
// from the source CSV; nothing is validated yet.
type RawClient struct {
	ClientID     string
	Name         string
	Email        string
	Country      string
	RegisteredAt string
}

// RawPurchase is a landing-layer purchase record, untyped like RawClient.
type RawPurchase struct {
	PurchaseID  string
	ClientID    string
	Product     string
	Amount      string
	PurchasedAt string
}
