package models

import "time"

// Payment is a ledger entry against a project. Immutable once written;
// removal goes through the reversal operation so project totals stay true.
type Payment struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	Amount    int64     `json:"amount"`
	Method    string    `json:"method"`
	Reference string    `json:"reference"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

type PaymentInput struct {
	ProjectID int64  `json:"project_id"`
	Amount    int64  `json:"amount"`
	Method    string `json:"method"`
	Reference string `json:"reference"`
	Note      string `json:"note"`
}
