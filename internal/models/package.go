package models

import "time"

// Package is a priced service offering. Price is an integer amount;
// edits never touch projects that already snapshotted it.
type Package struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Price        int64     `json:"price"`
	Hours        float64   `json:"hours"`
	Deliverables string    `json:"deliverables"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
