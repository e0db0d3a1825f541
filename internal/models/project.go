package models

import "time"

type Project struct {
	ID             int64     `json:"id"`
	ClientID       int64     `json:"client_id"`
	PackageID      int64     `json:"package_id"`
	EventType      string    `json:"event_type"`
	EventDate      time.Time `json:"event_date"`
	EventTime      string    `json:"event_time"`
	Location       string    `json:"location"`
	Status         string    `json:"status"` // see constants.go
	Price          int64     `json:"price"`
	DepositPercent float64   `json:"deposit_percent"`
	DepositAmount  int64     `json:"deposit_amount"`
	BalanceAmount  int64     `json:"balance_amount"`
	AmountPaid     int64     `json:"amount_paid"`
	RevisionLimit  int64     `json:"revision_limit"`
	RevisionsUsed  int64     `json:"revisions_used"`
	Notes          string    `json:"notes"`
	CrewAssigned   string    `json:"crew_assigned"`
	DriveLink      string    `json:"drive_link"`
	InternalPath   string    `json:"internal_path"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Version        int64     `json:"version"`
}

// ProjectInput carries what a caller may set at creation time. Price comes
// from the package unless PriceOverride is given; the deposit split is
// derived once from that price and never recomputed afterwards.
type ProjectInput struct {
	ClientID      int64     `json:"client_id"`
	PackageID     int64     `json:"package_id"`
	EventType     string    `json:"event_type"`
	EventDate     time.Time `json:"event_date"`
	EventTime     string    `json:"event_time"`
	Location      string    `json:"location"`
	PriceOverride *int64    `json:"price_override,omitempty"`
	RevisionLimit *int64    `json:"revision_limit,omitempty"`
	Notes         string    `json:"notes"`
	CrewAssigned  string    `json:"crew_assigned"`
	DriveLink     string    `json:"drive_link"`
	InternalPath  string    `json:"internal_path"`
}

// ProjectUpdate is the mutable metadata set for PUT. Financial fields and
// the client/package references are not part of it.
type ProjectUpdate struct {
	EventType     string    `json:"event_type"`
	EventDate     time.Time `json:"event_date"`
	EventTime     string    `json:"event_time"`
	Location      string    `json:"location"`
	RevisionLimit int64     `json:"revision_limit"`
	Notes         string    `json:"notes"`
	CrewAssigned  string    `json:"crew_assigned"`
	DriveLink     string    `json:"drive_link"`
	InternalPath  string    `json:"internal_path"`
}

type RevisionResult struct {
	Project   *Project `json:"project"`
	OverLimit bool     `json:"over_limit"`
}
