package models

import "time"

// Mirror task types understood by the sync worker.
const (
	TaskUpsert        = "upsert"
	TaskDelete        = "delete"
	TaskUpdateStatus  = "update_status"
	TaskPaymentAppend = "payment_append"
	TaskPaymentDelete = "payment_delete"
)

// MirrorPayload is persisted in SyncTask.Payload as JSON. Only the fields
// a given task type needs are set.
type MirrorPayload struct {
	ProjectID   int64    `json:"project_id,omitempty"`
	Project     *Project `json:"project,omitempty"`
	ClientName  string   `json:"client_name,omitempty"`
	PackageName string   `json:"package_name,omitempty"`
	Payment     *Payment `json:"payment,omitempty"`
	PaymentID   int64    `json:"payment_id,omitempty"`
	Status      string   `json:"status,omitempty"`
}

// SyncTask represents a queued mirror-synchronization job.
type SyncTask struct {
	ID          int64      `json:"id"`
	TaskType    string     `json:"task_type"`
	ProjectID   int64      `json:"project_id"`
	Payload     string     `json:"payload"`
	Status      string     `json:"status"`
	RetryCount  int        `json:"retry_count"`
	LastError   *string    `json:"last_error"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at"`
	NextRetryAt *time.Time `json:"next_retry_at"`
}
