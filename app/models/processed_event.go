package models

import "time"

// Processing lifecycle of a ledger row. A row is created as "processing" at
// claim time and moves to exactly one terminal state; it never reverts.
const (
	EventStatusProcessing = "processing"
	EventStatusProcessed  = "processed"
	EventStatusFailed     = "failed"
)

// ProcessedEvent records externally-delivered webhook event IDs for idempotent
// processing. The primary key on the provider-assigned event ID is the sole
// concurrency-control mechanism: the first successful insert claims the event,
// every other claimant observes the conflict and skips the side effect.
type ProcessedEvent struct {
	EventID         string     `gorm:"primaryKey;type:varchar(191)" json:"event_id"`
	EventType       string     `gorm:"type:varchar(100);not null;index" json:"event_type"`
	Status          string     `gorm:"type:varchar(20);not null;default:'processing';index" json:"status"`
	ProcessedAt     *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	CustomerEmail   string     `gorm:"type:varchar(200);default:''" json:"customer_email"`
	Metadata        string     `gorm:"type:text" json:"metadata"`
	ProcessingError string     `gorm:"type:text" json:"processing_error"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
