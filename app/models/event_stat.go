package models

import "time"

// EventStat aggregates webhook processing outcomes per event type. Counters are
// accumulated in Redis and drained into this table by the background flusher.
type EventStat struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	EventType      string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"event_type"`
	ProcessedCount int64     `gorm:"not null;default:0" json:"processed_count"`
	DuplicateCount int64     `gorm:"not null;default:0" json:"duplicate_count"`
	IgnoredCount   int64     `gorm:"not null;default:0" json:"ignored_count"`
	FailedCount    int64     `gorm:"not null;default:0" json:"failed_count"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
