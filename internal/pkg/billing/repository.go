package billing

import (
	"time"

	"github.com/coparrent/coparrent/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the billing components.
type Repository interface {
	GetProcessedEvent(eventID string) (*models.ProcessedEvent, error)
	ClaimEvent(event *models.ProcessedEvent) (bool, error)
	MarkEventProcessed(eventID, customerEmail, metadata string) error
	MarkEventFailed(eventID, processingError string) error
	UpdateSubscriptionByEmail(email string, fields map[string]interface{}) (int64, error)
	ListRecentEvents(limit int) ([]models.ProcessedEvent, error)
	ListProcessedBefore(cutoff time.Time, limit int) ([]models.ProcessedEvent, error)
	DeleteEvents(eventIDs []string) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetProcessedEvent(eventID string) (*models.ProcessedEvent, error) {
	var ev models.ProcessedEvent
	if err := r.db.Where("event_id = ?", eventID).First(&ev).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

// ClaimEvent inserts the ledger row if absent. The primary key conflict is the
// concurrency primitive: RowsAffected == 0 means another claimant won.
func (r *gormRepository) ClaimEvent(event *models.ProcessedEvent) (bool, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *gormRepository) MarkEventProcessed(eventID, customerEmail, metadata string) error {
	updates := map[string]interface{}{
		"status": models.EventStatusProcessed,
	}
	if customerEmail != "" {
		updates["customer_email"] = customerEmail
	}
	if metadata != "" {
		updates["metadata"] = metadata
	}
	return r.db.Model(&models.ProcessedEvent{}).Where("event_id = ?", eventID).Updates(updates).Error
}

func (r *gormRepository) MarkEventFailed(eventID, processingError string) error {
	return r.db.Model(&models.ProcessedEvent{}).Where("event_id = ?", eventID).Updates(map[string]interface{}{
		"status":           models.EventStatusFailed,
		"processing_error": processingError,
	}).Error
}

func (r *gormRepository) UpdateSubscriptionByEmail(email string, fields map[string]interface{}) (int64, error) {
	tx := r.db.Model(&models.Profile{}).Where("email = ?", email).Updates(fields)
	return tx.RowsAffected, tx.Error
}

func (r *gormRepository) ListRecentEvents(limit int) ([]models.ProcessedEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var events []models.ProcessedEvent
	err := r.db.Order("created_at DESC").Limit(limit).Find(&events).Error
	return events, err
}

func (r *gormRepository) ListProcessedBefore(cutoff time.Time, limit int) ([]models.ProcessedEvent, error) {
	if limit <= 0 {
		limit = 500
	}
	var events []models.ProcessedEvent
	err := r.db.
		Where("status IN ? AND created_at < ?", []string{models.EventStatusProcessed, models.EventStatusFailed}, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (r *gormRepository) DeleteEvents(eventIDs []string) (int64, error) {
	if len(eventIDs) == 0 {
		return 0, nil
	}
	tx := r.db.Where("event_id IN ?", eventIDs).Delete(&models.ProcessedEvent{})
	return tx.RowsAffected, tx.Error
}
