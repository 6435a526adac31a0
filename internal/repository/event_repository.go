package repository

import (
	"encoding/json"
	"fmt"

	"github.com/vouchportal/vouch-api/internal/models"
	"gorm.io/gorm"
)

// GormEventRepository is a GORM implementation of EventRepository
type GormEventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &GormEventRepository{db: db}
}

// Log appends an event with optional user and metadata
func (r *GormEventRepository) Log(eventType string, userID *uint64, metadata map[string]any) error {
	event := models.Event{
		EventType: eventType,
		UserID:    userID,
	}

	if metadata != nil {
		encoded, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("failed to encode event metadata: %w", err)
		}
		event.Metadata = string(encoded)
	}

	return r.db.Create(&event).Error
}

// CountByType counts events of a given type
func (r *GormEventRepository) CountByType(eventType string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Event{}).
		Where("event_type = ?", eventType).
		Count(&count).Error
	return count, err
}
