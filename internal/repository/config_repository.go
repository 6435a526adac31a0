package repository

import (
	"time"

	"github.com/vouchportal/vouch-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormConfigRepository is a GORM implementation of ConfigRepository
type GormConfigRepository struct {
	db *gorm.DB
}

// NewConfigRepository creates a new ConfigRepository
func NewConfigRepository(db *gorm.DB) ConfigRepository {
	return &GormConfigRepository{db: db}
}

// List returns all config entries
func (r *GormConfigRepository) List() ([]models.ConfigEntry, error) {
	var entries []models.ConfigEntry
	// "key" is reserved in MySQL; the clause form quotes it per dialect.
	if err := r.db.
		Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Upsert inserts or replaces a config value
func (r *GormConfigRepository) Upsert(key, value string) error {
	entry := models.ConfigEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	return r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
}
