package models

import "time"

// ConfigEntry is an admin-managed key/value setting.
type ConfigEntry struct {
	Key       string    `gorm:"primarykey;type:varchar(255)" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
