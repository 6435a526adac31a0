package repository

import (
	"time"

	"github.com/vouchportal/vouch-api/internal/models"
	"gorm.io/gorm"
)

// GormInviteRepository is a GORM implementation of InviteRepository
type GormInviteRepository struct {
	db *gorm.DB
}

// NewInviteRepository creates a new InviteRepository
func NewInviteRepository(db *gorm.DB) InviteRepository {
	return &GormInviteRepository{db: db}
}

// HasRecentInvite reports whether an invite to the username was sent by the
// user after the given time
func (r *GormInviteRepository) HasRecentInvite(fromUserID uint64, username string, after time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&models.Invite{}).
		Where("from_user_id = ? AND LOWER(to_username) = ? AND sent_at > ?", fromUserID, username, after).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create records a sent invite
func (r *GormInviteRepository) Create(invite *models.Invite) error {
	return r.db.Create(invite).Error
}
