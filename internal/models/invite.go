package models

import "time"

// Invite records that a user asked someone (by username) to join. Used only
// for the once-per-week invite cooldown.
type Invite struct {
	ID         uint64    `gorm:"primarykey" json:"id"`
	FromUserID uint64    `gorm:"not null;index" json:"from_user_id"`
	ToUsername string    `gorm:"type:varchar(255);not null" json:"to_username"`
	SentAt     time.Time `gorm:"autoCreateTime" json:"sent_at"`
}
