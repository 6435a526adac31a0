package models

import "time"

// Vouch is a directed endorsement from one user to another.
//
// A vouch is either confirmed (ToUserID set, IsPending false) or pending
// (ToUserID null, ToUsername set, IsPending true). Pending vouches are created
// when the target has not joined yet; they become confirmed when a user shows
// up with a matching username. The transition is one-way.
type Vouch struct {
	ID         uint64    `gorm:"primarykey" json:"id"`
	FromUserID uint64    `gorm:"not null;index" json:"from_user_id"`
	ToUserID   *uint64   `gorm:"index" json:"to_user_id"`
	ToUsername string    `gorm:"type:varchar(255)" json:"to_username"`
	Message    string    `gorm:"type:varchar(120)" json:"message"`
	CreatedAt  time.Time `json:"created_at"`
	IsPending  bool      `gorm:"not null;default:false" json:"is_pending"`

	// Relations
	From User  `gorm:"foreignKey:FromUserID" json:"from,omitempty"`
	To   *User `gorm:"foreignKey:ToUserID" json:"to,omitempty"`
}
