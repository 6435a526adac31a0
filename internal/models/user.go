package models

import (
	"time"

	"github.com/vouchportal/vouch-api/internal/rank"
)

// User is a community member. The ID is assigned by the chat platform and is
// never generated locally. Users are created on first interaction and never
// deleted.
type User struct {
	ID                uint64     `gorm:"primarykey;autoIncrement:false" json:"id"`
	Username          string     `gorm:"type:varchar(255);index" json:"username"`
	FirstName         string     `gorm:"type:varchar(255)" json:"first_name"`
	LastName          string     `gorm:"type:varchar(255)" json:"last_name"`
	Bio               string     `gorm:"type:text" json:"bio"`
	ProfilePictureURL string     `gorm:"type:text" json:"profile_picture_url"`
	Location          string     `gorm:"type:varchar(255)" json:"location"`
	FirstSeenAt       time.Time  `gorm:"autoCreateTime" json:"first_seen_at"`
	LastActiveAt      time.Time  `json:"last_active_at"`
	TotalVouches      int        `gorm:"not null;default:0" json:"total_vouches"`
	Rank              rank.Rank  `gorm:"type:varchar(20);not null;default:'unverified'" json:"rank"`
	ReferrerID        *uint64    `json:"referrer_id"`
	StreakDays        int        `gorm:"not null;default:0" json:"streak_days"`
	LastStreakDate    *time.Time `json:"last_streak_date"`

	// Relations
	VouchesGiven    []Vouch `gorm:"foreignKey:FromUserID" json:"-"`
	VouchesReceived []Vouch `gorm:"foreignKey:ToUserID" json:"-"`
}
