package models

import (
	"time"

	"github.com/vouchportal/vouch-api/internal/rank"
)

// RankEvent is an append-only record of a rank transition.
type RankEvent struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	UserID    uint64    `gorm:"not null;index" json:"user_id"`
	OldRank   rank.Rank `gorm:"type:varchar(20)" json:"old_rank"`
	NewRank   rank.Rank `gorm:"type:varchar(20)" json:"new_rank"`
	CreatedAt time.Time `json:"created_at"`
}
