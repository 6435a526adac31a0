package models

import "time"

// Event types recorded in the audit log.
const (
	EventUserSignup             = "user_signup"
	EventVouchCreated           = "vouch_created"
	EventPendingVouchCreated    = "pending_vouch_created"
	EventPendingVouchesResolved = "pending_vouches_processed"
	EventRankUp                 = "rank_up"
	EventMutualVouch            = "mutual_vouch"
	EventInviteLogged           = "invite_logged"
	EventShareClicked           = "share_clicked"
	EventProfileUpdated         = "profile_updated"
)

// Event is an append-only audit record. Metadata is a JSON document; the core
// never reads events back to make business decisions.
type Event struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	EventType string    `gorm:"type:varchar(64);not null;index" json:"event_type"`
	UserID    *uint64   `json:"user_id"`
	Metadata  string    `gorm:"type:text" json:"metadata"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
