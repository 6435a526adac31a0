package repository

import (
	"time"

	"github.com/vouchportal/vouch-api/internal/models"
	"github.com/vouchportal/vouch-api/internal/rank"
)

// ConfirmOutcome reports what a confirmed-vouch insert changed. The rank
// transition is threaded out of the mutation itself so callers never have to
// re-derive "did a rank-up just happen" from timestamps.
type ConfirmOutcome struct {
	Vouch       *models.Vouch
	NewTotal    int
	RankChanged bool
	OldRank     rank.Rank
	NewRank     rank.Rank
	Mutual      bool
}

// ResolutionOutcome reports the effect of settling pending vouches for a user.
type ResolutionOutcome struct {
	Resolved    int
	NewTotal    int
	RankChanged bool
	OldRank     rank.Rank
	NewRank     rank.Rank
}

// RankBucket is one row of the rank distribution histogram.
type RankBucket struct {
	Rank  rank.Rank `json:"rank"`
	Count int64     `json:"count"`
}

// HelperStat is a leaderboard row for vouches given.
type HelperStat struct {
	UserID     uint64    `json:"user_id"`
	Username   string    `json:"username"`
	FirstName  string    `json:"first_name"`
	Rank       rank.Rank `json:"rank"`
	VouchCount int64     `json:"vouch_count"`
}

// UserRepository defines the interface for user identity data access
type UserRepository interface {
	// CreateIfAbsent inserts the user unless the ID already exists.
	// Returns false when another writer got there first.
	CreateIfAbsent(user *models.User) (bool, error)

	// FindByID finds a user by platform ID
	FindByID(id uint64) (*models.User, error)

	// FindByNormalizedUsername finds a user whose username matches
	// case-insensitively. The argument must already be normalized.
	FindByNormalizedUsername(username string) (*models.User, error)

	// Touch updates last_active_at and, when username is non-empty, the
	// stored username.
	Touch(id uint64, username string) error

	// Update persists the full user record
	Update(user *models.User) error

	// UpdateRankWithEvent sets the rank and records a RankEvent in one
	// transaction, returning the prior rank. The event is written even when
	// the rank did not change; this is the external correction entry point.
	UpdateRankWithEvent(id uint64, newRank rank.Rank) (rank.Rank, error)

	// ListByVouches lists users ordered by total vouches descending
	ListByVouches(limit, offset int) ([]models.User, int64, error)

	// Search finds users whose username or name contains the query,
	// ordered by total vouches descending
	Search(query string, limit int) ([]models.User, error)
}

// VouchRepository defines the interface for vouch ledger data access
type VouchRepository interface {
	// FindByID finds a vouch by sequence number
	FindByID(id uint64) (*models.Vouch, error)

	// FindByPair finds any vouch from one user to a resolved target
	FindByPair(fromUserID, toUserID uint64) (*models.Vouch, error)

	// FindPendingByUsername finds a pending vouch from a user to a
	// normalized username
	FindPendingByUsername(fromUserID uint64, username string) (*models.Vouch, error)

	// CreateConfirmed inserts a confirmed vouch, increments the target's
	// total, recomputes the rank and records a RankEvent on change, and
	// detects a reverse vouch. Runs in a single transaction.
	CreateConfirmed(vouch *models.Vouch) (*ConfirmOutcome, error)

	// CreatePending inserts a pending vouch
	CreatePending(vouch *models.Vouch) error

	// ResolvePending confirms all pending vouches for the username except
	// any authored by the user themselves, points them at the user, applies
	// one batched total increment and a single rank recompute. Runs in a
	// single transaction and is a no-op when nothing matches.
	ResolvePending(userID uint64, username string) (*ResolutionOutcome, error)

	// UpdateMessage replaces a vouch's message in place
	UpdateMessage(id uint64, message string) error

	// ListReceived lists confirmed vouches received by a user, newest first
	ListReceived(userID uint64) ([]models.Vouch, error)

	// ListGiven lists vouches given by a user, newest first
	ListGiven(userID uint64) ([]models.Vouch, error)
}

// EventRepository is the append-only audit sink. It is never read back for
// business decisions.
type EventRepository interface {
	// Log appends an event with optional user and metadata
	Log(eventType string, userID *uint64, metadata map[string]any) error

	// CountByType counts events of a given type
	CountByType(eventType string) (int64, error)
}

// AnalyticsRepository provides read-only rollups over directory and ledger state
type AnalyticsRepository interface {
	CountUsers() (int64, error)
	CountActiveSince(t time.Time) (int64, error)
	CountSignupsSince(t time.Time) (int64, error)
	CountVouches() (int64, error)
	CountVouchesSince(t time.Time) (int64, error)
	CountReferredUsers() (int64, error)
	CountReferralsBy(userID uint64) (int64, error)
	RecentReferralsBy(userID uint64, limit int) ([]models.User, error)
	RankDistribution() ([]RankBucket, error)
	TopHelpersSince(t time.Time, limit int) ([]HelperStat, error)
	TopReceiversSince(t time.Time, limit int) ([]HelperStat, error)
	StreakLeaders(limit int) ([]models.User, error)
	RecentConfirmedVouches(limit int) ([]models.Vouch, error)
}

// InviteRepository tracks sent invites for rate limiting
type InviteRepository interface {
	// HasRecentInvite reports whether an invite to the username was sent
	// by the user after the given time
	HasRecentInvite(fromUserID uint64, username string, after time.Time) (bool, error)

	// Create records a sent invite
	Create(invite *models.Invite) error
}

// ConfigRepository stores admin-managed key/value settings
type ConfigRepository interface {
	// List returns all config entries
	List() ([]models.ConfigEntry, error)

	// Upsert inserts or replaces a config value
	Upsert(key, value string) error
}
