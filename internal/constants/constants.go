package constants

import "time"

// Pagination
const (
	MinPage         = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Field limits
const (
	MaxMessageLength  = 120
	MaxBioLength      = 500
	MaxLocationLength = 100
)

// Default list sizes
const (
	DefaultSearchLimit      = 20
	DefaultActivityLimit    = 50
	DefaultLeaderboardLimit = 20
	SummaryLeaderboardSize  = 10
)

// InviteCooldown is the minimum interval between invites from the same user
// to the same username.
const InviteCooldown = 7 * 24 * time.Hour

// AnalyticsCacheTTL bounds how stale a cached analytics summary may be.
const AnalyticsCacheTTL = 30 * time.Second
