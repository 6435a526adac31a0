// Package rank maps confirmed vouch counts to reputation tiers.
package rank

// Rank is a reputation tier derived from a user's total confirmed vouches.
type Rank string

const (
	RankUnverified Rank = "unverified"
	RankVerified   Rank = "verified"
	RankTrusted    Rank = "trusted"
	RankEndorsed   Rank = "endorsed"
	RankTopTier    Rank = "top_tier"
)

// Thresholds are the inclusive lower bounds of each tier above unverified,
// in ascending order.
var Thresholds = []int{3, 6, 11, 16}

// Calculate returns the rank for a vouch count. The highest matching tier wins.
func Calculate(vouchCount int) Rank {
	switch {
	case vouchCount >= 16:
		return RankTopTier
	case vouchCount >= 11:
		return RankEndorsed
	case vouchCount >= 6:
		return RankTrusted
	case vouchCount >= 3:
		return RankVerified
	default:
		return RankUnverified
	}
}

// DisplayName returns the human-readable name for a rank.
// Unknown ranks map to "Unknown" rather than an error.
func DisplayName(r Rank) string {
	switch r {
	case RankUnverified:
		return "Unverified"
	case RankVerified:
		return "Verified"
	case RankTrusted:
		return "Trusted"
	case RankEndorsed:
		return "Endorsed"
	case RankTopTier:
		return "Top-Tier Verified"
	default:
		return "Unknown"
	}
}

// Emoji returns the display glyph for a rank.
func Emoji(r Rank) string {
	switch r {
	case RankUnverified:
		return "🚫"
	case RankVerified:
		return "✅"
	case RankTrusted:
		return "🔷"
	case RankEndorsed:
		return "🛡"
	case RankTopTier:
		return "👑"
	default:
		return "❓"
	}
}

// NextThreshold returns the vouch count needed for the next tier.
// For counts already at the top tier it returns the count itself.
func NextThreshold(vouchCount int) int {
	for _, t := range Thresholds {
		if vouchCount < t {
			return t
		}
	}
	return vouchCount
}

// Progress returns the percentage of the way from the current tier's lower
// bound to the next threshold, clamped to [0, 100]. Top-tier users are at 100.
func Progress(vouchCount int) float64 {
	if vouchCount >= 16 {
		return 100
	}

	tierStart := 0
	for _, t := range Thresholds {
		if vouchCount >= t {
			tierStart = t
		}
	}

	next := NextThreshold(vouchCount)
	if next <= tierStart {
		return 0
	}

	p := float64(vouchCount-tierStart) / float64(next-tierStart) * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
