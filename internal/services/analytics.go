package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vouchportal/vouch-api/internal/cache"
	"github.com/vouchportal/vouch-api/internal/constants"
	"github.com/vouchportal/vouch-api/internal/models"
	"github.com/vouchportal/vouch-api/internal/repository"
)

var ErrUnknownBoard = errors.New("unknown leaderboard type")

// Leaderboard types
const (
	BoardMostVouched   = "most_vouched"
	BoardTopGivers     = "top_givers"
	BoardRisingStars   = "rising_stars"
	BoardStreakLeaders = "streak_leaders"
)

// AnalyticsService computes read-only rollups over directory and ledger
// state. Every window is wall-clock relative to the query; the cache is a
// short-TTL convenience, never a correctness dependency.
type AnalyticsService struct {
	analyticsRepo repository.AnalyticsRepository
	userRepo      repository.UserRepository
	events        repository.EventRepository
	cache         *cache.Cache
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(analyticsRepo repository.AnalyticsRepository, userRepo repository.UserRepository, events repository.EventRepository, c *cache.Cache) *AnalyticsService {
	return &AnalyticsService{
		analyticsRepo: analyticsRepo,
		userRepo:      userRepo,
		events:        events,
		cache:         c,
	}
}

// ActiveUsers holds trailing-window active user counts
type ActiveUsers struct {
	Last24h int64 `json:"24h"`
	Last7d  int64 `json:"7d"`
	Last30d int64 `json:"30d"`
}

// Summary is the full analytics rollup
type Summary struct {
	TotalUsers       int64                   `json:"total_users"`
	ActiveUsers      ActiveUsers             `json:"active_users"`
	NewSignups7d     int64                   `json:"new_signups_7d"`
	TotalVouches     int64                   `json:"total_vouches"`
	RankDistribution []repository.RankBucket `json:"rank_distribution"`
	TopHelpers       []repository.HelperStat `json:"top_helpers"`
	MostVouched      []models.User           `json:"most_vouched"`
	MutualVouchCount int64                   `json:"mutual_vouch_count"`
}

// GetSummary computes (or serves a briefly cached copy of) the full rollup
func (s *AnalyticsService) GetSummary(ctx context.Context) (*Summary, error) {
	var summary Summary
	err := s.cache.CacheAside(ctx, "analytics:summary", &summary, constants.AnalyticsCacheTTL, func() error {
		fresh, err := s.computeSummary()
		if err != nil {
			return err
		}
		summary = *fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *AnalyticsService) computeSummary() (*Summary, error) {
	now := time.Now()
	summary := &Summary{}

	var err error
	if summary.TotalUsers, err = s.analyticsRepo.CountUsers(); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if summary.ActiveUsers.Last24h, err = s.analyticsRepo.CountActiveSince(now.Add(-24 * time.Hour)); err != nil {
		return nil, fmt.Errorf("failed to count active users: %w", err)
	}
	if summary.ActiveUsers.Last7d, err = s.analyticsRepo.CountActiveSince(now.Add(-7 * 24 * time.Hour)); err != nil {
		return nil, fmt.Errorf("failed to count active users: %w", err)
	}
	if summary.ActiveUsers.Last30d, err = s.analyticsRepo.CountActiveSince(now.Add(-30 * 24 * time.Hour)); err != nil {
		return nil, fmt.Errorf("failed to count active users: %w", err)
	}
	if summary.NewSignups7d, err = s.analyticsRepo.CountSignupsSince(now.Add(-7 * 24 * time.Hour)); err != nil {
		return nil, fmt.Errorf("failed to count signups: %w", err)
	}
	if summary.TotalVouches, err = s.analyticsRepo.CountVouches(); err != nil {
		return nil, fmt.Errorf("failed to count vouches: %w", err)
	}
	if summary.RankDistribution, err = s.analyticsRepo.RankDistribution(); err != nil {
		return nil, fmt.Errorf("failed to compute rank distribution: %w", err)
	}
	if summary.TopHelpers, err = s.analyticsRepo.TopHelpersSince(now.Add(-7*24*time.Hour), constants.SummaryLeaderboardSize); err != nil {
		return nil, fmt.Errorf("failed to compute top helpers: %w", err)
	}
	if summary.MostVouched, _, err = s.userRepo.ListByVouches(constants.SummaryLeaderboardSize, 0); err != nil {
		return nil, fmt.Errorf("failed to compute most vouched: %w", err)
	}
	if summary.MutualVouchCount, err = s.events.CountByType(models.EventMutualVouch); err != nil {
		return nil, fmt.Errorf("failed to count mutual vouches: %w", err)
	}

	return summary, nil
}

// LeaderboardEntry is one row of a typed leaderboard
type LeaderboardEntry struct {
	UserID       uint64 `json:"user_id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	Rank         string `json:"rank"`
	TotalVouches int64  `json:"total_vouches"`
	StreakDays   int    `json:"streak_days,omitempty"`
}

// GetLeaderboard returns a typed leaderboard, limited to the given size
func (s *AnalyticsService) GetLeaderboard(boardType string, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > constants.MaxPageSize {
		limit = constants.DefaultLeaderboardLimit
	}

	weekAgo := time.Now().Add(-7 * 24 * time.Hour)

	switch boardType {
	case BoardMostVouched:
		users, _, err := s.userRepo.ListByVouches(limit, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to list most vouched: %w", err)
		}
		return userEntries(users), nil

	case BoardTopGivers:
		stats, err := s.analyticsRepo.TopHelpersSince(weekAgo, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to list top givers: %w", err)
		}
		return statEntries(stats), nil

	case BoardRisingStars:
		stats, err := s.analyticsRepo.TopReceiversSince(weekAgo, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to list rising stars: %w", err)
		}
		return statEntries(stats), nil

	case BoardStreakLeaders:
		users, err := s.analyticsRepo.StreakLeaders(limit)
		if err != nil {
			return nil, fmt.Errorf("failed to list streak leaders: %w", err)
		}
		return userEntries(users), nil

	default:
		return nil, ErrUnknownBoard
	}
}

// RecentActivity returns the newest confirmed vouches
func (s *AnalyticsService) RecentActivity(limit int) ([]models.Vouch, error) {
	if limit <= 0 || limit > constants.MaxPageSize {
		limit = constants.DefaultActivityLimit
	}

	vouches, err := s.analyticsRepo.RecentConfirmedVouches(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent activity: %w", err)
	}
	return vouches, nil
}

// ReferralStats summarizes a user's referral performance
type ReferralStats struct {
	TotalReferrals  int64         `json:"total_referrals"`
	RecentReferrals []models.User `json:"recent_referrals"`
}

// GetReferralStats returns referral counts and the newest referred users
func (s *AnalyticsService) GetReferralStats(userID uint64) (*ReferralStats, error) {
	total, err := s.analyticsRepo.CountReferralsBy(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count referrals: %w", err)
	}

	recent, err := s.analyticsRepo.RecentReferralsBy(userID, constants.SummaryLeaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list referrals: %w", err)
	}

	return &ReferralStats{TotalReferrals: total, RecentReferrals: recent}, nil
}

// ViralSummary is a growth snapshot
type ViralSummary struct {
	VouchesToday    int64          `json:"vouches_today"`
	ReferralSignups int64          `json:"referral_signups"`
	RecentActivity  []models.Vouch `json:"recent_activity"`
}

// GetViralSummary returns the growth snapshot
func (s *AnalyticsService) GetViralSummary() (*ViralSummary, error) {
	summary := &ViralSummary{}

	var err error
	if summary.VouchesToday, err = s.analyticsRepo.CountVouchesSince(time.Now().Add(-24 * time.Hour)); err != nil {
		return nil, fmt.Errorf("failed to count recent vouches: %w", err)
	}
	if summary.ReferralSignups, err = s.analyticsRepo.CountReferredUsers(); err != nil {
		return nil, fmt.Errorf("failed to count referral signups: %w", err)
	}
	if summary.RecentActivity, err = s.analyticsRepo.RecentConfirmedVouches(constants.SummaryLeaderboardSize); err != nil {
		return nil, fmt.Errorf("failed to list recent vouches: %w", err)
	}

	return summary, nil
}

// LogShare records a share-button click in the audit trail
func (s *AnalyticsService) LogShare(userID uint64, platform string) {
	if err := s.events.Log(models.EventShareClicked, &userID, map[string]any{"platform": platform}); err != nil {
		slog.Warn("failed to log share event", "user_id", userID, "error", err)
	}
}

func userEntries(users []models.User) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, LeaderboardEntry{
			UserID:       u.ID,
			Username:     u.Username,
			FirstName:    u.FirstName,
			Rank:         string(u.Rank),
			TotalVouches: int64(u.TotalVouches),
			StreakDays:   u.StreakDays,
		})
	}
	return entries
}

func statEntries(stats []repository.HelperStat) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(stats))
	for _, s := range stats {
		entries = append(entries, LeaderboardEntry{
			UserID:       s.UserID,
			Username:     s.Username,
			FirstName:    s.FirstName,
			Rank:         string(s.Rank),
			TotalVouches: s.VouchCount,
		})
	}
	return entries
}
