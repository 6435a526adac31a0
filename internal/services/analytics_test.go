package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vouchportal/vouch-api/internal/cache"
	"github.com/vouchportal/vouch-api/internal/database"
	"github.com/vouchportal/vouch-api/internal/models"
	"github.com/vouchportal/vouch-api/internal/rank"
	"github.com/vouchportal/vouch-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// AnalyticsServiceTestSuite defines the test suite for AnalyticsService
type AnalyticsServiceTestSuite struct {
	suite.Suite
	db        *gorm.DB
	analytics *AnalyticsService
	directory *DirectoryService
	ledger    *LedgerService
}

// SetupTest runs before each test
func (s *AnalyticsServiceTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	s.Require().NoError(err)

	s.Require().NoError(database.Migrate(db))
	s.db = db

	userRepo := repository.NewUserRepository(db)
	vouchRepo := repository.NewVouchRepository(db)
	eventRepo := repository.NewEventRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	s.ledger = NewLedgerService(vouchRepo, userRepo, eventRepo)
	s.directory = NewDirectoryService(userRepo, eventRepo, s.ledger)
	// An unconnected cache misses on every lookup, so tests always compute fresh.
	s.analytics = NewAnalyticsService(analyticsRepo, userRepo, eventRepo, &cache.Cache{})
}

func (s *AnalyticsServiceTestSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.Close()
}

func (s *AnalyticsServiceTestSuite) seedUsers(usernames ...string) {
	for i, name := range usernames {
		_, err := s.directory.GetOrCreate(GetOrCreateInput{ID: uint64(i + 1), Username: name})
		s.Require().NoError(err)
	}
}

func (s *AnalyticsServiceTestSuite) vouch(from, to uint64) {
	_, err := s.ledger.CreateVouch(CreateVouchInput{FromUserID: from, ToUserID: &to})
	s.Require().NoError(err)
}

func (s *AnalyticsServiceTestSuite) TestGetSummary() {
	s.seedUsers("alice", "bob", "carol")
	s.vouch(1, 2)
	s.vouch(3, 2)
	s.vouch(2, 1)

	summary, err := s.analytics.GetSummary(context.Background())
	s.Require().NoError(err)

	s.Equal(int64(3), summary.TotalUsers)
	s.Equal(int64(3), summary.ActiveUsers.Last24h)
	s.Equal(int64(3), summary.NewSignups7d)
	s.Equal(int64(3), summary.TotalVouches)
	s.Equal(int64(1), summary.MutualVouchCount)

	s.Require().NotEmpty(summary.RankDistribution)
	s.Equal(rank.RankUnverified, summary.RankDistribution[0].Rank)
	s.Equal(int64(3), summary.RankDistribution[0].Count)

	s.Require().NotEmpty(summary.MostVouched)
	s.Equal(uint64(2), summary.MostVouched[0].ID)
}

func (s *AnalyticsServiceTestSuite) TestGetLeaderboard_MostVouched() {
	s.seedUsers("alice", "bob", "carol")
	s.vouch(1, 3)
	s.vouch(2, 3)
	s.vouch(1, 2)

	entries, err := s.analytics.GetLeaderboard(BoardMostVouched, 2)
	s.Require().NoError(err)

	s.Require().Len(entries, 2)
	s.Equal(uint64(3), entries[0].UserID)
	s.Equal(int64(2), entries[0].TotalVouches)
}

func (s *AnalyticsServiceTestSuite) TestGetLeaderboard_TopGivers() {
	s.seedUsers("alice", "bob", "carol")
	s.vouch(1, 2)
	s.vouch(1, 3)
	s.vouch(2, 3)

	entries, err := s.analytics.GetLeaderboard(BoardTopGivers, 10)
	s.Require().NoError(err)

	s.Require().NotEmpty(entries)
	s.Equal(uint64(1), entries[0].UserID)
	s.Equal(int64(2), entries[0].TotalVouches)
	s.Equal("alice", entries[0].Username)
}

func (s *AnalyticsServiceTestSuite) TestGetLeaderboard_UnknownBoard() {
	_, err := s.analytics.GetLeaderboard("hall_of_fame", 10)
	s.ErrorIs(err, ErrUnknownBoard)
}

func (s *AnalyticsServiceTestSuite) TestRecentActivity_ExcludesPending() {
	s.seedUsers("alice", "bob")
	s.vouch(1, 2)

	_, err := s.ledger.CreateVouch(CreateVouchInput{FromUserID: 1, ToUsername: "ghost"})
	s.Require().NoError(err)

	activity, err := s.analytics.RecentActivity(10)
	s.Require().NoError(err)

	s.Require().Len(activity, 1)
	s.Require().NotNil(activity[0].To)
	s.Equal("bob", activity[0].To.Username)
	s.Equal("alice", activity[0].From.Username)
}

func (s *AnalyticsServiceTestSuite) TestGetReferralStats() {
	s.seedUsers("alice")

	referrer := uint64(1)
	for id := uint64(2); id <= 4; id++ {
		_, err := s.directory.GetOrCreate(GetOrCreateInput{ID: id, ReferrerID: &referrer})
		s.Require().NoError(err)
	}

	stats, err := s.analytics.GetReferralStats(1)
	s.Require().NoError(err)

	s.Equal(int64(3), stats.TotalReferrals)
	s.Len(stats.RecentReferrals, 3)

	empty, err := s.analytics.GetReferralStats(2)
	s.Require().NoError(err)
	s.Equal(int64(0), empty.TotalReferrals)
}

func (s *AnalyticsServiceTestSuite) TestGetViralSummary() {
	s.seedUsers("alice", "bob")
	s.vouch(1, 2)

	referrer := uint64(1)
	_, err := s.directory.GetOrCreate(GetOrCreateInput{ID: 3, Username: "carol", ReferrerID: &referrer})
	s.Require().NoError(err)

	summary, err := s.analytics.GetViralSummary()
	s.Require().NoError(err)

	s.Equal(int64(1), summary.VouchesToday)
	s.Equal(int64(1), summary.ReferralSignups)
	s.Len(summary.RecentActivity, 1)
}

func (s *AnalyticsServiceTestSuite) TestLogShare() {
	s.seedUsers("alice")

	s.analytics.LogShare(1, "twitter")

	var count int64
	s.db.Model(&models.Event{}).Where("event_type = ?", models.EventShareClicked).Count(&count)
	s.Equal(int64(1), count)
}

func TestAnalyticsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AnalyticsServiceTestSuite))
}
