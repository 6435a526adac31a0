package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/suite"
	"github.com/vouchportal/vouch-api/internal/database"
	"github.com/vouchportal/vouch-api/internal/models"
	"github.com/vouchportal/vouch-api/internal/rank"
	"github.com/vouchportal/vouch-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DirectoryServiceTestSuite defines the test suite for DirectoryService
type DirectoryServiceTestSuite struct {
	suite.Suite
	db        *gorm.DB
	directory *DirectoryService
	ledger    *LedgerService
}

// SetupTest runs before each test
func (s *DirectoryServiceTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	s.Require().NoError(err)

	s.Require().NoError(database.Migrate(db))
	s.db = db

	userRepo := repository.NewUserRepository(db)
	vouchRepo := repository.NewVouchRepository(db)
	eventRepo := repository.NewEventRepository(db)

	s.ledger = NewLedgerService(vouchRepo, userRepo, eventRepo)
	s.directory = NewDirectoryService(userRepo, eventRepo, s.ledger)
}

func (s *DirectoryServiceTestSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.Close()
}

func (s *DirectoryServiceTestSuite) countEvents(eventType string) int64 {
	var count int64
	s.Require().NoError(s.db.Model(&models.Event{}).Where("event_type = ?", eventType).Count(&count).Error)
	return count
}

func (s *DirectoryServiceTestSuite) TestGetOrCreate_CreatesNewUser() {
	user, err := s.directory.GetOrCreate(GetOrCreateInput{ID: 1, Username: "alice", FirstName: "Alice"})
	s.Require().NoError(err)

	s.Equal(uint64(1), user.ID)
	s.Equal("alice", user.Username)
	s.Equal(rank.RankUnverified, user.Rank)
	s.Equal(0, user.TotalVouches)
	s.False(user.LastActiveAt.IsZero())

	s.Equal(int64(1), s.countEvents(models.EventUserSignup))
}

func (s *DirectoryServiceTestSuite) TestGetOrCreate_Idempotent() {
	first, err := s.directory.GetOrCreate(GetOrCreateInput{ID: 1, Username: "alice"})
	s.Require().NoError(err)

	second, err := s.directory.GetOrCreate(GetOrCreateInput{ID: 1, Username: "alice"})
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID)
	s.Equal(first.FirstSeenAt.Unix(), second.FirstSeenAt.Unix())

	var count int64
	s.db.Model(&models.User{}).Count(&count)
	s.Equal(int64(1), count)

	// Repeat contact refreshes activity but is not a second signup.
	s.Equal(int64(1), s.countEvents(models.EventUserSignup))
	s.False(second.LastActiveAt.Before(first.LastActiveAt))
}

func (s *DirectoryServiceTestSuite) TestGetOrCreate_ResolvesPendingOnSignup() {
	_, err := s.directory.GetOrCreate(GetOrCreateInput{ID: 1, Username: "alice"})
	s.Require().NoError(err)

	_, err = s.ledger.CreateVouch(CreateVouchInput{FromUserID: 1, ToUsername: "Newcomer"})
	s.Require().NoError(err)

	user, err := s.directory.GetOrCreate(GetOrCreateInput{ID: 2, Username: "newcomer"})
	s.Require().NoError(err)

	s.Equal(1, user.TotalVouches)

	var pending int64
	s.db.Model(&models.Vouch{}).Where("is_pending = ?", true).Count(&pending)
	s.Equal(int64(0), pending)
}

func (s *DirectoryServiceTestSuite) TestGetOrCreate_UsernameChangeResolvesPending() {
	_, err := s.directory.GetOrCreate(GetOrCreateInput{ID: 1, Username: "alice"})
	s.Require().NoError(err)
	_, err = s.directory.GetOrCreate(GetOrCreateInput{ID: 2, Username: "oldname"})
	s.Require().NoError(err)

	_, err = s.ledger.CreateVouch(CreateVouchInput{FromUserID: 1, ToUsername: "freshname"})
	s.Require().NoError(err)

	// The rename is only seen on the user's next contact.
	user, err := s.directory.GetOrCreate(GetOrCreateInput{ID: 2, Username: "FreshName"})
	s.Require().NoError(err)

	s.Equal("FreshName", user.Username)
	s.Equal(1, user.TotalVouches)
}

func (s *DirectoryServiceTestSuite) TestGetOrCreate_TracksReferrer() {
	_, err := s.directory.GetOrCreate(GetOrCreateInput{ID: 1, Username: "alice"})
	s.Require().NoError(err)

	referrer := uint64(1)
	user, err := s.directory.GetOrCreate(GetOrCreateInput{ID: 2, Username: "bob", ReferrerID: &referrer})
	s.Require().NoError(err)

	s.Require().NotNil(user.ReferrerID)
	s.Equal(uint64(1), *user.ReferrerID)
}

func (s *DirectoryServiceTestSuite) TestGet_NotFound() {
	_, err := s.directory.Get(404)
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *DirectoryServiceTestSuite) TestUpdateRank() {
	_, err := s.directory.GetOrCreate(GetOrCreateInput{ID: 1, Username: "alice"})
	s.Require().NoError(err)

	s.Require().NoError(s.directory.UpdateRank(1, rank.RankTrusted))

	user, err := s.directory.Get(1)
	s.Require().NoError(err)
	s.Equal(rank.RankTrusted, user.Rank)

	var rankEvents int64
	s.db.Model(&models.RankEvent{}).Where("user_id = ?", 1).Count(&rankEvents)
	s.Equal(int64(1), rankEvents)
}

func (s *DirectoryServiceTestSuite) TestUpdateRank_RecordsEventEvenWhenUnchanged() {
	_, err := s.directory.GetOrCreate(GetOrCreateInput{ID: 1, Username: "alice"})
	s.Require().NoError(err)

	s.Require().NoError(s.directory.UpdateRank(1, rank.RankUnverified))

	var rankEvents int64
	s.db.Model(&models.RankEvent{}).Where("user_id = ?", 1).Count(&rankEvents)
	s.Equal(int64(1), rankEvents)
}

func (s *DirectoryServiceTestSuite) TestUpdateRank_Invalid() {
	_, err := s.directory.GetOrCreate(GetOrCreateInput{ID: 1, Username: "alice"})
	s.Require().NoError(err)

	s.ErrorIs(s.directory.UpdateRank(1, rank.Rank("legendary")), ErrInvalidRankKey)
	s.ErrorIs(s.directory.UpdateRank(404, rank.RankTrusted), ErrUserNotFound)
}

func (s *DirectoryServiceTestSuite) TestUpdateProfile() {
	_, err := s.directory.GetOrCreate(GetOrCreateInput{ID: 1, Username: "alice"})
	s.Require().NoError(err)

	bio := strings.Repeat("b", 600)
	location := strings.Repeat("l", 150)
	user, err := s.directory.UpdateProfile(1, UpdateProfileInput{Bio: &bio, Location: &location})
	s.Require().NoError(err)

	s.Len(user.Bio, 500)
	s.Len(user.Location, 100)
	s.Equal(int64(1), s.countEvents(models.EventProfileUpdated))
}

func (s *DirectoryServiceTestSuite) TestUpdateProfile_MultibyteTruncation() {
	_, err := s.directory.GetOrCreate(GetOrCreateInput{ID: 1, Username: "alice"})
	s.Require().NoError(err)

	// Caps count characters, not bytes.
	bio := strings.Repeat("ü", 520)
	location := strings.Repeat("ü", 150)
	user, err := s.directory.UpdateProfile(1, UpdateProfileInput{Bio: &bio, Location: &location})
	s.Require().NoError(err)

	s.Equal(500, utf8.RuneCountInString(user.Bio))
	s.Equal(100, utf8.RuneCountInString(user.Location))
	s.True(utf8.ValidString(user.Bio))
}

func (s *DirectoryServiceTestSuite) TestUpdateProfile_Errors() {
	_, err := s.directory.UpdateProfile(1, UpdateProfileInput{})
	s.ErrorIs(err, ErrNoFieldsGiven)

	bio := "hi"
	_, err = s.directory.UpdateProfile(404, UpdateProfileInput{Bio: &bio})
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *DirectoryServiceTestSuite) TestSearch() {
	_, err := s.directory.GetOrCreate(GetOrCreateInput{ID: 1, Username: "alice", FirstName: "Alice"})
	s.Require().NoError(err)
	_, err = s.directory.GetOrCreate(GetOrCreateInput{ID: 2, Username: "alicia"})
	s.Require().NoError(err)
	_, err = s.directory.GetOrCreate(GetOrCreateInput{ID: 3, Username: "bob"})
	s.Require().NoError(err)

	results, err := s.directory.Search("@ALI", 10)
	s.Require().NoError(err)
	s.Len(results, 2)

	empty, err := s.directory.Search("   ", 10)
	s.Require().NoError(err)
	s.Empty(empty)
}

func (s *DirectoryServiceTestSuite) TestList_OrderedByVouches() {
	_, err := s.directory.GetOrCreate(GetOrCreateInput{ID: 1, Username: "alice"})
	s.Require().NoError(err)
	_, err = s.directory.GetOrCreate(GetOrCreateInput{ID: 2, Username: "bob"})
	s.Require().NoError(err)
	_, err = s.directory.GetOrCreate(GetOrCreateInput{ID: 3, Username: "carol"})
	s.Require().NoError(err)

	target := uint64(2)
	_, err = s.ledger.CreateVouch(CreateVouchInput{FromUserID: 1, ToUserID: &target})
	s.Require().NoError(err)
	_, err = s.ledger.CreateVouch(CreateVouchInput{FromUserID: 3, ToUserID: &target})
	s.Require().NoError(err)

	users, total, err := s.directory.List(10, 0)
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Require().NotEmpty(users)
	s.Equal(uint64(2), users[0].ID)
}

func TestDirectoryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DirectoryServiceTestSuite))
}
