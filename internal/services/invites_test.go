package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vouchportal/vouch-api/internal/database"
	"github.com/vouchportal/vouch-api/internal/models"
	"github.com/vouchportal/vouch-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InviteServiceTestSuite defines the test suite for InviteService
type InviteServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	invites *InviteService
}

// SetupTest runs before each test
func (s *InviteServiceTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	s.Require().NoError(err)

	s.Require().NoError(database.Migrate(db))
	s.db = db

	s.invites = NewInviteService(repository.NewInviteRepository(db), repository.NewEventRepository(db))
}

func (s *InviteServiceTestSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.Close()
}

func (s *InviteServiceTestSuite) TestSendInvite() {
	s.Require().NoError(s.invites.SendInvite(1, "@NewUser"))

	var invite models.Invite
	s.Require().NoError(s.db.First(&invite).Error)
	s.Equal(uint64(1), invite.FromUserID)
	s.Equal("newuser", invite.ToUsername)

	var events int64
	s.db.Model(&models.Event{}).Where("event_type = ?", models.EventInviteLogged).Count(&events)
	s.Equal(int64(1), events)
}

func (s *InviteServiceTestSuite) TestSendInvite_Cooldown() {
	s.Require().NoError(s.invites.SendInvite(1, "newuser"))

	// Case variants hit the same cooldown.
	s.ErrorIs(s.invites.SendInvite(1, "NEWUSER"), ErrInviteCooldown)

	// A different sender is unaffected.
	s.Require().NoError(s.invites.SendInvite(2, "newuser"))
}

func (s *InviteServiceTestSuite) TestSendInvite_CooldownExpires() {
	old := &models.Invite{FromUserID: 1, ToUsername: "newuser", SentAt: time.Now().Add(-8 * 24 * time.Hour)}
	s.Require().NoError(s.db.Create(old).Error)

	s.Require().NoError(s.invites.SendInvite(1, "newuser"))
}

func (s *InviteServiceTestSuite) TestSendInvite_EmptyUsername() {
	s.ErrorIs(s.invites.SendInvite(1, "  @ "), ErrInviteUsernameRequired)
}

func TestInviteServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InviteServiceTestSuite))
}
