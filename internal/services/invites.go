package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vouchportal/vouch-api/internal/constants"
	"github.com/vouchportal/vouch-api/internal/models"
	"github.com/vouchportal/vouch-api/internal/repository"
	"github.com/vouchportal/vouch-api/internal/utils"
)

var (
	ErrInviteUsernameRequired = errors.New("target username is required")
	ErrInviteCooldown         = errors.New("you can only invite this user once per week")
)

// InviteService records invites and enforces the per-target cooldown.
// Notification delivery is deliberately absent; only the audit trail exists.
type InviteService struct {
	inviteRepo repository.InviteRepository
	events     repository.EventRepository
}

// NewInviteService creates a new InviteService
func NewInviteService(inviteRepo repository.InviteRepository, events repository.EventRepository) *InviteService {
	return &InviteService{
		inviteRepo: inviteRepo,
		events:     events,
	}
}

// SendInvite records an invite unless one was already sent to the same
// username within the cooldown window.
func (s *InviteService) SendInvite(fromUserID uint64, toUsername string) error {
	username := utils.NormalizeUsername(toUsername)
	if username == "" {
		return ErrInviteUsernameRequired
	}

	recent, err := s.inviteRepo.HasRecentInvite(fromUserID, username, time.Now().Add(-constants.InviteCooldown))
	if err != nil {
		return fmt.Errorf("failed to check invite cooldown: %w", err)
	}
	if recent {
		return ErrInviteCooldown
	}

	invite := &models.Invite{FromUserID: fromUserID, ToUsername: username}
	if err := s.inviteRepo.Create(invite); err != nil {
		return fmt.Errorf("failed to record invite: %w", err)
	}

	if err := s.events.Log(models.EventInviteLogged, &fromUserID, map[string]any{
		"to_username": username,
	}); err != nil {
		slog.Warn("failed to log invite event", "user_id", fromUserID, "error", err)
	}

	return nil
}
