package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vouchportal/vouch-api/internal/constants"
	"github.com/vouchportal/vouch-api/internal/models"
	"github.com/vouchportal/vouch-api/internal/rank"
	"github.com/vouchportal/vouch-api/internal/repository"
	"github.com/vouchportal/vouch-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrNoFieldsGiven  = errors.New("no fields to update")
	ErrInvalidRankKey = errors.New("unknown rank key")
)

// DirectoryService owns user identity records. Username changes and first
// signups call back into the ledger to settle pending vouches.
type DirectoryService struct {
	userRepo repository.UserRepository
	events   repository.EventRepository
	ledger   *LedgerService
}

// NewDirectoryService creates a new DirectoryService
func NewDirectoryService(userRepo repository.UserRepository, events repository.EventRepository, ledger *LedgerService) *DirectoryService {
	return &DirectoryService{
		userRepo: userRepo,
		events:   events,
		ledger:   ledger,
	}
}

// GetOrCreateInput identifies a user on first or repeat contact
type GetOrCreateInput struct {
	ID         uint64
	Username   string
	FirstName  string
	LastName   string
	ReferrerID *uint64
}

// GetOrCreate returns the user record, creating it on first contact.
// Repeat contact only refreshes last_active (and the username, when given).
// A username assignment or change triggers pending-vouch resolution.
func (s *DirectoryService) GetOrCreate(input GetOrCreateInput) (*models.User, error) {
	existing, err := s.userRepo.FindByID(input.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		user := &models.User{
			ID:           input.ID,
			Username:     input.Username,
			FirstName:    input.FirstName,
			LastName:     input.LastName,
			ReferrerID:   input.ReferrerID,
			LastActiveAt: time.Now(),
			Rank:         rank.RankUnverified,
		}

		created, err := s.userRepo.CreateIfAbsent(user)
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		if created {
			metadata := map[string]any{"username": input.Username}
			if input.ReferrerID != nil {
				metadata["referrer_id"] = *input.ReferrerID
			}
			s.logEvent(models.EventUserSignup, input.ID, metadata)

			if input.Username != "" {
				if _, err := s.ledger.ResolvePendingVouches(input.ID, input.Username); err != nil {
					return nil, err
				}
			}

			return s.userRepo.FindByID(input.ID)
		}

		// Lost a first-contact race; fall through to the update path.
		existing, err = s.userRepo.FindByID(input.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
	}

	if err := s.userRepo.Touch(input.ID, input.Username); err != nil {
		return nil, fmt.Errorf("failed to update user activity: %w", err)
	}

	if input.Username != "" && existing.Username != input.Username {
		if _, err := s.ledger.ResolvePendingVouches(input.ID, input.Username); err != nil {
			return nil, err
		}
	}

	return s.userRepo.FindByID(input.ID)
}

// Get returns a user record; absence means the caller should onboard them.
func (s *DirectoryService) Get(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// UpdateRank is the administrative rank-correction entry point. It persists
// the rank and records a RankEvent unconditionally, even when the rank did
// not change. Ledger recomputes never route through here.
func (s *DirectoryService) UpdateRank(userID uint64, newRank rank.Rank) error {
	if rank.DisplayName(newRank) == "Unknown" {
		return ErrInvalidRankKey
	}

	oldRank, err := s.userRepo.UpdateRankWithEvent(userID, newRank)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update rank: %w", err)
	}

	s.logEvent(models.EventRankUp, userID, map[string]any{
		"old_rank": oldRank,
		"new_rank": newRank,
	})

	return nil
}

// UpdateProfileInput carries the optional profile fields; nil means unchanged
type UpdateProfileInput struct {
	Bio               *string
	Location          *string
	ProfilePictureURL *string
}

// UpdateProfile applies a partial profile update with field length caps
func (s *DirectoryService) UpdateProfile(userID uint64, input UpdateProfileInput) (*models.User, error) {
	if input.Bio == nil && input.Location == nil && input.ProfilePictureURL == nil {
		return nil, ErrNoFieldsGiven
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if input.Bio != nil {
		user.Bio = utils.TruncateRunes(*input.Bio, constants.MaxBioLength)
	}
	if input.Location != nil {
		user.Location = utils.TruncateRunes(*input.Location, constants.MaxLocationLength)
	}
	if input.ProfilePictureURL != nil {
		user.ProfilePictureURL = *input.ProfilePictureURL
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logEvent(models.EventProfileUpdated, userID, nil)

	return user, nil
}

// List returns users ordered by total vouches descending
func (s *DirectoryService) List(limit, offset int) ([]models.User, int64, error) {
	users, total, err := s.userRepo.ListByVouches(limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// Search finds users by username or name substring
func (s *DirectoryService) Search(query string, limit int) ([]models.User, error) {
	query = utils.NormalizeUsername(query)
	if query == "" {
		return []models.User{}, nil
	}

	users, err := s.userRepo.Search(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}

func (s *DirectoryService) logEvent(eventType string, userID uint64, metadata map[string]any) {
	if err := s.events.Log(eventType, &userID, metadata); err != nil {
		slog.Warn("failed to log event", "type", eventType, "user_id", userID, "error", err)
	}
}
