package services

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/vouchportal/vouch-api/internal/models"
	"github.com/vouchportal/vouch-api/internal/rank"
	"github.com/vouchportal/vouch-api/internal/repository"
	"github.com/vouchportal/vouch-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrInvalidVouchTarget = errors.New("either a target user ID or a target username is required")
	ErrDuplicateVouch     = errors.New("you already vouched for this user")
	ErrSelfVouch          = errors.New("you cannot vouch for yourself")
	ErrVouchNotFound      = errors.New("vouch not found")
	ErrNotVouchOwner      = errors.New("only the vouch author can edit it")
)

// LedgerService owns vouch creation, deduplication, pending-vouch resolution
// and the per-user total/rank mutations that follow from them.
type LedgerService struct {
	vouchRepo repository.VouchRepository
	userRepo  repository.UserRepository
	events    repository.EventRepository
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(vouchRepo repository.VouchRepository, userRepo repository.UserRepository, events repository.EventRepository) *LedgerService {
	return &LedgerService{
		vouchRepo: vouchRepo,
		userRepo:  userRepo,
		events:    events,
	}
}

// CreateVouchInput represents input for creating a vouch
type CreateVouchInput struct {
	FromUserID uint64
	ToUserID   *uint64
	ToUsername string
	Message    string
}

// CreateVouchResult is the persisted vouch plus the rank transition that the
// mutation itself reported. Callers must use RankChanged rather than trying
// to infer a rank-up from event timestamps.
type CreateVouchResult struct {
	Vouch       *models.Vouch
	Pending     bool
	NewTotal    int
	RankChanged bool
	OldRank     rank.Rank
	NewRank     rank.Rank
	Mutual      bool
}

// CreateVouch validates and records a vouch. If the target can be resolved to
// a known user the vouch is confirmed immediately; otherwise it is stored
// pending against the normalized username until that user joins.
func (s *LedgerService) CreateVouch(input CreateVouchInput) (*CreateVouchResult, error) {
	username := utils.NormalizeUsername(input.ToUsername)
	toUserID := input.ToUserID

	// Try to resolve the username to a known identity.
	if toUserID == nil && username != "" {
		user, err := s.userRepo.FindByNormalizedUsername(username)
		switch {
		case err == nil:
			toUserID = &user.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Target has not joined yet; take the pending path.
		default:
			return nil, fmt.Errorf("failed to resolve target username: %w", err)
		}
	}

	if toUserID == nil && username == "" {
		return nil, ErrInvalidVouchTarget
	}

	if toUserID != nil {
		if *toUserID == input.FromUserID {
			return nil, ErrSelfVouch
		}
		if _, err := s.vouchRepo.FindByPair(input.FromUserID, *toUserID); err == nil {
			return nil, ErrDuplicateVouch
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check for existing vouch: %w", err)
		}
	} else {
		if _, err := s.vouchRepo.FindPendingByUsername(input.FromUserID, username); err == nil {
			return nil, ErrDuplicateVouch
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check for existing pending vouch: %w", err)
		}
	}

	message := utils.SanitizeMessage(input.Message)

	if toUserID == nil {
		vouch := &models.Vouch{
			FromUserID: input.FromUserID,
			ToUsername: username,
			Message:    message,
			IsPending:  true,
		}
		if err := s.vouchRepo.CreatePending(vouch); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, ErrDuplicateVouch
			}
			return nil, fmt.Errorf("failed to create pending vouch: %w", err)
		}

		s.logEvent(models.EventPendingVouchCreated, input.FromUserID, map[string]any{
			"to_username": username,
		})

		return &CreateVouchResult{Vouch: vouch, Pending: true}, nil
	}

	vouch := &models.Vouch{
		FromUserID: input.FromUserID,
		ToUserID:   toUserID,
		ToUsername: username,
		Message:    message,
	}

	outcome, err := s.vouchRepo.CreateConfirmed(vouch)
	if err != nil {
		// The storage-level uniqueness backstop catches the race where two
		// identical vouches pass the check above concurrently.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateVouch
		}
		return nil, fmt.Errorf("failed to create vouch: %w", err)
	}

	if outcome.RankChanged {
		s.logEvent(models.EventRankUp, *toUserID, map[string]any{
			"old_rank": outcome.OldRank,
			"new_rank": outcome.NewRank,
		})
	}
	if outcome.Mutual {
		s.logEvent(models.EventMutualVouch, input.FromUserID, map[string]any{
			"other_user": *toUserID,
		})
	}
	s.logEvent(models.EventVouchCreated, input.FromUserID, map[string]any{
		"to_user":     *toUserID,
		"vouch_count": outcome.NewTotal,
	})

	return &CreateVouchResult{
		Vouch:       outcome.Vouch,
		NewTotal:    outcome.NewTotal,
		RankChanged: outcome.RankChanged,
		OldRank:     outcome.OldRank,
		NewRank:     outcome.NewRank,
		Mutual:      outcome.Mutual,
	}, nil
}

// ResolvePendingVouches settles pending vouches when a user becomes known
// under a username. Re-invoking it with no new matches is a no-op.
func (s *LedgerService) ResolvePendingVouches(userID uint64, username string) (*repository.ResolutionOutcome, error) {
	normalized := utils.NormalizeUsername(username)
	if normalized == "" {
		return &repository.ResolutionOutcome{}, nil
	}

	outcome, err := s.vouchRepo.ResolvePending(userID, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve pending vouches: %w", err)
	}

	if outcome.Resolved == 0 {
		return outcome, nil
	}

	if outcome.RankChanged {
		s.logEvent(models.EventRankUp, userID, map[string]any{
			"old_rank": outcome.OldRank,
			"new_rank": outcome.NewRank,
		})
	}
	s.logEvent(models.EventPendingVouchesResolved, userID, map[string]any{
		"username":          username,
		"vouches_processed": outcome.Resolved,
		"new_rank":          outcome.NewRank,
	})

	return outcome, nil
}

// UpdateVouch replaces a vouch's message. Only the original author may edit;
// totals and ranks are unaffected.
func (s *LedgerService) UpdateVouch(vouchID, requesterID uint64, newMessage string) (*models.Vouch, error) {
	vouch, err := s.vouchRepo.FindByID(vouchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVouchNotFound
		}
		return nil, fmt.Errorf("failed to find vouch: %w", err)
	}

	if vouch.FromUserID != requesterID {
		return nil, ErrNotVouchOwner
	}

	message := utils.SanitizeMessage(newMessage)
	if err := s.vouchRepo.UpdateMessage(vouchID, message); err != nil {
		return nil, fmt.Errorf("failed to update vouch: %w", err)
	}

	vouch.Message = message
	return vouch, nil
}

// VouchesFor returns confirmed vouches received by a user, newest first
func (s *LedgerService) VouchesFor(userID uint64) ([]models.Vouch, error) {
	vouches, err := s.vouchRepo.ListReceived(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list received vouches: %w", err)
	}
	return vouches, nil
}

// VouchesBy returns vouches given by a user, newest first
func (s *LedgerService) VouchesBy(userID uint64) ([]models.Vouch, error) {
	vouches, err := s.vouchRepo.ListGiven(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list given vouches: %w", err)
	}
	return vouches, nil
}

// logEvent appends to the audit trail. The trail is advisory; a sink failure
// must not fail the mutation that already committed.
func (s *LedgerService) logEvent(eventType string, userID uint64, metadata map[string]any) {
	if err := s.events.Log(eventType, &userID, metadata); err != nil {
		slog.Warn("failed to log event", "type", eventType, "user_id", userID, "error", err)
	}
}
