package repository

import (
	"github.com/vouchportal/vouch-api/internal/models"
	"github.com/vouchportal/vouch-api/internal/rank"
	"gorm.io/gorm"
)

// GormVouchRepository is a GORM implementation of VouchRepository
type GormVouchRepository struct {
	db *gorm.DB
}

// NewVouchRepository creates a new VouchRepository
func NewVouchRepository(db *gorm.DB) VouchRepository {
	return &GormVouchRepository{db: db}
}

// FindByID finds a vouch by sequence number
func (r *GormVouchRepository) FindByID(id uint64) (*models.Vouch, error) {
	var vouch models.Vouch
	if err := r.db.First(&vouch, id).Error; err != nil {
		return nil, err
	}
	return &vouch, nil
}

// FindByPair finds any vouch from one user to a resolved target
func (r *GormVouchRepository) FindByPair(fromUserID, toUserID uint64) (*models.Vouch, error) {
	var vouch models.Vouch
	if err := r.db.Where("from_user_id = ? AND to_user_id = ?", fromUserID, toUserID).
		First(&vouch).Error; err != nil {
		return nil, err
	}
	return &vouch, nil
}

// FindPendingByUsername finds a pending vouch from a user to a normalized username
func (r *GormVouchRepository) FindPendingByUsername(fromUserID uint64, username string) (*models.Vouch, error) {
	var vouch models.Vouch
	if err := r.db.
		Where("from_user_id = ? AND LOWER(to_username) = ? AND is_pending = ?", fromUserID, username, true).
		First(&vouch).Error; err != nil {
		return nil, err
	}
	return &vouch, nil
}

// CreateConfirmed inserts a confirmed vouch and applies every dependent
// mutation in one transaction: the total increment, the rank recompute (with
// a RankEvent when the tier changes) and the reverse-vouch check. The partial
// unique index on (from_user_id, to_user_id) turns a concurrent duplicate
// into a gorm.ErrDuplicatedKey instead of a second row.
func (r *GormVouchRepository) CreateConfirmed(vouch *models.Vouch) (*ConfirmOutcome, error) {
	outcome := &ConfirmOutcome{}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(vouch).Error; err != nil {
			return err
		}

		targetID := *vouch.ToUserID
		if err := tx.Model(&models.User{}).Where("id = ?", targetID).
			UpdateColumn("total_vouches", gorm.Expr("total_vouches + ?", 1)).Error; err != nil {
			return err
		}

		var target models.User
		if err := tx.First(&target, targetID).Error; err != nil {
			return err
		}

		outcome.NewTotal = target.TotalVouches
		outcome.OldRank = target.Rank
		outcome.NewRank = rank.Calculate(target.TotalVouches)

		if outcome.NewRank != target.Rank {
			outcome.RankChanged = true
			if err := applyRankChange(tx, targetID, outcome.OldRank, outcome.NewRank); err != nil {
				return err
			}
		}

		var reverse int64
		if err := tx.Model(&models.Vouch{}).
			Where("from_user_id = ? AND to_user_id = ?", targetID, vouch.FromUserID).
			Count(&reverse).Error; err != nil {
			return err
		}
		outcome.Mutual = reverse > 0

		return nil
	})
	if err != nil {
		return nil, err
	}

	outcome.Vouch = vouch
	return outcome, nil
}

// CreatePending inserts a pending vouch
func (r *GormVouchRepository) CreatePending(vouch *models.Vouch) error {
	return r.db.Create(vouch).Error
}

// ResolvePending confirms all pending vouches matching the username and
// recomputes the rank once against the batched total.
func (r *GormVouchRepository) ResolvePending(userID uint64, username string) (*ResolutionOutcome, error) {
	outcome := &ResolutionOutcome{}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		// A user who claims a username they once vouched for must not have
		// their own vouch confirmed onto themselves; that row stays pending.
		result := tx.Model(&models.Vouch{}).
			Where("is_pending = ? AND LOWER(to_username) = ? AND from_user_id <> ?", true, username, userID).
			Updates(map[string]any{"to_user_id": userID, "is_pending": false})
		if result.Error != nil {
			return result.Error
		}

		outcome.Resolved = int(result.RowsAffected)
		if outcome.Resolved == 0 {
			return nil
		}

		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			UpdateColumn("total_vouches", gorm.Expr("total_vouches + ?", outcome.Resolved)).Error; err != nil {
			return err
		}

		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}

		outcome.NewTotal = user.TotalVouches
		outcome.OldRank = user.Rank
		outcome.NewRank = rank.Calculate(user.TotalVouches)

		if outcome.NewRank != user.Rank {
			outcome.RankChanged = true
			return applyRankChange(tx, userID, outcome.OldRank, outcome.NewRank)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return outcome, nil
}

// UpdateMessage replaces a vouch's message in place
func (r *GormVouchRepository) UpdateMessage(id uint64, message string) error {
	return r.db.Model(&models.Vouch{}).Where("id = ?", id).
		UpdateColumn("message", message).Error
}

// ListReceived lists confirmed vouches received by a user, newest first
func (r *GormVouchRepository) ListReceived(userID uint64) ([]models.Vouch, error) {
	var vouches []models.Vouch
	if err := r.db.Preload("From").
		Where("to_user_id = ?", userID).
		Order("created_at DESC").
		Find(&vouches).Error; err != nil {
		return nil, err
	}
	return vouches, nil
}

// ListGiven lists vouches given by a user, newest first
func (r *GormVouchRepository) ListGiven(userID uint64) ([]models.Vouch, error) {
	var vouches []models.Vouch
	if err := r.db.Preload("To").
		Where("from_user_id = ?", userID).
		Order("created_at DESC").
		Find(&vouches).Error; err != nil {
		return nil, err
	}
	return vouches, nil
}

// applyRankChange persists a new rank and appends the RankEvent inside the
// caller's transaction. Both ledger mutation paths funnel through here.
func applyRankChange(tx *gorm.DB, userID uint64, oldRank, newRank rank.Rank) error {
	if err := tx.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("rank", newRank).Error; err != nil {
		return err
	}

	event := models.RankEvent{UserID: userID, OldRank: oldRank, NewRank: newRank}
	return tx.Create(&event).Error
}
