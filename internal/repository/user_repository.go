package repository

import (
	"time"

	"github.com/vouchportal/vouch-api/internal/database"
	"github.com/vouchportal/vouch-api/internal/models"
	"github.com/vouchportal/vouch-api/internal/rank"
	"github.com/vouchportal/vouch-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// CreateIfAbsent inserts the user unless the ID already exists. The
// conflict-tolerant insert makes simultaneous first contact from the same
// identity safe; the loser of the race sees created=false.
func (r *GormUserRepository) CreateIfAbsent(user *models.User) (bool, error) {
	result := r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(user)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FindByID finds a user by platform ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByNormalizedUsername finds a user by case-insensitive username match
func (r *GormUserRepository) FindByNormalizedUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("LOWER(username) = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Touch updates last_active_at and optionally the stored username
func (r *GormUserRepository) Touch(id uint64, username string) error {
	updates := map[string]any{"last_active_at": time.Now()}
	if username != "" {
		updates["username"] = username
	}
	return r.db.Model(&models.User{}).Where("id = ?", id).Updates(updates).Error
}

// Update persists the full user record
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// UpdateRankWithEvent sets the rank and records a RankEvent atomically
func (r *GormUserRepository) UpdateRankWithEvent(id uint64, newRank rank.Rank) (rank.Rank, error) {
	var oldRank rank.Rank

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return err
		}
		oldRank = user.Rank

		if err := tx.Model(&models.User{}).Where("id = ?", id).
			UpdateColumn("rank", newRank).Error; err != nil {
			return err
		}

		event := models.RankEvent{UserID: id, OldRank: oldRank, NewRank: newRank}
		return tx.Create(&event).Error
	})
	if err != nil {
		return "", err
	}

	return oldRank, nil
}

// ListByVouches lists users ordered by total vouches descending
func (r *GormUserRepository) ListByVouches(limit, offset int) ([]models.User, int64, error) {
	var total int64
	if err := r.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := r.db.Order("total_vouches DESC").
		Scopes(database.Paginate(utils.PaginationParams{Limit: limit, Offset: offset})).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// Search finds users by substring match on username or name
func (r *GormUserRepository) Search(query string, limit int) ([]models.User, error) {
	pattern := "%" + query + "%"

	var users []models.User
	if err := r.db.
		Where("LOWER(username) LIKE LOWER(?) OR LOWER(first_name) LIKE LOWER(?) OR LOWER(last_name) LIKE LOWER(?)",
			pattern, pattern, pattern).
		Order("total_vouches DESC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}
