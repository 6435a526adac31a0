package repository

import (
	"time"

	"github.com/vouchportal/vouch-api/internal/models"
	"gorm.io/gorm"
)

// GormAnalyticsRepository is a GORM implementation of AnalyticsRepository
type GormAnalyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new AnalyticsRepository
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &GormAnalyticsRepository{db: db}
}

func (r *GormAnalyticsRepository) CountUsers() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

func (r *GormAnalyticsRepository) CountActiveSince(t time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).
		Where("last_active_at > ?", t).
		Count(&count).Error
	return count, err
}

func (r *GormAnalyticsRepository) CountSignupsSince(t time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).
		Where("first_seen_at > ?", t).
		Count(&count).Error
	return count, err
}

func (r *GormAnalyticsRepository) CountVouches() (int64, error) {
	var count int64
	err := r.db.Model(&models.Vouch{}).Count(&count).Error
	return count, err
}

func (r *GormAnalyticsRepository) CountVouchesSince(t time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Vouch{}).
		Where("created_at > ?", t).
		Count(&count).Error
	return count, err
}

func (r *GormAnalyticsRepository) CountReferredUsers() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).
		Where("referrer_id IS NOT NULL").
		Count(&count).Error
	return count, err
}

func (r *GormAnalyticsRepository) CountReferralsBy(userID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).
		Where("referrer_id = ?", userID).
		Count(&count).Error
	return count, err
}

// RecentReferralsBy lists the newest users referred by the given user
func (r *GormAnalyticsRepository) RecentReferralsBy(userID uint64, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("referrer_id = ?", userID).
		Order("first_seen_at DESC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

// RankDistribution returns the per-tier user histogram
func (r *GormAnalyticsRepository) RankDistribution() ([]RankBucket, error) {
	var buckets []RankBucket
	err := r.db.Model(&models.User{}).
		Select("rank, COUNT(*) as count").
		Group("rank").
		Scan(&buckets).Error
	return buckets, err
}

// TopHelpersSince ranks users by vouches given after t
func (r *GormAnalyticsRepository) TopHelpersSince(t time.Time, limit int) ([]HelperStat, error) {
	var stats []HelperStat
	err := r.db.Model(&models.Vouch{}).
		Select("users.id as user_id, users.username, users.first_name, users.rank, COUNT(vouches.id) as vouch_count").
		Joins("JOIN users ON users.id = vouches.from_user_id").
		Where("vouches.created_at > ?", t).
		Group("users.id, users.username, users.first_name, users.rank").
		Order("vouch_count DESC").
		Limit(limit).
		Scan(&stats).Error
	return stats, err
}

// TopReceiversSince ranks users by confirmed vouches received after t
func (r *GormAnalyticsRepository) TopReceiversSince(t time.Time, limit int) ([]HelperStat, error) {
	var stats []HelperStat
	err := r.db.Model(&models.Vouch{}).
		Select("users.id as user_id, users.username, users.first_name, users.rank, COUNT(vouches.id) as vouch_count").
		Joins("JOIN users ON users.id = vouches.to_user_id").
		Where("vouches.created_at > ? AND vouches.is_pending = ?", t, false).
		Group("users.id, users.username, users.first_name, users.rank").
		Order("vouch_count DESC").
		Limit(limit).
		Scan(&stats).Error
	return stats, err
}

// StreakLeaders lists users by longest activity streak
func (r *GormAnalyticsRepository) StreakLeaders(limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.Order("streak_days DESC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

// RecentConfirmedVouches lists the newest confirmed vouches with both parties
func (r *GormAnalyticsRepository) RecentConfirmedVouches(limit int) ([]models.Vouch, error) {
	var vouches []models.Vouch
	err := r.db.Preload("From").Preload("To").
		Where("to_user_id IS NOT NULL").
		Order("created_at DESC").
		Limit(limit).
		Find(&vouches).Error
	return vouches, err
}
