package database

import (
	"fmt"
	"log"
	"time"

	"github.com/vouchportal/vouch-api/internal/models"
	"gorm.io/gorm"
)

// SchemaMigration tracks which migrations have been applied.
type SchemaMigration struct {
	ID        string `gorm:"primarykey;type:varchar(128)"`
	AppliedAt time.Time
}

// Migration is a single versioned schema change. Run must be idempotent;
// migrations are applied in slice order and recorded once applied.
type Migration struct {
	ID  string
	Run func(db *gorm.DB) error
}

// Migrations returns the ordered migration list.
func Migrations() []Migration {
	return []Migration{
		{
			ID: "001_create_core_tables",
			Run: func(db *gorm.DB) error {
				return db.AutoMigrate(
					&models.User{},
					&models.Vouch{},
					&models.RankEvent{},
					&models.Event{},
					&models.Invite{},
					&models.ConfigEntry{},
				)
			},
		},
		{
			ID: "002_vouch_uniqueness_backstops",
			Run: func(db *gorm.DB) error {
				// Partial unique indexes back the application-level duplicate
				// checks against concurrent inserts. MySQL has no partial
				// indexes; there the transactional check stands alone.
				if name := db.Dialector.Name(); name != "postgres" && name != "sqlite" {
					return nil
				}

				stmts := []string{
					`CREATE UNIQUE INDEX IF NOT EXISTS idx_vouches_confirmed_pair
						ON vouches (from_user_id, to_user_id) WHERE to_user_id IS NOT NULL`,
					`CREATE UNIQUE INDEX IF NOT EXISTS idx_vouches_pending_pair
						ON vouches (from_user_id, to_username) WHERE is_pending`,
				}
				for _, stmt := range stmts {
					if err := db.Exec(stmt).Error; err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			ID: "003_invite_cooldown_index",
			Run: func(db *gorm.DB) error {
				return db.Exec(
					`CREATE INDEX IF NOT EXISTS idx_invites_cooldown
						ON invites (from_user_id, to_username, sent_at)`,
				).Error
			},
		},
	}
}

// Migrate applies all pending migrations in order.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&SchemaMigration{}); err != nil {
		return fmt.Errorf("failed to prepare migration table: %w", err)
	}

	for _, m := range Migrations() {
		var count int64
		if err := db.Model(&SchemaMigration{}).Where("id = ?", m.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check migration %s: %w", m.ID, err)
		}
		if count > 0 {
			continue
		}

		if err := m.Run(db); err != nil {
			return fmt.Errorf("migration %s failed: %w", m.ID, err)
		}

		record := SchemaMigration{ID: m.ID, AppliedAt: time.Now()}
		if err := db.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to record migration %s: %w", m.ID, err)
		}

		log.Printf("Applied migration %s", m.ID)
	}

	return nil
}
