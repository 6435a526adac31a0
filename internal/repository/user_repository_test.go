package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vouchportal/vouch-api/internal/rank"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	t.Cleanup(func() { sqlDB.Close() })
	return db, mock
}

func TestGormUserRepository_FindByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "username", "rank", "total_vouches"}).
		AddRow(1, "alice", "trusted", 7)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"\."id" = \$1`).
		WithArgs(1, 1).
		WillReturnRows(rows)

	user, err := repo.FindByID(1)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, rank.RankTrusted, user.Rank)
	assert.Equal(t, 7, user.TotalVouches)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUserRepository_FindByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"\."id" = \$1`).
		WithArgs(404, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID(404)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUserRepository_FindByNormalizedUsername(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "username", "rank"}).
		AddRow(2, "Bob", "unverified")

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE LOWER\(username\) = \$1`).
		WithArgs("bob", 1).
		WillReturnRows(rows)

	user, err := repo.FindByNormalizedUsername("bob")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUserRepository_Touch(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET "last_active_at"=\$1,"username"=\$2 WHERE id = \$3`).
		WithArgs(sqlmock.AnyArg(), "alice", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Touch(1, "alice")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUserRepository_Touch_WithoutUsername(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET "last_active_at"=\$1 WHERE id = \$2`).
		WithArgs(sqlmock.AnyArg(), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Touch(1, "")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
