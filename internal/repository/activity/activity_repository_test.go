package activity

import (
	"context"
	"testing"
	"time"

	"digitalwill-backend/internal/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestRepository_Create(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectQuery(`INSERT INTO "will_activities"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	a := &types.WillActivity{
		OwnerAddress: "0xa1",
		Action:       "create_will",
		Variant:      "create",
		AmountOctas:  1_000_000,
		Status:       types.ActivityStatusCompleted,
	}
	require.NoError(t, repo.Create(context.Background(), a))
	assert.Equal(t, int64(11), a.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListByOwner(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "will_activities" WHERE owner_address = \$1`).
		WithArgs("0xa1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "will_activities" WHERE owner_address = \$1 ORDER BY created_at DESC, id DESC LIMIT \$2`).
		WithArgs("0xa1", 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_address", "action", "status", "created_at"}).
			AddRow(2, "0xa1", "ping", "completed", now).
			AddRow(1, "0xa1", "create_will", "failed", now.Add(-time.Minute)))

	items, total, err := repo.ListByOwner(context.Background(), "0xa1", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 2)
	assert.Equal(t, "ping", items[0].Action)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListByOwnerEmpty(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "will_activities"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	items, total, err := repo.ListByOwner(context.Background(), "0xa1", 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
	require.NoError(t, mock.ExpectationsWereMet())
}
